package session

import (
	"context"
	"time"

	"fabline/authority"

	"github.com/fundwit/go-commons/types"
)

type Session struct {
	Token    string                `json:"token"`
	Identity Identity              `json:"identity"`
	Perms    authority.Permissions `json:"perms"`

	SigningTime time.Time `json:"-"`

	Context context.Context `json:"-"`
}

type Identity struct {
	ID       types.ID `json:"id"`
	Name     string   `json:"name"`
	Nickname string   `json:"nickname"`
}

func (s *Session) Clone() Session {
	c := *s
	c.Perms = append(authority.Permissions{}, s.Perms...)
	return c
}

// Role returns the primary workflow role of the session holder
func (s *Session) Role() authority.Role {
	for _, role := range []authority.Role{authority.RoleAdmin, authority.RoleSales,
		authority.RoleEngineering, authority.RoleProduction} {
		if s.Perms.HasRole(role) {
			return role
		}
	}
	return ""
}
