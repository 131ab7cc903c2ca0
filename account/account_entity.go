package account

import (
	"fabline/authority"

	"github.com/fundwit/go-commons/types"
)

type User struct {
	ID     types.ID `json:"id" gorm:"primary_key"`
	Name   string   `json:"name"`
	Secret string   `json:"-"`

	Nickname string         `json:"nickname"`
	Role     authority.Role `json:"role"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

type UserInfo struct {
	ID       types.ID       `json:"id"`
	Name     string         `json:"name"`
	Nickname string         `json:"nickname"`
	Role     authority.Role `json:"role"`
}

type UserCreation struct {
	Name     string         `json:"name" binding:"required,lte=32"`
	Secret   string         `json:"secret" binding:"required,gte=6,lte=32"`
	Nickname string         `json:"nickname" binding:"omitempty,gte=1,lte=32"`
	Role     authority.Role `json:"role" binding:"required,oneof=sales engineering production admin"`
}

func (u User) DisplayName() string {
	if u.Nickname != "" {
		return u.Nickname
	}
	return u.Name
}
