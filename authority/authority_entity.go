package authority

import "strings"

type Role = string

const (
	RoleSales       Role = "sales"
	RoleEngineering Role = "engineering"
	RoleProduction  Role = "production"
	RoleAdmin       Role = "admin"
)

type Permissions []string

func (c Permissions) HasRole(role string) bool {
	for _, v := range c {
		if strings.EqualFold(v, role) {
			return true
		}
	}
	return false
}

func (c Permissions) HasAnyRole(roles ...string) bool {
	for _, role := range roles {
		if c.HasRole(role) {
			return true
		}
	}
	return false
}

func (c Permissions) HasAdminRole() bool {
	return c.HasRole(RoleAdmin)
}
