package models

// AdminRoleName is the role that bypasses ticket ownership.
const AdminRoleName = "ADMIN"

type Role struct {
	Base
	Name        string       `json:"name" gorm:"size:50;uniqueIndex;not null"`
	Description string       `json:"description" gorm:"size:255"`
	IsActive    bool         `json:"isActive" gorm:"not null"`
	Permissions []Permission `json:"permissions,omitempty" gorm:"many2many:role_permissions;constraint:OnDelete:CASCADE"`
}

// PermissionKeys flattens the role's permissions. An inactive role grants nothing.
func (r *Role) PermissionKeys() []string {
	if r == nil || !r.IsActive {
		return []string{}
	}
	keys := make([]string, 0, len(r.Permissions))
	for _, p := range r.Permissions {
		keys = append(keys, p.Key())
	}
	return keys
}
