package models

import "strings"

type Resource string

const (
	ResourceContacts              Resource = "CONTACTS"
	ResourceUsers                 Resource = "USERS"
	ResourceRoles                 Resource = "ROLES"
	ResourcePermissions           Resource = "PERMISSIONS"
	ResourceTickets               Resource = "TICKETS"
	ResourceWhatsappConversations Resource = "WHATSAPP_CONVERSATIONS"
)

var AllResources = []Resource{
	ResourceContacts,
	ResourceUsers,
	ResourceRoles,
	ResourcePermissions,
	ResourceTickets,
	ResourceWhatsappConversations,
}

type Action string

const (
	ActionCreate Action = "CREATE"
	ActionRead   Action = "READ"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"
)

var AllActions = []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete}

type Permission struct {
	Base
	Resource    Resource `json:"resource" gorm:"type:varchar(50);not null;uniqueIndex:idx_permission_resource_action"`
	Action      Action   `json:"action" gorm:"type:varchar(20);not null;uniqueIndex:idx_permission_resource_action"`
	Description string   `json:"description" gorm:"size:255"`
}

// PermissionKey is the exact-match string carried in session tokens.
func PermissionKey(resource Resource, action Action) string {
	return strings.ToLower(string(resource)) + ":" + strings.ToLower(string(action))
}

func (p Permission) Key() string {
	return PermissionKey(p.Resource, p.Action)
}
