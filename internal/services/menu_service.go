package services

import (
	"neuron_backoffice/internal/auth"
	"neuron_backoffice/internal/models"
)

type MenuItem struct {
	Label string `json:"label"`
	Slug  string `json:"slug"`
	Icon  string `json:"icon"`
	// Empty means every authenticated user sees the item.
	Permission string `json:"-"`
}

type PageAccess struct {
	Slug      string `json:"slug"`
	HasAccess bool   `json:"hasAccess"`
}

var sidebarItems = []MenuItem{
	{Label: "Dashboard", Slug: "dashboard", Icon: "layout-dashboard"},
	{Label: "Tickets", Slug: "tickets", Icon: "ticket", Permission: models.PermissionKey(models.ResourceTickets, models.ActionRead)},
	{Label: "Contatos", Slug: "contacts", Icon: "contact", Permission: models.PermissionKey(models.ResourceContacts, models.ActionRead)},
	{Label: "Usuários", Slug: "users", Icon: "users", Permission: models.PermissionKey(models.ResourceUsers, models.ActionRead)},
	{Label: "Roles", Slug: "roles", Icon: "shield", Permission: models.PermissionKey(models.ResourceRoles, models.ActionRead)},
	{Label: "Permissões", Slug: "permissions", Icon: "lock", Permission: models.PermissionKey(models.ResourcePermissions, models.ActionRead)},
}

type MenuService interface {
	Sidebar(claims *auth.Claims) []MenuItem
	PageAccess(claims *auth.Claims, slug string) PageAccess
}

type menuService struct {
	items []MenuItem
}

func NewMenuService() MenuService {
	return &menuService{items: sidebarItems}
}

func (s *menuService) Sidebar(claims *auth.Claims) []MenuItem {
	items := make([]MenuItem, 0, len(s.items))
	for _, item := range s.items {
		if canSee(claims, item) {
			items = append(items, item)
		}
	}
	return items
}

// PageAccess is false for unknown slugs.
func (s *menuService) PageAccess(claims *auth.Claims, slug string) PageAccess {
	for _, item := range s.items {
		if item.Slug == slug {
			return PageAccess{Slug: slug, HasAccess: canSee(claims, item)}
		}
	}
	return PageAccess{Slug: slug}
}

func canSee(claims *auth.Claims, item MenuItem) bool {
	if claims == nil {
		return false
	}
	return item.Permission == "" || claims.HasPermission(item.Permission)
}
