package handlers

import (
	"neuron_backoffice/internal/authz"
	"neuron_backoffice/internal/middleware"
	"neuron_backoffice/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Handlers struct {
	Auth        *AuthHandler
	Contacts    *ContactHandler
	Users       *UserHandler
	Roles       *RoleHandler
	Permissions *PermissionHandler
	Tickets     *TicketHandler
	Menu        *MenuHandler
	WhatsApp    *WhatsAppHandler
	Health      *HealthHandler
}

type RouterConfig struct {
	CORSOrigin   string
	LoginLimiter *middleware.IPRateLimiter
}

// NewRouter mounts every route under /api through the route table, so each
// one carries an explicit authorization rule.
func NewRouter(h Handlers, engine *authz.Engine, config RouterConfig, logger *zap.Logger) (*gin.Engine, *authz.RouteTable) {
	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.Recovery(logger),
		middleware.Logger(logger),
		middleware.Metrics(),
	)
	if config.CORSOrigin != "" {
		router.Use(middleware.CORS(config.CORSOrigin))
	}

	routes := authz.NewRouteTable(router.Group("/api"), engine, logger)
	public := authz.Public()
	authenticated := authz.Authenticated()

	login := []gin.HandlerFunc{h.Auth.Login}
	if config.LoginLimiter != nil {
		login = append([]gin.HandlerFunc{config.LoginLimiter.Middleware()}, login...)
	}
	routes.POST("/auth/login", public, login...)
	routes.GET("/auth/me", authenticated, h.Auth.Me)

	routes.POST("/contacts", public, h.Contacts.Create)
	routes.GET("/contacts", public, h.Contacts.List)
	routes.GET("/contacts/:id", public, h.Contacts.Get)
	routes.PATCH("/contacts/:id", authz.Require(models.ResourceContacts, models.ActionUpdate), h.Contacts.Update)
	routes.DELETE("/contacts/:id", authz.Require(models.ResourceContacts, models.ActionDelete), h.Contacts.Delete)

	routes.POST("/users", authz.Require(models.ResourceUsers, models.ActionCreate), h.Users.Create)
	routes.GET("/users", authz.Require(models.ResourceUsers, models.ActionRead), h.Users.List)
	routes.GET("/users/:id", authz.Require(models.ResourceUsers, models.ActionRead), h.Users.Get)
	routes.PATCH("/users/:id", authz.Require(models.ResourceUsers, models.ActionUpdate), h.Users.Update)
	routes.DELETE("/users/:id", authz.Require(models.ResourceUsers, models.ActionDelete), h.Users.Delete)

	routes.POST("/roles", authz.Require(models.ResourceRoles, models.ActionCreate), h.Roles.Create)
	routes.GET("/roles", authz.Require(models.ResourceRoles, models.ActionRead), h.Roles.List)
	routes.GET("/roles/:id", authz.Require(models.ResourceRoles, models.ActionRead), h.Roles.Get)
	routes.PATCH("/roles/:id", authz.Require(models.ResourceRoles, models.ActionUpdate), h.Roles.Update)
	routes.DELETE("/roles/:id", authz.Require(models.ResourceRoles, models.ActionDelete), h.Roles.Delete)

	routes.GET("/permissions", authz.Require(models.ResourcePermissions, models.ActionRead), h.Permissions.List)
	routes.GET("/permissions/:id", authz.Require(models.ResourcePermissions, models.ActionRead), h.Permissions.Get)

	routes.POST("/tickets", authz.Require(models.ResourceTickets, models.ActionCreate), h.Tickets.Create)
	routes.GET("/tickets", authz.Require(models.ResourceTickets, models.ActionRead), h.Tickets.List)
	routes.GET("/tickets/:id", authz.Require(models.ResourceTickets, models.ActionRead), h.Tickets.Get)
	routes.PATCH("/tickets/:id", authz.Require(models.ResourceTickets, models.ActionUpdate), h.Tickets.Update)
	routes.DELETE("/tickets/:id", authz.Require(models.ResourceTickets, models.ActionDelete), h.Tickets.Delete)

	routes.GET("/menu/sidebar", authenticated, h.Menu.Sidebar)
	routes.GET("/menu/pages/:slug/access", authenticated, h.Menu.PageAccess)

	readConversations := authz.Require(models.ResourceWhatsappConversations, models.ActionRead)
	routes.GET("/whatsapp/status", readConversations, h.WhatsApp.Status)
	routes.GET("/whatsapp/conversations", readConversations, h.WhatsApp.ListConversations)
	routes.GET("/whatsapp/conversations/:id", readConversations, h.WhatsApp.GetConversation)
	routes.POST("/whatsapp/webhook", public, h.WhatsApp.HandleWebhook)
	routes.POST("/whatsapp/connection", public, h.WhatsApp.HandleConnection)

	routes.GET("/health", public, h.Health.Health)
	routes.GET("/metrics", public, gin.WrapH(promhttp.Handler()))

	return router, routes
}
