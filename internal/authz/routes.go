package authz

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Route is one entry of the route table.
type Route struct {
	Method string
	Path   string
	Rule   Rule
}

// RouteTable registers handlers together with their rule so that no route
// reaches the router without passing through the engine.
type RouteTable struct {
	group  *gin.RouterGroup
	engine *Engine
	logger *zap.Logger
	routes []Route
}

func NewRouteTable(group *gin.RouterGroup, engine *Engine, logger *zap.Logger) *RouteTable {
	return &RouteTable{group: group, engine: engine, logger: logger}
}

func (t *RouteTable) Handle(method, path string, rule Rule, handlers ...gin.HandlerFunc) {
	chain := append([]gin.HandlerFunc{t.engine.Guard(rule, t.logger)}, handlers...)
	t.group.Handle(method, path, chain...)
	t.routes = append(t.routes, Route{Method: method, Path: t.group.BasePath() + path, Rule: rule})
}

func (t *RouteTable) GET(path string, rule Rule, handlers ...gin.HandlerFunc) {
	t.Handle("GET", path, rule, handlers...)
}

func (t *RouteTable) POST(path string, rule Rule, handlers ...gin.HandlerFunc) {
	t.Handle("POST", path, rule, handlers...)
}

func (t *RouteTable) PATCH(path string, rule Rule, handlers ...gin.HandlerFunc) {
	t.Handle("PATCH", path, rule, handlers...)
}

func (t *RouteTable) DELETE(path string, rule Rule, handlers ...gin.HandlerFunc) {
	t.Handle("DELETE", path, rule, handlers...)
}

// Routes lists the registered table.
func (t *RouteTable) Routes() []Route {
	return append([]Route(nil), t.routes...)
}
