package handlers

import (
	"net/http"

	"neuron_backoffice/internal/services"

	"github.com/gin-gonic/gin"
)

type MenuHandler struct {
	menuService services.MenuService
}

func NewMenuHandler(menuService services.MenuService) *MenuHandler {
	return &MenuHandler{menuService: menuService}
}

func (h *MenuHandler) Sidebar(c *gin.Context) {
	cl, ok := claims(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.menuService.Sidebar(cl))
}

func (h *MenuHandler) PageAccess(c *gin.Context) {
	cl, ok := claims(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.menuService.PageAccess(cl, c.Param("slug")))
}
