package handlers

import (
	"net/http"

	"neuron_backoffice/internal/services"

	"github.com/gin-gonic/gin"
)

type PermissionHandler struct {
	permissionService services.PermissionService
}

func NewPermissionHandler(permissionService services.PermissionService) *PermissionHandler {
	return &PermissionHandler{permissionService: permissionService}
}

func (h *PermissionHandler) List(c *gin.Context) {
	q, ok := bindPagination(c)
	if !ok {
		return
	}
	page, err := h.permissionService.GetPermissions(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *PermissionHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	permission, err := h.permissionService.GetPermissionByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, permission)
}
