package handlers

import (
	"net/http"

	"neuron_backoffice/internal/services"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var input services.LoginInput
	if !bindJSON(c, &input) {
		return
	}

	result, err := h.authService.Login(c.Request.Context(), input, c.ClientIP())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *AuthHandler) Me(c *gin.Context) {
	cl, ok := claims(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":          cl.Subject,
		"email":       cl.Email,
		"role":        cl.Role,
		"permissions": cl.Permissions,
	})
}
