package handlers

import (
	"errors"
	"net/http"

	"neuron_backoffice/internal/apperrors"
	"neuron_backoffice/internal/auth"
	"neuron_backoffice/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// respondError maps the error chain onto a status. Server errors keep their
// details in the log only.
func respondError(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)
	_ = c.Error(err)

	message := err.Error()
	switch {
	case status >= http.StatusInternalServerError:
		message = "Internal server error"
	case errors.Is(err, apperrors.ErrUnauthorized):
		message = "Invalid credentials"
	case errors.Is(err, apperrors.ErrForbidden):
		message = "Forbidden resource"
	}
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": message})
}

// parseID reads the :id path parameter; a malformed id is answered with 400.
func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "Invalid id format")
		return uuid.Nil, false
	}
	return id, true
}

func bindPagination(c *gin.Context) (repository.PaginationQuery, bool) {
	var q repository.PaginationQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err.Error())
		return q, false
	}
	return q, true
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		badRequest(c, err.Error())
		return false
	}
	return true
}

// claims returns the verified caller. Routes behind a non-public rule always have one.
func claims(c *gin.Context) (*auth.Claims, bool) {
	cl, ok := auth.ClaimsFromGin(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	}
	return cl, ok
}
