package authz

import (
	"errors"
	"strings"

	"neuron_backoffice/internal/apperrors"
	"neuron_backoffice/internal/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Guard enforces one rule in front of a handler chain.
func (e *Engine) Guard(rule Rule, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := e.Authorize(rule, bearerToken(c))
		if err != nil {
			status := apperrors.HTTPStatus(err)
			message := "Unauthorized"
			if errors.Is(err, apperrors.ErrForbidden) {
				message = "Forbidden resource"
				logger.Warn("access denied",
					zap.String("path", c.FullPath()),
					zap.String("rule", rule.String()),
					zap.Error(err),
				)
			}
			c.AbortWithStatusJSON(status, gin.H{"error": message})
			return
		}

		if claims != nil {
			auth.SetClaims(c, claims)
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
