package auth

import (
	"context"

	"github.com/gin-gonic/gin"
)

type claimsContextKey struct{}

// ginClaimsKey is where the guard stores verified claims on the gin context.
const ginClaimsKey = "auth.claims"

func ContextWithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey{}, claims)
}

func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	if ctx == nil {
		return nil, false
	}
	claims, ok := ctx.Value(claimsContextKey{}).(*Claims)
	return claims, ok && claims != nil
}

// SetClaims attaches claims to both the gin context and its request context.
func SetClaims(c *gin.Context, claims *Claims) {
	c.Set(ginClaimsKey, claims)
	c.Request = c.Request.WithContext(ContextWithClaims(c.Request.Context(), claims))
}

func ClaimsFromGin(c *gin.Context) (*Claims, bool) {
	v, ok := c.Get(ginClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*Claims)
	return claims, ok && claims != nil
}
