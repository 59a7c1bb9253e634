package authz

import (
	"neuron_backoffice/internal/auth"
	"neuron_backoffice/internal/models"

	"github.com/google/uuid"
)

// IsAdmin reports whether the caller's role name is the ADMIN sentinel.
func IsAdmin(claims *auth.Claims) bool {
	return claims != nil && claims.Role == models.AdminRoleName
}

// CanAccessOwned applies the ownership overlay: admins see every record,
// anyone else only records they own.
func CanAccessOwned(claims *auth.Claims, ownerID uuid.UUID) bool {
	if claims == nil {
		return false
	}
	if IsAdmin(claims) {
		return true
	}
	return claims.Subject == ownerID.String()
}
