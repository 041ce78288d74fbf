package auth

import (
	"marketplace-service/internal/apperr"
)

// Authorize allows claims whose role is one of allowed. With no allowed roles any
// authenticated caller passes.
func Authorize(claims *Claims, allowed ...string) error {
	if claims == nil {
		return apperr.Unauthenticated("Authentication required")
	}
	if len(allowed) == 0 {
		return nil
	}
	for _, role := range allowed {
		if claims.Role == role {
			return nil
		}
	}
	return apperr.Forbidden("You do not have permission to perform this action")
}
