package middleware

import (
	"github.com/ahmetcoskunkizilkaya/billsplit/internal/apperrors"
	"github.com/ahmetcoskunkizilkaya/billsplit/internal/models"
	"github.com/gofiber/fiber/v2"
)

// AllowRoles lets the request through only when the resolved user holds one
// of roles. It must run after RequireAuth.
func AllowRoles(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := GetCurrentUser(c)
		if user == nil {
			return apperrors.Unauthenticated("")
		}
		if !HasRole(user.Role, roles...) {
			return apperrors.Forbidden("")
		}
		return c.Next()
	}
}

func HasRole(role models.Role, allowed ...models.Role) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}
