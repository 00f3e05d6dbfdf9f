package middleware

import (
	"github.com/ahmetcoskunkizilkaya/billsplit/internal/dto"
	"github.com/gofiber/fiber/v2"
)

// GetCurrentUser returns the user resolved by RequireAuth or OptionalAuth,
// or nil for anonymous requests.
func GetCurrentUser(c *fiber.Ctx) *dto.CurrentUser {
	if user, ok := c.Locals(localsActor).(*dto.CurrentUser); ok {
		return user
	}
	return nil
}
