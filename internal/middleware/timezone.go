package middleware

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/billsplit/internal/reqctx"
	"github.com/gofiber/fiber/v2"
)

const HeaderTimezone = "X-Timezone"

// Timezone stores the request timezone in the user context. It is read from
// the X-Timezone header, then the tz query parameter, then fallback.
// Unknown names fall back silently.
func Timezone(fallback *time.Location) fiber.Handler {
	return func(c *fiber.Ctx) error {
		name := c.Get(HeaderTimezone)
		if name == "" {
			name = c.Query("tz")
		}
		loc := reqctx.LoadTimezone(name, fallback)
		c.SetUserContext(reqctx.WithTimezone(c.UserContext(), loc))
		return c.Next()
	}
}
