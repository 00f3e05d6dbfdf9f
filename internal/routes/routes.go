package routes

import (
	"net/http"
	"time"

	"github.com/ahmetcoskunkizilkaya/billsplit/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/billsplit/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/billsplit/internal/models"
	"github.com/ahmetcoskunkizilkaya/billsplit/internal/security"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

type Handlers struct {
	Auth   *handlers.AuthHandler
	Bill   *handlers.BillHandler
	File   *handlers.FileHandler
	Admin  *handlers.AdminHandler
	Health *handlers.HealthHandler
}

func Setup(
	app *fiber.App,
	issuer *security.Issuer,
	resolver middleware.UserResolver,
	h Handlers,
	metrics http.Handler,
) {
	api := app.Group("/api")

	// Health and metrics stay outside the rate limiter.
	api.Get("/health", h.Health.Check)
	if metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(metrics))
	}

	// General API rate limiter: 60 req/min per IP
	limited := api.Group("", limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	jwt := middleware.JWTProtected(issuer)
	requireAuth := middleware.RequireAuth(resolver)

	// Auth: stricter 10 req/min per IP
	auth := limited.Group("/auth", limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/sign-up", h.Auth.SignUp)
	auth.Post("/sign-in", h.Auth.SignIn)
	auth.Get("/google-sign-in", h.Auth.GoogleSignIn)
	auth.Get("/google-sign-in/token", h.Auth.GoogleSignInToken)
	auth.Get("/refresh-token", h.Auth.RefreshToken)
	auth.Post("/sign-out", jwt, requireAuth, h.Auth.SignOut)
	auth.Get("/me", jwt, requireAuth, h.Auth.Me)

	// Bills: anonymous callers are allowed, private bills need a user.
	bill := limited.Group("/bill", middleware.OptionalAuth(resolver))
	bill.Post("/create", h.Bill.Create)
	bill.Get("/:bill_number", h.Bill.Get)
	bill.Get("/:bill_number/shared", h.Bill.GetShared)
	bill.Put("/:bill_number/update", h.Bill.Update)

	file := limited.Group("/file", middleware.OptionalAuth(resolver))
	file.Post("/upload", h.File.Upload)
	file.Get("/:file_id/presigned-url", h.File.PresignedURL)
	file.Delete("/:file_id", h.File.Delete)

	admin := limited.Group("/admin", jwt, requireAuth, middleware.AllowRoles(models.RoleAdmin, models.RoleManager))
	admin.Get("/bills", h.Admin.ListBills)
}
