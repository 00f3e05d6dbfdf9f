package middleware

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/ahmetcoskunkizilkaya/billsplit/internal/apperrors"
	"github.com/ahmetcoskunkizilkaya/billsplit/internal/dto"
	"github.com/ahmetcoskunkizilkaya/billsplit/internal/models"
	"github.com/ahmetcoskunkizilkaya/billsplit/internal/reqctx"
	"github.com/ahmetcoskunkizilkaya/billsplit/internal/security"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

type fakeResolver map[string]*dto.CurrentUser

func (f fakeResolver) CurrentUser(_ context.Context, token string) (*dto.CurrentUser, error) {
	if u, ok := f[token]; ok {
		return u, nil
	}
	return nil, apperrors.Unauthenticated("")
}

func newApp() *fiber.App {
	return fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.SendStatus(apperrors.KindOf(err).Status())
		},
	})
}

func whoami(c *fiber.Ctx) error {
	if u := GetCurrentUser(c); u != nil {
		return c.SendString(u.UserID)
	}
	return c.SendString("anonymous")
}

func do(t *testing.T, app *fiber.App, path, bearer string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodGet, path, nil)
	if bearer != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+bearer)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestOptionalAuth(t *testing.T) {
	resolver := fakeResolver{"good": {UserID: "alice"}}
	app := newApp()
	app.Get("/", OptionalAuth(resolver), whoami)

	status, body := do(t, app, "/", "")
	require.Equal(t, fiber.StatusOK, status)
	require.Equal(t, "anonymous", body)

	status, body = do(t, app, "/", "good")
	require.Equal(t, fiber.StatusOK, status)
	require.Equal(t, "alice", body)

	status, _ = do(t, app, "/", "bad")
	require.Equal(t, fiber.StatusUnauthorized, status)
}

func TestJWTProtectedAndRequireAuth(t *testing.T) {
	issuer := security.NewIssuer("access-secret", "refresh-secret", time.Minute, time.Hour)
	access, _, err := issuer.Issue("alice", security.TokenAccess)
	require.NoError(t, err)
	refresh, _, err := issuer.Issue("alice", security.TokenRefresh)
	require.NoError(t, err)

	app := newApp()
	app.Get("/", JWTProtected(issuer), RequireAuth(fakeResolver{access: {UserID: "alice"}}), whoami)

	status, body := do(t, app, "/", access)
	require.Equal(t, fiber.StatusOK, status)
	require.Equal(t, "alice", body)

	for _, token := range []string{"", "garbage", refresh} {
		status, _ := do(t, app, "/", token)
		require.Equal(t, fiber.StatusUnauthorized, status)
	}
}

func TestAllowRoles(t *testing.T) {
	resolver := fakeResolver{
		"admin": {UserID: "root", Role: models.RoleAdmin},
		"user":  {UserID: "alice", Role: models.RoleUser},
	}
	app := newApp()
	app.Get("/", OptionalAuth(resolver), AllowRoles(models.RoleAdmin, models.RoleManager), whoami)

	status, _ := do(t, app, "/", "admin")
	require.Equal(t, fiber.StatusOK, status)
	status, _ = do(t, app, "/", "user")
	require.Equal(t, fiber.StatusForbidden, status)
	status, _ = do(t, app, "/", "")
	require.Equal(t, fiber.StatusUnauthorized, status)
}

func TestTimezone(t *testing.T) {
	app := newApp()
	app.Use(Timezone(time.UTC))
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(reqctx.Timezone(c.UserContext()).String())
	})

	req := httptest.NewRequest(fiber.MethodGet, "/", nil)
	req.Header.Set(HeaderTimezone, "Asia/Seoul")
	resp, err := app.Test(req)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	require.Equal(t, "Asia/Seoul", string(body))

	_, body2 := do(t, app, "/?tz=Europe/Paris", "")
	require.Equal(t, "Europe/Paris", body2)

	_, body3 := do(t, app, "/?tz=Not/AZone", "")
	require.Equal(t, "UTC", body3)
}
