package middleware

import (
	"context"
	"strings"

	"github.com/ahmetcoskunkizilkaya/billsplit/internal/apperrors"
	"github.com/ahmetcoskunkizilkaya/billsplit/internal/dto"
	"github.com/ahmetcoskunkizilkaya/billsplit/internal/security"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	localsToken = "user"
	localsActor = "current_user"
)

// UserResolver turns an access token into the signed-in user.
type UserResolver interface {
	CurrentUser(ctx context.Context, accessToken string) (*dto.CurrentUser, error)
}

// JWTProtected rejects requests without a validly signed, unexpired bearer token.
func JWTProtected(issuer *security.Issuer) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{JWTAlg: jwtware.HS256, Key: issuer.AccessSecret()},
		ContextKey: localsToken,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return apperrors.New(apperrors.KindUnauthenticated, "", err)
		},
	})
}

// RequireAuth resolves the user behind the token accepted by JWTProtected.
func RequireAuth(resolver UserResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := c.Locals(localsToken).(*jwt.Token)
		if !ok || token == nil {
			return apperrors.Unauthenticated("")
		}
		user, err := resolver.CurrentUser(c.UserContext(), token.Raw)
		if err != nil {
			return err
		}
		c.Locals(localsActor, user)
		return c.Next()
	}
}

// OptionalAuth resolves the bearer user when one is sent. Requests without an
// Authorization header continue anonymously; a bad token is still rejected.
func OptionalAuth(resolver UserResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := bearerToken(c)
		if raw == "" {
			return c.Next()
		}
		user, err := resolver.CurrentUser(c.UserContext(), raw)
		if err != nil {
			return err
		}
		c.Locals(localsActor, user)
		return c.Next()
	}
}

func bearerToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
