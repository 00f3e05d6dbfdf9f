package handlers

import (
	"github.com/ahmetcoskunkizilkaya/billsplit/internal/apperrors"
	"github.com/ahmetcoskunkizilkaya/billsplit/internal/dto"
	"github.com/ahmetcoskunkizilkaya/billsplit/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/billsplit/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) SignUp(c *fiber.Ctx) error {
	var req dto.SignUpRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	user, err := h.authService.SignUp(c.UserContext(), &req)
	if err != nil {
		return err
	}
	return ok(c, user)
}

func (h *AuthHandler) SignIn(c *fiber.Ctx) error {
	var req dto.SignInRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	pair, err := h.authService.SignIn(c.UserContext(), req.UserID, req.Password)
	if err != nil {
		return err
	}
	return ok(c, pair)
}

// GoogleSignIn redirects to Google's consent page.
func (h *AuthHandler) GoogleSignIn(c *fiber.Ctx) error {
	var q dto.GoogleSignInQuery
	if err := parseQuery(c, &q); err != nil {
		return err
	}

	authURL, err := h.authService.GoogleAuthURL(q.CallbackURL)
	if err != nil {
		return err
	}
	return c.Redirect(authURL, fiber.StatusFound)
}

func (h *AuthHandler) GoogleSignInToken(c *fiber.Ctx) error {
	var q dto.GoogleTokenQuery
	if err := parseQuery(c, &q); err != nil {
		return err
	}

	pair, err := h.authService.OAuthSignIn(c.UserContext(), services.ProviderGoogle, q.Code, q.State, q.RedirectURI)
	if err != nil {
		return err
	}
	return ok(c, pair)
}

func (h *AuthHandler) SignOut(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return apperrors.Unauthenticated("")
	}
	if err := h.authService.SignOut(c.UserContext(), user.UserID); err != nil {
		return err
	}
	return ok(c, nil)
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return apperrors.Unauthenticated("")
	}
	return ok(c, user)
}

func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	var q dto.RefreshTokenQuery
	if err := parseQuery(c, &q); err != nil {
		return err
	}

	pair, err := h.authService.Refresh(c.UserContext(), q.RefreshToken)
	if err != nil {
		return err
	}
	return ok(c, pair)
}
