package dto

import (
	"github.com/ahmetcoskunkizilkaya/billsplit/internal/models"
	"github.com/google/uuid"
)

type SignUpRequest struct {
	UserID   string `json:"user_id" validate:"required,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Email    string `json:"email" validate:"required,email,max=255"`
	FullName string `json:"full_name" validate:"required,max=255"`
}

type SignInRequest struct {
	UserID   string `json:"user_id" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// CurrentUser is the public view of the signed-in user.
type CurrentUser struct {
	ID       uuid.UUID   `json:"id"`
	UserID   string      `json:"user_id"`
	Email    string      `json:"email"`
	UserName string      `json:"user_name"`
	Role     models.Role `json:"role"`
}

type GoogleSignInQuery struct {
	CallbackURL string `query:"callback_url" json:"callback_url" validate:"required,url"`
}

type GoogleTokenQuery struct {
	Code        string `query:"code" json:"code" validate:"required"`
	State       string `query:"state" json:"state" validate:"required"`
	RedirectURI string `query:"redirect_uri" json:"redirect_uri" validate:"omitempty,url"`
}

type RefreshTokenQuery struct {
	RefreshToken string `query:"refresh_token" json:"refresh_token" validate:"required"`
}
