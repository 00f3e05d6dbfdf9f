package models

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleManager Role = "MANAGER"
	RoleUser    Role = "USER"
)

const (
	ProviderLocal  = "local"
	ProviderGoogle = "google"
)

// User is an account. UserID is the external, client-facing identifier used
// for sign-in and as the JWT subject.
type User struct {
	ID           uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       string       `gorm:"size:255;not null;uniqueIndex" json:"user_id"`
	Password     string       `gorm:"type:text;not null" json:"-"`
	Email        string       `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Role         Role         `gorm:"size:20;not null;default:'USER'" json:"role"`
	AuthProvider string       `gorm:"size:50;not null;default:'local'" json:"-"`
	Profile      *UserProfile `gorm:"foreignKey:UserID;references:UserID" json:"profile,omitempty"`
	Audit
}

type UserProfile struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID   string    `gorm:"size:255;not null;uniqueIndex" json:"user_id"`
	FullName string    `gorm:"size:255;not null" json:"full_name"`
	Audit
}

// AuthToken is the live refresh token of a user. There is at most one row per user.
type AuthToken struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string    `gorm:"size:255;not null;uniqueIndex:uidx_auth_tokens_user_id" json:"user_id"`
	Token     string    `gorm:"type:text;not null;index" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	Audit
}

// Expired reports whether the token is past its expiry at now.
func (t *AuthToken) Expired(now time.Time) bool {
	return t.ExpiresAt.Before(now)
}
