package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/billsplit/internal/apperrors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenType string

const (
	TokenAccess        TokenType = "ACCESS_TOKEN"
	TokenRefresh       TokenType = "REFRESH_TOKEN"
	TokenResetPassword TokenType = "RESET_PASSWORD_TOKEN"

	tokenOAuthState TokenType = "OAUTH_STATE"
)

const oauthStateTTL = 10 * time.Minute

var (
	ErrTokenType      = errors.New("token type mismatch")
	ErrMissingSubject = errors.New("token has no subject")
)

// Claims is the payload of every token issued by Issuer.
type Claims struct {
	Type TokenType `json:"typ"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies HS256 tokens. Access and reset tokens share the
// access secret and TTL; refresh tokens use their own.
type Issuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

func NewIssuer(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *Issuer {
	return &Issuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
}

// WithClock returns a copy of the issuer that reads time from now.
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	cp := *i
	cp.now = now
	return &cp
}

func (i *Issuer) keyFor(tokenType TokenType) ([]byte, time.Duration, error) {
	switch tokenType {
	case TokenAccess, TokenResetPassword:
		return i.accessSecret, i.accessTTL, nil
	case TokenRefresh:
		return i.refreshSecret, i.refreshTTL, nil
	case tokenOAuthState:
		return i.accessSecret, oauthStateTTL, nil
	default:
		return nil, 0, apperrors.InvalidArgument("Token type not allow")
	}
}

// Issue signs {sub, exp} for subject and returns the token with its expiry.
func (i *Issuer) Issue(subject string, tokenType TokenType) (string, time.Time, error) {
	key, ttl, err := i.keyFor(tokenType)
	if err != nil {
		return "", time.Time{}, err
	}

	now := i.now()
	expiresAt := now.Add(ttl)
	claims := Claims{
		Type: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign %s: %w", tokenType, err)
	}
	return signed, expiresAt, nil
}

// Parse verifies signature, expiry and type and returns the subject.
func (i *Issuer) Parse(token string, tokenType TokenType) (string, error) {
	key, _, err := i.keyFor(tokenType)
	if err != nil {
		return "", err
	}

	var claims Claims
	_, err = jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return "", err
	}
	if claims.Type != tokenType {
		return "", ErrTokenType
	}
	if claims.Subject == "" {
		return "", ErrMissingSubject
	}
	return claims.Subject, nil
}

// AccessSecret is exposed for the bearer middleware.
func (i *Issuer) AccessSecret() []byte { return i.accessSecret }

// IssueState signs the OAuth state parameter carrying the redirect URI.
func (i *Issuer) IssueState(redirectURI string) (string, error) {
	state, _, err := i.Issue(redirectURI, tokenOAuthState)
	return state, err
}

// ParseState verifies an OAuth state and returns the redirect URI it carries.
func (i *Issuer) ParseState(state string) (string, error) {
	return i.Parse(state, tokenOAuthState)
}
