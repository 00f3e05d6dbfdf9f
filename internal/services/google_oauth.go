package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

const googleJWKSURL = "https://www.googleapis.com/oauth2/v3/certs"

var googleIssuers = map[string]bool{
	"accounts.google.com":         true,
	"https://accounts.google.com": true,
}

// IdentityClaims is what a provider tells us about the signed-in person.
type IdentityClaims struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
}

// IdentityProvider runs the authorization-code flow of an OAuth provider.
type IdentityProvider interface {
	AuthCodeURL(state, redirectURI string) string
	Exchange(ctx context.Context, code, redirectURI string) (*IdentityClaims, error)
}

type GoogleJWTClaims struct {
	Email         string      `json:"email"`
	EmailVerified interface{} `json:"email_verified"`
	Name          string      `json:"name"`
	jwt.RegisteredClaims
}

// Verified accepts both the boolean and the legacy string form of email_verified.
func (c *GoogleJWTClaims) Verified() bool {
	switch v := c.EmailVerified.(type) {
	case bool:
		return v
	case string:
		ok, _ := strconv.ParseBool(v)
		return ok
	}
	return false
}

// GoogleVerifier checks Google ID tokens against Google's published keys.
// Keys are fetched on first use and refreshed in the background.
type GoogleVerifier struct {
	clientID string
	jwksURL  string
	now      func() time.Time

	mu   sync.Mutex
	jwks *keyfunc.JWKS
}

func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{
		clientID: clientID,
		jwksURL:  googleJWKSURL,
		now:      time.Now,
	}
}

func (v *GoogleVerifier) keys() (*keyfunc.JWKS, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.jwks != nil {
		return v.jwks, nil
	}
	jwks, err := keyfunc.Get(v.jwksURL, keyfunc.Options{
		RefreshInterval:   12 * time.Hour,
		RefreshRateLimit:  5 * time.Minute,
		RefreshTimeout:    10 * time.Second,
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			slog.Error("google jwks refresh failed", "error", err)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch JWKS: %w", err)
	}
	v.jwks = jwks
	return jwks, nil
}

func (v *GoogleVerifier) VerifyToken(idToken string) (*GoogleJWTClaims, error) {
	jwks, err := v.keys()
	if err != nil {
		return nil, err
	}

	var claims GoogleJWTClaims
	_, err = jwt.ParseWithClaims(idToken, &claims, jwks.Keyfunc,
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithAudience(v.clientID),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid id token: %w", err)
	}
	if !googleIssuers[claims.Issuer] {
		return nil, fmt.Errorf("invalid issuer: %s", claims.Issuer)
	}
	return &claims, nil
}

// Close stops the background key refresh.
func (v *GoogleVerifier) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.jwks != nil {
		v.jwks.EndBackground()
	}
}

// GoogleOAuth exchanges authorization codes with Google and verifies the
// returned ID token.
type GoogleOAuth struct {
	conf     oauth2.Config
	verifier *GoogleVerifier
}

func NewGoogleOAuth(clientID, clientSecret string) *GoogleOAuth {
	return &GoogleOAuth{
		conf: oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     endpoints.Google,
			Scopes:       []string{"openid", "email", "profile"},
		},
		verifier: NewGoogleVerifier(clientID),
	}
}

func (g *GoogleOAuth) AuthCodeURL(state, redirectURI string) string {
	conf := g.conf
	conf.RedirectURL = redirectURI
	return conf.AuthCodeURL(state)
}

func (g *GoogleOAuth) Exchange(ctx context.Context, code, redirectURI string) (*IdentityClaims, error) {
	conf := g.conf
	conf.RedirectURL = redirectURI

	tok, err := conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("code exchange failed: %w", err)
	}
	idToken, ok := tok.Extra("id_token").(string)
	if !ok || idToken == "" {
		return nil, errors.New("token response has no id_token")
	}

	claims, err := g.verifier.VerifyToken(idToken)
	if err != nil {
		return nil, err
	}
	return &IdentityClaims{
		Subject:       claims.Subject,
		Email:         claims.Email,
		EmailVerified: claims.Verified(),
		Name:          claims.Name,
	}, nil
}

func (g *GoogleOAuth) Close() {
	g.verifier.Close()
}
