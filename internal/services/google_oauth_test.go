package services

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"testing"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func testVerifier(t *testing.T) (*GoogleVerifier, *rsa.PrivateKey) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	raw, err := json.Marshal(map[string]interface{}{
		"keys": []map[string]string{{
			"kty": "RSA",
			"kid": "test-kid",
			"alg": "RS256",
			"use": "sig",
			"n":   base64.RawURLEncoding.EncodeToString(key.N.Bytes()),
			"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes()),
		}},
	})
	require.NoError(t, err)

	jwks, err := keyfunc.NewJSON(raw)
	require.NoError(t, err)

	return &GoogleVerifier{clientID: "client-1", now: time.Now, jwks: jwks}, key
}

func signIDToken(t *testing.T, key *rsa.PrivateKey, claims GoogleJWTClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	tok.Header["kid"] = "test-kid"
	signed, err := tok.SignedString(key)
	require.NoError(t, err)
	return signed
}

func googleClaims(aud, iss string, exp time.Time) GoogleJWTClaims {
	return GoogleJWTClaims{
		Email:         "alice@example.com",
		EmailVerified: true,
		Name:          "Alice",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "google-sub-1",
			Issuer:    iss,
			Audience:  jwt.ClaimStrings{aud},
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
}

func TestGoogleVerifierAcceptsValidToken(t *testing.T) {
	v, key := testVerifier(t)
	token := signIDToken(t, key, googleClaims("client-1", "https://accounts.google.com", time.Now().Add(time.Hour)))

	claims, err := v.VerifyToken(token)
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", claims.Email)
	require.Equal(t, "google-sub-1", claims.Subject)
	require.True(t, claims.Verified())
}

func TestGoogleVerifierRejects(t *testing.T) {
	v, key := testVerifier(t)
	other, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"wrong audience", signIDToken(t, key, googleClaims("someone-else", "accounts.google.com", time.Now().Add(time.Hour)))},
		{"wrong issuer", signIDToken(t, key, googleClaims("client-1", "https://evil.example.com", time.Now().Add(time.Hour)))},
		{"expired", signIDToken(t, key, googleClaims("client-1", "accounts.google.com", time.Now().Add(-time.Hour)))},
		{"wrong key", signIDToken(t, other, googleClaims("client-1", "accounts.google.com", time.Now().Add(time.Hour)))},
		{"garbage", "not.a.jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.VerifyToken(tt.token)
			require.Error(t, err)
		})
	}
}

func TestGoogleClaimsVerified(t *testing.T) {
	require.True(t, (&GoogleJWTClaims{EmailVerified: "true"}).Verified())
	require.False(t, (&GoogleJWTClaims{EmailVerified: "false"}).Verified())
	require.False(t, (&GoogleJWTClaims{}).Verified())
}
