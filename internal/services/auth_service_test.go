package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/billsplit/internal/apperrors"
	"github.com/ahmetcoskunkizilkaya/billsplit/internal/database/dbtest"
	"github.com/ahmetcoskunkizilkaya/billsplit/internal/dto"
	"github.com/ahmetcoskunkizilkaya/billsplit/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/billsplit/internal/models"
	"github.com/ahmetcoskunkizilkaya/billsplit/internal/security"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeIdentity struct {
	claims  *IdentityClaims
	err     error
	gotCode string
	gotURI  string
}

func (f *fakeIdentity) AuthCodeURL(state, redirectURI string) string {
	return "https://accounts.example.com/auth?state=" + state + "&redirect_uri=" + redirectURI
}

func (f *fakeIdentity) Exchange(_ context.Context, code, redirectURI string) (*IdentityClaims, error) {
	f.gotCode, f.gotURI = code, redirectURI
	return f.claims, f.err
}

type authFixture struct {
	db     *gorm.DB
	svc    *AuthService
	google *fakeIdentity
	now    time.Time
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	f := &authFixture{
		db:     dbtest.Open(t),
		google: &fakeIdentity{},
		now:    time.Now(),
	}
	issuer := security.NewIssuer("access-secret", "refresh-secret", 15*time.Minute, 24*time.Hour)
	f.svc = NewAuthService(f.db, issuer, f.google, metrics.Nop)
	f.svc.now = func() time.Time { return f.now }
	return f
}

func (f *authFixture) signUp(t *testing.T, userID, email string) {
	t.Helper()
	_, err := f.svc.SignUp(context.Background(), &dto.SignUpRequest{
		UserID:   userID,
		Password: "Aa@123456",
		Email:    email,
		FullName: "Test " + userID,
	})
	require.NoError(t, err)
}

func (f *authFixture) tokenRows(t *testing.T, userID string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Unscoped().Model(&models.AuthToken{}).Where("user_id = ?", userID).Count(&n).Error)
	return n
}

func TestSignUpCreatesUserAndProfile(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	user, err := f.svc.SignUp(ctx, &dto.SignUpRequest{UserID: "alice", Password: "Aa@123456", Email: "alice@example.com", FullName: "Alice"})
	require.NoError(t, err)
	require.Equal(t, "alice", user.UserID)
	require.Equal(t, "Alice", user.UserName)
	require.Equal(t, models.RoleUser, user.Role)

	var profile models.UserProfile
	require.NoError(t, f.db.Where("user_id = ?", "alice").First(&profile).Error)
	require.Equal(t, "Alice", profile.FullName)

	_, err = f.svc.SignUp(ctx, &dto.SignUpRequest{UserID: "alice2", Password: "Aa@123456", Email: "alice@example.com", FullName: "A"})
	require.True(t, apperrors.Is(err, apperrors.KindBadRequest))
}

func TestSignInThenCurrentUser(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.signUp(t, "alice", "alice@example.com")

	pair, err := f.svc.SignIn(ctx, "alice", "Aa@123456")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	me, err := f.svc.CurrentUser(ctx, pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "alice", me.UserID)
	require.Equal(t, "alice@example.com", me.Email)
	require.Equal(t, "Test alice", me.UserName)
}

func TestSignInBadCredentials(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.signUp(t, "alice", "alice@example.com")

	_, errUnknown := f.svc.SignIn(ctx, "nobody", "Aa@123456")
	_, errWrong := f.svc.SignIn(ctx, "alice", "wrong-password")

	for _, err := range []error{errUnknown, errWrong} {
		require.True(t, apperrors.Is(err, apperrors.KindUnauthenticated))
		require.Equal(t, "credentials error", err.Error())
	}
}

func TestSingleTokenRowPerUser(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.signUp(t, "alice", "alice@example.com")

	var last *dto.TokenPair
	for i := 0; i < 3; i++ {
		pair, err := f.svc.SignIn(ctx, "alice", "Aa@123456")
		require.NoError(t, err)
		require.Equal(t, int64(1), f.tokenRows(t, "alice"))
		last = pair
	}

	var row models.AuthToken
	require.NoError(t, f.db.Where("user_id = ?", "alice").First(&row).Error)
	require.Equal(t, last.RefreshToken, row.Token)
}

func TestSignOutInvalidatesAccessToken(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.signUp(t, "alice", "alice@example.com")

	pair, err := f.svc.SignIn(ctx, "alice", "Aa@123456")
	require.NoError(t, err)

	require.NoError(t, f.svc.SignOut(ctx, "alice"))
	require.Equal(t, int64(0), f.tokenRows(t, "alice"))

	_, err = f.svc.CurrentUser(ctx, pair.AccessToken)
	require.True(t, apperrors.Is(err, apperrors.KindUnauthenticated))

	err = f.svc.SignOut(ctx, "alice")
	require.True(t, apperrors.Is(err, apperrors.KindUnauthenticated))
	err = f.svc.SignOut(ctx, "nobody")
	require.True(t, apperrors.Is(err, apperrors.KindUnauthenticated))
}

func TestCurrentUserRejectsBadTokens(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.signUp(t, "alice", "alice@example.com")

	pair, err := f.svc.SignIn(ctx, "alice", "Aa@123456")
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage":       "garbage",
		"refresh token": pair.RefreshToken,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.CurrentUser(ctx, token)
			require.True(t, apperrors.Is(err, apperrors.KindUnauthenticated))
		})
	}

	f.now = f.now.Add(16 * time.Minute)
	_, err = f.svc.CurrentUser(ctx, pair.AccessToken)
	require.True(t, apperrors.Is(err, apperrors.KindUnauthenticated))
}

func TestRefreshKeepsRefreshToken(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.signUp(t, "alice", "alice@example.com")

	pair, err := f.svc.SignIn(ctx, "alice", "Aa@123456")
	require.NoError(t, err)

	f.now = f.now.Add(time.Hour)
	refreshed, err := f.svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, pair.RefreshToken, refreshed.RefreshToken)

	me, err := f.svc.CurrentUser(ctx, refreshed.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "alice", me.UserID)

	_, err = f.svc.Refresh(ctx, "unknown")
	require.True(t, apperrors.Is(err, apperrors.KindUnauthenticated))
}

func TestRefreshExpiredDeletesRow(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.signUp(t, "alice", "alice@example.com")

	pair, err := f.svc.SignIn(ctx, "alice", "Aa@123456")
	require.NoError(t, err)

	f.now = f.now.Add(25 * time.Hour)
	_, err = f.svc.Refresh(ctx, pair.RefreshToken)
	require.True(t, apperrors.Is(err, apperrors.KindUnauthenticated))
	require.Equal(t, int64(0), f.tokenRows(t, "alice"))

	_, err = f.svc.Refresh(ctx, pair.RefreshToken)
	require.True(t, apperrors.Is(err, apperrors.KindUnauthenticated))
}

func TestOAuthSignInProvisionsUser(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.google.claims = &IdentityClaims{Subject: "g-1", Email: "bob@example.com", EmailVerified: true, Name: "Bob"}

	authURL, err := f.svc.GoogleAuthURL("https://app.example.com/callback")
	require.NoError(t, err)
	require.Contains(t, authURL, "redirect_uri=https://app.example.com/callback")

	state, err := f.svc.issuer.IssueState("https://app.example.com/callback")
	require.NoError(t, err)

	pair, err := f.svc.OAuthSignIn(ctx, ProviderGoogle, "code-1", state, "https://app.example.com/callback")
	require.NoError(t, err)
	require.Equal(t, "code-1", f.google.gotCode)

	me, err := f.svc.CurrentUser(ctx, pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "bob@example.com", me.Email)
	require.Equal(t, "Bob", me.UserName)
	require.Len(t, me.UserID, 36)

	var user models.User
	require.NoError(t, f.db.Where("email = ?", "bob@example.com").First(&user).Error)
	require.Equal(t, ProviderGoogle, user.AuthProvider)

	// A second sign-in reuses the provisioned account.
	_, err = f.svc.OAuthSignIn(ctx, ProviderGoogle, "code-2", state, "")
	require.NoError(t, err)
	require.Equal(t, "https://app.example.com/callback", f.google.gotURI)
	var count int64
	require.NoError(t, f.db.Model(&models.User{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestOAuthSignInFailures(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	state, err := f.svc.issuer.IssueState("https://app.example.com/callback")
	require.NoError(t, err)

	_, err = f.svc.OAuthSignIn(ctx, "facebook", "code", state, "")
	require.True(t, apperrors.Is(err, apperrors.KindBadRequest))

	_, err = f.svc.OAuthSignIn(ctx, ProviderGoogle, "code", "forged", "")
	require.True(t, apperrors.Is(err, apperrors.KindService))

	_, err = f.svc.OAuthSignIn(ctx, ProviderGoogle, "code", state, "https://other.example.com")
	require.True(t, apperrors.Is(err, apperrors.KindService))

	f.google.err = errors.New("exchange failed")
	_, err = f.svc.OAuthSignIn(ctx, ProviderGoogle, "code", state, "")
	require.True(t, apperrors.Is(err, apperrors.KindService))

	f.google.err = nil
	f.google.claims = &IdentityClaims{Email: "carol@example.com", EmailVerified: false}
	_, err = f.svc.OAuthSignIn(ctx, ProviderGoogle, "code", state, "")
	require.True(t, apperrors.Is(err, apperrors.KindUnauthenticated))
}
