package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/billsplit/internal/apperrors"
	"github.com/ahmetcoskunkizilkaya/billsplit/internal/dto"
	"github.com/ahmetcoskunkizilkaya/billsplit/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/billsplit/internal/models"
	"github.com/ahmetcoskunkizilkaya/billsplit/internal/security"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const ProviderGoogle = "google"

var (
	ErrInvalidCredentials = apperrors.Unauthenticated("credentials error")
	ErrUserExists         = apperrors.BadRequest("User ID or email already registered")
	ErrUnsupportedOAuth   = apperrors.BadRequest("Unsupported OAuth provider")
)

type AuthService struct {
	db      *gorm.DB
	tokens  *TokenStore
	issuer  *security.Issuer
	google  IdentityProvider
	metrics metrics.Recorder
	now     func() time.Time
}

// NewAuthService wires the auth flows. google may be nil when Google sign-in
// is not configured.
func NewAuthService(db *gorm.DB, issuer *security.Issuer, google IdentityProvider, rec metrics.Recorder) *AuthService {
	if rec == nil {
		rec = metrics.Nop
	}
	return &AuthService{
		db:      db,
		tokens:  NewTokenStore(db),
		issuer:  issuer,
		google:  google,
		metrics: rec,
		now:     time.Now,
	}
}

func (s *AuthService) SignUp(ctx context.Context, req *dto.SignUpRequest) (*dto.CurrentUser, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("user_id = ? OR email = ?", req.UserID, req.Email).
		Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(err)
	}
	if count > 0 {
		return nil, ErrUserExists
	}

	user, err := s.createUser(ctx, req.UserID, req.Password, req.Email, req.FullName, models.ProviderLocal)
	if err != nil {
		return nil, apperrors.Wrap(err)
	}
	return currentUserView(user), nil
}

func (s *AuthService) SignIn(ctx context.Context, userID, password string) (*dto.TokenPair, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.metrics.SignIn(models.ProviderLocal, false)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, apperrors.Wrap(err)
	}

	if !security.VerifyPassword(password, user.Password) {
		s.metrics.SignIn(models.ProviderLocal, false)
		return nil, ErrInvalidCredentials
	}

	pair, err := s.generateTokenPair(ctx, &user)
	s.metrics.SignIn(models.ProviderLocal, err == nil)
	return pair, err
}

// GoogleAuthURL returns the consent page URL. The state parameter is a signed
// token bound to redirectURI.
func (s *AuthService) GoogleAuthURL(redirectURI string) (string, error) {
	if s.google == nil {
		return "", apperrors.Service("Google sign-in is not configured", nil)
	}
	state, err := s.issuer.IssueState(redirectURI)
	if err != nil {
		return "", apperrors.System("", err)
	}
	return s.google.AuthCodeURL(state, redirectURI), nil
}

func (s *AuthService) OAuthSignIn(ctx context.Context, provider, code, state, redirectURI string) (*dto.TokenPair, error) {
	if provider != ProviderGoogle {
		return nil, ErrUnsupportedOAuth
	}
	if s.google == nil {
		return nil, apperrors.Service("Google sign-in is not configured", nil)
	}

	stateURI, err := s.issuer.ParseState(state)
	if err != nil {
		s.metrics.SignIn(provider, false)
		return nil, apperrors.Service("OAuth state mismatch", err)
	}
	if redirectURI == "" {
		redirectURI = stateURI
	} else if redirectURI != stateURI {
		s.metrics.SignIn(provider, false)
		return nil, apperrors.Service("OAuth state mismatch", nil)
	}

	identity, err := s.google.Exchange(ctx, code, redirectURI)
	if err != nil {
		slog.Error("google sign-in failed", "error", err)
		s.metrics.SignIn(provider, false)
		return nil, apperrors.Service("", err)
	}
	if identity.Email == "" || !identity.EmailVerified {
		s.metrics.SignIn(provider, false)
		return nil, apperrors.Unauthenticated("")
	}

	var user models.User
	err = s.db.WithContext(ctx).Where("email = ?", identity.Email).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		fullName := identity.Name
		if fullName == "" {
			fullName = strings.Split(identity.Email, "@")[0]
		}
		created, err := s.createUser(ctx, uuid.NewString(), uuid.NewString(), identity.Email, fullName, ProviderGoogle)
		if err != nil {
			return nil, apperrors.Wrap(err)
		}
		user = *created
	case err != nil:
		return nil, apperrors.Wrap(err)
	}

	pair, err := s.generateTokenPair(ctx, &user)
	s.metrics.SignIn(provider, err == nil)
	return pair, err
}

func (s *AuthService) SignOut(ctx context.Context, userID string) error {
	if _, err := s.activeUser(ctx, userID); err != nil {
		return err
	}
	if err := s.tokens.DeleteForUser(ctx, userID); err != nil {
		return apperrors.Wrap(err)
	}
	return nil
}

// CurrentUser resolves an access token. The token is honoured only while the
// user still has a refresh-token row, so sign-out invalidates it.
func (s *AuthService) CurrentUser(ctx context.Context, accessToken string) (*dto.CurrentUser, error) {
	subject, err := s.issuer.WithClock(s.now).Parse(accessToken, security.TokenAccess)
	if err != nil {
		return nil, apperrors.New(apperrors.KindUnauthenticated, "", err)
	}

	user, err := s.activeUser(ctx, subject)
	if err != nil {
		return nil, err
	}
	return currentUserView(user), nil
}

// Refresh issues a new access token and returns it with the same refresh token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*dto.TokenPair, error) {
	row, err := s.tokens.FindByToken(ctx, refreshToken)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.metrics.TokenRefreshed(false)
		return nil, apperrors.Unauthenticated("")
	}
	if err != nil {
		return nil, apperrors.Wrap(err)
	}

	if row.Expired(s.now()) {
		s.metrics.TokenRefreshed(false)
		if err := s.tokens.Delete(ctx, row.ID); err != nil {
			return nil, apperrors.Wrap(err)
		}
		return nil, apperrors.Unauthenticated("")
	}

	access, _, err := s.issuer.WithClock(s.now).Issue(row.UserID, security.TokenAccess)
	if err != nil {
		return nil, apperrors.Wrap(err)
	}
	s.metrics.TokenRefreshed(true)
	return &dto.TokenPair{AccessToken: access, RefreshToken: refreshToken}, nil
}

// activeUser loads the user with an existing session, or fails Unauthenticated.
func (s *AuthService) activeUser(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Preload("Profile").Where("user_id = ?", userID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Unauthenticated("")
	}
	if err != nil {
		return nil, apperrors.Wrap(err)
	}

	ok, err := s.tokens.HasSession(ctx, user.UserID)
	if err != nil {
		return nil, apperrors.Wrap(err)
	}
	if !ok {
		return nil, apperrors.Unauthenticated("")
	}
	return &user, nil
}

func (s *AuthService) createUser(ctx context.Context, userID, password, email, fullName, provider string) (*models.User, error) {
	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		ID:           uuid.New(),
		UserID:       userID,
		Password:     hash,
		Email:        email,
		Role:         models.RoleUser,
		AuthProvider: provider,
		Profile: &models.UserProfile{
			ID:       uuid.New(),
			UserID:   userID,
			FullName: fullName,
		},
	}

	// Creating the user also inserts the profile association in the same transaction.
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *AuthService) generateTokenPair(ctx context.Context, user *models.User) (*dto.TokenPair, error) {
	issuer := s.issuer.WithClock(s.now)

	access, _, err := issuer.Issue(user.UserID, security.TokenAccess)
	if err != nil {
		return nil, apperrors.Wrap(err)
	}
	refresh, expiresAt, err := issuer.Issue(user.UserID, security.TokenRefresh)
	if err != nil {
		return nil, apperrors.Wrap(err)
	}

	if err := s.tokens.Replace(ctx, user.UserID, refresh, expiresAt); err != nil {
		return nil, apperrors.Service("", err)
	}
	return &dto.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func currentUserView(user *models.User) *dto.CurrentUser {
	view := &dto.CurrentUser{
		ID:     user.ID,
		UserID: user.UserID,
		Email:  user.Email,
		Role:   user.Role,
	}
	if user.Profile != nil {
		view.UserName = user.Profile.FullName
	}
	return view
}
