package services

import (
	"context"
	"time"

	"github.com/ahmetcoskunkizilkaya/billsplit/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TokenStore keeps the single live refresh token of each user. Rows are
// hard-deleted; a revoked token must not be found again.
type TokenStore struct {
	db *gorm.DB
}

func NewTokenStore(db *gorm.DB) *TokenStore {
	return &TokenStore{db: db}
}

// Replace makes token the only row of userID. The unique index on user_id
// turns concurrent replaces into updates of the same row.
func (s *TokenStore) Replace(ctx context.Context, userID, token string, expiresAt time.Time) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"token", "expires_at", "updated_at"}),
	}).Create(&models.AuthToken{
		ID:        uuid.New(),
		UserID:    userID,
		Token:     token,
		ExpiresAt: expiresAt,
	}).Error
}

// FindByToken returns gorm.ErrRecordNotFound when no row holds token.
func (s *TokenStore) FindByToken(ctx context.Context, token string) (*models.AuthToken, error) {
	var row models.AuthToken
	if err := s.db.WithContext(ctx).Where("token = ?", token).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (s *TokenStore) HasSession(ctx context.Context, userID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.AuthToken{}).Where("user_id = ?", userID).Count(&count).Error
	return count > 0, err
}

func (s *TokenStore) DeleteForUser(ctx context.Context, userID string) error {
	return s.db.WithContext(ctx).Unscoped().Where("user_id = ?", userID).Delete(&models.AuthToken{}).Error
}

func (s *TokenStore) Delete(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Unscoped().Where("id = ?", id).Delete(&models.AuthToken{}).Error
}
