package services

import (
	"context"
	"errors"
	"log/slog"
	"path"
	"time"

	"github.com/ahmetcoskunkizilkaya/billsplit/internal/apperrors"
	"github.com/ahmetcoskunkizilkaya/billsplit/internal/dto"
	"github.com/ahmetcoskunkizilkaya/billsplit/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/billsplit/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const uploadPrefix = "bill-uploads/"

// ObjectStore is the object storage the file service writes to.
type ObjectStore interface {
	Upload(ctx context.Context, key, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, objectURL string) error
	PresignURL(ctx context.Context, objectURL string, ttl time.Duration) (string, error)
}

type FileService struct {
	db         *gorm.DB
	store      ObjectStore
	presignTTL time.Duration
	metrics    metrics.Recorder
}

func NewFileService(db *gorm.DB, store ObjectStore, presignTTL time.Duration, rec metrics.Recorder) *FileService {
	if rec == nil {
		rec = metrics.Nop
	}
	return &FileService{db: db, store: store, presignTTL: presignTTL, metrics: rec}
}

func (s *FileService) Upload(ctx context.Context, actor *dto.CurrentUser, data []byte, filename, contentType string) (*dto.FileResponse, error) {
	filename = path.Base(filename)
	key := uploadPrefix + uuid.NewString() + "-" + filename

	objectURL, err := s.store.Upload(ctx, key, contentType, data)
	if err != nil {
		s.metrics.FileUploaded(false)
		return nil, apperrors.Service("", err)
	}

	file := models.FileSystem{
		ID:       uuid.New(),
		FileName: filename,
		FilePath: objectURL,
		FileType: contentType,
		Audit:    models.Audit{CreatedBy: actorID(actor)},
	}
	if err := s.db.WithContext(ctx).Create(&file).Error; err != nil {
		s.metrics.FileUploaded(false)
		if delErr := s.store.Delete(ctx, objectURL); delErr != nil {
			slog.Error("failed to remove orphaned upload", "error", delErr, "file_path", objectURL)
		}
		return nil, apperrors.Wrap(err)
	}

	s.metrics.FileUploaded(true)
	return &dto.FileResponse{
		ID:       file.ID,
		FileName: file.FileName,
		FilePath: file.FilePath,
		FileType: file.FileType,
	}, nil
}

// PresignedURL fails NotFound for unknown ids. A presign failure leaves FileURL nil.
func (s *FileService) PresignedURL(ctx context.Context, fileID uuid.UUID) (*dto.FileURLResponse, error) {
	file, err := s.find(ctx, fileID)
	if err != nil {
		return nil, err
	}
	return &dto.FileURLResponse{
		FileName: file.FileName,
		FileType: file.FileType,
		FileURL:  s.presign(ctx, file),
	}, nil
}

// ResolveURL is PresignedURL for callers that only want the URL.
func (s *FileService) ResolveURL(ctx context.Context, fileID uuid.UUID) *string {
	file, err := s.find(ctx, fileID)
	if err != nil {
		return nil
	}
	return s.presign(ctx, file)
}

func (s *FileService) Delete(ctx context.Context, fileID uuid.UUID) error {
	file, err := s.find(ctx, fileID)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, file.FilePath); err != nil {
		return apperrors.Service("", err)
	}
	if err := s.db.WithContext(ctx).Delete(file).Error; err != nil {
		return apperrors.Wrap(err)
	}
	return nil
}

func (s *FileService) find(ctx context.Context, fileID uuid.UUID) (*models.FileSystem, error) {
	var file models.FileSystem
	err := s.db.WithContext(ctx).Where("id = ?", fileID).First(&file).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("")
	}
	if err != nil {
		return nil, apperrors.Wrap(err)
	}
	return &file, nil
}

func (s *FileService) presign(ctx context.Context, file *models.FileSystem) *string {
	u, err := s.store.PresignURL(ctx, file.FilePath, s.presignTTL)
	if err != nil {
		slog.Warn("failed to presign file url", "error", err, "file_id", file.ID)
		return nil
	}
	return &u
}
