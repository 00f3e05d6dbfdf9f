package models

import "github.com/google/uuid"

// FileSystem is the metadata of an object uploaded to storage.
type FileSystem struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FileName string    `gorm:"size:255;not null" json:"file_name"`
	FilePath string    `gorm:"type:text;not null" json:"file_path"`
	FileType string    `gorm:"size:255;not null" json:"file_type"`
	Audit
}
