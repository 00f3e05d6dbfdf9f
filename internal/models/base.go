package models

import (
	"time"

	"gorm.io/gorm"
)

// Audit holds the bookkeeping columns shared by every table. The *By fields
// store the external user_id of the acting user.
type Audit struct {
	CreatedAt time.Time      `json:"created_at"`
	CreatedBy *string        `gorm:"size:255" json:"created_by"`
	UpdatedAt time.Time      `json:"updated_at"`
	UpdatedBy *string        `gorm:"size:255" json:"updated_by"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	DeletedBy *string        `gorm:"size:255" json:"-"`
}
