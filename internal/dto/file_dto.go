package dto

import "github.com/google/uuid"

type FileResponse struct {
	ID       uuid.UUID `json:"id"`
	FileName string    `json:"file_name"`
	FilePath string    `json:"file_path"`
	FileType string    `json:"file_type"`
}

// FileURLResponse carries a short-lived download URL. FileURL is null when
// presigning failed.
type FileURLResponse struct {
	FileName string  `json:"file_name"`
	FileType string  `json:"file_type"`
	FileURL  *string `json:"file_url"`
}
