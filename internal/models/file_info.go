package models

import "time"

// Import file states.
const (
	FileStatusUploaded = "uploaded"
	FileStatusImported = "imported"
	FileStatusError    = "error"
)

// FileInfo describes an uploaded import file.
type FileInfo struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploadedAt"`
	Status     string    `json:"status"`
}
