package docsystem

import (
	"path/filepath"
	"strings"
	"time"
)

type Document struct {
	ID           string    `json:"id" db:"id"`
	Title        string    `json:"title" db:"title"`
	OriginalName string    `json:"original_name" db:"original_name"` // immutable after upload
	MimeType     string    `json:"mime_type" db:"mime_type"`         // immutable after upload
	SizeBytes    int64     `json:"size_bytes" db:"size_bytes"`       // immutable after upload
	FolderID     *string   `json:"folder_id" db:"folder_id"`         // NULL = unfiled
	UploadedAt   time.Time `json:"uploaded_at" db:"uploaded_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// TitleFromFilename returns the filename without directory and extension.
// "reports/Q3 statement.pdf" -> "Q3 statement". Dotfiles keep their name.
func TitleFromFilename(name string) string {
	base := filepath.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if base == "." || base == "/" {
		return ""
	}
	ext := filepath.Ext(base)
	if ext == base {
		return base
	}
	return strings.TrimSpace(strings.TrimSuffix(base, ext))
}
