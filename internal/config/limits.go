package config

const (
	// MaxFolderNameLength is the maximum length for folder names.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255).
	MaxFolderNameLength = 255

	// MaxDocumentTitleLength is the maximum length for document titles.
	// Same as folder names for consistency.
	MaxDocumentTitleLength = 255

	// MaxOriginalNameLength caps the stored client filename.
	MaxOriginalNameLength = 255

	// MaxGranteesPerGrant bounds a single share request.
	MaxGranteesPerGrant = 500

	// DefaultMaxUploadBytes is the upload cap when MAX_UPLOAD_BYTES is unset (50 MiB).
	DefaultMaxUploadBytes int64 = 50 << 20
)
