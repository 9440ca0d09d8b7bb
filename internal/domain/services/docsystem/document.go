package docsystem

import (
	"context"
	"io"

	"portal/internal/domain/models/docsystem"
)

// DocumentService owns document metadata. Content bytes live in a BlobStore.
type DocumentService interface {
	// CreateDocument records metadata for content stored elsewhere
	CreateDocument(ctx context.Context, req *CreateDocumentRequest) (*docsystem.Document, error)

	// UploadDocument stores content in the blob store and records its metadata
	UploadDocument(ctx context.Context, req *UploadDocumentRequest, content io.Reader) (*docsystem.Document, error)

	// GetDocument retrieves document metadata
	GetDocument(ctx context.Context, id string) (*docsystem.Document, error)

	// ListDocuments returns all document metadata
	ListDocuments(ctx context.Context) ([]docsystem.Document, error)

	// OpenContent returns metadata and a reader over the stored bytes; caller closes the reader
	OpenContent(ctx context.Context, id string) (*docsystem.Document, io.ReadCloser, error)

	// RenameDocument changes the display title
	RenameDocument(ctx context.Context, id, title string) (*docsystem.Document, error)

	// SetFolder moves a document into folderID (nil = unfiled)
	SetFolder(ctx context.Context, id string, folderID *string) (*docsystem.Document, error)

	// DeleteDocument deletes the document and all its shares
	DeleteDocument(ctx context.Context, id string) error
}

// CreateDocumentRequest represents a metadata-only document creation
type CreateDocumentRequest struct {
	ID           string  `json:"-"` // optional caller-generated id (upload path)
	Title        string  `json:"title"`
	OriginalName string  `json:"original_name"`
	MimeType     string  `json:"mime_type"`
	SizeBytes    int64   `json:"size_bytes"`
	FolderID     *string `json:"folder_id,omitempty"`
}

// UploadDocumentRequest describes an uploaded file
type UploadDocumentRequest struct {
	Title    string  // defaults to the filename stem
	Filename string  // original client filename
	FolderID *string // nil = unfiled
}

// BlobStore holds raw document bytes keyed by document id
type BlobStore interface {
	// Put stores content under key and reports its size and sniffed MIME type
	Put(ctx context.Context, key string, content io.Reader) (*BlobInfo, error)

	// Open returns a reader over stored content; missing keys yield ErrNotFound
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes content; deleting a missing key is not an error
	Delete(ctx context.Context, key string) error
}

// BlobInfo is what the blob store learned while storing content
type BlobInfo struct {
	SizeBytes int64
	MimeType  string
}
