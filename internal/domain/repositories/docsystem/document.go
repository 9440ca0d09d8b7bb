package docsystem

import (
	"context"

	"portal/internal/domain/models/docsystem"
)

// DocumentRepository defines data access operations for document metadata
type DocumentRepository interface {
	// Create inserts a document with a caller-generated ID
	Create(ctx context.Context, doc *docsystem.Document) error

	// GetByID retrieves a document by ID
	GetByID(ctx context.Context, id string) (*docsystem.Document, error)

	// Update persists title and folder changes
	Update(ctx context.Context, doc *docsystem.Document) error

	// Delete removes documents by ID. Missing ids are ignored.
	Delete(ctx context.Context, ids []string) error

	// ListAll returns all document metadata
	ListAll(ctx context.Context) ([]docsystem.Document, error)

	// ListByFolders returns documents placed in any of the given folders
	ListByFolders(ctx context.Context, folderIDs []string) ([]docsystem.Document, error)
}
