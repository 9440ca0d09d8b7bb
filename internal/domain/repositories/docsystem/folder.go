package docsystem

import (
	"context"

	"portal/internal/domain/models/docsystem"
)

// FolderRepository defines data access operations for folders
type FolderRepository interface {
	// Create inserts a folder with a caller-generated ID
	Create(ctx context.Context, folder *docsystem.Folder) error

	// GetByID retrieves a folder by ID
	GetByID(ctx context.Context, id string) (*docsystem.Folder, error)

	// Update persists name and parent changes
	Update(ctx context.Context, folder *docsystem.Folder) error

	// Delete removes the given folders. Missing ids are ignored.
	Delete(ctx context.Context, ids []string) error

	// ListAll returns every folder (flat list)
	ListAll(ctx context.Context) ([]docsystem.Folder, error)

	// ListChildren lists immediate child folders (nil = root level)
	ListChildren(ctx context.Context, parentID *string) ([]docsystem.Folder, error)

	// ListDescendantIDs returns all folders below id, not including id.
	// Terminates on corrupted (cyclic) data.
	ListDescendantIDs(ctx context.Context, id string) ([]string, error)

	// ListAncestorIDs returns the parent chain of id, nearest first.
	// Terminates on corrupted (cyclic) data.
	ListAncestorIDs(ctx context.Context, id string) ([]string, error)

	// LockHierarchy serializes structural mutations for the rest of the
	// current transaction. Must be called inside TransactionManager.ExecTx.
	LockHierarchy(ctx context.Context) error
}
