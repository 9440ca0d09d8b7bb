package docsystem

import (
	"context"

	"portal/internal/domain/models/docsystem"
)

// FolderService owns the folder forest and its invariants
type FolderService interface {
	// CreateFolder creates a folder at root or under an existing parent
	CreateFolder(ctx context.Context, req *CreateFolderRequest) (*docsystem.Folder, error)

	// GetFolder retrieves a folder by ID
	GetFolder(ctx context.Context, id string) (*docsystem.Folder, error)

	// ListFolders returns every folder (flat)
	ListFolders(ctx context.Context) ([]docsystem.Folder, error)

	// RenameFolder changes a folder's display name
	RenameFolder(ctx context.Context, id, name string) (*docsystem.Folder, error)

	// SetParent moves a folder under parentID (nil = root).
	// Fails with CycleError when parentID is the folder or one of its descendants.
	SetParent(ctx context.Context, id string, parentID *string) (*docsystem.Folder, error)

	// DeleteFolder deletes the folder, every descendant folder, every document
	// inside them and all shares of those documents. Irreversible.
	DeleteFolder(ctx context.Context, id string) (*DeleteFolderResult, error)
}

// CreateFolderRequest represents a folder creation request
type CreateFolderRequest struct {
	Name     string  `json:"name"`
	ParentID *string `json:"parent_id,omitempty"` // null for root
}

// DeleteFolderResult reports everything a folder delete removed
type DeleteFolderResult struct {
	FolderIDs   []string `json:"folder_ids"`
	DocumentIDs []string `json:"document_ids"`
}
