package docsystem

import (
	"context"

	"portal/internal/domain/models/docsystem"
)

// TreeOptions controls tree composition
type TreeOptions struct {
	// Query filters by case-insensitive substring; empty shows everything
	Query string
	// CurrentFolderID is the folder the user is looking at (nil = root)
	CurrentFolderID *string
}

// TreeService builds the renderable folder/document tree
type TreeService interface {
	// GetTree composes the tree from a snapshot of current folders and documents
	GetTree(ctx context.Context, opts TreeOptions) (*docsystem.TreeView, error)
}
