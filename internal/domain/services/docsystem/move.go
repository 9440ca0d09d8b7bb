package docsystem

import (
	"context"

	"portal/internal/domain/models/docsystem"
)

// MoveService gates "move to folder" before delegating to the owning store
type MoveService interface {
	// FolderMoveTargets lists destinations for a folder, disabling the folder and its descendants
	FolderMoveTargets(ctx context.Context, folderID string) (*docsystem.MoveTargets, error)

	// DocumentMoveTargets lists destinations for a document (every folder is allowed)
	DocumentMoveTargets(ctx context.Context, documentID string) (*docsystem.MoveTargets, error)

	// MoveFolder relocates a folder; store errors are returned unchanged
	MoveFolder(ctx context.Context, folderID string, targetID *string) (*docsystem.Folder, error)

	// MoveDocument relocates a document; store errors are returned unchanged
	MoveDocument(ctx context.Context, documentID string, targetID *string) (*docsystem.Document, error)
}
