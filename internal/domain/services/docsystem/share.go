package docsystem

import (
	"context"

	"portal/internal/domain/models/docsystem"
)

// ShareService grants and revokes document access per grantee
type ShareService interface {
	// Grant shares a document with each grantee. Re-granting an existing
	// grantee replaces its role and target; no duplicate rows are created.
	Grant(ctx context.Context, documentID string, granteeIDs []string, access docsystem.Access) ([]docsystem.Share, error)

	// Revoke removes a grantee's share. Revoking a missing share is a no-op.
	Revoke(ctx context.Context, documentID, granteeID string) error

	// ListShares returns every grantee of a document
	ListShares(ctx context.Context, documentID string) ([]docsystem.Share, error)

	// ListShareCandidates returns users with role that do not yet have access to the document
	ListShareCandidates(ctx context.Context, documentID string, role docsystem.Role) ([]docsystem.Grantee, error)

	// GetShare returns the grantee's share of a document, or NotFoundError
	GetShare(ctx context.Context, documentID, granteeID string) (*docsystem.Share, error)

	// ListSharedWith returns documents shared with a grantee. For investor
	// shares only those under target are returned; empty target returns all.
	ListSharedWith(ctx context.Context, granteeID string, target docsystem.ShareTarget) ([]docsystem.SharedDocument, error)
}
