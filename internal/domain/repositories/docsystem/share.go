package docsystem

import (
	"context"

	"portal/internal/domain/models/docsystem"
)

// ShareRepository stores (document, grantee) access rows
type ShareRepository interface {
	// Upsert inserts the share or replaces role, target, label and email of
	// the existing (document, grantee) row
	Upsert(ctx context.Context, share *docsystem.Share) error

	// Delete removes one share; reports whether a row existed
	Delete(ctx context.Context, documentID, granteeID string) (bool, error)

	// DeleteByDocuments removes every share of the given documents
	DeleteByDocuments(ctx context.Context, documentIDs []string) error

	// ListByDocument returns all grantees of a document
	ListByDocument(ctx context.Context, documentID string) ([]docsystem.Share, error)

	// ListByGrantee returns every share held by a grantee
	ListByGrantee(ctx context.Context, granteeID string) ([]docsystem.Share, error)
}

// UserDirectory supplies share candidates. Owned by the user/auth system.
type UserDirectory interface {
	// ListByRole returns every user with the given role
	ListByRole(ctx context.Context, role docsystem.Role) ([]docsystem.Grantee, error)

	// GetByIDs returns the users that exist among ids
	GetByIDs(ctx context.Context, ids []string) ([]docsystem.Grantee, error)
}
