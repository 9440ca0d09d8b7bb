package memory

import (
	"cmp"
	"context"
	"slices"

	"portal/internal/domain"
	models "portal/internal/domain/models/docsystem"
	docsysRepo "portal/internal/domain/repositories/docsystem"
)

// ShareRepository implements docsysRepo.ShareRepository over a Store
type ShareRepository struct {
	store *Store
}

// NewShareRepository creates a share repository
func NewShareRepository(store *Store) docsysRepo.ShareRepository {
	return &ShareRepository{store: store}
}

// Upsert inserts a share or replaces the existing (document, grantee) row
func (r *ShareRepository) Upsert(ctx context.Context, share *models.Share) error {
	return r.store.do(ctx, func() error {
		if _, ok := r.store.documents[share.DocumentID]; !ok {
			return domain.NewNotFound("document", share.DocumentID)
		}
		key := shareKey{documentID: share.DocumentID, granteeID: share.GranteeID}
		if existing, ok := r.store.shares[key]; ok {
			share.CreatedAt = existing.CreatedAt
		}
		r.store.shares[key] = *share
		return nil
	})
}

// Delete removes one share and reports whether it existed
func (r *ShareRepository) Delete(ctx context.Context, documentID, granteeID string) (bool, error) {
	var existed bool
	err := r.store.do(ctx, func() error {
		key := shareKey{documentID: documentID, granteeID: granteeID}
		_, existed = r.store.shares[key]
		delete(r.store.shares, key)
		return nil
	})
	return existed, err
}

// DeleteByDocuments removes every share of the given documents
func (r *ShareRepository) DeleteByDocuments(ctx context.Context, documentIDs []string) error {
	return r.store.do(ctx, func() error {
		for key := range r.store.shares {
			if slices.Contains(documentIDs, key.documentID) {
				delete(r.store.shares, key)
			}
		}
		return nil
	})
}

// ListByDocument returns all grantees of a document
func (r *ShareRepository) ListByDocument(ctx context.Context, documentID string) ([]models.Share, error) {
	return r.list(ctx, func(key shareKey) bool { return key.documentID == documentID })
}

// ListByGrantee returns every share held by a grantee
func (r *ShareRepository) ListByGrantee(ctx context.Context, granteeID string) ([]models.Share, error) {
	return r.list(ctx, func(key shareKey) bool { return key.granteeID == granteeID })
}

func (r *ShareRepository) list(ctx context.Context, match func(shareKey) bool) ([]models.Share, error) {
	out := []models.Share{}
	err := r.store.do(ctx, func() error {
		for key, share := range r.store.shares {
			if match(key) {
				out = append(out, share)
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b models.Share) int {
		return cmp.Or(
			a.CreatedAt.Compare(b.CreatedAt),
			cmp.Compare(a.DocumentID, b.DocumentID),
			cmp.Compare(a.GranteeID, b.GranteeID),
		)
	})
	return out, err
}
