package memory

import (
	"cmp"
	"context"
	"slices"

	models "portal/internal/domain/models/docsystem"
	docsysRepo "portal/internal/domain/repositories/docsystem"
)

// Directory is an in-memory user directory
type Directory struct {
	store *Store
}

// NewDirectory creates a directory over store
func NewDirectory(store *Store) *Directory {
	return &Directory{store: store}
}

var _ docsysRepo.UserDirectory = (*Directory)(nil)

// Put adds or replaces users
func (d *Directory) Put(ctx context.Context, users ...models.Grantee) error {
	return d.store.do(ctx, func() error {
		for _, u := range users {
			d.store.users[u.ID] = u
		}
		return nil
	})
}

// Upsert adds or replaces one user
func (d *Directory) Upsert(ctx context.Context, user models.Grantee) error {
	return d.Put(ctx, user)
}

// ListByRole returns every user with role, ordered by label
func (d *Directory) ListByRole(ctx context.Context, role models.Role) ([]models.Grantee, error) {
	out := []models.Grantee{}
	err := d.store.do(ctx, func() error {
		for _, u := range d.store.users {
			if u.Role == role {
				out = append(out, u)
			}
		}
		return nil
	})
	sortGrantees(out)
	return out, err
}

// GetByIDs returns the users that exist among ids
func (d *Directory) GetByIDs(ctx context.Context, ids []string) ([]models.Grantee, error) {
	out := []models.Grantee{}
	err := d.store.do(ctx, func() error {
		for _, id := range ids {
			if u, ok := d.store.users[id]; ok {
				out = append(out, u)
			}
		}
		return nil
	})
	sortGrantees(out)
	return out, err
}

func sortGrantees(users []models.Grantee) {
	slices.SortFunc(users, func(a, b models.Grantee) int {
		return cmp.Or(cmp.Compare(a.Label, b.Label), cmp.Compare(a.ID, b.ID))
	})
}
