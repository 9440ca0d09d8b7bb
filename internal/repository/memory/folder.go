package memory

import (
	"cmp"
	"context"
	"slices"

	"portal/internal/domain"
	models "portal/internal/domain/models/docsystem"
	docsysRepo "portal/internal/domain/repositories/docsystem"
)

// FolderRepository implements docsysRepo.FolderRepository over a Store
type FolderRepository struct {
	store *Store
}

// NewFolderRepository creates a folder repository
func NewFolderRepository(store *Store) docsysRepo.FolderRepository {
	return &FolderRepository{store: store}
}

// Create inserts a folder
func (r *FolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	return r.store.do(ctx, func() error {
		if folder.ID == "" {
			return domain.NewValidation("folder id is required")
		}
		if _, ok := r.store.folders[folder.ID]; ok {
			return domain.NewValidation("folder %s already exists", folder.ID)
		}
		if folder.ParentID != nil {
			if _, ok := r.store.folders[*folder.ParentID]; !ok {
				return domain.NewNotFound("folder", *folder.ParentID)
			}
		}
		r.store.folders[folder.ID] = cloneFolder(*folder)
		return nil
	})
}

// GetByID retrieves a folder by ID
func (r *FolderRepository) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	var out models.Folder
	err := r.store.do(ctx, func() error {
		folder, ok := r.store.folders[id]
		if !ok {
			return domain.NewNotFound("folder", id)
		}
		out = cloneFolder(folder)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Update persists name and parent changes
func (r *FolderRepository) Update(ctx context.Context, folder *models.Folder) error {
	return r.store.do(ctx, func() error {
		existing, ok := r.store.folders[folder.ID]
		if !ok {
			return domain.NewNotFound("folder", folder.ID)
		}
		if folder.ParentID != nil {
			if _, ok := r.store.folders[*folder.ParentID]; !ok {
				return domain.NewNotFound("folder", *folder.ParentID)
			}
		}
		existing.Name = folder.Name
		existing.ParentID = clonePtr(folder.ParentID)
		existing.UpdatedAt = folder.UpdatedAt
		r.store.folders[folder.ID] = existing
		return nil
	})
}

// Delete removes folders. Like the foreign keys in postgres, rows that
// reference a removed folder (child folders, documents, their shares) go with it.
func (r *FolderRepository) Delete(ctx context.Context, ids []string) error {
	return r.store.do(ctx, func() error {
		queue := slices.Clone(ids)
		removed := make(map[string]bool)
		for len(queue) > 0 {
			id := queue[0]
			queue = queue[1:]
			if removed[id] {
				continue
			}
			if _, ok := r.store.folders[id]; !ok {
				continue
			}
			removed[id] = true
			delete(r.store.folders, id)
			for childID, child := range r.store.folders {
				if child.ParentID != nil && *child.ParentID == id {
					queue = append(queue, childID)
				}
			}
		}

		var docIDs []string
		for docID, doc := range r.store.documents {
			if doc.FolderID != nil && removed[*doc.FolderID] {
				docIDs = append(docIDs, docID)
			}
		}
		r.store.deleteDocuments(docIDs)
		return nil
	})
}

// ListAll returns every folder
func (r *FolderRepository) ListAll(ctx context.Context) ([]models.Folder, error) {
	var out []models.Folder
	err := r.store.do(ctx, func() error {
		out = make([]models.Folder, 0, len(r.store.folders))
		for _, folder := range r.store.folders {
			out = append(out, cloneFolder(folder))
		}
		return nil
	})
	sortFolders(out)
	return out, err
}

// ListChildren lists immediate child folders (nil = root level)
func (r *FolderRepository) ListChildren(ctx context.Context, parentID *string) ([]models.Folder, error) {
	out := []models.Folder{}
	err := r.store.do(ctx, func() error {
		for _, folder := range r.store.folders {
			if equalPtr(folder.ParentID, parentID) {
				out = append(out, cloneFolder(folder))
			}
		}
		return nil
	})
	sortFolders(out)
	return out, err
}

// ListDescendantIDs returns every folder below id (breadth first); empty for unknown ids
func (r *FolderRepository) ListDescendantIDs(ctx context.Context, id string) ([]string, error) {
	out := []string{}
	err := r.store.do(ctx, func() error {
		children := make(map[string][]string)
		for _, folder := range r.store.folders {
			if folder.ParentID != nil {
				children[*folder.ParentID] = append(children[*folder.ParentID], folder.ID)
			}
		}
		seen := map[string]bool{id: true}
		queue := []string{id}
		for len(queue) > 0 {
			current := queue[0]
			queue = queue[1:]
			for _, child := range children[current] {
				if seen[child] {
					continue
				}
				seen[child] = true
				out = append(out, child)
				queue = append(queue, child)
			}
		}
		return nil
	})
	return out, err
}

// ListAncestorIDs returns the parent chain of id, nearest first; empty for unknown ids
func (r *FolderRepository) ListAncestorIDs(ctx context.Context, id string) ([]string, error) {
	out := []string{}
	err := r.store.do(ctx, func() error {
		folder, ok := r.store.folders[id]
		if !ok {
			return nil
		}
		seen := map[string]bool{id: true}
		for folder.ParentID != nil && !seen[*folder.ParentID] {
			parentID := *folder.ParentID
			seen[parentID] = true
			parent, ok := r.store.folders[parentID]
			if !ok {
				break
			}
			out = append(out, parentID)
			folder = parent
		}
		return nil
	})
	return out, err
}

// LockHierarchy is a no-op: ExecTx already holds the store lock
func (r *FolderRepository) LockHierarchy(ctx context.Context) error {
	if !r.store.inTx(ctx) {
		return domain.NewValidation("hierarchy lock requires a transaction")
	}
	return nil
}

func sortFolders(folders []models.Folder) {
	slices.SortFunc(folders, func(a, b models.Folder) int {
		return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), cmp.Compare(a.ID, b.ID))
	})
}

func cloneFolder(f models.Folder) models.Folder {
	f.ParentID = clonePtr(f.ParentID)
	return f
}

func clonePtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func equalPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
