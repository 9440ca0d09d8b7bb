package memory

import (
	"cmp"
	"context"
	"slices"

	"portal/internal/domain"
	models "portal/internal/domain/models/docsystem"
	docsysRepo "portal/internal/domain/repositories/docsystem"
)

// DocumentRepository implements docsysRepo.DocumentRepository over a Store
type DocumentRepository struct {
	store *Store
}

// NewDocumentRepository creates a document repository
func NewDocumentRepository(store *Store) docsysRepo.DocumentRepository {
	return &DocumentRepository{store: store}
}

// Create inserts a document
func (r *DocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	return r.store.do(ctx, func() error {
		if doc.ID == "" {
			return domain.NewValidation("document id is required")
		}
		if _, ok := r.store.documents[doc.ID]; ok {
			return domain.NewValidation("document %s already exists", doc.ID)
		}
		if doc.FolderID != nil {
			if _, ok := r.store.folders[*doc.FolderID]; !ok {
				return domain.NewNotFound("folder", *doc.FolderID)
			}
		}
		r.store.documents[doc.ID] = cloneDocument(*doc)
		return nil
	})
}

// GetByID retrieves a document by ID
func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*models.Document, error) {
	var out models.Document
	err := r.store.do(ctx, func() error {
		doc, ok := r.store.documents[id]
		if !ok {
			return domain.NewNotFound("document", id)
		}
		out = cloneDocument(doc)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Update persists title and folder changes
func (r *DocumentRepository) Update(ctx context.Context, doc *models.Document) error {
	return r.store.do(ctx, func() error {
		existing, ok := r.store.documents[doc.ID]
		if !ok {
			return domain.NewNotFound("document", doc.ID)
		}
		if doc.FolderID != nil {
			if _, ok := r.store.folders[*doc.FolderID]; !ok {
				return domain.NewNotFound("folder", *doc.FolderID)
			}
		}
		existing.Title = doc.Title
		existing.FolderID = clonePtr(doc.FolderID)
		existing.UpdatedAt = doc.UpdatedAt
		r.store.documents[doc.ID] = existing
		return nil
	})
}

// Delete removes documents and their shares
func (r *DocumentRepository) Delete(ctx context.Context, ids []string) error {
	return r.store.do(ctx, func() error {
		r.store.deleteDocuments(ids)
		return nil
	})
}

// ListAll returns all document metadata
func (r *DocumentRepository) ListAll(ctx context.Context) ([]models.Document, error) {
	var out []models.Document
	err := r.store.do(ctx, func() error {
		out = make([]models.Document, 0, len(r.store.documents))
		for _, doc := range r.store.documents {
			out = append(out, cloneDocument(doc))
		}
		return nil
	})
	sortDocuments(out)
	return out, err
}

// ListByFolders returns documents placed in any of folderIDs
func (r *DocumentRepository) ListByFolders(ctx context.Context, folderIDs []string) ([]models.Document, error) {
	out := []models.Document{}
	err := r.store.do(ctx, func() error {
		for _, doc := range r.store.documents {
			if doc.FolderID != nil && slices.Contains(folderIDs, *doc.FolderID) {
				out = append(out, cloneDocument(doc))
			}
		}
		return nil
	})
	sortDocuments(out)
	return out, err
}

// deleteDocuments must be called with the store lock held
func (s *Store) deleteDocuments(ids []string) {
	for _, id := range ids {
		delete(s.documents, id)
	}
	for key := range s.shares {
		if slices.Contains(ids, key.documentID) {
			delete(s.shares, key)
		}
	}
}

func sortDocuments(docs []models.Document) {
	slices.SortFunc(docs, func(a, b models.Document) int {
		return cmp.Or(a.UploadedAt.Compare(b.UploadedAt), cmp.Compare(a.ID, b.ID))
	})
}

func cloneDocument(d models.Document) models.Document {
	d.FolderID = clonePtr(d.FolderID)
	return d
}
