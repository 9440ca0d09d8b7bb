package docsystem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"portal/internal/domain"
	models "portal/internal/domain/models/docsystem"
	"portal/internal/domain/repositories"
	docsysRepo "portal/internal/domain/repositories/docsystem"
	docsysSvc "portal/internal/domain/services/docsystem"

	"github.com/google/uuid"
)

const defaultMimeType = "application/octet-stream"

// ErrNoBlobStore is returned by content operations when no blob store is configured
var ErrNoBlobStore = errors.New("blob storage is not configured")

type documentService struct {
	docRepo    docsysRepo.DocumentRepository
	folderRepo docsysRepo.FolderRepository
	shareRepo  docsysRepo.ShareRepository
	blobs      docsysSvc.BlobStore
	txManager  repositories.TransactionManager
	logger     *slog.Logger
}

// NewDocumentService creates a new document service
func NewDocumentService(
	docRepo docsysRepo.DocumentRepository,
	folderRepo docsysRepo.FolderRepository,
	shareRepo docsysRepo.ShareRepository,
	blobs docsysSvc.BlobStore,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) docsysSvc.DocumentService {
	return &documentService{
		docRepo:    docRepo,
		folderRepo: folderRepo,
		shareRepo:  shareRepo,
		blobs:      blobs,
		txManager:  txManager,
		logger:     logger,
	}
}

// CreateDocument records metadata. Title defaults to the filename stem.
func (s *documentService) CreateDocument(ctx context.Context, req *docsysSvc.CreateDocumentRequest) (*models.Document, error) {
	originalName := strings.TrimSpace(req.OriginalName)
	if err := validateOriginalName(originalName); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = models.TitleFromFilename(originalName)
	}
	if err := validateDocumentTitle(title); err != nil {
		return nil, err
	}
	if req.SizeBytes < 0 {
		return nil, domain.NewValidation("size_bytes: must not be negative")
	}

	folderID := normalizeID(req.FolderID)

	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}
	mimeType := strings.TrimSpace(req.MimeType)
	if mimeType == "" {
		mimeType = defaultMimeType
	}

	now := time.Now().UTC()
	doc := &models.Document{
		ID:           id,
		Title:        title,
		OriginalName: originalName,
		MimeType:     mimeType,
		SizeBytes:    req.SizeBytes,
		FolderID:     folderID,
		UploadedAt:   now,
		UpdatedAt:    now,
	}
	// Filing under the hierarchy lock keeps a concurrent folder delete from
	// cascading the row away without seeing its id.
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.lockFolder(txCtx, folderID); err != nil {
			return err
		}
		return s.docRepo.Create(txCtx, doc)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("document created",
		"id", doc.ID,
		"title", doc.Title,
		"folder_id", doc.FolderID,
		"size_bytes", doc.SizeBytes,
	)
	return doc, nil
}

// UploadDocument writes the bytes under a fresh id, then records metadata.
// If the metadata write fails the stored bytes are removed again.
func (s *documentService) UploadDocument(ctx context.Context, req *docsysSvc.UploadDocumentRequest, content io.Reader) (*models.Document, error) {
	if s.blobs == nil {
		return nil, ErrNoBlobStore
	}
	filename := strings.TrimSpace(req.Filename)
	if err := validateOriginalName(filename); err != nil {
		return nil, err
	}

	// Fail before storing bytes when the target folder is already gone
	folderID := normalizeID(req.FolderID)
	if folderID != nil {
		if _, err := s.folderRepo.GetByID(ctx, *folderID); err != nil {
			return nil, err
		}
	}

	id := uuid.NewString()
	info, err := s.blobs.Put(ctx, id, content)
	if err != nil {
		return nil, fmt.Errorf("store content: %w", err)
	}
	s.logger.Debug("content stored", "id", id, "size_bytes", info.SizeBytes, "mime_type", info.MimeType)

	doc, err := s.CreateDocument(ctx, &docsysSvc.CreateDocumentRequest{
		ID:           id,
		Title:        req.Title,
		OriginalName: filename,
		MimeType:     info.MimeType,
		SizeBytes:    info.SizeBytes,
		FolderID:     folderID,
	})
	if err != nil {
		removeContent(ctx, s.blobs, s.logger, []string{id})
		return nil, err
	}
	return doc, nil
}

// GetDocument retrieves document metadata
func (s *documentService) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	return s.docRepo.GetByID(ctx, id)
}

// ListDocuments returns all document metadata
func (s *documentService) ListDocuments(ctx context.Context) ([]models.Document, error) {
	return s.docRepo.ListAll(ctx)
}

// OpenContent returns the document and a reader over its bytes
func (s *documentService) OpenContent(ctx context.Context, id string) (*models.Document, io.ReadCloser, error) {
	if s.blobs == nil {
		return nil, nil, ErrNoBlobStore
	}
	doc, err := s.docRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.blobs.Open(ctx, doc.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, domain.NewNotFound("document content", doc.ID)
		}
		return nil, nil, fmt.Errorf("open content: %w", err)
	}
	return doc, rc, nil
}

// RenameDocument changes the display title
func (s *documentService) RenameDocument(ctx context.Context, id, title string) (*models.Document, error) {
	title = strings.TrimSpace(title)
	if err := validateDocumentTitle(title); err != nil {
		return nil, err
	}

	doc, err := s.docRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.Title == title {
		return doc, nil
	}

	doc.Title = title
	doc.UpdatedAt = time.Now().UTC()
	if err := s.docRepo.Update(ctx, doc); err != nil {
		return nil, err
	}

	s.logger.Info("document renamed", "id", doc.ID, "title", doc.Title)
	return doc, nil
}

// SetFolder moves a document. Documents are leaves, so only existence is checked.
func (s *documentService) SetFolder(ctx context.Context, id string, folderID *string) (*models.Document, error) {
	folderID = normalizeID(folderID)

	var doc *models.Document
	moved := false
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.lockFolder(txCtx, folderID); err != nil {
			return err
		}
		var err error
		doc, err = s.docRepo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		if equalID(doc.FolderID, folderID) {
			return nil
		}

		doc.FolderID = folderID
		doc.UpdatedAt = time.Now().UTC()
		moved = true
		return s.docRepo.Update(txCtx, doc)
	})
	if err != nil {
		return nil, err
	}

	if moved {
		s.logger.Info("document moved", "id", doc.ID, "folder_id", doc.FolderID)
	}
	return doc, nil
}

// lockFolder takes the hierarchy lock and checks the target folder exists.
// A nil folder (unfiled) still locks.
func (s *documentService) lockFolder(txCtx context.Context, folderID *string) error {
	if err := s.folderRepo.LockHierarchy(txCtx); err != nil {
		return err
	}
	if folderID == nil {
		return nil
	}
	_, err := s.folderRepo.GetByID(txCtx, *folderID)
	return err
}

// DeleteDocument removes the document and its shares atomically, then its bytes
func (s *documentService) DeleteDocument(ctx context.Context, id string) error {
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if _, err := s.docRepo.GetByID(txCtx, id); err != nil {
			return err
		}
		if err := s.shareRepo.DeleteByDocuments(txCtx, []string{id}); err != nil {
			return err
		}
		return s.docRepo.Delete(txCtx, []string{id})
	})
	if err != nil {
		return err
	}

	removeContent(ctx, s.blobs, s.logger, []string{id})

	s.logger.Info("document deleted", "id", id)
	return nil
}

// removeContent deletes stored bytes after the metadata is gone.
// Failures are logged and leave an orphaned blob.
func removeContent(ctx context.Context, blobs docsysSvc.BlobStore, logger *slog.Logger, ids []string) {
	if blobs == nil {
		return
	}
	for _, id := range ids {
		if err := blobs.Delete(ctx, id); err != nil {
			logger.Warn("failed to remove document content", "id", id, "error", err)
		}
	}
}
