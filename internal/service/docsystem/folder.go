package docsystem

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"portal/internal/domain"
	models "portal/internal/domain/models/docsystem"
	"portal/internal/domain/repositories"
	docsysRepo "portal/internal/domain/repositories/docsystem"
	docsysSvc "portal/internal/domain/services/docsystem"

	"github.com/google/uuid"
)

type folderService struct {
	folderRepo docsysRepo.FolderRepository
	docRepo    docsysRepo.DocumentRepository
	shareRepo  docsysRepo.ShareRepository
	blobs      docsysSvc.BlobStore // optional; nil skips content cleanup
	txManager  repositories.TransactionManager
	logger     *slog.Logger
}

// NewFolderService creates a new folder service
func NewFolderService(
	folderRepo docsysRepo.FolderRepository,
	docRepo docsysRepo.DocumentRepository,
	shareRepo docsysRepo.ShareRepository,
	blobs docsysSvc.BlobStore,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) docsysSvc.FolderService {
	return &folderService{
		folderRepo: folderRepo,
		docRepo:    docRepo,
		shareRepo:  shareRepo,
		blobs:      blobs,
		txManager:  txManager,
		logger:     logger,
	}
}

// CreateFolder creates a new folder at root or under an existing parent
func (s *folderService) CreateFolder(ctx context.Context, req *docsysSvc.CreateFolderRequest) (*models.Folder, error) {
	name := strings.TrimSpace(req.Name)
	if err := validateFolderName(name); err != nil {
		return nil, err
	}
	parentID := normalizeID(req.ParentID)

	now := time.Now().UTC()
	folder := &models.Folder{
		ID:        uuid.NewString(),
		Name:      name,
		ParentID:  parentID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.folderRepo.LockHierarchy(txCtx); err != nil {
			return err
		}
		if parentID != nil {
			if _, err := s.folderRepo.GetByID(txCtx, *parentID); err != nil {
				return err
			}
		}
		return s.folderRepo.Create(txCtx, folder)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("folder created",
		"id", folder.ID,
		"name", folder.Name,
		"parent_id", folder.ParentID,
	)
	return folder, nil
}

// GetFolder retrieves a folder by ID
func (s *folderService) GetFolder(ctx context.Context, id string) (*models.Folder, error) {
	return s.folderRepo.GetByID(ctx, id)
}

// ListFolders returns every folder
func (s *folderService) ListFolders(ctx context.Context) ([]models.Folder, error) {
	return s.folderRepo.ListAll(ctx)
}

// RenameFolder changes a folder's display name
func (s *folderService) RenameFolder(ctx context.Context, id, name string) (*models.Folder, error) {
	name = strings.TrimSpace(name)
	if err := validateFolderName(name); err != nil {
		return nil, err
	}

	folder, err := s.folderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if folder.Name == name {
		return folder, nil
	}

	folder.Name = name
	folder.UpdatedAt = time.Now().UTC()
	if err := s.folderRepo.Update(ctx, folder); err != nil {
		return nil, err
	}

	s.logger.Info("folder renamed", "id", folder.ID, "name", folder.Name)
	return folder, nil
}

// SetParent moves a folder. The hierarchy lock makes the cycle check and the
// write atomic with respect to other structural mutations.
func (s *folderService) SetParent(ctx context.Context, id string, parentID *string) (*models.Folder, error) {
	parentID = normalizeID(parentID)

	var folder *models.Folder
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.folderRepo.LockHierarchy(txCtx); err != nil {
			return err
		}

		var err error
		folder, err = s.folderRepo.GetByID(txCtx, id)
		if err != nil {
			return err
		}

		if parentID != nil {
			if err := s.validateNoCircularReference(txCtx, id, *parentID); err != nil {
				return err
			}
		}

		if equalID(folder.ParentID, parentID) {
			return nil
		}
		folder.ParentID = parentID
		folder.UpdatedAt = time.Now().UTC()
		return s.folderRepo.Update(txCtx, folder)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("folder moved", "id", folder.ID, "parent_id", folder.ParentID)
	return folder, nil
}

// validateNoCircularReference rejects a parent that is the folder itself or
// sits below it. The target must exist.
func (s *folderService) validateNoCircularReference(ctx context.Context, folderID, newParentID string) error {
	if folderID == newParentID {
		return &domain.CycleError{FolderID: folderID, TargetID: newParentID}
	}

	if _, err := s.folderRepo.GetByID(ctx, newParentID); err != nil {
		return err
	}

	ancestors, err := s.folderRepo.ListAncestorIDs(ctx, newParentID)
	if err != nil {
		return err
	}
	if slices.Contains(ancestors, folderID) {
		return &domain.CycleError{FolderID: folderID, TargetID: newParentID}
	}
	return nil
}

// DeleteFolder removes the folder, its descendants, their documents and the
// shares of those documents in one transaction.
func (s *folderService) DeleteFolder(ctx context.Context, id string) (*docsysSvc.DeleteFolderResult, error) {
	result := &docsysSvc.DeleteFolderResult{}

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.folderRepo.LockHierarchy(txCtx); err != nil {
			return err
		}
		if _, err := s.folderRepo.GetByID(txCtx, id); err != nil {
			return err
		}

		descendants, err := s.folderRepo.ListDescendantIDs(txCtx, id)
		if err != nil {
			return err
		}
		folderIDs := append([]string{id}, descendants...)

		docs, err := s.docRepo.ListByFolders(txCtx, folderIDs)
		if err != nil {
			return err
		}
		docIDs := make([]string, 0, len(docs))
		for _, doc := range docs {
			docIDs = append(docIDs, doc.ID)
		}

		if len(docIDs) > 0 {
			if err := s.shareRepo.DeleteByDocuments(txCtx, docIDs); err != nil {
				return err
			}
			if err := s.docRepo.Delete(txCtx, docIDs); err != nil {
				return err
			}
		}
		if err := s.folderRepo.Delete(txCtx, folderIDs); err != nil {
			return err
		}

		result.FolderIDs = folderIDs
		result.DocumentIDs = docIDs
		return nil
	})
	if err != nil {
		return nil, err
	}

	removeContent(ctx, s.blobs, s.logger, result.DocumentIDs)

	s.logger.Info("folder deleted",
		"id", id,
		"folders", len(result.FolderIDs),
		"documents", len(result.DocumentIDs),
	)
	return result, nil
}
