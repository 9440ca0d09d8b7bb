package docsystem

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"portal/internal/domain"
	models "portal/internal/domain/models/docsystem"
	docsysRepo "portal/internal/domain/repositories/docsystem"
	docsysSvc "portal/internal/domain/services/docsystem"
)

const (
	reasonSelf       = "cannot move a folder into itself"
	reasonDescendant = "cannot move a folder into one of its subfolders"
)

type moveService struct {
	folderRepo docsysRepo.FolderRepository
	docRepo    docsysRepo.DocumentRepository
	folders    docsysSvc.FolderService
	documents  docsysSvc.DocumentService
	logger     *slog.Logger
}

// NewMoveService creates a move service that delegates confirmed moves to the stores
func NewMoveService(
	folderRepo docsysRepo.FolderRepository,
	docRepo docsysRepo.DocumentRepository,
	folders docsysSvc.FolderService,
	documents docsysSvc.DocumentService,
	logger *slog.Logger,
) docsysSvc.MoveService {
	return &moveService{
		folderRepo: folderRepo,
		docRepo:    docRepo,
		folders:    folders,
		documents:  documents,
		logger:     logger,
	}
}

// FolderMoveTargets lists every folder as a destination, disabling the folder and its descendants
func (s *moveService) FolderMoveTargets(ctx context.Context, folderID string) (*models.MoveTargets, error) {
	if _, err := s.folderRepo.GetByID(ctx, folderID); err != nil {
		return nil, err
	}
	folders, err := s.folderRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	blocked := BlockedTargets(folders, folderID)
	targets := buildMoveTargets(folders, blocked, folderID)
	return &models.MoveTargets{
		SubjectID:   folderID,
		SubjectKind: models.NodeFolder,
		Targets:     targets,
		Blocked:     blocked,
	}, nil
}

// DocumentMoveTargets lists every folder as an allowed destination
func (s *moveService) DocumentMoveTargets(ctx context.Context, documentID string) (*models.MoveTargets, error) {
	if _, err := s.docRepo.GetByID(ctx, documentID); err != nil {
		return nil, err
	}
	folders, err := s.folderRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	return &models.MoveTargets{
		SubjectID:   documentID,
		SubjectKind: models.NodeDocument,
		Targets:     buildMoveTargets(folders, nil, ""),
		Blocked:     []string{},
	}, nil
}

// MoveFolder rejects targets inside the folder's own subtree, then delegates to SetParent.
// The check here only sees a snapshot; SetParent re-checks under the hierarchy lock.
func (s *moveService) MoveFolder(ctx context.Context, folderID string, targetID *string) (*models.Folder, error) {
	targetID = normalizeID(targetID)
	if targetID != nil {
		folders, err := s.folderRepo.ListAll(ctx)
		if err != nil {
			return nil, err
		}
		if slices.Contains(BlockedTargets(folders, folderID), *targetID) {
			s.logger.Debug("move rejected", "folder_id", folderID, "target_id", *targetID)
			return nil, &domain.CycleError{FolderID: folderID, TargetID: *targetID}
		}
	}
	return s.folders.SetParent(ctx, folderID, targetID)
}

// MoveDocument delegates to SetFolder; documents have no subtree to protect
func (s *moveService) MoveDocument(ctx context.Context, documentID string, targetID *string) (*models.Document, error) {
	return s.documents.SetFolder(ctx, documentID, targetID)
}

// BlockedTargets returns {folderID} plus all its descendants (breadth first).
// The result is empty when folderID is not among folders.
func BlockedTargets(folders []models.Folder, folderID string) []string {
	children := make(map[string][]string)
	exists := false
	for _, f := range folders {
		if f.ID == folderID {
			exists = true
		}
		if f.ParentID != nil {
			children[*f.ParentID] = append(children[*f.ParentID], f.ID)
		}
	}
	if !exists {
		return []string{}
	}

	blocked := []string{}
	seen := make(map[string]bool)
	queue := []string{folderID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if seen[id] {
			continue
		}
		seen[id] = true
		blocked = append(blocked, id)
		queue = append(queue, children[id]...)
	}
	return blocked
}

// buildMoveTargets lists folders in tree order with their full path
func buildMoveTargets(folders []models.Folder, blocked []string, subjectID string) []models.MoveTarget {
	view := ComposeTree(folders, nil, docsysSvc.TreeOptions{})

	targets := make([]models.MoveTarget, 0, len(view.Folders))
	var names []string
	for entry := range view.All() {
		if entry.Kind != models.NodeFolder {
			continue
		}
		names = append(names[:entry.Depth], entry.Folder.Name)

		target := models.MoveTarget{
			Folder: *entry.Folder,
			Path:   strings.Join(names, " / "),
		}
		switch {
		case entry.Folder.ID == subjectID:
			target.Disabled, target.Reason = true, reasonSelf
		case slices.Contains(blocked, entry.Folder.ID):
			target.Disabled, target.Reason = true, reasonDescendant
		}
		targets = append(targets, target)
	}
	return targets
}
