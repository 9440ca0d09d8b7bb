package docsystem

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"portal/internal/config"
	"portal/internal/domain"
	models "portal/internal/domain/models/docsystem"
	"portal/internal/domain/repositories"
	docsysRepo "portal/internal/domain/repositories/docsystem"
	docsysSvc "portal/internal/domain/services/docsystem"
)

type shareService struct {
	shareRepo docsysRepo.ShareRepository
	docRepo   docsysRepo.DocumentRepository
	directory docsysRepo.UserDirectory
	txManager repositories.TransactionManager
	logger    *slog.Logger
}

// NewShareService creates a new share service
func NewShareService(
	shareRepo docsysRepo.ShareRepository,
	docRepo docsysRepo.DocumentRepository,
	directory docsysRepo.UserDirectory,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) docsysSvc.ShareService {
	return &shareService{
		shareRepo: shareRepo,
		docRepo:   docRepo,
		directory: directory,
		txManager: txManager,
		logger:    logger,
	}
}

// Grant upserts one share per distinct grantee. Label and email are copied
// from the user directory; unknown users fall back to their id as label.
func (s *shareService) Grant(ctx context.Context, documentID string, granteeIDs []string, access models.Access) ([]models.Share, error) {
	if access == nil {
		return nil, domain.NewValidation("role is required")
	}
	ids := distinctIDs(granteeIDs)
	if len(ids) == 0 {
		return nil, domain.NewValidation("at least one grantee is required")
	}
	if len(ids) > config.MaxGranteesPerGrant {
		return nil, domain.NewValidation("at most %d grantees per request", config.MaxGranteesPerGrant)
	}

	shares := make([]models.Share, 0, len(ids))
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if _, err := s.docRepo.GetByID(txCtx, documentID); err != nil {
			return err
		}

		users, err := s.directory.GetByIDs(txCtx, ids)
		if err != nil {
			return err
		}
		byID := make(map[string]models.Grantee, len(users))
		for _, u := range users {
			byID[u.ID] = u
		}

		now := time.Now().UTC()
		for _, id := range ids {
			share := models.Share{
				DocumentID: documentID,
				GranteeID:  id,
				Access:     access,
				Label:      id,
				CreatedAt:  now,
				UpdatedAt:  now,
			}
			if u, ok := byID[id]; ok {
				share.Email = u.Email
				if u.Label != "" {
					share.Label = u.Label
				}
			}
			if err := s.shareRepo.Upsert(txCtx, &share); err != nil {
				return err
			}
			shares = append(shares, share)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("document shared",
		"document_id", documentID,
		"grantees", len(shares),
		"role", access.Role(),
		"share_target", models.TargetOf(access),
	)
	return shares, nil
}

// Revoke removes a share; a missing share is not an error
func (s *shareService) Revoke(ctx context.Context, documentID, granteeID string) error {
	if strings.TrimSpace(documentID) == "" || strings.TrimSpace(granteeID) == "" {
		return domain.NewValidation("document id and grantee id are required")
	}

	existed, err := s.shareRepo.Delete(ctx, documentID, granteeID)
	if err != nil {
		return err
	}
	if !existed {
		s.logger.Debug("revoke of missing share ignored", "document_id", documentID, "grantee_id", granteeID)
		return nil
	}

	s.logger.Info("share revoked", "document_id", documentID, "grantee_id", granteeID)
	return nil
}

// ListShares returns every grantee of a document
func (s *shareService) ListShares(ctx context.Context, documentID string) ([]models.Share, error) {
	if _, err := s.docRepo.GetByID(ctx, documentID); err != nil {
		return nil, err
	}
	return s.shareRepo.ListByDocument(ctx, documentID)
}

// ListShareCandidates returns directory users with role who are not yet grantees
func (s *shareService) ListShareCandidates(ctx context.Context, documentID string, role models.Role) ([]models.Grantee, error) {
	if _, err := models.ParseRole(string(role)); err != nil {
		return nil, domain.NewValidation("%v", err)
	}
	if _, err := s.docRepo.GetByID(ctx, documentID); err != nil {
		return nil, err
	}

	users, err := s.directory.ListByRole(ctx, role)
	if err != nil {
		return nil, err
	}
	shares, err := s.shareRepo.ListByDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}

	shared := make(map[string]bool, len(shares))
	for _, share := range shares {
		shared[share.GranteeID] = true
	}
	candidates := make([]models.Grantee, 0, len(users))
	for _, u := range users {
		if !shared[u.ID] {
			candidates = append(candidates, u)
		}
	}
	return candidates, nil
}

// GetShare looks the share up from the grantee side, so an unknown document
// and a document not shared with the grantee look the same
func (s *shareService) GetShare(ctx context.Context, documentID, granteeID string) (*models.Share, error) {
	shares, err := s.shareRepo.ListByGrantee(ctx, granteeID)
	if err != nil {
		return nil, err
	}
	for _, share := range shares {
		if share.DocumentID == documentID {
			return &share, nil
		}
	}
	return nil, domain.NewNotFound("share", documentID)
}

// ListSharedWith returns the documents a grantee can see. The target filter
// selects the investor tab; shares of other roles have no target and always match.
func (s *shareService) ListSharedWith(ctx context.Context, granteeID string, target models.ShareTarget) ([]models.SharedDocument, error) {
	if target != "" {
		if _, err := models.ParseShareTarget(string(target)); err != nil {
			return nil, domain.NewValidation("%v", err)
		}
	}

	shares, err := s.shareRepo.ListByGrantee(ctx, granteeID)
	if err != nil {
		return nil, err
	}

	out := make([]models.SharedDocument, 0, len(shares))
	for _, share := range shares {
		if inv, ok := share.Access.(models.InvestorAccess); ok && target != "" && inv.Target != target {
			continue
		}
		doc, err := s.docRepo.GetByID(ctx, share.DocumentID)
		if err != nil {
			// deleted between the two reads
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, models.SharedDocument{Document: *doc, Share: share})
	}
	return out, nil
}

// distinctIDs trims ids, drops blanks and keeps the first occurrence of each
func distinctIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
