package docsystem

import (
	"context"
	"fmt"
	"log/slog"

	"portal/internal/domain"
	models "portal/internal/domain/models/docsystem"
	docsysRepo "portal/internal/domain/repositories/docsystem"

	"portal/internal/repository/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresShareRepository implements the ShareRepository interface
type PostgresShareRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewShareRepository creates a new share repository
func NewShareRepository(config *postgres.RepositoryConfig) docsysRepo.ShareRepository {
	return &PostgresShareRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Upsert inserts a share or replaces the access of an existing (document, grantee) row.
// created_at of an existing row is kept and written back to share.
func (r *PostgresShareRepository) Upsert(ctx context.Context, share *models.Share) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (document_id, grantee_id, role, share_target, label, email, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (document_id, grantee_id) DO UPDATE
		SET role = EXCLUDED.role,
		    share_target = EXCLUDED.share_target,
		    label = EXCLUDED.label,
		    email = EXCLUDED.email,
		    updated_at = EXCLUDED.updated_at
		RETURNING created_at, updated_at
	`, r.tables.Shares)

	if !postgres.IsUUID(share.DocumentID) {
		return domain.NewNotFound("document", share.DocumentID)
	}
	if !postgres.IsUUID(share.GranteeID) {
		return domain.NewValidation("invalid grantee id %q", share.GranteeID)
	}

	var target *string
	if t := models.TargetOf(share.Access); t != "" {
		s := string(t)
		target = &s
	}

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		share.DocumentID,
		share.GranteeID,
		string(share.Access.Role()),
		target,
		share.Label,
		share.Email,
		share.CreatedAt,
		share.UpdatedAt,
	).Scan(&share.CreatedAt, &share.UpdatedAt)
	if err != nil {
		switch {
		case postgres.IsPgForeignKeyError(err):
			return domain.NewNotFound("document", share.DocumentID)
		case postgres.IsPgInvalidTextError(err):
			return domain.NewValidation("invalid grantee id %q", share.GranteeID)
		}
		return fmt.Errorf("upsert share: %w", err)
	}
	return nil
}

// Delete removes one share and reports whether it existed
func (r *PostgresShareRepository) Delete(ctx context.Context, documentID, granteeID string) (bool, error) {
	if !postgres.IsUUID(documentID) || !postgres.IsUUID(granteeID) {
		return false, nil
	}
	query := fmt.Sprintf(`DELETE FROM %s WHERE document_id = $1 AND grantee_id = $2`, r.tables.Shares)

	executor := postgres.GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, documentID, granteeID)
	if err != nil {
		return false, fmt.Errorf("delete share: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteByDocuments removes every share of the given documents
func (r *PostgresShareRepository) DeleteByDocuments(ctx context.Context, documentIDs []string) error {
	documentIDs = postgres.FilterUUIDs(documentIDs)
	if len(documentIDs) == 0 {
		return nil
	}
	query := fmt.Sprintf(`DELETE FROM %s WHERE document_id = ANY($1)`, r.tables.Shares)

	executor := postgres.GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, documentIDs)
	if err != nil {
		return fmt.Errorf("delete shares: %w", err)
	}
	r.logger.Debug("shares deleted", "documents", len(documentIDs), "rows", tag.RowsAffected())
	return nil
}

// ListByDocument returns all grantees of a document
func (r *PostgresShareRepository) ListByDocument(ctx context.Context, documentID string) ([]models.Share, error) {
	return r.list(ctx, "document_id", documentID)
}

// ListByGrantee returns every share held by a grantee
func (r *PostgresShareRepository) ListByGrantee(ctx context.Context, granteeID string) ([]models.Share, error) {
	return r.list(ctx, "grantee_id", granteeID)
}

// list filters on column, which is always one of the two key columns above
func (r *PostgresShareRepository) list(ctx context.Context, column, value string) ([]models.Share, error) {
	if !postgres.IsUUID(value) {
		return []models.Share{}, nil
	}
	query := fmt.Sprintf(`
		SELECT document_id, grantee_id, role, share_target, label, email, created_at, updated_at
		FROM %s
		WHERE %s = $1
		ORDER BY created_at, document_id, grantee_id
	`, r.tables.Shares, column)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, value)
	if err != nil {
		return nil, fmt.Errorf("list shares: %w", err)
	}
	defer rows.Close()

	shares := []models.Share{}
	for rows.Next() {
		var (
			share  models.Share
			role   string
			target *string
		)
		err := rows.Scan(
			&share.DocumentID,
			&share.GranteeID,
			&role,
			&target,
			&share.Label,
			&share.Email,
			&share.CreatedAt,
			&share.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan share: %w", err)
		}

		var t models.ShareTarget
		if target != nil {
			t = models.ShareTarget(*target)
		}
		share.Access, err = models.NewAccess(models.Role(role), t)
		if err != nil {
			return nil, fmt.Errorf("share %s/%s: %w", share.DocumentID, share.GranteeID, err)
		}
		shares = append(shares, share)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate shares: %w", err)
	}
	return shares, nil
}
