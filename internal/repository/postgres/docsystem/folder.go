package docsystem

import (
	"context"
	"fmt"
	"log/slog"

	"portal/internal/domain"
	models "portal/internal/domain/models/docsystem"
	"portal/internal/domain/repositories"
	docsysRepo "portal/internal/domain/repositories/docsystem"

	"portal/internal/repository/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresFolderRepository implements the FolderRepository interface
type PostgresFolderRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(config *postgres.RepositoryConfig) docsysRepo.FolderRepository {
	return &PostgresFolderRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

const folderColumns = `id, name, parent_id, created_at, updated_at`

func scanFolder(row pgx.Row) (*models.Folder, error) {
	var f models.Folder
	if err := row.Scan(&f.ID, &f.Name, &f.ParentID, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	return &f, nil
}

// Create creates a new folder
func (r *PostgresFolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	if folder.ParentID != nil && !postgres.IsUUID(*folder.ParentID) {
		return domain.NewNotFound("folder", *folder.ParentID)
	}
	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, parent_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		folder.ID,
		folder.Name,
		folder.ParentID,
		folder.CreatedAt,
		folder.UpdatedAt,
	)
	if err != nil {
		return r.writeError("create folder", folder, err)
	}
	return nil
}

// GetByID retrieves a folder by ID
func (r *PostgresFolderRepository) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	if !postgres.IsUUID(id) {
		return nil, domain.NewNotFound("folder", id)
	}
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, folderColumns, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	folder, err := scanFolder(executor.QueryRow(ctx, query, id))
	if err != nil {
		if postgres.IsPgNoRowsError(err) || postgres.IsPgInvalidTextError(err) {
			return nil, domain.NewNotFound("folder", id)
		}
		return nil, fmt.Errorf("get folder: %w", err)
	}
	return folder, nil
}

// Update persists name and parent changes
func (r *PostgresFolderRepository) Update(ctx context.Context, folder *models.Folder) error {
	if !postgres.IsUUID(folder.ID) {
		return domain.NewNotFound("folder", folder.ID)
	}
	if folder.ParentID != nil && !postgres.IsUUID(*folder.ParentID) {
		return domain.NewNotFound("folder", *folder.ParentID)
	}
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, parent_id = $2, updated_at = $3
		WHERE id = $4
	`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, folder.Name, folder.ParentID, folder.UpdatedAt, folder.ID)
	if err != nil {
		return r.writeError("update folder", folder, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFound("folder", folder.ID)
	}
	return nil
}

// Delete removes folders by ID
func (r *PostgresFolderRepository) Delete(ctx context.Context, ids []string) error {
	ids = postgres.FilterUUIDs(ids)
	if len(ids) == 0 {
		return nil
	}
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = ANY($1)`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("delete folders: %w", err)
	}
	r.logger.Debug("folders deleted", "requested", len(ids), "deleted", tag.RowsAffected())
	return nil
}

// ListAll retrieves every folder (flat list)
func (r *PostgresFolderRepository) ListAll(ctx context.Context) ([]models.Folder, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY created_at, id`, folderColumns, r.tables.Folders)
	return r.list(ctx, query)
}

// ListChildren lists immediate child folders (nil = root level)
func (r *PostgresFolderRepository) ListChildren(ctx context.Context, parentID *string) ([]models.Folder, error) {
	if parentID != nil && !postgres.IsUUID(*parentID) {
		return []models.Folder{}, nil
	}
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE parent_id IS NOT DISTINCT FROM $1
		ORDER BY name, id
	`, folderColumns, r.tables.Folders)
	return r.list(ctx, query, parentID)
}

func (r *PostgresFolderRepository) list(ctx context.Context, query string, args ...any) ([]models.Folder, error) {
	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	defer rows.Close()

	folders := []models.Folder{}
	for rows.Next() {
		folder, err := scanFolder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, *folder)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folders: %w", err)
	}
	return folders, nil
}

// ListDescendantIDs returns every folder below id.
// UNION (not UNION ALL) drops revisited rows, so corrupted cycles terminate.
func (r *PostgresFolderRepository) ListDescendantIDs(ctx context.Context, id string) ([]string, error) {
	query := fmt.Sprintf(`
		WITH RECURSIVE descendants AS (
			SELECT id FROM %s WHERE parent_id = $1
			UNION
			SELECT f.id FROM %s f
			JOIN descendants d ON f.parent_id = d.id
		)
		SELECT id FROM descendants WHERE id <> $1
	`, r.tables.Folders, r.tables.Folders)

	return r.listIDs(ctx, query, id)
}

// ListAncestorIDs returns the parent chain of id, nearest first
func (r *PostgresFolderRepository) ListAncestorIDs(ctx context.Context, id string) ([]string, error) {
	query := fmt.Sprintf(`
		WITH RECURSIVE ancestors (id, depth) AS (
			SELECT parent_id, 1 FROM %s WHERE id = $1 AND parent_id IS NOT NULL
			UNION ALL
			SELECT f.parent_id, a.depth + 1 FROM %s f
			JOIN ancestors a ON f.id = a.id
			WHERE f.parent_id IS NOT NULL
		) CYCLE id SET is_cycle USING path
		SELECT id FROM ancestors
		WHERE NOT is_cycle AND id <> $1
		ORDER BY depth
	`, r.tables.Folders, r.tables.Folders)

	return r.listIDs(ctx, query, id)
}

func (r *PostgresFolderRepository) listIDs(ctx context.Context, query string, id string) ([]string, error) {
	if !postgres.IsUUID(id) {
		return []string{}, nil
	}
	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, id)
	if err != nil {
		if postgres.IsPgInvalidTextError(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("walk folders: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("walk folders: %w", err)
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// LockHierarchy takes a transaction-scoped advisory lock keyed on the folders
// table, so concurrent structural mutations run one at a time.
func (r *PostgresFolderRepository) LockHierarchy(ctx context.Context) error {
	tx := repositories.GetTx(ctx)
	if tx == nil {
		return fmt.Errorf("lock hierarchy: no transaction in context")
	}
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, r.tables.Folders); err != nil {
		return fmt.Errorf("lock hierarchy: %w", err)
	}
	return nil
}

func (r *PostgresFolderRepository) writeError(op string, folder *models.Folder, err error) error {
	switch {
	case postgres.IsPgForeignKeyError(err):
		parent := ""
		if folder.ParentID != nil {
			parent = *folder.ParentID
		}
		return domain.NewNotFound("folder", parent)
	case postgres.IsPgInvalidTextError(err):
		return domain.NewValidation("invalid folder id")
	case postgres.IsPgDuplicateError(err):
		return domain.NewValidation("folder %s already exists", folder.ID)
	case postgres.IsPgCheckViolation(err):
		return domain.NewValidation("invalid folder: %v", err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
