package docsystem

import (
	"context"
	"fmt"
	"log/slog"

	"portal/internal/domain"
	models "portal/internal/domain/models/docsystem"
	docsysRepo "portal/internal/domain/repositories/docsystem"

	"portal/internal/repository/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresDocumentRepository implements the DocumentRepository interface
type PostgresDocumentRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(config *postgres.RepositoryConfig) docsysRepo.DocumentRepository {
	return &PostgresDocumentRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

const documentColumns = `id, title, original_name, mime_type, size_bytes, folder_id, uploaded_at, updated_at`

func scanDocument(row pgx.Row) (*models.Document, error) {
	var doc models.Document
	err := row.Scan(
		&doc.ID,
		&doc.Title,
		&doc.OriginalName,
		&doc.MimeType,
		&doc.SizeBytes,
		&doc.FolderID,
		&doc.UploadedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// Create creates a new document
func (r *PostgresDocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	if doc.FolderID != nil && !postgres.IsUUID(*doc.FolderID) {
		return domain.NewNotFound("folder", *doc.FolderID)
	}
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, r.tables.Documents, documentColumns)

	executor := postgres.GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		doc.ID,
		doc.Title,
		doc.OriginalName,
		doc.MimeType,
		doc.SizeBytes,
		doc.FolderID,
		doc.UploadedAt,
		doc.UpdatedAt,
	)
	if err != nil {
		return writeDocumentError("create document", doc, err)
	}
	return nil
}

// GetByID retrieves a document by ID
func (r *PostgresDocumentRepository) GetByID(ctx context.Context, id string) (*models.Document, error) {
	if !postgres.IsUUID(id) {
		return nil, domain.NewNotFound("document", id)
	}
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, documentColumns, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	doc, err := scanDocument(executor.QueryRow(ctx, query, id))
	if err != nil {
		if postgres.IsPgNoRowsError(err) || postgres.IsPgInvalidTextError(err) {
			return nil, domain.NewNotFound("document", id)
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

// Update persists title and folder changes
func (r *PostgresDocumentRepository) Update(ctx context.Context, doc *models.Document) error {
	if !postgres.IsUUID(doc.ID) {
		return domain.NewNotFound("document", doc.ID)
	}
	if doc.FolderID != nil && !postgres.IsUUID(*doc.FolderID) {
		return domain.NewNotFound("folder", *doc.FolderID)
	}
	query := fmt.Sprintf(`
		UPDATE %s
		SET title = $1, folder_id = $2, updated_at = $3
		WHERE id = $4
	`, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, doc.Title, doc.FolderID, doc.UpdatedAt, doc.ID)
	if err != nil {
		return writeDocumentError("update document", doc, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFound("document", doc.ID)
	}
	return nil
}

// Delete removes documents by ID
func (r *PostgresDocumentRepository) Delete(ctx context.Context, ids []string) error {
	ids = postgres.FilterUUIDs(ids)
	if len(ids) == 0 {
		return nil
	}
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = ANY($1)`, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, ids); err != nil {
		return fmt.Errorf("delete documents: %w", err)
	}
	return nil
}

// ListAll retrieves all document metadata
func (r *PostgresDocumentRepository) ListAll(ctx context.Context) ([]models.Document, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY uploaded_at, id`, documentColumns, r.tables.Documents)
	return r.list(ctx, query)
}

// ListByFolders retrieves documents placed in any of folderIDs
func (r *PostgresDocumentRepository) ListByFolders(ctx context.Context, folderIDs []string) ([]models.Document, error) {
	folderIDs = postgres.FilterUUIDs(folderIDs)
	if len(folderIDs) == 0 {
		return []models.Document{}, nil
	}
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE folder_id = ANY($1)
		ORDER BY uploaded_at, id
	`, documentColumns, r.tables.Documents)
	return r.list(ctx, query, folderIDs)
}

func (r *PostgresDocumentRepository) list(ctx context.Context, query string, args ...any) ([]models.Document, error) {
	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	docs := []models.Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return docs, nil
}

func writeDocumentError(op string, doc *models.Document, err error) error {
	switch {
	case postgres.IsPgForeignKeyError(err):
		folder := ""
		if doc.FolderID != nil {
			folder = *doc.FolderID
		}
		return domain.NewNotFound("folder", folder)
	case postgres.IsPgDuplicateError(err):
		return domain.NewValidation("document %s already exists", doc.ID)
	case postgres.IsPgCheckViolation(err), postgres.IsPgInvalidTextError(err):
		return domain.NewValidation("invalid document: %v", err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
