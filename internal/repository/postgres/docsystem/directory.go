package docsystem

import (
	"context"
	"fmt"
	"log/slog"

	models "portal/internal/domain/models/docsystem"
	docsysRepo "portal/internal/domain/repositories/docsystem"

	"portal/internal/repository/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresUserDirectory reads share candidates from the users table
type PostgresUserDirectory struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewUserDirectory creates a new user directory
func NewUserDirectory(config *postgres.RepositoryConfig) *PostgresUserDirectory {
	return &PostgresUserDirectory{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

var _ docsysRepo.UserDirectory = (*PostgresUserDirectory)(nil)

// ListByRole returns every user with role, ordered by display name
func (d *PostgresUserDirectory) ListByRole(ctx context.Context, role models.Role) ([]models.Grantee, error) {
	query := fmt.Sprintf(`
		SELECT id, display_name, email, role FROM %s
		WHERE role = $1
		ORDER BY display_name, id
	`, d.tables.Users)
	return d.list(ctx, query, string(role))
}

// GetByIDs returns the users that exist among ids
func (d *PostgresUserDirectory) GetByIDs(ctx context.Context, ids []string) ([]models.Grantee, error) {
	if len(ids) == 0 {
		return []models.Grantee{}, nil
	}
	// compare as text so malformed ids simply do not match
	query := fmt.Sprintf(`
		SELECT id, display_name, email, role FROM %s
		WHERE id::text = ANY($1)
		ORDER BY display_name, id
	`, d.tables.Users)
	return d.list(ctx, query, ids)
}

// Upsert adds or replaces a user (seed fixtures and auth sync)
func (d *PostgresUserDirectory) Upsert(ctx context.Context, user models.Grantee) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, display_name, email, role)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET display_name = EXCLUDED.display_name, email = EXCLUDED.email, role = EXCLUDED.role
	`, d.tables.Users)

	executor := postgres.GetExecutor(ctx, d.pool)
	if _, err := executor.Exec(ctx, query, user.ID, user.Label, user.Email, string(user.Role)); err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

func (d *PostgresUserDirectory) list(ctx context.Context, query string, args ...any) ([]models.Grantee, error) {
	executor := postgres.GetExecutor(ctx, d.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []models.Grantee{}
	for rows.Next() {
		var (
			u    models.Grantee
			role string
		)
		if err := rows.Scan(&u.ID, &u.Label, &u.Email, &role); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		u.Role = models.Role(role)
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}
