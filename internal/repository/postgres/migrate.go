package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrator applies the embedded schema migrations for one table prefix
type Migrator struct {
	db     *sql.DB
	prefix string
	logger *slog.Logger
}

// NewMigrator wraps the pool in a database/sql handle for goose.
// Migrations use ENVSUB, so ${TABLE_PREFIX} is exported for their duration.
func NewMigrator(pool *pgxpool.Pool, prefix string, logger *slog.Logger) (*Migrator, error) {
	if err := goose.SetDialect("postgres"); err != nil {
		return nil, fmt.Errorf("set dialect: %w", err)
	}
	dir, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		return nil, fmt.Errorf("migrations directory: %w", err)
	}
	goose.SetBaseFS(dir)
	goose.SetTableName(prefix + "goose_db_version")
	goose.SetLogger(gooseLogger{logger: logger})

	return &Migrator{
		db:     stdlib.OpenDBFromPool(pool),
		prefix: prefix,
		logger: logger,
	}, nil
}

// Close releases the database/sql handle
func (m *Migrator) Close() error {
	return m.db.Close()
}

// Up applies all pending migrations
func (m *Migrator) Up(ctx context.Context) error {
	return m.run(func() error { return goose.UpContext(ctx, m.db, ".") })
}

// Down rolls back the most recent migration
func (m *Migrator) Down(ctx context.Context) error {
	return m.run(func() error { return goose.DownContext(ctx, m.db, ".") })
}

// Reset rolls back every applied migration
func (m *Migrator) Reset(ctx context.Context) error {
	return m.run(func() error { return goose.ResetContext(ctx, m.db, ".") })
}

// Status logs applied and pending migrations
func (m *Migrator) Status(ctx context.Context) error {
	return m.run(func() error { return goose.StatusContext(ctx, m.db, ".") })
}

// Version returns the current schema version
func (m *Migrator) Version(ctx context.Context) (int64, error) {
	var version int64
	err := m.run(func() error {
		var err error
		version, err = goose.GetDBVersionContext(ctx, m.db)
		return err
	})
	return version, err
}

func (m *Migrator) run(fn func() error) error {
	previous, had := os.LookupEnv("TABLE_PREFIX")
	if err := os.Setenv("TABLE_PREFIX", m.prefix); err != nil {
		return err
	}
	defer func() {
		if had {
			os.Setenv("TABLE_PREFIX", previous)
		} else {
			os.Unsetenv("TABLE_PREFIX")
		}
	}()

	if err := fn(); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// gooseLogger routes goose output through slog
type gooseLogger struct {
	logger *slog.Logger
}

func (l gooseLogger) Printf(format string, v ...any) {
	l.logger.Info(fmt.Sprintf(format, v...))
}

func (l gooseLogger) Fatalf(format string, v ...any) {
	l.logger.Error(fmt.Sprintf(format, v...))
	os.Exit(1)
}
