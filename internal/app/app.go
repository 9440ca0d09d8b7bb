// Package app wires storage, repositories and services for the commands.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"portal/internal/config"
	"portal/internal/domain/repositories"
	docsysRepo "portal/internal/domain/repositories/docsystem"
	docsysSvc "portal/internal/domain/services/docsystem"
	"portal/internal/repository/memory"
	"portal/internal/repository/postgres"
	postgresDocsys "portal/internal/repository/postgres/docsystem"
	"portal/internal/seed"
	"portal/internal/service/docsystem"
	"portal/internal/storage/blob"
)

// Directory is the user directory as the services and the seeder see it
type Directory interface {
	docsysRepo.UserDirectory
	seed.UserWriter
}

// App holds the wired services
type App struct {
	Cfg   *config.Config
	Pool  *pgxpool.Pool // nil on memory storage
	Blobs docsysSvc.BlobStore

	Directory Directory
	Folders   docsysSvc.FolderService
	Documents docsysSvc.DocumentService
	Shares    docsysSvc.ShareService
	Tree      docsysSvc.TreeService
	Moves     docsysSvc.MoveService

	logger *slog.Logger
}

type repos struct {
	folders   docsysRepo.FolderRepository
	documents docsysRepo.DocumentRepository
	shares    docsysRepo.ShareRepository
	directory Directory
	tx        repositories.TransactionManager
}

// New connects storage and builds the services.
// Without DATABASE_URL the repositories live in memory, which only dev allows.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{Cfg: cfg, logger: logger}

	var r repos
	if cfg.DatabaseURL != "" {
		pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		a.Pool = pool
		logger.Info("database connected", "table_prefix", cfg.TablePrefix)

		repoConfig := &postgres.RepositoryConfig{
			Pool:   pool,
			Tables: postgres.NewTableNames(cfg.TablePrefix),
			Logger: logger,
		}
		r = repos{
			folders:   postgresDocsys.NewFolderRepository(repoConfig),
			documents: postgresDocsys.NewDocumentRepository(repoConfig),
			shares:    postgresDocsys.NewShareRepository(repoConfig),
			directory: postgresDocsys.NewUserDirectory(repoConfig),
			tx:        postgres.NewTransactionManager(pool, logger),
		}
	} else {
		if !cfg.IsDev() {
			return nil, errors.New("DATABASE_URL is required outside dev")
		}
		logger.Warn("DATABASE_URL not set: using in-memory repositories, data is lost on exit")
		store := memory.NewStore()
		r = repos{
			folders:   memory.NewFolderRepository(store),
			documents: memory.NewDocumentRepository(store),
			shares:    memory.NewShareRepository(store),
			directory: memory.NewDirectory(store),
			tx:        memory.NewTransactionManager(store),
		}
	}

	blobs, err := blob.New(ctx, cfg, logger)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("blob storage: %w", err)
	}
	a.Blobs = blobs

	a.Directory = r.directory
	a.Folders = docsystem.NewFolderService(r.folders, r.documents, r.shares, blobs, r.tx, logger)
	a.Documents = docsystem.NewDocumentService(r.documents, r.folders, r.shares, blobs, r.tx, logger)
	a.Shares = docsystem.NewShareService(r.shares, r.documents, r.directory, r.tx, logger)
	a.Tree = docsystem.NewTreeService(r.folders, r.documents, logger)
	a.Moves = docsystem.NewMoveService(r.folders, r.documents, a.Folders, a.Documents, logger)

	return a, nil
}

// Migrate applies pending schema migrations; a no-op on memory storage
func (a *App) Migrate(ctx context.Context) error {
	if a.Pool == nil {
		return nil
	}
	migrator, err := postgres.NewMigrator(a.Pool, a.Cfg.TablePrefix, a.logger)
	if err != nil {
		return err
	}
	defer migrator.Close()
	return migrator.Up(ctx)
}

// Seeder returns a seeder writing through the app's services
func (a *App) Seeder() *seed.Seeder {
	return seed.NewSeeder(a.Directory, a.Folders, a.Documents, a.Shares, a.logger)
}

// Close releases the database pool
func (a *App) Close() {
	if a.Pool != nil {
		a.Pool.Close()
	}
}
