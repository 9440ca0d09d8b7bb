package main

import (
	"context"
	"flag"
	"log"
	"os"

	"portal/internal/app"
	"portal/internal/config"
	"portal/internal/logger"
	"portal/internal/repository/postgres"
	"portal/internal/seed"

	"github.com/joho/godotenv"
)

func main() {
	file := flag.String("file", "", "YAML fixture to load (default: embedded demo fixture)")
	reset := flag.Bool("reset", false, "Roll back all migrations before seeding (fresh start)")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && *reset {
		log.Fatalf("BLOCKED: Cannot run --reset in production environment")
	}
	if cfg.DatabaseURL == "" {
		log.Fatalf("DATABASE_URL is not set; the in-memory server seeds itself on startup")
	}

	appLogger, cleanup, err := logger.New(logger.OptionsFromConfig(cfg))
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer cleanup()

	fixture, err := loadFixture(*file)
	if err != nil {
		log.Fatalf("Failed to load fixture: %v", err)
	}

	ctx := context.Background()
	a, err := app.New(ctx, cfg, appLogger)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer a.Close()

	if *reset {
		appLogger.Warn("resetting schema", "table_prefix", cfg.TablePrefix)
		m, err := postgres.NewMigrator(a.Pool, cfg.TablePrefix, appLogger)
		if err != nil {
			log.Fatalf("Failed to create migrator: %v", err)
		}
		err = m.Reset(ctx)
		m.Close()
		if err != nil {
			log.Fatalf("Failed to reset schema: %v", err)
		}
	}

	if err := a.Migrate(ctx); err != nil {
		log.Fatalf("Failed to migrate: %v", err)
	}

	summary, err := a.Seeder().Apply(ctx, fixture)
	if err != nil {
		log.Fatalf("Seeding stopped after %d folders, %d documents: %v", summary.Folders, summary.Documents, err)
	}
	log.Printf("Seeding complete: %d users, %d folders, %d documents, %d shares",
		summary.Users, summary.Folders, summary.Documents, summary.Shares)
}

func loadFixture(path string) (*seed.Fixture, error) {
	if path == "" {
		return seed.Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return seed.Parse(f)
}
