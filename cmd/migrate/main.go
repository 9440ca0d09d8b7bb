package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"portal/internal/config"
	"portal/internal/logger"
	"portal/internal/repository/postgres"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "migrate",
		Short:        "Manage the portal database schema",
		SilenceUsage: true,
	}

	cmd.AddCommand(
		migrateCmd("up", "Apply all pending migrations", (*postgres.Migrator).Up),
		migrateCmd("down", "Roll back the most recent migration", (*postgres.Migrator).Down),
		migrateCmd("status", "Show applied and pending migrations", (*postgres.Migrator).Status),
		resetCmd(),
		versionCmd(),
	)
	return cmd
}

func migrateCmd(use, short string, fn func(*postgres.Migrator, context.Context) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd.Context(), func(m *postgres.Migrator, _ *config.Config) error {
				return fn(m, cmd.Context())
			})
		},
	}
}

func resetCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Roll back every migration (drops all portal tables)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd.Context(), func(m *postgres.Migrator, cfg *config.Config) error {
				if cfg.Environment == "prod" && !force {
					return errors.New("refusing to reset a prod database without --force")
				}
				return m.Reset(cmd.Context())
			})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "allow reset in prod")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd.Context(), func(m *postgres.Migrator, cfg *config.Config) error {
				version, err := m.Version(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s schema version %d\n", cfg.Environment, version)
				return nil
			})
		},
	}
}

// withMigrator loads config, connects and hands a migrator for the configured prefix to fn
func withMigrator(ctx context.Context, fn func(*postgres.Migrator, *config.Config) error) error {
	_ = godotenv.Load()
	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is not set")
	}

	log, cleanup, err := logger.New(logger.OptionsFromConfig(cfg))
	if err != nil {
		return err
	}
	defer cleanup()
	log.Info("migrating", "environment", cfg.Environment, "table_prefix", cfg.TablePrefix)

	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	m, err := postgres.NewMigrator(pool, cfg.TablePrefix, log)
	if err != nil {
		return err
	}
	defer m.Close()

	return fn(m, cfg)
}

