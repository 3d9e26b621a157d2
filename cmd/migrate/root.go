package main

import (
	"context"
	"log/slog"

	"students/config"
	logs "students/internal/infra/log"
	"students/internal/infra/persistence/database"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for the migration CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the students database schema",
		Long: `Apply, roll back or inspect the embedded SQL migrations against the
database described by config/config.yaml and DATABASE_* environment variables.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(newUpCmd())
	cmd.AddCommand(newDownCmd())
	cmd.AddCommand(newStatusCmd())

	return cmd
}

func newUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd.Context(), func(ctx context.Context, m *database.Migrator) error {
				if err := m.Up(ctx); err != nil {
					return err
				}
				cmd.Println("Migrations applied")

				return nil
			})
		},
	}
}

func newDownCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd.Context(), func(ctx context.Context, m *database.Migrator) error {
				if err := m.Down(ctx); err != nil {
					return err
				}
				cmd.Println("Rolled back one migration")

				return nil
			})
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which migrations have been applied",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd.Context(), func(ctx context.Context, m *database.Migrator) error {
				return m.Status(ctx)
			})
		},
	}
}

func withMigrator(ctx context.Context, fn func(context.Context, *database.Migrator) error) error {
	cfg, err := config.New()
	if err != nil {
		return errors.Wrap(err, "load config")
	}

	logger, err := logs.New(logs.Params{Config: cfg})
	if err != nil {
		return errors.Wrap(err, "build logger")
	}

	db, err := database.Open(cfg, logger)
	if err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return errors.Wrap(err, "failed to get sql.DB")
	}
	defer func() {
		if closeErr := sqlDB.Close(); closeErr != nil {
			logger.Warn("Failed to close database", slog.Any("error", closeErr))
		}
	}()

	migrator, err := database.NewMigrator(sqlDB, cfg.Database.Driver)
	if err != nil {
		return err
	}

	logger.Info("Running migrations",
		slog.String("driver", cfg.Database.Driver),
		slog.String("host", cfg.Database.Host),
	)

	return fn(ctx, migrator)
}
