package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/lifeline-api/internal/config"
	"github.com/phrazzld/lifeline-api/internal/platform/logger"
	"github.com/phrazzld/lifeline-api/internal/platform/postgres"
	"github.com/spf13/cobra"
)

// rootOptions are the flags shared by every command.
type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "lifeline",
		Short:        "Blood supply matching, prioritization and demand forecasting",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "",
		"path to a YAML config file (defaults to ./config.yaml when present)")

	cmd.AddCommand(
		newServeCmd(opts),
		newMigrateCmd(opts),
		newTrainCmd(opts),
		newSeedCmd(opts),
	)
	return cmd
}

// loadConfig reads configuration and installs the process logger.
func loadConfig(opts *rootOptions) (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadFile(opts.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}
	return cfg, log, nil
}

// openDatabase connects to PostgreSQL and applies pending migrations when
// auto_migrate is set or migrate is true.
func openDatabase(ctx context.Context, cfg *config.Config, log *slog.Logger, migrate bool) (*sql.DB, error) {
	db, err := postgres.Open(ctx, cfg.Database, log)
	if err != nil {
		return nil, err
	}

	if migrate || cfg.Database.AutoMigrate {
		if err := postgres.Migrate(ctx, db, "up", log); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return db, nil
}
