package main

import (
	"github.com/phrazzld/lifeline-api/internal/platform/postgres"
	"github.com/spf13/cobra"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate [command] [args...]",
		Short: "Run database migrations (up, down, status, version, redo, reset)",
		Long: "Run a goose migration command against the embedded schema. " +
			"Without arguments, all pending migrations are applied.",
		RunE: func(cmd *cobra.Command, args []string) error {
			command := "up"
			if len(args) > 0 {
				command, args = args[0], args[1:]
			}

			cfg, log, err := loadConfig(opts)
			if err != nil {
				return err
			}
			db, err := openDatabase(cmd.Context(), cfg, log, false)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			return postgres.Migrate(cmd.Context(), db, command, log, args...)
		},
	}
}
