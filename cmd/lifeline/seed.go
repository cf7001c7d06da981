package main

import (
	"fmt"
	"time"

	"github.com/phrazzld/lifeline-api/internal/platform/fixtures"
	"github.com/phrazzld/lifeline-api/internal/platform/postgres"
	"github.com/spf13/cobra"
)

func newSeedCmd(opts *rootOptions) *cobra.Command {
	var (
		file    string
		migrate bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load demonstration facilities, donors, inventory and request history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			seed, err := fixtures.LoadFile(file)
			if err != nil {
				return err
			}

			cfg, log, err := loadConfig(opts)
			if err != nil {
				return err
			}
			db, err := openDatabase(cmd.Context(), cfg, log, migrate)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			seeder, err := fixtures.NewSeeder(fixtures.Stores{
				Facilities: postgres.NewPostgresFacilityStore(db, log),
				Donors:     postgres.NewPostgresDonorStore(db, log),
				Inventory:  postgres.NewPostgresInventoryStore(db, log),
				Requests:   postgres.NewPostgresRequestStore(db, log),
			}, log, time.Now)
			if err != nil {
				return err
			}

			sum, err := seeder.Apply(cmd.Context(), seed)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(),
				"seeded %d facilities, %d donors, %d inventory units, %d requests (%d already present)\n",
				sum.Facilities, sum.Donors, sum.Inventory, sum.Requests, sum.Skipped)
			return err
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "seed.yaml", "seed file to load")
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply pending migrations first")
	return cmd
}
