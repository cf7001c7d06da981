package main

import (
	"encoding/json"
	"fmt"

	"github.com/phrazzld/lifeline-api/internal/service/forecast"
	"github.com/spf13/cobra"
)

func newTrainCmd(opts *rootOptions) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Retrain the demand forecaster from stored request history",
		Long: "Fit a new version of the trainable forecaster on fulfilled requests " +
			"and persist it to the configured model store, regardless of the " +
			"configured serving strategy.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := loadConfig(opts)
			if err != nil {
				return err
			}
			cfg.Forecast.Strategy = forecast.StrategyTrained
			cfg.Forecast.RetrainOnStart = false

			db, err := openDatabase(cmd.Context(), cfg, log, false)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			app, err := newApplication(cmd.Context(), cfg, log, db)
			if err != nil {
				return err
			}

			resp := app.facade.RetrainForecasterWindow(cmd.Context(), days)
			if resp.Error != nil {
				return fmt.Errorf("training failed: %w", resp.Error)
			}

			out, err := json.MarshalIndent(resp.Data, "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return err
		},
	}

	cmd.Flags().IntVar(&days, "days", 0, "history window in days (defaults to forecast.history_window_days)")
	return cmd
}
