package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/relabs-tech/aequus_trainer/internal/app"
	"github.com/relabs-tech/aequus_trainer/internal/xslog"
)

func sweepCmd() *cobra.Command {
	var read bool

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Connect all sensors once and print their status",
		Long:  "Runs one sensor bring-up without the UI. Exits non-zero when a sensor is missing.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			level, err := xslog.Parse(cfg.LogLevel)
			if err != nil {
				return err
			}
			logger := xslog.NewLogger(os.Stderr, level)

			return app.RunSweep(cmd.Context(), cfg, logger, cmd.OutOrStdout(), read)
		},
	}
	cmd.Flags().BoolVar(&read, "read", false, "print one raw sample per connected sensor")

	return cmd
}
