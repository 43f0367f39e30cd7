package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/relabs-tech/aequus_trainer/internal/app"
	"github.com/relabs-tech/aequus_trainer/internal/xslog"
)

func watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print the telemetry a running trainer publishes over MQTT",
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

			return app.RunWatch(cmd.Context(), cfg, logger, cmd.OutOrStdout())
		},
	}
}
