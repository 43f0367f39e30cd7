package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/relabs-tech/aequus_trainer/internal/app"
	"github.com/relabs-tech/aequus_trainer/internal/xslog"
)

func registersCmd() *cobra.Command {
	var (
		slot   int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "registers",
		Short: "Dump the configuration registers of one sensor",
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

			return app.RunRegisters(cfg, logger, cmd.OutOrStdout(), slot, asJSON)
		},
	}
	cmd.Flags().IntVar(&slot, "slot", 0, "sensor slot 0-5")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the registers as JSON")

	return cmd
}
