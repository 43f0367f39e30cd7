package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/relabs-tech/aequus_trainer/internal/app"
	"github.com/relabs-tech/aequus_trainer/internal/xslog"
)

func calibrateCmd() *cobra.Command {
	opts := app.CalibrateOptions{
		Samples: 200,
		Period:  10 * time.Millisecond,
	}

	cmd := &cobra.Command{
		Use:   "calibrate",
		Short: "Capture offsets for every sensor",
		Long: "Place the trainer flat and still, then run this command. Offsets are\n" +
			"written to mpuN_cal.txt in the calibration directory.",
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

			return app.RunCalibrate(cmd.Context(), cfg, logger, cmd.OutOrStdout(), opts)
		},
	}
	cmd.Flags().IntVar(&opts.Samples, "samples", opts.Samples, "samples averaged per sensor")
	cmd.Flags().DurationVar(&opts.Period, "period", opts.Period, "time between samples")

	return cmd
}
