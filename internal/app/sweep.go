package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/relabs-tech/aequus_trainer/internal/bringup"
	"github.com/relabs-tech/aequus_trainer/internal/config"
	"github.com/relabs-tech/aequus_trainer/internal/sensors"
	"github.com/relabs-tech/aequus_trainer/internal/xslog"
)

// ErrSensorsMissing is returned by RunSweep when a slot failed to connect.
var ErrSensorsMissing = errors.New("not all sensors connected")

// lineReporter prints sensor results as they arrive; progress is only
// logged.
type lineReporter struct {
	w      io.Writer
	logger *slog.Logger
}

func (r *lineReporter) RenderProgress(percent int) {
	if percent%25 == 0 {
		r.logger.Debug("sweep progress", slog.Int("percent", percent))
	}
}

func (r *lineReporter) ReportSensorStatus(name string, status bringup.Status) {
	fmt.Fprintf(r.w, "%-6s %s\n", name, status)
}

// RunSweep performs one headless bring-up and prints the result of every
// slot to w. With read set, one raw sample is printed per connected sensor.
func RunSweep(ctx context.Context, cfg *config.Config, logger *slog.Logger, w io.Writer, read bool) error {
	devices, err := OpenDevices(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := devices.Close(); err != nil {
			logger.Warn("closing devices", xslog.Error(err))
		}
	}()

	sweep := bringup.NewSweep(devices.Mux, devices.Opener, bringup.Slots(cfg.CalibrationDir), Pacing(cfg), logger)
	defer func() {
		if err := sweep.Close(); err != nil {
			logger.Warn("closing sensors", xslog.Error(err))
		}
	}()

	if err := sweep.Run(ctx, &lineReporter{w: w, logger: logger}); err != nil {
		return fmt.Errorf("sweep: %w", err)
	}

	for _, r := range sweep.Results() {
		if r.Err != nil {
			fmt.Fprintf(w, "%-6s channel %d: %v\n", r.Slot.Name, r.Slot.Channel, r.Err)
		}
	}

	if read {
		for _, h := range sweep.Handles() {
			reader, ok := h.(sensors.IMURawReader)
			if !ok {
				continue
			}
			raw, err := reader.ReadRaw()
			if err != nil {
				fmt.Fprintf(w, "%-6s read error: %v\n", h.Name(), err)
				continue
			}
			fmt.Fprintf(w, "%-6s accel=(%6d,%6d,%6d) gyro=(%6d,%6d,%6d) temp=%.1fC\n",
				h.Name(), raw.Ax, raw.Ay, raw.Az, raw.Gx, raw.Gy, raw.Gz, raw.Celsius())
		}
	}

	fmt.Fprintf(w, "%d/%d sensors connected\n", sweep.Connected(), len(sweep.Results()))
	if !sweep.AllConnected() {
		return ErrSensorsMissing
	}
	return nil
}
