package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/relabs-tech/aequus_trainer/internal/bringup"
	"github.com/relabs-tech/aequus_trainer/internal/calibration"
	"github.com/relabs-tech/aequus_trainer/internal/config"
	"github.com/relabs-tech/aequus_trainer/internal/sensors"
	"github.com/relabs-tech/aequus_trainer/internal/xslog"
)

// CalibrateOptions controls a capture run.
type CalibrateOptions struct {
	Samples int           // per sensor
	Period  time.Duration // between samples
}

// RunCalibrate connects every reachable sensor uncalibrated, averages
// samples taken with the device flat and still, and writes
// <CALIBRATION_DIR>/mpuN_cal.txt for each.
func RunCalibrate(ctx context.Context, cfg *config.Config, logger *slog.Logger, w io.Writer, opts CalibrateOptions) error {
	if opts.Samples < 1 {
		return fmt.Errorf("calibrate: samples must be positive, got %d", opts.Samples)
	}

	devices, err := OpenDevices(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := devices.Close(); err != nil {
			logger.Warn("closing devices", xslog.Error(err))
		}
	}()

	slots := bringup.Slots(cfg.CalibrationDir)
	targets := make(map[string]string, len(slots))
	for i := range slots {
		targets[slots[i].Name] = slots[i].CalibrationPath
		slots[i].CalibrationPath = ""
	}

	sweep := bringup.NewSweep(devices.Mux, devices.Opener, slots, bringup.Pacing{}, logger)
	defer func() {
		if err := sweep.Close(); err != nil {
			logger.Warn("closing sensors", xslog.Error(err))
		}
	}()
	if err := sweep.Run(ctx, &lineReporter{w: w, logger: logger}); err != nil {
		return fmt.Errorf("calibrate: %w", err)
	}

	written := 0
	for _, h := range sweep.Handles() {
		reader, ok := h.(sensors.IMURawReader)
		if !ok {
			continue
		}

		accel, gyro, err := calibration.Capture(ctx, reader.ReadRaw, opts.Samples, opts.Period)
		if err != nil {
			return fmt.Errorf("calibrate %s: %w", h.Name(), err)
		}
		res, err := calibration.Compute(h.Name(), accel, gyro)
		if err != nil {
			return err
		}

		if err := sensors.WriteCalibration(targets[h.Name()], res.Offsets); err != nil {
			return fmt.Errorf("calibrate %s: %w", h.Name(), err)
		}
		written++

		o := res.Offsets
		fmt.Fprintf(w, "%-6s offsets accel=(%d,%d,%d) gyro=(%d,%d,%d) confidence=%.2f\n",
			h.Name(), o.Ax, o.Ay, o.Az, o.Gx, o.Gy, o.Gz, res.Confidence)
		if res.Confidence < 0.5 {
			fmt.Fprintf(w, "%-6s warning: device was moving, repeat with the trainer still\n", h.Name())
		}
		logger.Info("calibration written",
			xslog.Sensor(h.Name()),
			slog.String("path", targets[h.Name()]),
			slog.Float64("confidence", res.Confidence))
	}

	fmt.Fprintf(w, "%d/%d sensors calibrated\n", written, len(slots))
	if written < len(slots) {
		return ErrSensorsMissing
	}
	return nil
}
