// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"errors"
	"fmt"
	"log/slog"

	"periph.io/x/conn/v3/i2c"

	"github.com/relabs-tech/aequus_trainer/internal/bringup"
	"github.com/relabs-tech/aequus_trainer/internal/config"
	"github.com/relabs-tech/aequus_trainer/internal/display"
	"github.com/relabs-tech/aequus_trainer/internal/sensors"
	"github.com/relabs-tech/aequus_trainer/internal/xslog"
)

// Devices is the hardware (or its simulation) a trainer session runs on.
type Devices struct {
	Mux    bringup.Mux
	Opener bringup.Opener
	Panel  *display.Panel // nil when disabled or absent

	bus     i2c.BusCloser
	realMux *sensors.Mux
}

// OpenDevices opens the I2C bus, mux and optional display, or the
// simulation when SENSOR_SIMULATE is set.
func OpenDevices(cfg *config.Config, logger *slog.Logger) (*Devices, error) {
	if cfg.SensorSimulate {
		sim := sensors.NewSimulated(cfg.SensorSimulateFail)
		logger.Info("using simulated sensors", slog.Any("failing_channels", cfg.SensorSimulateFail))
		return &Devices{
			Mux:    sim,
			Opener: simulatedOpener(sim),
		}, nil
	}

	bus, err := sensors.OpenBus(cfg.I2CBus)
	if err != nil {
		return nil, err
	}
	logger.Info("I2C bus opened", slog.String("bus", cfg.I2CBus))

	mux := sensors.NewMux(bus, uint16(cfg.MuxAddr))
	d := &Devices{
		Mux:     mux,
		Opener:  hardwareOpener(sensors.NewOpener(bus, mux, uint16(cfg.MPUAddr), logger)),
		bus:     bus,
		realMux: mux,
	}

	if cfg.DisplayEnabled {
		panel, err := display.Open(bus, logger)
		if err != nil {
			// The trainer works without the panel.
			logger.Warn("display unavailable", xslog.Error(err))
		} else {
			d.Panel = panel
		}
	}

	return d, nil
}

func (d *Devices) Close() error {
	var errs []error
	if d.realMux != nil {
		if err := d.realMux.Disable(); err != nil {
			errs = append(errs, err)
		}
	}
	if d.bus != nil {
		if err := d.bus.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close I2C bus: %w", err))
		}
	}
	return errors.Join(errs...)
}

// The sensors package returns concrete handles; a nil pointer must not
// become a non-nil bringup.Handle.

func hardwareOpener(o *sensors.Opener) bringup.Opener {
	return bringup.OpenerFunc(func(name, calibrationPath string) (bringup.Handle, error) {
		s, err := o.Open(name, calibrationPath)
		if err != nil {
			return nil, err
		}
		return s, nil
	})
}

func simulatedOpener(sim *sensors.Simulated) bringup.Opener {
	return bringup.OpenerFunc(func(name, calibrationPath string) (bringup.Handle, error) {
		s, err := sim.Open(name, calibrationPath)
		if err != nil {
			return nil, err
		}
		return s, nil
	})
}
