// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	go_json "github.com/goccy/go-json"

	"github.com/relabs-tech/aequus_trainer/internal/bringup"
	"github.com/relabs-tech/aequus_trainer/internal/config"
	"github.com/relabs-tech/aequus_trainer/internal/sensors"
	"github.com/relabs-tech/aequus_trainer/internal/xslog"
)

// ErrNoRegisterAccess is returned when the opened handle cannot dump registers.
var ErrNoRegisterAccess = errors.New("sensor does not expose registers")

// RegisterDumper is implemented by sensor handles that can read back their
// configuration registers.
type RegisterDumper interface {
	DumpRegisters() ([]sensors.RegisterValue, error)
}

// registerDump is the JSON shape printed with --json.
type registerDump struct {
	Sensor    string                  `json:"sensor"`
	Channel   int                     `json:"channel"`
	Registers []sensors.RegisterValue `json:"registers"`
}

// RunRegisters opens the sensor in slot uncalibrated and prints its
// register map to w.
func RunRegisters(cfg *config.Config, logger *slog.Logger, w io.Writer, slot int, asJSON bool) error {
	if slot < 0 || slot >= bringup.SlotCount {
		return fmt.Errorf("slot must be 0-%d, got %d", bringup.SlotCount-1, slot)
	}
	s := bringup.Slots(cfg.CalibrationDir)[slot]

	devices, err := OpenDevices(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := devices.Close(); err != nil {
			logger.Warn("closing devices", xslog.Error(err))
		}
	}()

	if err := devices.Mux.Select(s.Channel); err != nil {
		return fmt.Errorf("%s: %w", s.Name, err)
	}
	h, err := devices.Opener.Open(s.Name, "")
	if err != nil {
		return err
	}
	defer func() {
		if err := h.Close(); err != nil {
			logger.Warn("closing sensor", xslog.Sensor(s.Name), xslog.Error(err))
		}
	}()

	dumper, ok := h.(RegisterDumper)
	if !ok {
		return fmt.Errorf("%s: %w", s.Name, ErrNoRegisterAccess)
	}
	values, err := dumper.DumpRegisters()
	if err != nil {
		return err
	}
	logger.Debug("registers read", xslog.Sensor(s.Name), slog.Int("count", len(values)))

	if asJSON {
		enc := go_json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(registerDump{Sensor: s.Name, Channel: s.Channel, Registers: values})
	}

	fmt.Fprintf(w, "%s (channel %d)\n", s.Name, s.Channel)
	for _, v := range values {
		fmt.Fprintln(w, v)
	}
	return nil
}
