// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"encoding/binary"
	"fmt"
	"log/slog"

	"periph.io/x/conn/v3/i2c"

	"github.com/relabs-tech/aequus_trainer/internal/imu"
	"github.com/relabs-tech/aequus_trainer/internal/xslog"
)

// DefaultMPUAddr is the MPU6050 address with AD0 low.
const DefaultMPUAddr = 0x68

// MPU6050 registers used during bring-up and sampling.
const (
	regConfig     = 0x1A
	regGyroConfig = 0x1B
	regAccelCfg   = 0x1C
	regAccelXOutH = 0x3B
	regPwrMgmt1   = 0x6B
	regWhoAmI     = 0x75

	whoAmIMPU6050 = 0x68
	pwrSleep      = 0x40
	dlpf44Hz      = 0x03
)

// IMURawReader defines the interface for reading raw IMU data.
type IMURawReader interface {
	ReadRaw() (imu.IMURaw, error)
}

// MPU6050 is one connected sensor slot. Reads re-select the slot's mux
// channel, so handles on different channels can be used in any order.
type MPU6050 struct {
	name    string
	channel int
	dev     i2c.Dev
	mux     *Mux
	offsets imu.Offsets
}

// Opener constructs MPU6050 handles on whatever mux channel is currently
// selected.
type Opener struct {
	bus    i2c.Bus
	mux    *Mux
	addr   uint16
	logger *slog.Logger
}

func NewOpener(bus i2c.Bus, mux *Mux, addr uint16, logger *slog.Logger) *Opener {
	return &Opener{bus: bus, mux: mux, addr: addr, logger: logger}
}

// Open probes WHO_AM_I, loads the calibration file, and wakes the device.
// The caller selects the channel first.
func (o *Opener) Open(name, calibrationPath string) (*MPU6050, error) {
	channel := o.mux.Current()
	if channel < 0 {
		return nil, fmt.Errorf("%s: no mux channel selected: %w", name, ErrChannel)
	}

	s := &MPU6050{
		name:    name,
		channel: channel,
		dev:     i2c.Dev{Bus: o.bus, Addr: o.addr},
		mux:     o.mux,
	}

	id := make([]byte, 1)
	if err := s.dev.Tx([]byte{regWhoAmI}, id); err != nil {
		return nil, fmt.Errorf("%s: WHO_AM_I: %w: %w", name, ErrNotPresent, err)
	}
	if id[0] != whoAmIMPU6050 {
		return nil, fmt.Errorf("%s: WHO_AM_I = 0x%02X: %w", name, id[0], ErrNotPresent)
	}

	// Loaded before the wake writes, so a bad file leaves the chip asleep.
	// An empty path opens the sensor uncalibrated, for capturing offsets.
	if calibrationPath != "" {
		offsets, err := LoadCalibration(calibrationPath)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		s.offsets = offsets
	}

	for _, w := range [][]byte{
		{regPwrMgmt1, 0x00},   // wake, internal oscillator
		{regConfig, dlpf44Hz}, // DLPF
		{regGyroConfig, 0x00}, // ±250°/s
		{regAccelCfg, 0x00},   // ±2g
	} {
		if _, err := s.dev.Write(w); err != nil {
			return nil, fmt.Errorf("%s: write reg 0x%02X: %w", name, w[0], err)
		}
	}

	o.logger.Debug("sensor initialized",
		xslog.Sensor(name),
		xslog.Channel(channel),
		slog.String("calibration", calibrationPath),
	)
	return s, nil
}

func (s *MPU6050) Name() string { return s.name }

func (s *MPU6050) Channel() int { return s.channel }

// ReadRaw reads accelerometer, temperature, and gyroscope in one burst.
func (s *MPU6050) ReadRaw() (imu.IMURaw, error) {
	buf := make([]byte, 14)
	err := s.mux.Do(s.channel, func() error {
		return s.dev.Tx([]byte{regAccelXOutH}, buf)
	})
	if err != nil {
		return imu.IMURaw{}, fmt.Errorf("%s: read sample: %w", s.name, err)
	}

	word := func(i int) int16 { return int16(binary.BigEndian.Uint16(buf[i:])) }
	raw := imu.IMURaw{
		Source: s.name,
		Ax:     word(0),
		Ay:     word(2),
		Az:     word(4),
		Temp:   word(6),
		Gx:     word(8),
		Gy:     word(10),
		Gz:     word(12),
	}
	return s.offsets.Apply(raw), nil
}

// Close puts the device back to sleep.
func (s *MPU6050) Close() error {
	err := s.mux.Do(s.channel, func() error {
		_, err := s.dev.Write([]byte{regPwrMgmt1, pwrSleep})
		return err
	})
	if err != nil {
		return fmt.Errorf("%s: sleep: %w", s.name, err)
	}
	return nil
}
