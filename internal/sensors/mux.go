// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"
	"sync"

	"periph.io/x/conn/v3/i2c"
)

// DefaultMuxAddr is the factory address of a TCA9548A with A0-A2 tied low.
const DefaultMuxAddr = 0x70

const muxChannels = 8

// Mux drives a TCA9548A-class I2C switch. Every MPU6050 sits at the same
// address behind its own channel, so exactly one channel is enabled at a time.
type Mux struct {
	mu      sync.Mutex
	dev     i2c.Dev
	current int
}

// NewMux binds a multiplexer at addr on bus. No bus traffic happens until
// the first Select.
func NewMux(bus i2c.Bus, addr uint16) *Mux {
	return &Mux{
		dev:     i2c.Dev{Bus: bus, Addr: addr},
		current: -1,
	}
}

// Select enables only the given channel.
func (m *Mux) Select(channel int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.selectLocked(channel)
}

// Current returns the selected channel, or -1 if none is selected.
func (m *Mux) Current() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Do selects channel and runs fn while holding the bus, so a transaction
// on one sensor can't interleave with a channel switch for another.
func (m *Mux) Do(channel int, fn func() error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.selectLocked(channel); err != nil {
		return err
	}
	return fn()
}

// Disable turns every channel off.
func (m *Mux) Disable() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.dev.Write([]byte{0}); err != nil {
		return fmt.Errorf("mux %s: disable: %w", &m.dev, err)
	}
	m.current = -1
	return nil
}

func (m *Mux) selectLocked(channel int) error {
	if channel < 0 || channel >= muxChannels {
		return fmt.Errorf("mux %s: channel %d: %w", &m.dev, channel, ErrChannel)
	}
	if _, err := m.dev.Write([]byte{1 << channel}); err != nil {
		m.current = -1
		return fmt.Errorf("mux %s: select channel %d: %w", &m.dev, channel, err)
	}
	m.current = channel
	return nil
}
