// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/relabs-tech/aequus_trainer/internal/xslog"
)

// EnvPrefix is prepended to every environment override, e.g. AEQUUS_MUX_ADDR.
const EnvPrefix = "AEQUUS_"

// DefaultPath is the config file looked up when no --config flag is given.
const DefaultPath = "aequus_config.txt"

// Config holds all application configuration values.
type Config struct {
	// I2C Hardware
	I2CBus         string  `env:"I2C_BUS"`
	MuxAddr        I2CAddr `env:"MUX_ADDR"`
	MPUAddr        I2CAddr `env:"MPU_ADDR"`
	CalibrationDir string  `env:"CALIBRATION_DIR"`

	// Simulation (no hardware attached)
	SensorSimulate     bool  `env:"SENSOR_SIMULATE"`
	SensorSimulateFail []int `env:"SENSOR_SIMULATE_FAIL"`

	// Timing
	TickRate           int `env:"TICK_RATE"`            // ticks per second
	ProgressIntervalMS int `env:"PROGRESS_INTERVAL_MS"` // milliseconds between progress steps
	SettleDelayMS      int `env:"SETTLE_DELAY_MS"`      // milliseconds after the last slot

	// Training defaults
	DefaultDuration   int    `env:"DEFAULT_DURATION"`   // minutes
	DefaultDifficulty string `env:"DEFAULT_DIFFICULTY"` // Low, Medium, High

	// MQTT telemetry (disabled when broker is empty)
	MQTTBroker   string `env:"MQTT_BROKER"`
	MQTTClientID string `env:"MQTT_CLIENT_ID"`
	TopicPrefix  string `env:"TOPIC_PREFIX"`

	// Web monitor (disabled when address is empty)
	MonitorAddr string `env:"MONITOR_ADDR"`

	// SSD1306 status panel on the main I2C bus
	DisplayEnabled bool `env:"DISPLAY_ENABLED"`

	// Logging
	LogLevel string `env:"LOG_LEVEL"`
	LogFile  string `env:"LOG_FILE"`
}

// I2CAddr is a 7-bit I2C address that accepts decimal or 0x-prefixed hex.
type I2CAddr uint16

// UnmarshalText implements encoding.TextUnmarshaler so env overrides accept hex.
func (a *I2CAddr) UnmarshalText(text []byte) error {
	v, err := strconv.ParseUint(strings.TrimSpace(string(text)), 0, 16)
	if err != nil {
		return fmt.Errorf("invalid I2C address %q: %w", text, err)
	}
	if v > 0x7F {
		return fmt.Errorf("I2C address 0x%X out of 7-bit range", v)
	}
	*a = I2CAddr(v)
	return nil
}

func (a I2CAddr) String() string {
	return fmt.Sprintf("0x%02X", uint16(a))
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		I2CBus:             "1",
		MuxAddr:            0x70,
		MPUAddr:            0x68,
		CalibrationDir:     "../Calibration",
		TickRate:           60,
		ProgressIntervalMS: 50,
		SettleDelayMS:      1000,
		DefaultDuration:    5,
		DefaultDifficulty:  "Low",
		MQTTClientID:       "aequus-trainer",
		TopicPrefix:        "aequus",
		LogLevel:           string(xslog.Default),
		LogFile:            "aequus.log",
	}
}

// Load reads the configuration file on top of Default, then applies
// environment overrides, and returns the validated Config.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := Default()
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyEnv overrides fields from AEQUUS_-prefixed environment variables.
// Variables that are not set leave the current value untouched.
func (c *Config) ApplyEnv() error {
	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("failed to apply environment overrides: %w", err)
	}
	return nil
}

// Validate applies the checks Load performs, for configs built from Default.
func (c *Config) Validate() error {
	return c.validate()
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	// I2C Hardware
	case "I2C_BUS":
		c.I2CBus = value
	case "MUX_ADDR":
		if err := c.MuxAddr.UnmarshalText([]byte(value)); err != nil {
			return fmt.Errorf("invalid MUX_ADDR: %w", err)
		}
	case "MPU_ADDR":
		if err := c.MPUAddr.UnmarshalText([]byte(value)); err != nil {
			return fmt.Errorf("invalid MPU_ADDR: %w", err)
		}
	case "CALIBRATION_DIR":
		c.CalibrationDir = value

	// Simulation
	case "SENSOR_SIMULATE":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid SENSOR_SIMULATE %q: %w", value, err)
		}
		c.SensorSimulate = b
	case "SENSOR_SIMULATE_FAIL":
		c.SensorSimulateFail = nil
		if value == "" {
			return nil
		}
		for _, f := range strings.Split(value, ",") {
			slot, err := strconv.Atoi(strings.TrimSpace(f))
			if err != nil {
				return fmt.Errorf("invalid SENSOR_SIMULATE_FAIL entry %q: %w", f, err)
			}
			c.SensorSimulateFail = append(c.SensorSimulateFail, slot)
		}

	// Timing
	case "TICK_RATE":
		rate, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid TICK_RATE %q: %w", value, err)
		}
		c.TickRate = rate
	case "PROGRESS_INTERVAL_MS":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid PROGRESS_INTERVAL_MS %q: %w", value, err)
		}
		c.ProgressIntervalMS = interval
	case "SETTLE_DELAY_MS":
		delay, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid SETTLE_DELAY_MS %q: %w", value, err)
		}
		c.SettleDelayMS = delay

	// Training defaults
	case "DEFAULT_DURATION":
		minutes, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid DEFAULT_DURATION %q: %w", value, err)
		}
		c.DefaultDuration = minutes
	case "DEFAULT_DIFFICULTY":
		c.DefaultDifficulty = value

	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID":
		c.MQTTClientID = value
	case "TOPIC_PREFIX":
		c.TopicPrefix = value

	// Monitor
	case "MONITOR_ADDR":
		c.MonitorAddr = value

	// Display
	case "DISPLAY_ENABLED":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid DISPLAY_ENABLED %q: %w", value, err)
		}
		c.DisplayEnabled = b

	// Logging
	case "LOG_LEVEL":
		c.LogLevel = value
	case "LOG_FILE":
		c.LogFile = value

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

// validate checks that all required fields are set and in range.
func (c *Config) validate() error {
	if c.I2CBus == "" && !c.SensorSimulate {
		return fmt.Errorf("I2C_BUS is required")
	}
	if c.CalibrationDir == "" {
		return fmt.Errorf("CALIBRATION_DIR is required")
	}
	for _, slot := range c.SensorSimulateFail {
		if slot < 0 || slot > 5 {
			return fmt.Errorf("SENSOR_SIMULATE_FAIL slots must be 0-5, got %d", slot)
		}
	}
	if c.TickRate < 1 || c.TickRate > 240 {
		return fmt.Errorf("TICK_RATE must be 1-240, got %d", c.TickRate)
	}
	if c.ProgressIntervalMS < 0 {
		return fmt.Errorf("PROGRESS_INTERVAL_MS must not be negative, got %d", c.ProgressIntervalMS)
	}
	if c.SettleDelayMS < 0 {
		return fmt.Errorf("SETTLE_DELAY_MS must not be negative, got %d", c.SettleDelayMS)
	}
	if c.DefaultDuration < 1 || c.DefaultDuration > 60 {
		return fmt.Errorf("DEFAULT_DURATION must be 1-60 minutes, got %d", c.DefaultDuration)
	}
	switch c.DefaultDifficulty {
	case "Low", "Medium", "High":
	default:
		return fmt.Errorf("DEFAULT_DIFFICULTY must be Low, Medium or High, got %q", c.DefaultDifficulty)
	}
	if c.MQTTBroker != "" && c.MQTTClientID == "" {
		return fmt.Errorf("MQTT_CLIENT_ID is required when MQTT_BROKER is set")
	}
	return nil
}

// TickInterval is the duration of one UI tick.
func (c *Config) TickInterval() time.Duration {
	return time.Second / time.Duration(c.TickRate)
}

// ProgressInterval is the pause between two progress steps of a sweep.
func (c *Config) ProgressInterval() time.Duration {
	return time.Duration(c.ProgressIntervalMS) * time.Millisecond
}

// SettleDelay is the pause between the last slot and the sweep verdict.
func (c *Config) SettleDelay() time.Duration {
	return time.Duration(c.SettleDelayMS) * time.Millisecond
}
