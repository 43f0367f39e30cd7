// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/relabs-tech/aequus_trainer/internal/app"
	"github.com/relabs-tech/aequus_trainer/internal/config"
	"github.com/relabs-tech/aequus_trainer/internal/xslog"
)

var configPath string

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "aequus",
		Short: "Rehabilitation trainer console",
		Long:  "Runs the trainer menus and brings up the six motion sensors before a session.",
		RunE:  runTrainer,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "path to configuration file")

	rootCmd.AddCommand(sweepCmd())
	rootCmd.AddCommand(calibrateCmd())
	rootCmd.AddCommand(registersCmd())
	rootCmd.AddCommand(watchCmd())

	if err := fang.Execute(context.Background(), rootCmd, fang.WithNotifySignal(os.Interrupt, syscall.SIGTERM)); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config file. A missing default file falls back to
// built-in defaults plus environment; an explicit --config must exist.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err == nil {
		return cfg, nil
	}
	if cmd.Flags().Changed("config") || !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	cfg = config.Default()
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runTrainer(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	level, err := xslog.Parse(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger, closer, err := xslog.OpenFile(cfg.LogFile, level)
	if err != nil {
		return err
	}
	defer closer.Close()

	return app.RunTrainer(cmd.Context(), cfg, logger)
}
