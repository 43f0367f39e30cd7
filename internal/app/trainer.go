package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	tea "charm.land/bubbletea/v2"
	"golang.org/x/sync/errgroup"

	"github.com/relabs-tech/aequus_trainer/internal/bringup"
	"github.com/relabs-tech/aequus_trainer/internal/config"
	"github.com/relabs-tech/aequus_trainer/internal/menu"
	"github.com/relabs-tech/aequus_trainer/internal/monitor"
	"github.com/relabs-tech/aequus_trainer/internal/telemetry"
	"github.com/relabs-tech/aequus_trainer/internal/tui"
	"github.com/relabs-tech/aequus_trainer/internal/xslog"
)

// Preferences converts the configured training defaults.
func Preferences(cfg *config.Config) (menu.Preferences, error) {
	difficulty, err := menu.ParseDifficulty(cfg.DefaultDifficulty)
	if err != nil {
		return menu.Preferences{}, err
	}
	return menu.Preferences{Duration: cfg.DefaultDuration, Difficulty: difficulty}, nil
}

// Pacing converts the configured sweep timing.
func Pacing(cfg *config.Config) bringup.Pacing {
	return bringup.Pacing{
		ProgressInterval: cfg.ProgressInterval(),
		SettleDelay:      cfg.SettleDelay(),
	}
}

// sinks collects the configured telemetry consumers. The returned cleanup
// disconnects MQTT.
func sinks(cfg *config.Config, devices *Devices, hub *monitor.Hub, logger *slog.Logger) (telemetry.Multi, func()) {
	var out telemetry.Multi
	cleanup := func() {}

	if cfg.MQTTBroker != "" {
		client, err := telemetry.Connect(cfg.MQTTBroker, cfg.MQTTClientID)
		if err != nil {
			logger.Warn("MQTT telemetry disabled", xslog.Error(err))
		} else {
			logger.Info("connected to MQTT", slog.String("broker", cfg.MQTTBroker))
			out = append(out, telemetry.NewMQTT(client, cfg.TopicPrefix, logger))
			cleanup = func() { client.Disconnect(250) }
		}
	}
	if hub != nil {
		out = append(out, hub)
	}
	if devices.Panel != nil {
		out = append(out, devices.Panel)
	}
	return out, cleanup
}

// RunTrainer runs the interactive trainer until the user quits or ctx is
// canceled.
func RunTrainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting aequus trainer")

	prefs, err := Preferences(cfg)
	if err != nil {
		return err
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

	var hub *monitor.Hub
	if cfg.MonitorAddr != "" {
		hub = monitor.NewHub(logger)
	}

	out, disconnect := sinks(cfg, devices, hub, logger)
	defer disconnect()
	queue := telemetry.NewQueue(telemetry.DefaultQueueSize, out, logger)

	model := tui.New(tui.Deps{
		Logger:         logger,
		Mux:            devices.Mux,
		Opener:         devices.Opener,
		CalibrationDir: cfg.CalibrationDir,
		Pacing:         Pacing(cfg),
		TickInterval:   cfg.TickInterval(),
		Defaults:       prefs,
		Sink:           queue,
	})
	defer func() {
		if err := model.Close(); err != nil {
			logger.Warn("closing sensors", xslog.Error(err))
		}
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return queue.Run(gctx)
	})

	if hub != nil {
		server := monitor.NewServer(cfg.MonitorAddr, hub, logger)
		g.Go(func() error {
			return server.Run(gctx)
		})
	}

	g.Go(func() error {
		// Quitting the UI stops everything else.
		defer cancel()
		p := tea.NewProgram(&model, tea.WithContext(gctx))
		if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return fmt.Errorf("trainer UI: %w", err)
		}
		return nil
	})

	err = g.Wait()
	logger.Info("aequus trainer stopped")
	return err
}
