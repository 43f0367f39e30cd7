package tui

import (
	"log/slog"
	"time"

	"github.com/relabs-tech/aequus_trainer/internal/bringup"
	"github.com/relabs-tech/aequus_trainer/internal/menu"
	"github.com/relabs-tech/aequus_trainer/internal/telemetry"
)

type Deps struct {
	Logger *slog.Logger

	// Sensor bring-up, run each time the setup screen is entered.
	Mux            bringup.Mux
	Opener         bringup.Opener
	CalibrationDir string
	Pacing         bringup.Pacing

	TickInterval time.Duration
	Defaults     menu.Preferences
	Sink         telemetry.Sink
}
