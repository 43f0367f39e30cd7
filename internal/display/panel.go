// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package display

import (
	"fmt"
	"image"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"

	"github.com/relabs-tech/aequus_trainer/internal/bringup"
	"github.com/relabs-tech/aequus_trainer/internal/telemetry"
	"github.com/relabs-tech/aequus_trainer/internal/xslog"
)

const (
	panelWidth  = 128
	panelHeight = 64
	lineHeight  = 13
)

// Device is the drawing surface of an SSD1306.
type Device interface {
	Bounds() image.Rectangle
	Draw(r image.Rectangle, src image.Image, sp image.Point) error
}

// Panel mirrors the trainer state on the small OLED next to the sensors.
// It is a telemetry.Sink.
type Panel struct {
	dev    Device
	logger *slog.Logger

	mu       sync.Mutex
	screen   string
	session  string
	sensors  map[string]string
	progress int
	verdict  string
}

var _ telemetry.Sink = (*Panel)(nil)

// Open initializes the SSD1306 on bus and shows the splash screen.
func Open(bus i2c.Bus, logger *slog.Logger) (*Panel, error) {
	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize display: %w", err)
	}
	p := New(dev, logger)
	if err := p.dev.Draw(p.dev.Bounds(), Splash(), image.Point{}); err != nil {
		return nil, fmt.Errorf("display splash: %w", err)
	}
	p.logger.Info("display initialized")
	return p, nil
}

func New(dev Device, logger *slog.Logger) *Panel {
	if logger == nil {
		logger = xslog.Discard()
	}
	return &Panel{
		dev:     dev,
		logger:  logger.With(xslog.Component("display")),
		sensors: make(map[string]string),
	}
}

func (p *Panel) Publish(ev telemetry.Event) {
	p.mu.Lock()
	redraw := true
	if ev.Session != "" && ev.Session != p.session {
		p.session = ev.Session
		p.sensors = make(map[string]string)
		p.progress = 0
		p.verdict = ""
	}
	switch ev.Kind {
	case telemetry.KindScreen:
		p.screen = ev.Screen
	case telemetry.KindSensor:
		p.sensors[ev.Sensor] = ev.Status
	case telemetry.KindProgress:
		// One redraw per 10% keeps the bus free for the sweep.
		redraw = ev.Progress/10 != p.progress/10 || ev.Progress == 100
		p.progress = ev.Progress
	case telemetry.KindSweep:
		if ev.AllConnected {
			p.verdict = "ready"
		} else {
			p.verdict = fmt.Sprintf("%d/%d ok", ev.Connected, bringup.SlotCount)
		}
	}
	var img *image1bit.VerticalLSB
	if redraw {
		img = p.frameLocked()
	}
	p.mu.Unlock()

	if img == nil {
		return
	}
	if err := p.dev.Draw(p.dev.Bounds(), img, image.Point{}); err != nil {
		p.logger.Warn("error updating display", xslog.Error(err))
	}
}

// Frame renders the current state.
func (p *Panel) Frame() *image1bit.VerticalLSB {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.frameLocked()
}

func (p *Panel) frameLocked() *image1bit.VerticalLSB {
	img, drawer := blank()

	line := func(row int, text string) {
		drawer.Dot = fixed.P(0, lineHeight*(row+1))
		drawer.DrawString(text)
	}

	screen := p.screen
	if screen == "" {
		screen = "Aequus"
	}
	line(0, screen)
	line(1, sensorRow(p.sensors, 0, 3))
	line(2, sensorRow(p.sensors, 3, 6))
	if p.verdict != "" {
		line(3, "Setup: "+p.verdict)
	} else {
		line(3, fmt.Sprintf("Setup: %3d%%", p.progress))
	}
	return img
}

// sensorRow renders slots [from, to) as "0+ 1- 2?".
func sensorRow(sensors map[string]string, from, to int) string {
	var b strings.Builder
	for i := from; i < to; i++ {
		mark := "?"
		switch sensors[bringup.SlotName(i)] {
		case bringup.StatusConnected.String():
			mark = "+"
		case bringup.StatusError.String():
			mark = "-"
		}
		if i > from {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%d%s", i, mark)
	}
	return b.String()
}

// Splash is shown while the trainer starts.
func Splash() *image1bit.VerticalLSB {
	img, drawer := blank()

	drawer.Dot = fixed.P(35, 26)
	drawer.DrawString("Aequus")

	drawer.Dot = fixed.P(15, 43)
	drawer.DrawString("Rehab trainer")

	return img
}

func blank() (*image1bit.VerticalLSB, *font.Drawer) {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, panelWidth, panelHeight))
	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}
	return img, drawer
}
