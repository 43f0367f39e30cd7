package tui

import (
	"time"

	tea "charm.land/bubbletea/v2"
)

const defaultTickInterval = time.Second / 60

// TickMsg drives the frame loop and the sensor sweep.
type TickMsg time.Time

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
