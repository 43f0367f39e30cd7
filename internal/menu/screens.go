package menu

import (
	"fmt"
	"image"

	"github.com/relabs-tech/aequus_trainer/internal/bringup"
)

// Screen is one of the five menu screens. Exactly one is active.
type Screen interface {
	Kind() Kind
	Title() string
	Buttons() []Button
	// HandleClick maps a click in logical coordinates to an event.
	HandleClick(x, y int) Event
}

type MainMenu struct{ buttons []Button }

func NewMainMenu() *MainMenu {
	return &MainMenu{buttons: column(
		Button{Label: "Training", Event: EventTraining},
		Button{Label: "Progress", Event: EventProgress},
		Button{Label: "Options", Event: EventOptions},
	)}
}

func (m *MainMenu) Kind() Kind                 { return KindMain }
func (m *MainMenu) Title() string              { return "Aequus" }
func (m *MainMenu) Buttons() []Button          { return m.buttons }
func (m *MainMenu) HandleClick(x, y int) Event { return hit(m.buttons, x, y) }

type TrainMenu struct{ buttons []Button }

func NewTrainMenu() *TrainMenu {
	return &TrainMenu{buttons: column(
		Button{Label: "Start", Event: EventStart},
		Button{Label: "Preference", Event: EventPreference},
		Button{Label: "Home", Event: EventHome},
	)}
}

func (m *TrainMenu) Kind() Kind                 { return KindTrain }
func (m *TrainMenu) Title() string              { return "Training" }
func (m *TrainMenu) Buttons() []Button          { return m.buttons }
func (m *TrainMenu) HandleClick(x, y int) Event { return hit(m.buttons, x, y) }

// InitMenu is shown once every sensor is connected, ready to begin.
type InitMenu struct {
	Duration   int
	Difficulty Difficulty
	buttons    []Button
}

func NewInitMenu(p Preferences) *InitMenu {
	buttons := column(
		Button{Label: "Start", Event: EventStart},
		Button{Label: "Back", Event: EventBack},
	)
	// Leave room for the summary line.
	for i := range buttons {
		buttons[i].Rect = buttons[i].Rect.Add(image.Pt(0, 65))
	}
	return &InitMenu{Duration: p.Duration, Difficulty: p.Difficulty, buttons: buttons}
}

func (m *InitMenu) Kind() Kind                 { return KindInit }
func (m *InitMenu) Title() string              { return "Ready" }
func (m *InitMenu) Buttons() []Button          { return m.buttons }
func (m *InitMenu) HandleClick(x, y int) Event { return hit(m.buttons, x, y) }

func (m *InitMenu) Summary() string {
	return fmt.Sprintf("%d min, %s", m.Duration, m.Difficulty)
}

// SetupMenu shows the sensor bring-up. It has no buttons; the sweep decides
// where to go next.
type SetupMenu struct {
	names    []string
	statuses map[string]bringup.Status
	progress int
}

var _ bringup.Reporter = (*SetupMenu)(nil)

func NewSetupMenu() *SetupMenu {
	names := bringup.SlotNames()
	statuses := make(map[string]bringup.Status, len(names))
	for _, name := range names {
		statuses[name] = bringup.StatusNotAttempted
	}
	return &SetupMenu{names: names, statuses: statuses}
}

func (m *SetupMenu) Kind() Kind                 { return KindSetup }
func (m *SetupMenu) Title() string              { return "Sensor setup" }
func (m *SetupMenu) Buttons() []Button          { return nil }
func (m *SetupMenu) HandleClick(int, int) Event { return EventNone }

// RenderProgress records the sweep progress, clamped to 0-100.
func (m *SetupMenu) RenderProgress(percent int) {
	m.progress = min(max(percent, 0), 100)
}

func (m *SetupMenu) ReportSensorStatus(name string, status bringup.Status) {
	if _, ok := m.statuses[name]; !ok {
		m.names = append(m.names, name)
	}
	m.statuses[name] = status
}

func (m *SetupMenu) Progress() int { return m.progress }

// Statuses returns a copy of the per-sensor status map.
func (m *SetupMenu) Statuses() map[string]bringup.Status {
	out := make(map[string]bringup.Status, len(m.statuses))
	for k, v := range m.statuses {
		out[k] = v
	}
	return out
}

// SensorNames returns the sensors in display order.
func (m *SetupMenu) SensorNames() []string {
	return append([]string(nil), m.names...)
}

func (m *SetupMenu) AllSensorsConnected() bool {
	for _, s := range m.statuses {
		if s != bringup.StatusConnected {
			return false
		}
	}
	return len(m.statuses) > 0
}
