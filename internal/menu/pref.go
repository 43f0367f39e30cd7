package menu

import "image"

// PrefMenu edits duration and difficulty. Edits are applied by the screen
// itself; Advance copies them into the persisted preferences.
type PrefMenu struct {
	Duration   int
	Difficulty Difficulty
	buttons    []Button
}

func NewPrefMenu(p Preferences) *PrefMenu {
	return &PrefMenu{
		Duration:   min(max(p.Duration, MinDuration), MaxDuration),
		Difficulty: p.Difficulty,
		buttons: []Button{
			{Label: "-", Event: EventDurationDown, Rect: image.Rect(60, 80, 130, 130)},
			{Label: "+", Event: EventDurationUp, Rect: image.Rect(350, 80, 420, 130)},
			{Label: "Low", Event: EventDifficultyLow, Rect: image.Rect(40, 160, 160, 210)},
			{Label: "Medium", Event: EventDifficultyMedium, Rect: image.Rect(180, 160, 300, 210)},
			{Label: "High", Event: EventDifficultyHigh, Rect: image.Rect(320, 160, 440, 210)},
			{Label: "Defaults", Event: EventPreference, Rect: image.Rect(40, 250, 220, 300)},
			{Label: "Back", Event: EventBack, Rect: image.Rect(260, 250, 440, 300)},
		},
	}
}

func (m *PrefMenu) Kind() Kind        { return KindPref }
func (m *PrefMenu) Title() string     { return "Preferences" }
func (m *PrefMenu) Buttons() []Button { return m.buttons }

func (m *PrefMenu) HandleClick(x, y int) Event {
	ev := hit(m.buttons, x, y)
	m.Apply(ev)
	return ev
}

// Apply performs an edit event. Other events are ignored.
func (m *PrefMenu) Apply(ev Event) {
	switch ev {
	case EventDurationUp:
		m.Duration = min(m.Duration+1, MaxDuration)
	case EventDurationDown:
		m.Duration = max(m.Duration-1, MinDuration)
	case EventDifficultyLow:
		m.Difficulty = DifficultyLow
	case EventDifficultyMedium:
		m.Difficulty = DifficultyMedium
	case EventDifficultyHigh:
		m.Difficulty = DifficultyHigh
	}
}

func (m *PrefMenu) Preferences() Preferences {
	return Preferences{Duration: m.Duration, Difficulty: m.Difficulty}
}
