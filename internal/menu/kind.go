package menu

// Kind identifies the active screen.
type Kind uint8

const (
	KindMain Kind = iota
	KindTrain
	KindPref
	KindSetup
	KindInit
)

func (k Kind) String() string {
	switch k {
	case KindMain:
		return "MainMenu"
	case KindTrain:
		return "TrainMenu"
	case KindPref:
		return "PrefMenu"
	case KindSetup:
		return "SetupMenu"
	case KindInit:
		return "InitMenu"
	default:
		return "Unknown"
	}
}

// Event is the name of a UI action produced by a click.
type Event string

const (
	EventNone       Event = ""
	EventTraining   Event = "Training"
	EventProgress   Event = "Progress"
	EventOptions    Event = "Options"
	EventHome       Event = "Home"
	EventStart      Event = "Start"
	EventPreference Event = "Preference"
	EventBack       Event = "Back"

	// Preference edits, handled inside PrefMenu.
	EventDurationUp       Event = "DurationUp"
	EventDurationDown     Event = "DurationDown"
	EventDifficultyLow    Event = "DifficultyLow"
	EventDifficultyMedium Event = "DifficultyMedium"
	EventDifficultyHigh   Event = "DifficultyHigh"
)

// Events lists the full vocabulary, EventNone included.
func Events() []Event {
	return []Event{
		EventNone, EventTraining, EventProgress, EventOptions, EventHome,
		EventStart, EventPreference, EventBack,
		EventDurationUp, EventDurationDown,
		EventDifficultyLow, EventDifficultyMedium, EventDifficultyHigh,
	}
}
