package menu

// AppState is everything the navigator carries between events.
type AppState struct {
	Screen   Screen
	Prefs    Preferences // persisted across screens
	Defaults Preferences // what a fresh PrefMenu shows on reset
}

// NewAppState starts on the main menu.
func NewAppState(defaults Preferences) AppState {
	return AppState{Screen: NewMainMenu(), Prefs: defaults, Defaults: defaults}
}

// Advance returns the state after ev. Pairs without a transition return st
// unchanged.
func Advance(st AppState, ev Event) AppState {
	switch st.Screen.Kind() {
	case KindMain:
		if ev == EventTraining {
			st.Screen = NewTrainMenu()
		}

	case KindTrain:
		switch ev {
		case EventHome:
			st.Screen = NewMainMenu()
		case EventStart:
			st.Screen = NewSetupMenu()
		case EventPreference:
			st.Screen = NewPrefMenu(st.Prefs)
		}

	case KindPref:
		switch ev {
		case EventBack:
			st.Screen = NewTrainMenu()
		case EventPreference:
			st.Screen = NewPrefMenu(st.Defaults)
		default:
			if p, ok := st.Screen.(*PrefMenu); ok {
				st.Prefs = p.Preferences()
			}
		}

	case KindInit:
		if ev == EventBack {
			st.Screen = NewTrainMenu()
		}

	case KindSetup:
		// Left only through CompleteSetup.
	}

	return st
}

// CompleteSetup applies the sweep verdict while on SetupMenu.
func CompleteSetup(st AppState, allConnected bool) AppState {
	if st.Screen.Kind() != KindSetup {
		return st
	}
	if allConnected {
		st.Screen = NewInitMenu(st.Prefs)
	} else {
		st.Screen = NewTrainMenu()
	}
	return st
}

// Click lets the active screen interpret a click, then advances.
func Click(st AppState, x, y int) AppState {
	return Advance(st, st.Screen.HandleClick(x, y))
}
