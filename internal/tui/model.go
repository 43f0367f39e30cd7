package tui

import (
	"log/slog"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/google/uuid"

	"github.com/relabs-tech/aequus_trainer/internal/bringup"
	"github.com/relabs-tech/aequus_trainer/internal/menu"
	"github.com/relabs-tech/aequus_trainer/internal/telemetry"
	"github.com/relabs-tech/aequus_trainer/internal/tui/theme"
	"github.com/relabs-tech/aequus_trainer/internal/xslog"
)

var _ tea.Model = (*Model)(nil)

type Model struct {
	ready          bool
	viewportWidth  int
	viewportHeight int
	theme          theme.Theme

	state menu.AppState
	deps  Deps

	// sweep belongs to setupFor; a new SetupMenu instance gets a new sweep.
	sweep    *bringup.Sweep
	setupFor *menu.SetupMenu
	session  string
}

func New(deps Deps) Model {
	if deps.Logger == nil {
		deps.Logger = xslog.Discard()
	}
	deps.Logger = deps.Logger.With(xslog.Component("tui"))
	if deps.Sink == nil {
		deps.Sink = telemetry.Discard
	}
	if deps.TickInterval <= 0 {
		deps.TickInterval = defaultTickInterval
	}
	return Model{
		theme: theme.New(),
		state: menu.NewAppState(deps.Defaults),
		deps:  deps,
	}
}

// State exposes the navigator state, mainly for tests.
func (m *Model) State() menu.AppState { return m.state }

func (m *Model) Init() tea.Cmd {
	m.deps.Sink.Publish(telemetry.ScreenChanged(m.state.Screen.Kind().String()))
	return tickCmd(m.deps.TickInterval)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.viewportWidth = msg.Width
		m.viewportHeight = msg.Height
		m.ready = true

	case tea.KeyPressMsg:
		switch key := msg.String(); key {
		case "esc", "ctrl+c", "q":
			return m, tea.Quit
		case "1", "2", "3", "4", "5", "6", "7", "8", "9":
			m.press(int(key[0] - '1'))
		}

	case tea.MouseReleaseMsg:
		mouse := msg.Mouse()
		if mouse.Button != tea.MouseLeft {
			break
		}
		x, y := m.toLogical(mouse.X, mouse.Y)
		m.navigate(menu.Click(m.state, x, y))

	case TickMsg:
		m.tick(time.Time(msg))
		return m, tickCmd(m.deps.TickInterval)
	}

	return m, nil
}

// press activates the n-th button of the active screen, for terminals
// without mouse support.
func (m *Model) press(n int) {
	buttons := m.state.Screen.Buttons()
	if n < 0 || n >= len(buttons) {
		return
	}
	center := buttons[n].Rect.Min.Add(buttons[n].Rect.Size().Div(2))
	m.navigate(menu.Click(m.state, center.X, center.Y))
}

// navigate installs next and starts a sweep when a new setup screen
// became active.
func (m *Model) navigate(next menu.AppState) {
	prev := m.state.Screen
	m.state = next
	if next.Screen == prev {
		return
	}

	m.deps.Logger.Debug("screen changed",
		slog.String("from", prev.Kind().String()),
		slog.String("to", next.Screen.Kind().String()))
	m.deps.Sink.Publish(telemetry.ScreenChanged(next.Screen.Kind().String()))

	switch screen := next.Screen.(type) {
	case *menu.SetupMenu:
		if screen != m.setupFor {
			m.startSweep(screen)
		}
	case *menu.InitMenu:
		// The connected sensors stay open for the session.
	default:
		// Setup abandoned or left; put the sensors back to sleep.
		if err := m.Close(); err != nil {
			m.deps.Logger.Warn("closing sensors", xslog.Error(err))
		}
	}
}

func (m *Model) startSweep(setup *menu.SetupMenu) {
	if err := m.Close(); err != nil {
		m.deps.Logger.Warn("closing previous sensors", xslog.Error(err))
	}
	m.setupFor = setup
	m.session = uuid.New().String()
	m.sweep = bringup.NewSweep(
		m.deps.Mux,
		m.deps.Opener,
		bringup.Slots(m.deps.CalibrationDir),
		m.deps.Pacing,
		m.deps.Logger.With(slog.String("session", m.session)),
	)
	m.deps.Logger.Info("sensor setup started", slog.String("session", m.session))
}

// tick advances the running sweep by one step and applies its verdict.
func (m *Model) tick(now time.Time) {
	if m.sweep == nil || m.sweep.Done() {
		return
	}
	setup, ok := m.state.Screen.(*menu.SetupMenu)
	if !ok || setup != m.setupFor {
		return
	}

	rep := &reporter{setup: setup, sink: m.deps.Sink, session: m.session}
	if !m.sweep.Step(now, rep) {
		return
	}

	all := setup.AllSensorsConnected()
	m.deps.Sink.Publish(telemetry.SweepDone(m.session, m.sweep.Connected(), all))
	m.navigate(menu.CompleteSetup(m.state, all))
}

// Close releases the sensors opened by the last sweep.
func (m *Model) Close() error {
	if m.sweep == nil {
		return nil
	}
	err := m.sweep.Close()
	m.sweep = nil
	return err
}

// reporter forwards sweep output to the setup screen and telemetry.
type reporter struct {
	setup   *menu.SetupMenu
	sink    telemetry.Sink
	session string
}

func (r *reporter) RenderProgress(percent int) {
	r.setup.RenderProgress(percent)
	r.sink.Publish(telemetry.Progress(r.session, percent))
}

func (r *reporter) ReportSensorStatus(name string, status bringup.Status) {
	r.setup.ReportSensorStatus(name, status)
	r.sink.Publish(telemetry.SensorStatus(r.session, name, status.String()))
}
