package tui

import (
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/google/go-cmp/cmp"

	"github.com/relabs-tech/aequus_trainer/internal/bringup"
	"github.com/relabs-tech/aequus_trainer/internal/menu"
	"github.com/relabs-tech/aequus_trainer/internal/sensors"
	"github.com/relabs-tech/aequus_trainer/internal/telemetry"
)

type recorder struct {
	mu     sync.Mutex
	events []telemetry.Event
}

func (r *recorder) Publish(ev telemetry.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) kinds(k telemetry.Kind) []telemetry.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []telemetry.Event
	for _, ev := range r.events {
		if ev.Kind == k {
			out = append(out, ev)
		}
	}
	return out
}

func newModel(t *testing.T, fail ...int) (*Model, *recorder) {
	t.Helper()
	sim := sensors.NewSimulated(fail)
	rec := &recorder{}
	m := New(Deps{
		Mux: sim,
		Opener: bringup.OpenerFunc(func(name, path string) (bringup.Handle, error) {
			s, err := sim.Open(name, path)
			if err != nil {
				return nil, err
			}
			return s, nil
		}),
		CalibrationDir: t.TempDir(),
		Defaults:       menu.Preferences{Duration: 10, Difficulty: menu.DifficultyHigh},
		Sink:           rec,
	})
	m.Init()
	m.Update(tea.WindowSizeMsg{Width: 96, Height: 64})
	return &m, rec
}

func key(s string) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: rune(s[0]), Text: s}
}

// runSetup ticks until the model leaves the setup screen.
func runSetup(t *testing.T, m *Model) {
	t.Helper()
	now := time.Unix(0, 0)
	for range 10000 {
		if m.State().Screen.Kind() != menu.KindSetup {
			return
		}
		m.Update(TickMsg(now))
		now = now.Add(time.Millisecond)
	}
	t.Fatal("setup did not complete")
}

func TestSetupAllConnectedGoesToInit(t *testing.T) {
	t.Parallel()

	m, rec := newModel(t)
	m.Update(key("1")) // Training
	m.Update(key("1")) // Start
	if got := m.State().Screen.Kind(); got != menu.KindSetup {
		t.Fatalf("screen = %s, want SetupMenu", got)
	}

	runSetup(t, m)

	im, ok := m.State().Screen.(*menu.InitMenu)
	if !ok {
		t.Fatalf("screen = %s, want InitMenu", m.State().Screen.Kind())
	}
	if im.Duration != 10 || im.Difficulty != menu.DifficultyHigh {
		t.Errorf("InitMenu = %s, want 10 min, High", im.Summary())
	}

	sweeps := rec.kinds(telemetry.KindSweep)
	if len(sweeps) != 1 || !sweeps[0].AllConnected || sweeps[0].Connected != 6 {
		t.Errorf("sweep events = %+v", sweeps)
	}
	if err := m.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestSetupFailureGoesToTrain(t *testing.T) {
	t.Parallel()

	m, rec := newModel(t, 0, 2, 4)
	m.Update(key("1"))
	m.Update(key("1"))
	runSetup(t, m)

	if got := m.State().Screen.Kind(); got != menu.KindTrain {
		t.Fatalf("screen = %s, want TrainMenu", got)
	}
	want := menu.Preferences{Duration: 10, Difficulty: menu.DifficultyHigh}
	if diff := cmp.Diff(want, m.State().Prefs); diff != "" {
		t.Errorf("prefs mismatch (-want +got):\n%s", diff)
	}

	statuses := map[string]string{}
	for _, ev := range rec.kinds(telemetry.KindSensor) {
		statuses[ev.Sensor] = ev.Status
	}
	wantStatuses := map[string]string{
		"mpu0": "Error", "mpu1": "Connected", "mpu2": "Error",
		"mpu3": "Connected", "mpu4": "Error", "mpu5": "Connected",
	}
	if diff := cmp.Diff(wantStatuses, statuses); diff != "" {
		t.Errorf("sensor events mismatch (-want +got):\n%s", diff)
	}

	progress := rec.kinds(telemetry.KindProgress)
	if n := len(progress); n == 0 || progress[n-1].Progress != 100 {
		t.Errorf("last progress event = %+v, want 100", progress)
	}
}

func TestOneSweepPerSetupEntry(t *testing.T) {
	t.Parallel()

	m, rec := newModel(t, 1)
	m.Update(key("1"))
	m.Update(key("1"))
	runSetup(t, m)

	// Extra ticks after the verdict start nothing.
	for i := range 100 {
		m.Update(TickMsg(time.Unix(100, int64(i))))
	}
	if got := len(rec.kinds(telemetry.KindSweep)); got != 1 {
		t.Fatalf("sweeps after first setup = %d, want 1", got)
	}

	// Back on TrainMenu; Start again runs a new sweep.
	m.Update(key("1"))
	runSetup(t, m)

	sweeps := rec.kinds(telemetry.KindSweep)
	if len(sweeps) != 2 {
		t.Fatalf("sweeps = %d, want 2", len(sweeps))
	}
	if sweeps[0].Session == sweeps[1].Session {
		t.Error("both sweeps share a session ID")
	}
}

func TestMouseClick(t *testing.T) {
	t.Parallel()

	m, rec := newModel(t)
	// 96x64 cells over 480x320 is 5 logical units per cell. The Training
	// button spans x 130-350, y 90-140.
	m.Update(tea.MouseReleaseMsg{X: 48, Y: 23, Button: tea.MouseLeft})
	if got := m.State().Screen.Kind(); got != menu.KindTrain {
		t.Fatalf("screen = %s, want TrainMenu", got)
	}

	// Right button is ignored.
	m.Update(tea.MouseReleaseMsg{X: 48, Y: 23, Button: tea.MouseRight})
	if got := m.State().Screen.Kind(); got != menu.KindTrain {
		t.Errorf("screen = %s after right click, want TrainMenu", got)
	}

	var screens []string
	for _, ev := range rec.kinds(telemetry.KindScreen) {
		screens = append(screens, ev.Screen)
	}
	if diff := cmp.Diff([]string{"MainMenu", "TrainMenu"}, screens); diff != "" {
		t.Errorf("screen events mismatch (-want +got):\n%s", diff)
	}
}

func TestQuitKeys(t *testing.T) {
	t.Parallel()

	for _, msg := range []tea.KeyPressMsg{
		{Code: tea.KeyEscape},
		{Code: 'c', Mod: tea.ModCtrl},
		key("q"),
	} {
		m, _ := newModel(t)
		_, cmd := m.Update(msg)
		if cmd == nil {
			t.Errorf("%s: no command, want quit", msg.String())
			continue
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%s: command is not quit", msg.String())
		}
	}
}

func TestToLogical(t *testing.T) {
	t.Parallel()

	m := New(Deps{})
	m.Update(tea.WindowSizeMsg{Width: menu.Width, Height: menu.Height})
	for _, p := range [][2]int{{0, 0}, {10, 20}, {479, 319}} {
		x, y := m.toLogical(p[0], p[1])
		if x != p[0] || y != p[1] {
			t.Errorf("toLogical(%d, %d) = %d, %d", p[0], p[1], x, y)
		}
	}

	m.Update(tea.WindowSizeMsg{Width: 48, Height: 32})
	if x, y := m.toLogical(47, 31); x != 475 || y != 315 {
		t.Errorf("toLogical(47, 31) = %d, %d, want 475, 315", x, y)
	}
}

func TestRender(t *testing.T) {
	t.Parallel()

	m, _ := newModel(t)
	out := m.Render()
	for _, want := range []string{"Aequus", "Training", "Progress", "Options"} {
		if !strings.Contains(out, want) {
			t.Errorf("Render() missing %q", want)
		}
	}

	m.Update(tea.WindowSizeMsg{Width: 20, Height: 5})
	if out := m.Render(); !strings.Contains(out, "terminal too small") {
		t.Errorf("Render() on tiny terminal = %q", out)
	}
}

type countedHandle struct {
	name string
	open *atomic.Int32
}

func (h *countedHandle) Name() string { return h.name }

func (h *countedHandle) Close() error {
	h.open.Add(-1)
	return nil
}

// newCountingModel opens handles that track how many are still open.
func newCountingModel(t *testing.T, fail ...int) (*Model, *atomic.Int32) {
	t.Helper()
	sim := sensors.NewSimulated(fail)
	open := &atomic.Int32{}
	m := New(Deps{
		Mux: sim,
		Opener: bringup.OpenerFunc(func(name, path string) (bringup.Handle, error) {
			if _, err := sim.Open(name, path); err != nil {
				return nil, err
			}
			open.Add(1)
			return &countedHandle{name: name, open: open}, nil
		}),
		CalibrationDir: t.TempDir(),
	})
	m.Init()
	m.Update(tea.WindowSizeMsg{Width: 96, Height: 64})
	return &m, open
}

func TestFailedSetupReleasesSensors(t *testing.T) {
	t.Parallel()

	m, open := newCountingModel(t, 3)
	m.Update(key("1")) // Training
	m.Update(key("1")) // Start
	runSetup(t, m)

	if got := m.State().Screen.Kind(); got != menu.KindTrain {
		t.Fatalf("screen = %s, want TrainMenu", got)
	}
	if n := open.Load(); n != 0 {
		t.Errorf("%d sensors still open after abandoned setup, want 0", n)
	}
}

func TestInitBackReleasesSensors(t *testing.T) {
	t.Parallel()

	m, open := newCountingModel(t)
	m.Update(key("1")) // Training
	m.Update(key("1")) // Start
	runSetup(t, m)

	if got := m.State().Screen.Kind(); got != menu.KindInit {
		t.Fatalf("screen = %s, want InitMenu", got)
	}
	if n := open.Load(); n != 6 {
		t.Fatalf("%d sensors open on InitMenu, want 6", n)
	}

	m.Update(key("2")) // Back
	if got := m.State().Screen.Kind(); got != menu.KindTrain {
		t.Fatalf("screen = %s, want TrainMenu", got)
	}
	if n := open.Load(); n != 0 {
		t.Errorf("%d sensors still open after leaving InitMenu, want 0", n)
	}
}
