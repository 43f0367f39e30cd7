package monitor

import (
	"log/slog"
	"sync"
	"time"

	go_json "github.com/goccy/go-json"

	"github.com/relabs-tech/aequus_trainer/internal/telemetry"
	"github.com/relabs-tech/aequus_trainer/internal/xslog"
)

const clientBuffer = 64

// Snapshot is the current trainer state as served by /api/state.
type Snapshot struct {
	Screen       string            `json:"screen"`
	Session      string            `json:"session,omitempty"`
	Progress     int               `json:"progress"`
	Sensors      map[string]string `json:"sensors"`
	SweepDone    bool              `json:"sweep_done"`
	Connected    int               `json:"connected"`
	AllConnected bool              `json:"all_connected"`
	Updated      time.Time         `json:"updated"`
}

// Hub folds telemetry events into a Snapshot and forwards each event to
// every websocket client. It is a telemetry.Sink.
type Hub struct {
	mu      sync.Mutex
	state   Snapshot
	clients map[*client]struct{}
	logger  *slog.Logger
}

var _ telemetry.Sink = (*Hub)(nil)

type client struct {
	send chan []byte
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = xslog.Discard()
	}
	return &Hub{
		state:   Snapshot{Sensors: make(map[string]string)},
		clients: make(map[*client]struct{}),
		logger:  logger.With(xslog.Component("monitor")),
	}
}

func (h *Hub) Publish(ev telemetry.Event) {
	payload, err := go_json.Marshal(ev)
	if err != nil {
		h.logger.Error("marshal event", xslog.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.apply(ev)
	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			// Slow reader; it catches up from /api/state.
		}
	}
}

func (h *Hub) apply(ev telemetry.Event) {
	s := &h.state
	s.Updated = ev.Time
	switch ev.Kind {
	case telemetry.KindScreen:
		s.Screen = ev.Screen
	case telemetry.KindSensor:
		if ev.Session != s.Session {
			h.resetSweep(ev.Session)
		}
		s.Sensors[ev.Sensor] = ev.Status
	case telemetry.KindProgress:
		if ev.Session != s.Session {
			h.resetSweep(ev.Session)
		}
		s.Progress = ev.Progress
	case telemetry.KindSweep:
		s.Session = ev.Session
		s.SweepDone = true
		s.Connected = ev.Connected
		s.AllConnected = ev.AllConnected
	}
}

func (h *Hub) resetSweep(session string) {
	h.state.Session = session
	h.state.Progress = 0
	h.state.Sensors = make(map[string]string)
	h.state.SweepDone = false
	h.state.Connected = 0
	h.state.AllConnected = false
}

// Snapshot returns a copy of the current state.
func (h *Hub) Snapshot() Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	s := h.state
	s.Sensors = make(map[string]string, len(h.state.Sensors))
	for k, v := range h.state.Sensors {
		s.Sensors[k] = v
	}
	return s
}

func (h *Hub) register() *client {
	c := &client{send: make(chan []byte, clientBuffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug("client connected", slog.Int("clients", n))
	return c
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug("client disconnected", slog.Int("clients", n))
}

// Clients reports the number of connected websocket clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
