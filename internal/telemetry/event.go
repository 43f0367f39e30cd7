package telemetry

import "time"

// Kind names what an Event describes.
type Kind string

const (
	KindScreen   Kind = "screen"
	KindSensor   Kind = "sensor"
	KindProgress Kind = "progress"
	KindSweep    Kind = "sweep"
)

// Event is one observable change of the trainer. Only the fields relevant
// to Kind are set.
type Event struct {
	Kind    Kind      `json:"kind"`
	Time    time.Time `json:"time"`
	Session string    `json:"session,omitempty"` // sweep ID

	Screen string `json:"screen,omitempty"`

	Sensor  string `json:"sensor,omitempty"`
	Channel int    `json:"channel,omitempty"`
	Status  string `json:"status,omitempty"`

	Progress int `json:"progress,omitempty"`

	Connected    int  `json:"connected,omitempty"`
	AllConnected bool `json:"all_connected,omitempty"`
}

func ScreenChanged(screen string) Event {
	return Event{Kind: KindScreen, Time: time.Now(), Screen: screen}
}

func SensorStatus(session, sensor, status string) Event {
	return Event{Kind: KindSensor, Time: time.Now(), Session: session, Sensor: sensor, Status: status}
}

func Progress(session string, percent int) Event {
	return Event{Kind: KindProgress, Time: time.Now(), Session: session, Progress: percent}
}

func SweepDone(session string, connected int, allConnected bool) Event {
	return Event{Kind: KindSweep, Time: time.Now(), Session: session, Connected: connected, AllConnected: allConnected}
}

// Sink receives events. Implementations may block; callers on the UI path
// go through a Queue.
type Sink interface {
	Publish(Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Event)

func (f SinkFunc) Publish(ev Event) { f(ev) }

// Multi fans every event out to all sinks in order.
type Multi []Sink

func (m Multi) Publish(ev Event) {
	for _, s := range m {
		s.Publish(ev)
	}
}

// Discard drops every event.
var Discard Sink = SinkFunc(func(Event) {})
