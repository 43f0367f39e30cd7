package telemetry

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	go_json "github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"

	"github.com/relabs-tech/aequus_trainer/internal/xslog"
)

type doneToken struct{ err error }

func (t doneToken) Wait() bool                     { return true }
func (t doneToken) WaitTimeout(time.Duration) bool { return true }
func (t doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t doneToken) Error() error { return t.err }

type published struct {
	Topic    string
	Retained bool
	Payload  []byte
}

type fakeClient struct {
	mu   sync.Mutex
	msgs []published
	err  error
}

func (c *fakeClient) Publish(topic string, _ byte, retained bool, payload interface{}) mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, published{Topic: topic, Retained: retained, Payload: payload.([]byte)})
	return doneToken{err: c.err}
}

func TestMQTTTopics(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		ev       Event
		topic    string
		retained bool
	}{
		{name: "screen", ev: ScreenChanged("SetupMenu"), topic: "aequus/screen", retained: true},
		{name: "sensor", ev: SensorStatus("s1", "mpu3", "Error"), topic: "aequus/sensor/mpu3", retained: true},
		{name: "progress", ev: Progress("s1", 42), topic: "aequus/progress", retained: false},
		{name: "sweep", ev: SweepDone("s1", 6, true), topic: "aequus/sweep", retained: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			client := &fakeClient{}
			NewMQTT(client, "aequus", nil).Publish(tt.ev)

			if len(client.msgs) != 1 {
				t.Fatalf("published %d messages, want 1", len(client.msgs))
			}
			got := client.msgs[0]
			if got.Topic != tt.topic || got.Retained != tt.retained {
				t.Errorf("published to %s retained=%v, want %s retained=%v", got.Topic, got.Retained, tt.topic, tt.retained)
			}

			var decoded Event
			if err := go_json.Unmarshal(got.Payload, &decoded); err != nil {
				t.Fatalf("unmarshal payload: %v", err)
			}
			if diff := cmp.Diff(tt.ev.Time.UnixNano(), decoded.Time.UnixNano()); diff != "" {
				t.Errorf("time mismatch (-want +got):\n%s", diff)
			}
			decoded.Time = tt.ev.Time
			if diff := cmp.Diff(tt.ev, decoded); diff != "" {
				t.Errorf("payload mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMQTTPublishErrorIsLogged(t *testing.T) {
	t.Parallel()

	client := &fakeClient{err: errors.New("not connected")}
	// Must not panic or block.
	NewMQTT(client, "aequus", nil).Publish(ScreenChanged("MainMenu"))
	if len(client.msgs) != 1 {
		t.Errorf("published %d messages, want 1", len(client.msgs))
	}
}

func TestQueueDelivers(t *testing.T) {
	t.Parallel()

	var (
		mu  sync.Mutex
		got []Kind
	)
	sink := SinkFunc(func(ev Event) {
		mu.Lock()
		got = append(got, ev.Kind)
		mu.Unlock()
	})

	q := NewQueue(8, sink, nil)
	q.Publish(ScreenChanged("MainMenu"))
	q.Publish(Progress("s", 1))
	q.Publish(SweepDone("s", 0, false))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := q.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if diff := cmp.Diff([]Kind{KindScreen, KindProgress, KindSweep}, got); diff != "" {
		t.Errorf("delivered mismatch (-want +got):\n%s", diff)
	}
}

func TestQueueDropsWhenFull(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	q := NewQueue(2, Discard, xslog.NewLogger(&logs, xslog.LevelWarn))
	for range 5 {
		q.Publish(Progress("s", 1))
	}
	if got := q.Dropped(); got != 3 {
		t.Errorf("Dropped() = %d, want 3", got)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := q.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	out := logs.String()
	if !strings.Contains(out, "telemetry queue stopped with dropped events") || !strings.Contains(out, `"dropped":3`) {
		t.Errorf("shutdown log missing dropped total:\n%s", out)
	}
}

func TestMulti(t *testing.T) {
	t.Parallel()

	var a, b int
	m := Multi{
		SinkFunc(func(Event) { a++ }),
		SinkFunc(func(Event) { b++ }),
	}
	m.Publish(ScreenChanged("MainMenu"))
	m.Publish(ScreenChanged("TrainMenu"))
	if a != 2 || b != 2 {
		t.Errorf("deliveries = %d, %d, want 2, 2", a, b)
	}
}

type fakeMessage struct {
	topic   string
	payload []byte
}

func (m fakeMessage) Duplicate() bool   { return false }
func (m fakeMessage) Qos() byte         { return 0 }
func (m fakeMessage) Retained() bool    { return false }
func (m fakeMessage) Topic() string     { return m.topic }
func (m fakeMessage) MessageID() uint16 { return 0 }
func (m fakeMessage) Payload() []byte   { return m.payload }
func (m fakeMessage) Ack()              {}

type fakeSubscriber struct {
	topic    string
	callback mqtt.MessageHandler
	err      error
}

func (s *fakeSubscriber) Subscribe(topic string, _ byte, callback mqtt.MessageHandler) mqtt.Token {
	s.topic = topic
	s.callback = callback
	return doneToken{err: s.err}
}

func TestSubscribe(t *testing.T) {
	t.Parallel()

	sub := &fakeSubscriber{}
	var got []Event
	if err := Subscribe(sub, "aequus", SinkFunc(func(ev Event) { got = append(got, ev) }), nil); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	if sub.topic != "aequus/#" {
		t.Errorf("topic = %q, want aequus/#", sub.topic)
	}

	want := SensorStatus("s1", "mpu2", "Connected")
	payload, err := go_json.Marshal(want)
	if err != nil {
		t.Fatal(err)
	}
	sub.callback(nil, fakeMessage{topic: "aequus/sensor/mpu2", payload: payload})
	sub.callback(nil, fakeMessage{topic: "aequus/sensor/mpu3", payload: []byte("{")})

	if len(got) != 1 {
		t.Fatalf("delivered %d events, want 1", len(got))
	}
	if diff := cmp.Diff(want, got[0]); diff != "" {
		t.Errorf("event mismatch (-want +got):\n%s", diff)
	}
}

func TestSubscribeError(t *testing.T) {
	t.Parallel()

	sub := &fakeSubscriber{err: errors.New("not authorized")}
	if err := Subscribe(sub, "aequus", Discard, nil); err == nil {
		t.Fatal("Subscribe() error = nil, want error")
	}
}

func TestFormat(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 1, 2, 10, 4, 5, 6_000_000, time.UTC)
	tests := []struct {
		ev   Event
		want string
	}{
		{ev: Event{Kind: KindScreen, Time: at, Screen: "SetupMenu"}, want: "10:04:05.006 [SCREEN] SetupMenu"},
		{ev: Event{Kind: KindSensor, Time: at, Sensor: "mpu1", Status: "Error"}, want: "10:04:05.006 [SENSOR] mpu1   Error"},
		{ev: Event{Kind: KindProgress, Time: at, Progress: 7}, want: "10:04:05.006 [PROG  ]   7%"},
		{ev: Event{Kind: KindSweep, Time: at, Connected: 6, AllConnected: true}, want: "10:04:05.006 [SWEEP ] 6 connected, all connected"},
		{ev: Event{Kind: KindSweep, Time: at, Connected: 4}, want: "10:04:05.006 [SWEEP ] 4 connected, sensors missing"},
	}
	for _, tt := range tests {
		if got := Format(tt.ev); got != tt.want {
			t.Errorf("Format(%s) = %q, want %q", tt.ev.Kind, got, tt.want)
		}
	}
}
