package telemetry

import (
	"fmt"
	"log/slog"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	go_json "github.com/goccy/go-json"

	"github.com/relabs-tech/aequus_trainer/internal/xslog"
)

// Subscriber is the part of mqtt.Client used to follow a trainer.
type Subscriber interface {
	Subscribe(topic string, qos byte, callback mqtt.MessageHandler) mqtt.Token
}

// Subscribe delivers every event published under prefix to sink. Payloads
// that do not decode are logged and skipped.
func Subscribe(client Subscriber, prefix string, sink Sink, logger *slog.Logger) error {
	if logger == nil {
		logger = xslog.Discard()
	}
	topic := prefix + "/#"
	token := client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var ev Event
		if err := go_json.Unmarshal(msg.Payload(), &ev); err != nil {
			logger.Warn("undecodable telemetry", slog.String("topic", msg.Topic()), xslog.Error(err))
			return
		}
		sink.Publish(ev)
	})
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("subscribe %s: timed out", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("subscribe %s: %w", topic, err)
	}
	logger.Info("subscribed", slog.String("topic", topic))
	return nil
}

// Format renders ev as one console line.
func Format(ev Event) string {
	ts := ev.Time.Format("15:04:05.000")
	switch ev.Kind {
	case KindScreen:
		return fmt.Sprintf("%s [SCREEN] %s", ts, ev.Screen)
	case KindSensor:
		return fmt.Sprintf("%s [SENSOR] %-6s %s", ts, ev.Sensor, ev.Status)
	case KindProgress:
		return fmt.Sprintf("%s [PROG  ] %3d%%", ts, ev.Progress)
	case KindSweep:
		verdict := "sensors missing"
		if ev.AllConnected {
			verdict = "all connected"
		}
		return fmt.Sprintf("%s [SWEEP ] %d connected, %s", ts, ev.Connected, verdict)
	default:
		return fmt.Sprintf("%s [%s] unknown event", ts, ev.Kind)
	}
}
