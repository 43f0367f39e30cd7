package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/relabs-tech/aequus_trainer/internal/config"
	"github.com/relabs-tech/aequus_trainer/internal/telemetry"
)

// ErrNoBroker is returned by RunWatch when MQTT_BROKER is not configured.
var ErrNoBroker = errors.New("MQTT_BROKER is not set")

// lineSink prints one line per event. Paho may call handlers from several
// goroutines.
type lineSink struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *lineSink) Publish(ev telemetry.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.w, telemetry.Format(ev))
}

// RunWatch follows a trainer's telemetry over MQTT and prints it to w until
// ctx is canceled.
func RunWatch(ctx context.Context, cfg *config.Config, logger *slog.Logger, w io.Writer) error {
	if cfg.MQTTBroker == "" {
		return ErrNoBroker
	}
	client, err := telemetry.Connect(cfg.MQTTBroker, cfg.MQTTClientID+"-watch")
	if err != nil {
		return err
	}
	defer client.Disconnect(250)
	logger.Info("connected to MQTT broker", slog.String("broker", cfg.MQTTBroker))

	if err := telemetry.Subscribe(client, cfg.TopicPrefix, &lineSink{w: w}, logger); err != nil {
		return err
	}

	<-ctx.Done()
	return nil
}
