// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package telemetry

import (
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	go_json "github.com/goccy/go-json"

	"github.com/relabs-tech/aequus_trainer/internal/xslog"
)

const publishTimeout = 2 * time.Second

// Publisher is the part of mqtt.Client used for telemetry.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MQTT publishes events as JSON under a topic prefix:
//
//	<prefix>/screen
//	<prefix>/sensor/<name>
//	<prefix>/progress
//	<prefix>/sweep
type MQTT struct {
	client Publisher
	prefix string
	logger *slog.Logger
}

func NewMQTT(client Publisher, prefix string, logger *slog.Logger) *MQTT {
	if logger == nil {
		logger = xslog.Discard()
	}
	return &MQTT{client: client, prefix: prefix, logger: logger.With(xslog.Component("mqtt"))}
}

// Connect dials the broker and waits for the connection.
func Connect(broker, clientID string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectTimeout(5 * time.Second)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("MQTT connect %s: %w", broker, token.Error())
	}
	return client, nil
}

func (m *MQTT) Topic(ev Event) string {
	if ev.Kind == KindSensor {
		return m.prefix + "/sensor/" + ev.Sensor
	}
	return m.prefix + "/" + string(ev.Kind)
}

func (m *MQTT) Publish(ev Event) {
	payload, err := go_json.Marshal(ev)
	if err != nil {
		m.logger.Error("marshal event", xslog.Error(err), slog.String("kind", string(ev.Kind)))
		return
	}

	topic := m.Topic(ev)
	// Progress is transient; everything else is retained so late
	// subscribers see the current screen and sensor states.
	retained := ev.Kind != KindProgress
	token := m.client.Publish(topic, 0, retained, payload)
	if !token.WaitTimeout(publishTimeout) {
		m.logger.Warn("publish timed out", slog.String("topic", topic))
		return
	}
	if err := token.Error(); err != nil {
		m.logger.Warn("publish failed", slog.String("topic", topic), xslog.Error(err))
	}
}
