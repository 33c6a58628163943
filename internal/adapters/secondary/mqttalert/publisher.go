// Package mqttalert publishes drift alerts to an MQTT topic so edge
// dashboards and remediation jobs can subscribe to them.
package mqttalert

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"model-inference-service/internal/config"
	"model-inference-service/internal/core/domain"
	ports "model-inference-service/internal/core/ports/output"
)

type publisher struct {
	client  pahomqtt.Client
	topic   string
	qos     byte
	timeout time.Duration
}

// NewPublisher connects to the broker; a failed connect is returned to
// the caller, which decides whether alerting is optional.
func NewPublisher(cfg *config.MQTTConfig) (ports.AlertPublisher, error) {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	opts := pahomqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetConnectTimeout(timeout).
		SetAutoReconnect(true)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	client := pahomqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(timeout) {
		return nil, fmt.Errorf("mqtt connect to %s timed out", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect to %s: %w", cfg.Broker, err)
	}

	return &publisher{
		client:  client,
		topic:   cfg.Topic,
		qos:     byte(cfg.QoS),
		timeout: timeout,
	}, nil
}

func (p *publisher) PublishDriftAlert(ctx context.Context, report *domain.DriftReport) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal drift alert: %w", err)
	}

	token := p.client.Publish(p.topic, p.qos, false, payload)

	timeout := p.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if !token.WaitTimeout(timeout) {
		return fmt.Errorf("publish drift alert to %s timed out", p.topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish drift alert to %s: %w", p.topic, err)
	}
	return nil
}

func (p *publisher) Close() {
	p.client.Disconnect(250)
}
