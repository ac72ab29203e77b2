// Package events provides alert event publishing.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"compliance-review-service/internal/observability/metrics"
)

// AlertEvent is the message published after an analysis completes.
type AlertEvent struct {
	EventType  string   `json:"eventType"`
	AnalysisID string   `json:"analysisId"`
	Source     string   `json:"source"`
	Level      string   `json:"level"`
	Reasons    []string `json:"reasons"`
	Timestamp  string   `json:"timestamp"`
	EmittedAt  int64    `json:"emittedAt"`
}

// EventTypeAlert is the event type carried by every alert event.
const EventTypeAlert = "compliance.alert"

// Publisher publishes alert events to a Kafka topic.
type Publisher struct {
	writer    *kafka.Writer
	principal string
	topic     string
	enabled   bool
	metrics   *metrics.Metrics
}

// Config holds Kafka publisher configuration.
type Config struct {
	Brokers   []string
	Topic     string
	Principal string
	Enabled   bool
}

// New creates a new Kafka alert publisher. A nil or disabled config yields a
// log-only publisher, which lets every caller publish unconditionally.
func New(cfg *Config) *Publisher {
	m := metrics.DefaultMetrics

	if cfg == nil {
		log.Info().Msg("Kafka disabled (nil config), using log-only mode")
		return &Publisher{enabled: false, metrics: m}
	}

	if !cfg.Enabled || len(cfg.Brokers) == 0 {
		log.Info().Msg("Kafka disabled, using log-only mode")
		return &Publisher{
			principal: cfg.Principal,
			topic:     cfg.Topic,
			enabled:   false,
			metrics:   m,
		}
	}

	// Longer dial timeouts for DNS resolution in Kubernetes
	dialer := &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
		Transport:    &kafka.Transport{Dial: dialer.DialFunc},
	}

	log.Info().
		Strs("brokers", cfg.Brokers).
		Str("topic", cfg.Topic).
		Str("principal", cfg.Principal).
		Msg("Kafka alert publisher initialized")

	return &Publisher{
		writer:    writer,
		principal: cfg.Principal,
		topic:     cfg.Topic,
		enabled:   true,
		metrics:   m,
	}
}

// validate rejects events missing the fields every consumer relies on.
func (e AlertEvent) validate() error {
	switch {
	case e.EventType == "":
		return errors.New("alert event missing eventType")
	case e.AnalysisID == "":
		return errors.New("alert event missing analysisId")
	case e.Level == "":
		return errors.New("alert event missing level")
	}
	return nil
}

// Publish writes one alert event keyed by analysis ID.
func (p *Publisher) Publish(ctx context.Context, key string, event AlertEvent) error {
	start := time.Now()

	if err := event.validate(); err != nil {
		log.Error().Err(err).Str("topic", p.topic).Msg("Refusing to publish invalid alert event")
		return err
	}

	payload, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("topic", p.topic).Msg("Failed to marshal alert event")
		return err
	}

	log.Debug().
		Str("principal", p.principal).
		Str("topic", p.topic).
		Str("key", key).
		RawJSON("payload", payload).
		Msg("Publishing alert event")

	if !p.enabled || p.writer == nil {
		p.metrics.RecordKafkaPublish(p.topic, nil, time.Since(start).Seconds())
		return nil
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "eventType", Value: []byte(EventTypeAlert)},
			{Key: "principal", Value: []byte(p.principal)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		log.Error().
			Err(err).
			Str("topic", p.topic).
			Str("key", key).
			Msg("Failed to write to Kafka")
		p.metrics.RecordKafkaPublish(p.topic, err, time.Since(start).Seconds())
		return err
	}

	p.metrics.RecordKafkaPublish(p.topic, nil, time.Since(start).Seconds())
	return nil
}

// Close closes the Kafka writer.
func (p *Publisher) Close() error {
	if p.writer == nil {
		return nil
	}
	if err := p.writer.Close(); err != nil {
		log.Error().Err(err).Msg("Error closing alert writer")
		return err
	}
	return nil
}
