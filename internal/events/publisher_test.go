package events

import (
	"context"
	"testing"
)

func TestNew_DisabledMode(t *testing.T) {
	tests := []struct {
		name string
		cfg  *Config
	}{
		{"nil config", nil},
		{"disabled", &Config{Enabled: false, Brokers: []string{"localhost:9092"}}},
		{"no brokers", &Config{Enabled: true, Brokers: []string{}}},
		{"empty brokers", &Config{Enabled: true, Brokers: nil}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(tt.cfg)
			if p == nil {
				t.Fatal("expected non-nil publisher")
			}
			if p.enabled {
				t.Error("expected publisher to be disabled")
			}
			if p.writer != nil {
				t.Error("expected nil writer when disabled")
			}
		})
	}
}

func TestNew_ConfigValues(t *testing.T) {
	cfg := &Config{
		Enabled:   false,
		Brokers:   []string{"localhost:9092"},
		Topic:     "test.alerts",
		Principal: "test-principal",
	}

	p := New(cfg)

	if p.principal != "test-principal" {
		t.Errorf("expected principal 'test-principal', got %s", p.principal)
	}
	if p.topic != "test.alerts" {
		t.Errorf("expected topic 'test.alerts', got %s", p.topic)
	}
}

func TestPublisher_Publish_Disabled(t *testing.T) {
	p := New(&Config{Enabled: false, Topic: "test.alerts"})

	event := AlertEvent{
		EventType:  EventTypeAlert,
		AnalysisID: "analysis-1",
		Source:     "video",
		Level:      "severe",
		Reasons:    []string{"primary assessment found a serious compliance risk: data exposure"},
		Timestamp:  "0:12 - 0:20",
		EmittedAt:  1700000000000,
	}

	// Disabled mode logs the event and reports success.
	if err := p.Publish(context.Background(), "analysis-1", event); err != nil {
		t.Errorf("expected nil error in disabled mode, got %v", err)
	}
}

func TestPublisher_Publish_RejectsInvalidEvent(t *testing.T) {
	p := New(&Config{Enabled: false, Topic: "test.alerts"})

	tests := []struct {
		name  string
		event AlertEvent
	}{
		{"missing event type", AlertEvent{AnalysisID: "a", Level: "severe"}},
		{"missing analysis id", AlertEvent{EventType: EventTypeAlert, Level: "severe"}},
		{"missing level", AlertEvent{EventType: EventTypeAlert, AnalysisID: "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := p.Publish(context.Background(), "a", tt.event); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}

func TestPublisher_Close_Disabled(t *testing.T) {
	p := New(nil)
	if err := p.Close(); err != nil {
		t.Errorf("expected nil error closing disabled publisher, got %v", err)
	}
}
