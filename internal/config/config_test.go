package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	// Clear relevant env vars
	envVars := []string{
		"SERVICE_PRINCIPAL", "HTTP_PORT", "METRICS_ADDR", "ENVIRONMENT",
		"TRANSCRIBER_PROVIDER", "DETECTOR_PROVIDER", "JUDGE_PROVIDER",
		"FINGERPRINT_PROVIDER", "KAFKA_ENABLED", "KAFKA_BROKERS",
		"KAFKA_TOPIC", "KAFKA_PRINCIPAL", "LOG_LEVEL", "LOG_FORMAT",
	}
	for _, v := range envVars {
		os.Unsetenv(v)
	}

	cfg := Load()

	if cfg.Service.Principal != "svc-compliance-review" {
		t.Errorf("expected default principal 'svc-compliance-review', got %s", cfg.Service.Principal)
	}
	if cfg.Service.HTTPPort != "8080" {
		t.Errorf("expected default port '8080', got %s", cfg.Service.HTTPPort)
	}
	if cfg.Providers.Transcriber != "mock" {
		t.Errorf("expected default transcriber 'mock', got %s", cfg.Providers.Transcriber)
	}
	if cfg.Providers.Fingerprint != "off" {
		t.Errorf("expected default fingerprint 'off', got %s", cfg.Providers.Fingerprint)
	}
	if cfg.Kafka.Enabled {
		t.Error("expected Kafka disabled by default")
	}
	if cfg.Kafka.Topic != "compliance.alerts" {
		t.Errorf("expected default topic 'compliance.alerts', got %s", cfg.Kafka.Topic)
	}
	if cfg.Observability.LogLevel != "info" {
		t.Errorf("expected default log level 'info', got %s", cfg.Observability.LogLevel)
	}
	if cfg.Media.FFmpegPath != "ffmpeg" {
		t.Errorf("expected default ffmpeg path 'ffmpeg', got %s", cfg.Media.FFmpegPath)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	os.Setenv("SERVICE_PRINCIPAL", "custom-principal")
	os.Setenv("HTTP_PORT", "9999")
	os.Setenv("TRANSCRIBER_PROVIDER", "google")
	os.Setenv("DETECTOR_PROVIDER", "gemini")
	os.Setenv("KAFKA_ENABLED", "true")
	os.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")
	os.Setenv("LOG_LEVEL", "debug")

	defer func() {
		os.Unsetenv("SERVICE_PRINCIPAL")
		os.Unsetenv("HTTP_PORT")
		os.Unsetenv("TRANSCRIBER_PROVIDER")
		os.Unsetenv("DETECTOR_PROVIDER")
		os.Unsetenv("KAFKA_ENABLED")
		os.Unsetenv("KAFKA_BROKERS")
		os.Unsetenv("LOG_LEVEL")
	}()

	cfg := Load()

	if cfg.Service.Principal != "custom-principal" {
		t.Errorf("expected principal 'custom-principal', got %s", cfg.Service.Principal)
	}
	if cfg.Service.HTTPPort != "9999" {
		t.Errorf("expected port '9999', got %s", cfg.Service.HTTPPort)
	}
	if cfg.Providers.Transcriber != "google" {
		t.Errorf("expected transcriber 'google', got %s", cfg.Providers.Transcriber)
	}
	if cfg.Providers.Detector != "gemini" {
		t.Errorf("expected detector 'gemini', got %s", cfg.Providers.Detector)
	}
	if !cfg.Kafka.Enabled {
		t.Error("expected Kafka enabled")
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "kafka-2:9092" {
		t.Errorf("expected two trimmed brokers, got %v", cfg.Kafka.Brokers)
	}
	if cfg.Observability.LogLevel != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Observability.LogLevel)
	}
}

func TestLoad_KafkaPrincipal_FallsBackToServicePrincipal(t *testing.T) {
	os.Setenv("SERVICE_PRINCIPAL", "my-service")
	os.Unsetenv("KAFKA_PRINCIPAL")

	defer os.Unsetenv("SERVICE_PRINCIPAL")

	cfg := Load()

	if cfg.Kafka.Principal != "my-service" {
		t.Errorf("expected Kafka principal to fall back to service principal, got %s", cfg.Kafka.Principal)
	}
}

func TestLoad_InvalidBool_FallbackToDefault(t *testing.T) {
	os.Setenv("KAFKA_ENABLED", "invalid")
	defer os.Unsetenv("KAFKA_ENABLED")

	cfg := Load()

	if cfg.Kafka.Enabled {
		t.Error("expected invalid bool to fall back to the default false")
	}
}

func TestLoadFile_Overlay(t *testing.T) {
	os.Unsetenv("HTTP_PORT")
	os.Unsetenv("TRANSCRIBER_PROVIDER")

	path := filepath.Join(t.TempDir(), "config.yaml")
	contents := `
service:
  httpPort: "7070"
providers:
  transcriber: openai
kafka:
  enabled: true
  topic: alerts.test
`
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	if cfg.Service.HTTPPort != "7070" {
		t.Errorf("expected file port '7070', got %s", cfg.Service.HTTPPort)
	}
	if cfg.Providers.Transcriber != "openai" {
		t.Errorf("expected file transcriber 'openai', got %s", cfg.Providers.Transcriber)
	}
	if !cfg.Kafka.Enabled || cfg.Kafka.Topic != "alerts.test" {
		t.Errorf("expected Kafka overrides from file, got %+v", cfg.Kafka)
	}
	// Untouched fields keep their environment defaults.
	if cfg.Providers.Detector != "mock" {
		t.Errorf("expected default detector 'mock', got %s", cfg.Providers.Detector)
	}
}

func TestLoadFile_MissingFile(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected an error for a missing config file")
	}
}

func TestEnvOrDefaultBool(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		def      bool
		expected bool
	}{
		{"true string", "true", false, true},
		{"false string", "false", true, false},
		{"1", "1", false, true},
		{"0", "0", true, false},
		{"TRUE uppercase", "TRUE", false, true},
		{"invalid", "invalid", true, true},
		{"empty", "", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := "TEST_BOOL_VAR"
			if tt.envValue != "" {
				os.Setenv(key, tt.envValue)
			} else {
				os.Unsetenv(key)
			}
			defer os.Unsetenv(key)

			got := envOrDefaultBool(key, tt.def)
			if got != tt.expected {
				t.Errorf("envOrDefaultBool(%s, %v) = %v, want %v", tt.envValue, tt.def, got, tt.expected)
			}
		})
	}
}
