// Package config loads service configuration from the environment,
// optionally overlaid with a YAML file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ServiceConfig holds top-level service settings.
type ServiceConfig struct {
	Principal   string `yaml:"principal"`
	HTTPPort    string `yaml:"httpPort"`
	MetricsAddr string `yaml:"metricsAddr"`
	Environment string `yaml:"environment"` // development, production
	TempDir     string `yaml:"tempDir"`
}

// ProvidersConfig selects the backing implementation for each provider slot.
type ProvidersConfig struct {
	Transcriber string `yaml:"transcriber"` // google, openai, mock
	Detector    string `yaml:"detector"`    // gemini, mock
	Judge       string `yaml:"judge"`       // openai, mock
	Fingerprint string `yaml:"fingerprint"` // acrcloud, mock, off
}

// GoogleConfig holds Google Cloud Speech settings.
type GoogleConfig struct {
	CredentialsFile string `yaml:"credentialsFile"`
	LanguageCode    string `yaml:"languageCode"`
}

// OpenAIConfig holds OpenAI API settings, shared by the Whisper
// transcriber and the context judge.
type OpenAIConfig struct {
	APIKey     string `yaml:"apiKey"`
	BaseURL    string `yaml:"baseURL"`
	JudgeModel string `yaml:"judgeModel"`
}

// GeminiConfig holds Gemini API settings for the detector.
type GeminiConfig struct {
	APIKey  string `yaml:"apiKey"`
	BaseURL string `yaml:"baseURL"`
	Model   string `yaml:"model"`
}

// ACRCloudConfig holds ACRCloud fingerprinting settings.
type ACRCloudConfig struct {
	Host      string `yaml:"host"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
}

// MediaConfig holds media tooling settings.
type MediaConfig struct {
	FFmpegPath string `yaml:"ffmpegPath"`
}

// KafkaConfig holds Kafka event publishing settings.
type KafkaConfig struct {
	Enabled   bool     `yaml:"enabled"`
	Brokers   []string `yaml:"brokers"`
	Topic     string   `yaml:"topic"`
	Principal string   `yaml:"principal"`
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	LogLevel  string `yaml:"logLevel"`
	LogFormat string `yaml:"logFormat"`
}

// Config is the full service configuration.
type Config struct {
	Service       ServiceConfig       `yaml:"service"`
	Providers     ProvidersConfig     `yaml:"providers"`
	Google        GoogleConfig        `yaml:"google"`
	OpenAI        OpenAIConfig        `yaml:"openai"`
	Gemini        GeminiConfig        `yaml:"gemini"`
	ACRCloud      ACRCloudConfig      `yaml:"acrcloud"`
	Media         MediaConfig         `yaml:"media"`
	Kafka         KafkaConfig         `yaml:"kafka"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// Load builds the configuration from environment variables with defaults.
func Load() *Config {
	cfg := &Config{
		Service: ServiceConfig{
			Principal:   envOrDefault("SERVICE_PRINCIPAL", "svc-compliance-review"),
			HTTPPort:    envOrDefault("HTTP_PORT", "8080"),
			MetricsAddr: envOrDefault("METRICS_ADDR", ":9090"),
			Environment: envOrDefault("ENVIRONMENT", "development"),
			TempDir:     envOrDefault("TEMP_DIR", os.TempDir()),
		},
		Providers: ProvidersConfig{
			Transcriber: envOrDefault("TRANSCRIBER_PROVIDER", "mock"),
			Detector:    envOrDefault("DETECTOR_PROVIDER", "mock"),
			Judge:       envOrDefault("JUDGE_PROVIDER", "mock"),
			Fingerprint: envOrDefault("FINGERPRINT_PROVIDER", "off"),
		},
		Google: GoogleConfig{
			CredentialsFile: envOrDefault("GOOGLE_APPLICATION_CREDENTIALS", ""),
			LanguageCode:    envOrDefault("GOOGLE_STT_LANGUAGE_CODE", "en-US"),
		},
		OpenAI: OpenAIConfig{
			APIKey:     envOrDefault("OPENAI_API_KEY", ""),
			BaseURL:    envOrDefault("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			JudgeModel: envOrDefault("OPENAI_JUDGE_MODEL", "gpt-4o-mini"),
		},
		Gemini: GeminiConfig{
			APIKey:  envOrDefault("GEMINI_API_KEY", ""),
			BaseURL: envOrDefault("GEMINI_BASE_URL", ""),
			Model:   envOrDefault("GEMINI_MODEL", "gemini-1.5-pro"),
		},
		ACRCloud: ACRCloudConfig{
			Host:      envOrDefault("ACRCLOUD_HOST", ""),
			AccessKey: envOrDefault("ACRCLOUD_ACCESS_KEY", ""),
			SecretKey: envOrDefault("ACRCLOUD_SECRET_KEY", ""),
		},
		Media: MediaConfig{
			FFmpegPath: envOrDefault("FFMPEG_PATH", "ffmpeg"),
		},
		Kafka: KafkaConfig{
			Enabled: envOrDefaultBool("KAFKA_ENABLED", false),
			Brokers: envOrDefaultList("KAFKA_BROKERS", []string{"localhost:9092"}),
			Topic:   envOrDefault("KAFKA_TOPIC", "compliance.alerts"),
		},
		Observability: ObservabilityConfig{
			LogLevel:  envOrDefault("LOG_LEVEL", "info"),
			LogFormat: envOrDefault("LOG_FORMAT", "json"),
		},
	}

	// Kafka principal falls back to the service principal
	cfg.Kafka.Principal = envOrDefault("KAFKA_PRINCIPAL", cfg.Service.Principal)

	return cfg
}

// LoadFile loads the environment configuration and overlays it with
// values from a YAML file. Empty fields in the file keep the
// environment values.
func LoadFile(path string) (*Config, error) {
	cfg := Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	if cfg.Kafka.Principal == "" {
		cfg.Kafka.Principal = cfg.Service.Principal
	}
	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(strings.ToLower(v))
		if err != nil {
			return def
		}
		return b
	}
	return def
}

func envOrDefaultList(key string, def []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if s := strings.TrimSpace(p); s != "" {
				out = append(out, s)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return def
}
