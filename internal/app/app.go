package app

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"compliance-review-service/internal/config"
	"compliance-review-service/internal/pipeline"
	detectgemini "compliance-review-service/internal/service/detect/gemini"
	detectmock "compliance-review-service/internal/service/detect/mock"
	"compliance-review-service/internal/service/fingerprint"
	"compliance-review-service/internal/service/fingerprint/acrcloud"
	fingerprintmock "compliance-review-service/internal/service/fingerprint/mock"
	"compliance-review-service/internal/service/media"
	rejudgemock "compliance-review-service/internal/service/rejudge/mock"
	rejudgeopenai "compliance-review-service/internal/service/rejudge/openai"
	transcribegoogle "compliance-review-service/internal/service/transcribe/google"
	transcribemock "compliance-review-service/internal/service/transcribe/mock"
	transcribeopenai "compliance-review-service/internal/service/transcribe/openai"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Application holds process-wide state for the service.
type Application struct {
	StartupTime time.Time
	Logger      zerolog.Logger
	Cfg         *config.Config

	closers []func() error
}

// New constructs a new Application from the provided configuration.
func New(cfg *config.Config) *Application {
	a := &Application{
		Cfg: cfg,
	}
	a.setupLogger()

	appLogger := a.Logger.With().
		Str("component", "application").
		Str("method", "New").
		Logger()

	appLogger.Info().Msg("Compliance review service application created")
	return a
}

// setupLogger configures zerolog for the service.
func (a *Application) setupLogger() {
	logLevel := zerolog.InfoLevel // Default
	if envLevel := a.Cfg.Observability.LogLevel; envLevel != "" {
		if parsedLevel, err := zerolog.ParseLevel(strings.ToLower(envLevel)); err == nil {
			logLevel = parsedLevel
		}
	}

	zerolog.SetGlobalLevel(logLevel)
	zerolog.TimeFieldFormat = time.RFC3339

	if a.Cfg.Service.Environment == "development" || a.Cfg.Observability.LogFormat == "console" {
		a.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().
			Timestamp().
			Str("service", "compliance-review-service").
			Str("component", "application").
			Logger()
	} else {
		a.Logger = zerolog.New(os.Stdout).With().
			Timestamp().
			Str("service", "compliance-review-service").
			Str("component", "application").
			Logger()
	}

	a.Logger.Info().
		Str("logLevel", logLevel.String()).
		Str("environment", a.Cfg.Service.Environment).
		Msg("Logger setup completed")
}

// BuildProviders constructs the analysis providers named in the
// configuration. Callers must invoke Shutdown to release provider
// resources.
func (a *Application) BuildProviders(ctx context.Context) (pipeline.Providers, error) {
	var p pipeline.Providers
	cfg := a.Cfg

	switch cfg.Providers.Transcriber {
	case "google":
		adapter, err := transcribegoogle.New(ctx, cfg.Google.CredentialsFile, cfg.Google.LanguageCode)
		if err != nil {
			return p, fmt.Errorf("google transcriber: %w", err)
		}
		a.closers = append(a.closers, adapter.Close)
		p.Transcriber = adapter
	case "openai":
		p.Transcriber = transcribeopenai.New(transcribeopenai.Config{
			APIKey:  cfg.OpenAI.APIKey,
			BaseURL: cfg.OpenAI.BaseURL,
		})
	case "mock":
		p.Transcriber = transcribemock.New()
	default:
		return p, fmt.Errorf("unknown transcriber provider %q", cfg.Providers.Transcriber)
	}

	switch cfg.Providers.Detector {
	case "gemini":
		p.Detector = detectgemini.New(detectgemini.Config{
			APIKey:  cfg.Gemini.APIKey,
			BaseURL: cfg.Gemini.BaseURL,
			Model:   cfg.Gemini.Model,
		})
	case "mock":
		p.Detector = detectmock.New()
	default:
		return p, fmt.Errorf("unknown detector provider %q", cfg.Providers.Detector)
	}

	switch cfg.Providers.Judge {
	case "openai":
		p.Judge = rejudgeopenai.New(rejudgeopenai.Config{
			APIKey:  cfg.OpenAI.APIKey,
			BaseURL: cfg.OpenAI.BaseURL,
			Model:   cfg.OpenAI.JudgeModel,
		})
	case "mock":
		p.Judge = rejudgemock.New()
	default:
		return p, fmt.Errorf("unknown judge provider %q", cfg.Providers.Judge)
	}

	switch cfg.Providers.Fingerprint {
	case "acrcloud":
		p.Fingerprint = acrcloud.New(acrcloud.Config{
			Host:         cfg.ACRCloud.Host,
			AccessKey:    cfg.ACRCloud.AccessKey,
			AccessSecret: cfg.ACRCloud.SecretKey,
		})
	case "mock":
		p.Fingerprint = fingerprintmock.New()
	case "off":
		p.Fingerprint = fingerprint.Matcher(nil)
	default:
		return p, fmt.Errorf("unknown fingerprint provider %q", cfg.Providers.Fingerprint)
	}

	p.Extractor = media.NewFFmpeg(cfg.Media.FFmpegPath)

	return p, nil
}

// Start performs any startup work required before serving traffic.
func (a *Application) Start() error {
	startLogger := a.Logger.With().
		Str("method", "Start").
		Logger()

	a.StartupTime = time.Now().UTC()
	startLogger.Info().
		Time("startupTime", a.StartupTime).
		Str("transcriber", a.Cfg.Providers.Transcriber).
		Str("detector", a.Cfg.Providers.Detector).
		Str("judge", a.Cfg.Providers.Judge).
		Str("fingerprint", a.Cfg.Providers.Fingerprint).
		Msg("Compliance review service starting")

	return nil
}

// Shutdown performs a best-effort cleanup before process exit.
func (a *Application) Shutdown() {
	shutdownLogger := a.Logger.With().
		Str("method", "Shutdown").
		Logger()

	for _, close := range a.closers {
		if err := close(); err != nil {
			shutdownLogger.Warn().Err(err).Msg("Provider close failed")
		}
	}

	shutdownLogger.Info().Msg("Compliance review service shutting down")
}
