package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"compliance-review-service/internal/app"
	"compliance-review-service/internal/config"
	"compliance-review-service/internal/events"
	"compliance-review-service/internal/httpapi"
	"compliance-review-service/internal/observability"
	"compliance-review-service/internal/pipeline"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the analysis HTTP API and observability server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	application := app.New(cfg)
	if err := application.Start(); err != nil {
		return err
	}
	defer application.Shutdown()

	providers, err := application.BuildProviders(cmd.Context())
	if err != nil {
		return err
	}

	publisher := events.New(&events.Config{
		Enabled:   cfg.Kafka.Enabled,
		Brokers:   cfg.Kafka.Brokers,
		Topic:     cfg.Kafka.Topic,
		Principal: cfg.Kafka.Principal,
	})
	defer publisher.Close()

	orch := pipeline.New(providers, publisher, cfg.Service.TempDir)

	obs := observability.NewServer(cfg.Service.MetricsAddr)
	obs.Start()

	server := &http.Server{
		Addr:        ":" + cfg.Service.HTTPPort,
		Handler:     httpapi.NewRouter(orch, cfg.Service.TempDir),
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		application.Logger.Info().Str("addr", server.Addr).Msg("HTTP API listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case s := <-sig:
		application.Logger.Info().Str("signal", s.String()).Msg("Shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		application.Logger.Error().Err(err).Msg("HTTP server shutdown failed")
	}
	if err := obs.Shutdown(ctx); err != nil {
		application.Logger.Error().Err(err).Msg("Observability server shutdown failed")
	}
	return nil
}

func loadConfig() (*config.Config, error) {
	if configFile != "" {
		return config.LoadFile(configFile)
	}
	return config.Load(), nil
}
