// Package main provides the entrypoint for the background refresh worker.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/ottplanner/ottplanner/internal/api/response"
	"github.com/ottplanner/ottplanner/internal/config"
	"github.com/ottplanner/ottplanner/internal/database"
	"github.com/ottplanner/ottplanner/internal/fares"
	"github.com/ottplanner/ottplanner/internal/otp"
	"github.com/ottplanner/ottplanner/internal/telemetry"
	"github.com/ottplanner/ottplanner/internal/tripview"
	"github.com/ottplanner/ottplanner/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "ottplanner-worker"

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	log.Info().
		Str("build_time", BuildTime).
		Str("fare_source", cfg.Fares.Source).
		Msg("starting refresh worker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		Enabled:        cfg.Telemetry.Enabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	var pool *pgxpool.Pool
	if cfg.Fares.Source != config.FareSourceMemory {
		pool, err = database.Connect(ctx, cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pool.Close()
	}

	// A fare file is published to Postgres on every refresh.
	var fareRepo fares.Repository
	switch cfg.Fares.Source {
	case config.FareSourceFile:
		fareRepo = fares.NewMirrorRepository(fares.NewFileRepository(cfg.Fares.File), fares.NewPostgresRepository(pool))
	case config.FareSourcePostgres:
		fareRepo = fares.NewPostgresRepository(pool)
	default:
		fareRepo = fares.NewInMemoryRepository()
	}

	fareService := fares.NewService(fares.ServiceConfig{
		Repository: fareRepo,
		Logger:     log.With().Str("component", "fares").Logger(),
		Defaults:   tripview.DefaultFares,
	})

	collector := worker.NewCollector()

	refreshCfg := worker.DefaultRefreshConfig()
	refreshCfg.WarmIndex = false
	refreshCfg.Concurrency = cfg.Worker.Concurrency
	refreshJob := worker.NewRefreshJob(worker.RefreshJobConfig{
		Config:    refreshCfg,
		Logger:    log.With().Str("component", "refresh").Logger(),
		Fares:     fareService,
		Collector: collector,
	})

	engine := otp.NewClient(otp.ClientConfig{
		BaseURL: cfg.OTP.URL,
		Timeout: cfg.OTP.Timeout,
		Logger:  log.With().Str("component", "otp").Logger(),
	})
	dispatcher := worker.NewDispatcher(worker.DispatcherConfig{
		RefreshJob: refreshJob,
		Probe:      engine,
		Logger:     log.With().Str("component", "dispatcher").Logger(),
		Collector:  collector,
	})

	if cfg.PubSub.ProjectID != "" {
		handler, err := worker.NewPubSubHandler(ctx, worker.PubSubConfig{
			ProjectID:        cfg.PubSub.ProjectID,
			SubscriptionName: cfg.PubSub.SubscriptionID,
			Dispatcher:       dispatcher,
			Logger:           log.With().Str("component", "pubsub").Logger(),
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create pubsub handler")
		}
		defer func() {
			if err := handler.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close pubsub client")
			}
		}()

		go func() {
			if err := handler.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("pubsub handler stopped")
				stop()
			}
		}()
	} else {
		log.Info().Msg("no pubsub subscription configured, running on the ticker only")
	}

	go refreshJob.Start(ctx, cfg.Worker.Interval)

	// The worker exposes health and Prometheus endpoints for the platform.
	r := chi.NewRouter()
	r.Handle("/metrics", collector.Handler())
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, r, http.StatusOK, map[string]interface{}{
			"status":  "healthy",
			"version": Version,
			"refresh": refreshJob.MetricsSnapshot(),
		})
	})

	server := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("health server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("health server error")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down worker")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("worker stopped")
}
