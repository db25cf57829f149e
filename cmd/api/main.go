// Package main provides the entrypoint for the trip planner API server.
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

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/ottplanner/ottplanner/internal/api"
	"github.com/ottplanner/ottplanner/internal/api/middleware"
	"github.com/ottplanner/ottplanner/internal/config"
	"github.com/ottplanner/ottplanner/internal/database"
	"github.com/ottplanner/ottplanner/internal/fares"
	"github.com/ottplanner/ottplanner/internal/otp"
	"github.com/ottplanner/ottplanner/internal/planner"
	"github.com/ottplanner/ottplanner/internal/provider/resilience"
	"github.com/ottplanner/ottplanner/internal/telemetry"
	"github.com/ottplanner/ottplanner/internal/transitindex"
	"github.com/ottplanner/ottplanner/internal/tripview"
	"github.com/ottplanner/ottplanner/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "ottplanner-api"

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
	if !cfg.IsProduction() {
		log = log.Level(zerolog.DebugLevel)
	} else {
		log = log.Level(zerolog.InfoLevel)
	}

	log.Info().
		Str("build_time", BuildTime).
		Str("engine", cfg.OTP.URL).
		Msg("starting trip planner API")

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

	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}
	providerMetrics, err := middleware.NewProviderMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize provider metrics")
	}

	var pool *pgxpool.Pool
	if cfg.UsesPostgres() {
		pool, err = database.Connect(ctx, cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pool.Close()
		log.Info().
			Str("host", cfg.Database.Host).
			Str("database", cfg.Database.Database).
			Msg("database connected")
	}

	registry := resilience.NewRegistry()
	engine := otp.NewClient(otp.ClientConfig{
		BaseURL:  cfg.OTP.URL,
		Timeout:  cfg.OTP.Timeout,
		Registry: registry,
		Metrics:  providerMetrics,
		Logger:   log.With().Str("component", "otp").Logger(),
	})

	fareService := fares.NewService(fares.ServiceConfig{
		Repository:      fareRepository(cfg, pool),
		Logger:          log.With().Str("component", "fares").Logger(),
		RefreshInterval: cfg.Fares.RefreshInterval,
		Defaults:        tripview.DefaultFares,
	})

	indexService := transitindex.NewService(transitindex.ServiceConfig{
		Repository: indexRepository(cfg, pool, engine, log),
		Logger:     log.With().Str("component", "transitindex").Logger(),
		CacheTTL:   cfg.TransitIndex.CacheTTL,
		Metrics:    providerMetrics,
	})

	builder := tripview.NewBuilder(tripview.Config{
		Logger:               log.With().Str("component", "tripview").Logger(),
		Location:             cfg.Planner.Location,
		Fares:                fareService,
		MapImageURLTemplate:  cfg.Planner.MapImageURLTemplate,
		ItineraryURLTemplate: cfg.Planner.ItineraryURLTemplate,
	})
	planService := planner.NewService(planner.ServiceConfig{
		Engine:   engine,
		Builder:  builder,
		Logger:   log.With().Str("component", "planner").Logger(),
		Location: cfg.Planner.Location,
	})

	warmStops, err := worker.ParseStops(cfg.Worker.WarmStops)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid WARM_STOPS")
	}
	refreshCfg := worker.DefaultRefreshConfig()
	refreshCfg.Stops = warmStops
	refreshCfg.Concurrency = cfg.Worker.Concurrency
	refreshJob := worker.NewRefreshJob(worker.RefreshJobConfig{
		Config: refreshCfg,
		Logger: log.With().Str("component", "refresh").Logger(),
		Fares:  fareService,
		Index:  indexService,
	})
	go refreshJob.Start(ctx, cfg.Fares.RefreshInterval)

	router := api.NewRouter(api.RouterConfig{
		Version:      Version,
		BuildTime:    BuildTime,
		Logger:       log,
		ServiceName:  serviceName,
		Metrics:      metrics,
		RequireTLS:   cfg.RequireTLS,
		Planner:      planService,
		TransitIndex: indexService,
		Registry:     registry,
		Fares:        fareService,
	})

	server := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.OTP.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server error")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		return
	}

	log.Info().Msg("server stopped")
}

func fareRepository(cfg *config.Config, pool *pgxpool.Pool) fares.Repository {
	switch cfg.Fares.Source {
	case config.FareSourceFile:
		return fares.NewFileRepository(cfg.Fares.File)
	case config.FareSourcePostgres:
		return fares.NewPostgresRepository(pool)
	default:
		return fares.NewInMemoryRepository()
	}
}

func indexRepository(cfg *config.Config, pool *pgxpool.Pool, engine *otp.Client, log zerolog.Logger) transitindex.Repository {
	switch cfg.TransitIndex.Source {
	case config.IndexSourcePostgres:
		return transitindex.NewPostgresRepository(pool)
	case config.IndexSourceMemory:
		log.Warn().Msg("transit index uses an empty in-memory source")
		return transitindex.NewInMemoryRepository()
	default:
		return transitindex.NewEngineRepository(engine, log.With().Str("component", "transitindex").Logger())
	}
}
