// Package api provides the HTTP API of the trip planner.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/ottplanner/ottplanner/internal/api/handler"
	"github.com/ottplanner/ottplanner/internal/api/middleware"
	"github.com/ottplanner/ottplanner/internal/api/response"
	"github.com/ottplanner/ottplanner/internal/provider/resilience"
)

// Cache lifetimes advertised to clients and proxies.
const (
	PlanCacheControl  = "private, max-age=60"
	IndexCacheControl = "public, max-age=5555"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics
	RequireTLS  bool

	Planner      handler.Planner
	TransitIndex handler.TransitIndex
	Registry     *resilience.Registry
	Fares        handler.LoadTracker
}

// NewRouter creates a new chi router with all API routes configured.
// The transit index routes are only mounted when TransitIndex is set.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "ottplanner-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing(serviceName))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.RequireTLS(cfg.RequireTLS))
	r.Use(middleware.ContentTypeJSON)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, r, "no such endpoint")
	})

	opsHandler := handler.NewOpsHandler(handler.OpsConfig{
		Version:   cfg.Version,
		BuildTime: cfg.BuildTime,
		Registry:  cfg.Registry,
		Fares:     cfg.Fares,
	})

	planRateLimit := middleware.RateLimitByIP(middleware.PlanRateLimit)
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.Get("/status", opsHandler.SystemStatus)
		})

		if cfg.Planner != nil {
			planHandler := handler.NewPlanHandler(cfg.Planner, cfg.Logger)
			r.With(planRateLimit, middleware.CacheControl(PlanCacheControl)).Get("/plan", planHandler.PlanTrip)
		}

		if cfg.TransitIndex != nil {
			indexHandler := handler.NewTransitIndexHandler(cfg.TransitIndex, cfg.Logger)
			r.Route("/ti", func(r chi.Router) {
				r.Use(standardRateLimit)
				r.Use(middleware.CacheControl(IndexCacheControl))
				r.Get("/routes", indexHandler.ListRoutes)
				r.Get("/stops/{stop}/routes", indexHandler.ListStopRoutes)
			})
		}
	})

	return r
}
