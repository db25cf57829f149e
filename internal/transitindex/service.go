package transitindex

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/ottplanner/ottplanner/internal/otp"
)

// DefaultCacheTTL matches the max-age the index endpoints advertise.
const DefaultCacheTTL = 5555 * time.Second

// CacheRecorder receives cache hits and misses. It is implemented by
// *middleware.ProviderMetrics.
type CacheRecorder interface {
	RecordCacheHit(provider, operation string)
	RecordCacheMiss(provider, operation string)
}

// ServiceConfig holds configuration for the transit index service.
type ServiceConfig struct {
	// Repository is the index source.
	Repository Repository

	// Logger for service operations.
	Logger zerolog.Logger

	// CacheTTL is how long lookups are cached (default: DefaultCacheTTL).
	CacheTTL time.Duration

	// StaleIfErrorTTL allows serving stale data on source errors (default: 24 hours).
	StaleIfErrorTTL time.Duration

	// Metrics records cache hits and misses (optional).
	Metrics CacheRecorder

	// Now defaults to time.Now.
	Now func() time.Time
}

type cachedRoutes struct {
	routes    []Route
	fetchedAt time.Time
}

// Service serves transit index lookups with caching.
type Service struct {
	repo            Repository
	logger          zerolog.Logger
	cacheTTL        time.Duration
	staleIfErrorTTL time.Duration
	metrics         CacheRecorder
	now             func() time.Time

	group      singleflight.Group
	mu         sync.RWMutex
	routes     *cachedRoutes
	stopRoutes map[otp.EntityID]*cachedRoutes
}

// NewService creates a new transit index service.
func NewService(cfg ServiceConfig) *Service {
	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = DefaultCacheTTL
	}

	staleIfErrorTTL := cfg.StaleIfErrorTTL
	if staleIfErrorTTL == 0 {
		staleIfErrorTTL = 24 * time.Hour
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Service{
		repo:            cfg.Repository,
		logger:          cfg.Logger,
		cacheTTL:        cacheTTL,
		staleIfErrorTTL: staleIfErrorTTL,
		metrics:         cfg.Metrics,
		now:             now,
		stopRoutes:      make(map[otp.EntityID]*cachedRoutes),
	}
}

// Routes returns every route.
func (s *Service) Routes(ctx context.Context) ([]Route, error) {
	s.mu.RLock()
	cached := s.routes
	s.mu.RUnlock()
	if s.fresh(cached) {
		s.record(true, "routes")
		return cached.routes, nil
	}
	s.record(false, "routes")

	// Concurrent misses share one source lookup
	v, err, _ := s.group.Do("routes", func() (any, error) {
		// Double-check cache
		s.mu.RLock()
		cached := s.routes
		s.mu.RUnlock()
		if s.fresh(cached) {
			return cached.routes, nil
		}

		routes, err := s.repo.Routes(context.WithoutCancel(ctx))
		if err != nil {
			return s.stale(cached, err, s.logger.With().Str("lookup", "routes").Logger())
		}

		s.mu.Lock()
		s.routes = &cachedRoutes{routes: routes, fetchedAt: s.now()}
		s.mu.Unlock()

		s.logger.Info().
			Str("source", s.repo.Name()).
			Int("routes", len(routes)).
			Msg("route cache refreshed")
		return routes, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]Route), nil
}

// StopRoutes returns the routes serving a stop.
func (s *Service) StopRoutes(ctx context.Context, stop otp.EntityID) ([]Route, error) {
	s.mu.RLock()
	cached := s.stopRoutes[stop]
	s.mu.RUnlock()
	if s.fresh(cached) {
		s.record(true, "stop_routes")
		return cached.routes, nil
	}
	s.record(false, "stop_routes")

	v, err, _ := s.group.Do("stop:"+stop.String(), func() (any, error) {
		s.mu.RLock()
		cached := s.stopRoutes[stop]
		s.mu.RUnlock()
		if s.fresh(cached) {
			return cached.routes, nil
		}

		routes, err := s.repo.StopRoutes(context.WithoutCancel(ctx), stop)
		if errors.Is(err, ErrStopNotFound) {
			s.mu.Lock()
			delete(s.stopRoutes, stop)
			s.mu.Unlock()
			return nil, err
		}
		if err != nil {
			return s.stale(cached, err, s.logger.With().Str("stop", stop.String()).Logger())
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		s.stopRoutes[stop] = &cachedRoutes{routes: routes, fetchedAt: s.now()}
		s.cleanup()
		return routes, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]Route), nil
}

// InvalidateCache clears all cached data.
func (s *Service) InvalidateCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes = nil
	s.stopRoutes = make(map[otp.EntityID]*cachedRoutes)
}

func (s *Service) record(hit bool, operation string) {
	if s.metrics == nil {
		return
	}
	if hit {
		s.metrics.RecordCacheHit(s.repo.Name(), operation)
	} else {
		s.metrics.RecordCacheMiss(s.repo.Name(), operation)
	}
}

func (s *Service) fresh(c *cachedRoutes) bool {
	return c != nil && s.now().Before(c.fetchedAt.Add(s.cacheTTL))
}

// stale serves c after a source error if it is young enough.
func (s *Service) stale(c *cachedRoutes, err error, log zerolog.Logger) ([]Route, error) {
	log.Error().Err(err).Str("source", s.repo.Name()).Msg("transit index lookup failed")

	if c != nil && s.now().Before(c.fetchedAt.Add(s.staleIfErrorTTL)) {
		log.Warn().
			Time("fetched_at", c.fetchedAt).
			Msg("serving stale transit index data due to source error")
		return c.routes, nil
	}
	return nil, errors.Join(ErrProviderUnavailable, err)
}

// cleanup drops stop entries too old to serve even as stale data. Callers hold mu.
func (s *Service) cleanup() {
	expired := 0
	for key, c := range s.stopRoutes {
		if s.now().After(c.fetchedAt.Add(s.staleIfErrorTTL)) {
			delete(s.stopRoutes, key)
			expired++
		}
	}
	if expired > 0 {
		s.logger.Debug().Int("expired_entries", expired).Msg("cleaned up expired stop cache entries")
	}
}
