package fares

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// ErrNotLoaded is returned by LoadedAt before the first successful refresh.
var ErrNotLoaded = errors.New("fare table not loaded")

// DefaultRefreshInterval is how often Start reloads the table.
const DefaultRefreshInterval = 15 * time.Minute

// ServiceConfig holds configuration for the fare service.
type ServiceConfig struct {
	Repository      Repository
	Logger          zerolog.Logger
	RefreshInterval time.Duration

	// Defaults answer tiers the table does not define.
	Defaults map[string]string
}

// snapshot is an immutable view of the table. It is replaced, never modified.
type snapshot struct {
	values   map[string]string
	loadedAt time.Time
}

// Service serves fare lookups from the last loaded snapshot. Query performs no
// I/O and is safe for concurrent use.
type Service struct {
	repo     Repository
	logger   zerolog.Logger
	interval time.Duration
	defaults map[string]string

	current   atomic.Pointer[snapshot]
	refreshMu sync.Mutex
}

// NewService creates a new fare service. The table is empty until Refresh succeeds.
func NewService(cfg ServiceConfig) *Service {
	interval := cfg.RefreshInterval
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}

	defaults := make(map[string]string, len(cfg.Defaults))
	for k, v := range cfg.Defaults {
		defaults[k] = v
	}

	return &Service{
		repo:     cfg.Repository,
		logger:   cfg.Logger,
		interval: interval,
		defaults: defaults,
	}
}

// Query returns the value for tier, falling back to the configured defaults and then to def.
func (s *Service) Query(tier, def string) string {
	if snap := s.current.Load(); snap != nil {
		if v, ok := snap.values[tier]; ok {
			return v
		}
	}
	if v, ok := s.defaults[tier]; ok {
		return v
	}
	return def
}

// Refresh reloads the table from the repository and returns the number of entries.
// On failure the previous snapshot stays in place.
func (s *Service) Refresh(ctx context.Context) (int, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	entries, err := s.repo.ListEntries(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to refresh fare table, keeping previous snapshot")
		return 0, err
	}

	values := make(map[string]string, len(entries))
	for _, e := range entries {
		values[e.Tier] = e.Value()
	}
	s.current.Store(&snapshot{values: values, loadedAt: time.Now()})

	s.logger.Debug().Int("entries", len(entries)).Msg("fare table refreshed")
	return len(entries), nil
}

// LoadedAt returns when the current snapshot was loaded.
func (s *Service) LoadedAt() (time.Time, error) {
	snap := s.current.Load()
	if snap == nil {
		return time.Time{}, ErrNotLoaded
	}
	return snap.loadedAt, nil
}

// Start refreshes the table immediately and then on every interval until ctx is done.
func (s *Service) Start(ctx context.Context) {
	_, _ = s.Refresh(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = s.Refresh(ctx)
		}
	}
}
