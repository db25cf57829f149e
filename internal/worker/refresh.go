package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"

	"github.com/ottplanner/ottplanner/internal/otp"
	"github.com/ottplanner/ottplanner/internal/transitindex"
)

// FareRefresher reloads a fare table. It is implemented by *fares.Service.
type FareRefresher interface {
	Refresh(ctx context.Context) (int, error)
}

// IndexWarmer answers transit index lookups through its cache. It is
// implemented by *transitindex.Service.
type IndexWarmer interface {
	Routes(ctx context.Context) ([]transitindex.Route, error)
	StopRoutes(ctx context.Context, stop otp.EntityID) ([]transitindex.Route, error)
}

// RefreshJob reloads the fare table and warms the transit index.
type RefreshJob struct {
	config RefreshConfig
	logger zerolog.Logger

	// Services (optional, nil if not configured)
	fares FareRefresher
	index IndexWarmer

	metrics   *RefreshMetrics
	collector *Collector
}

// RefreshMetrics tracks refresh job statistics.
type RefreshMetrics struct {
	mu sync.RWMutex

	TotalRuns     int64
	FareRefreshes int64
	FareFailures  int64
	StopsWarmed   int64
	StopFailures  int64

	LastRunAt       time.Time
	LastRunDuration time.Duration
	TotalDuration   time.Duration
	FareEntries     int
}

// RefreshJobConfig holds configuration for creating a RefreshJob.
type RefreshJobConfig struct {
	Config RefreshConfig
	Logger zerolog.Logger
	Fares  FareRefresher
	Index  IndexWarmer

	// Collector exports run statistics (optional).
	Collector *Collector
}

// NewRefreshJob creates a new refresh job.
func NewRefreshJob(cfg RefreshJobConfig) *RefreshJob {
	return &RefreshJob{
		config:    cfg.Config.withDefaults(),
		logger:    cfg.Logger,
		fares:     cfg.Fares,
		index:     cfg.Index,
		metrics:   &RefreshMetrics{},
		collector: cfg.Collector,
	}
}

// RefreshResult contains the result of one run.
type RefreshResult struct {
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	// FaresRefreshed is set when the fare table was reloaded; FareEntries is its size.
	FaresRefreshed bool
	FareEntries    int

	RoutesCount int
	TotalStops  int
	StopsWarmed int
	StopsFailed int

	Successful int
	Failed     int
	Errors     []RefreshError
}

// RefreshError describes one failed operation of a run.
type RefreshError struct {
	Target string
	Error  string
}

// Err returns the run's failures as one error, or nil.
func (r *RefreshResult) Err() error {
	errs := make([]error, 0, len(r.Errors))
	for _, e := range r.Errors {
		errs = append(errs, errors.New(e.Target+": "+e.Error))
	}
	return errors.Join(errs...)
}

// Run reloads the fare table, then refreshes the route list and every
// configured stop with up to Concurrency lookups in flight.
func (j *RefreshJob) Run(ctx context.Context) *RefreshResult {
	startTime := time.Now()
	result := &RefreshResult{StartTime: startTime}

	j.logger.Info().
		Int("stops", len(j.config.Stops)).
		Int("concurrency", j.config.Concurrency).
		Msg("starting refresh job")

	if j.config.RefreshFares && j.fares != nil {
		j.refreshFares(ctx, result)
	}
	if j.config.WarmIndex && j.index != nil {
		j.warmIndex(ctx, result)
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(startTime)
	j.updateMetrics(result)
	j.collector.observeRun(result, j.config.RefreshFares && j.fares != nil)

	j.logger.Info().
		Dur("duration", result.Duration).
		Int("fare_entries", result.FareEntries).
		Int("routes", result.RoutesCount).
		Int("successful", result.Successful).
		Int("failed", result.Failed).
		Msg("refresh job completed")

	return result
}

// Start runs the job immediately and then on every interval until ctx is done.
func (j *RefreshJob) Start(ctx context.Context, interval time.Duration) {
	j.Run(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.Run(ctx)
		}
	}
}

func (j *RefreshJob) refreshFares(ctx context.Context, result *RefreshResult) {
	fareCtx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	n, err := j.fares.Refresh(fareCtx)
	if err != nil {
		j.logger.Warn().Err(err).Msg("fare table refresh failed")
		result.Errors = append(result.Errors, RefreshError{Target: "fares", Error: err.Error()})
		result.Failed++
		return
	}
	result.FaresRefreshed = true
	result.FareEntries = n
	result.Successful++
}

func (j *RefreshJob) warmIndex(ctx context.Context, result *RefreshResult) {
	routesCtx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	routes, err := j.index.Routes(routesCtx)
	cancel()
	if err != nil {
		j.logger.Warn().Err(err).Msg("route list refresh failed")
		result.Errors = append(result.Errors, RefreshError{Target: "routes", Error: err.Error()})
		result.Failed++
	} else {
		result.RoutesCount = len(routes)
		result.Successful++
	}

	result.TotalStops = len(j.config.Stops)
	if result.TotalStops == 0 {
		return
	}

	p := pool.NewWithResults[stopResult]().WithMaxGoroutines(j.config.Concurrency)
	for _, stop := range j.config.Stops {
		p.Go(func() stopResult {
			if ctx.Err() != nil {
				return stopResult{stop: stop, skipped: true}
			}
			return j.warmStop(ctx, stop)
		})
	}

	for _, sr := range p.Wait() {
		switch {
		case sr.skipped:
		case sr.err != nil:
			result.Failed++
			result.StopsFailed++
			result.Errors = append(result.Errors, RefreshError{Target: "stop " + sr.stop.String(), Error: sr.err.Error()})
		default:
			result.Successful++
			result.StopsWarmed++
		}
	}
}

type stopResult struct {
	stop    otp.EntityID
	err     error
	skipped bool
}

func (j *RefreshJob) warmStop(ctx context.Context, stop otp.EntityID) stopResult {
	stopCtx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	routes, err := j.index.StopRoutes(stopCtx, stop)
	if errors.Is(err, transitindex.ErrStopNotFound) {
		j.logger.Warn().Str("stop", stop.String()).Msg("configured stop is unknown to the transit index")
	}
	if err == nil {
		j.logger.Debug().Str("stop", stop.String()).Int("routes", len(routes)).Msg("stop warmed")
	}
	return stopResult{stop: stop, err: err}
}

func (j *RefreshJob) updateMetrics(result *RefreshResult) {
	j.metrics.mu.Lock()
	defer j.metrics.mu.Unlock()

	j.metrics.TotalRuns++
	switch {
	case result.FaresRefreshed:
		j.metrics.FareRefreshes++
		j.metrics.FareEntries = result.FareEntries
	case j.config.RefreshFares && j.fares != nil:
		j.metrics.FareFailures++
	}
	j.metrics.StopsWarmed += int64(result.StopsWarmed)
	j.metrics.StopFailures += int64(result.StopsFailed)
	j.metrics.LastRunAt = result.EndTime
	j.metrics.LastRunDuration = result.Duration
	j.metrics.TotalDuration += result.Duration
}

// GetMetrics returns a copy of the current metrics.
func (j *RefreshJob) GetMetrics() RefreshMetrics {
	j.metrics.mu.RLock()
	defer j.metrics.mu.RUnlock()

	return RefreshMetrics{
		TotalRuns:       j.metrics.TotalRuns,
		FareRefreshes:   j.metrics.FareRefreshes,
		FareFailures:    j.metrics.FareFailures,
		StopsWarmed:     j.metrics.StopsWarmed,
		StopFailures:    j.metrics.StopFailures,
		LastRunAt:       j.metrics.LastRunAt,
		LastRunDuration: j.metrics.LastRunDuration,
		TotalDuration:   j.metrics.TotalDuration,
		FareEntries:     j.metrics.FareEntries,
	}
}

// MetricsSnapshot returns a snapshot of the current metrics as a map.
func (j *RefreshJob) MetricsSnapshot() map[string]interface{} {
	m := j.GetMetrics()
	return map[string]interface{}{
		"total_runs":        m.TotalRuns,
		"fare_refreshes":    m.FareRefreshes,
		"fare_failures":     m.FareFailures,
		"fare_entries":      m.FareEntries,
		"stops_warmed":      m.StopsWarmed,
		"stop_failures":     m.StopFailures,
		"last_run_at":       m.LastRunAt,
		"last_run_duration": m.LastRunDuration.String(),
		"total_duration":    m.TotalDuration.String(),
	}
}
