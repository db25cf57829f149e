package worker

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector exposes worker statistics in the Prometheus format. A nil
// *Collector records nothing.
type Collector struct {
	reg *prometheus.Registry

	Runs         prometheus.Counter
	RunDuration  prometheus.Histogram
	FareEntries  prometheus.Gauge
	FareFailures prometheus.Counter
	StopsWarmed  prometheus.Counter
	StopFailures prometheus.Counter
	Jobs         *prometheus.CounterVec // job_type, outcome
}

// NewCollector creates a collector with its own registry.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		Runs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ottplanner_refresh_runs_total",
			Help: "Total refresh job runs.",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ottplanner_refresh_duration_seconds",
			Help:    "Duration of refresh job runs.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		FareEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ottplanner_fare_entries",
			Help: "Entries in the last loaded fare table.",
		}),
		FareFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ottplanner_fare_refresh_failures_total",
			Help: "Total failed fare table reloads.",
		}),
		StopsWarmed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ottplanner_stops_warmed_total",
			Help: "Total stop route lists refreshed.",
		}),
		StopFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ottplanner_stop_warm_failures_total",
			Help: "Total failed stop route list refreshes.",
		}),
		Jobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ottplanner_jobs_total",
			Help: "Trigger messages handled, by job type and outcome.",
		}, []string{"job_type", "outcome"}),
	}

	reg.MustRegister(
		c.Runs, c.RunDuration,
		c.FareEntries, c.FareFailures,
		c.StopsWarmed, c.StopFailures,
		c.Jobs,
	)
	return c
}

// Handler serves the collector's registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{})
}

func (c *Collector) observeRun(r *RefreshResult, faresEnabled bool) {
	if c == nil {
		return
	}
	c.Runs.Inc()
	c.RunDuration.Observe(r.Duration.Seconds())
	switch {
	case r.FaresRefreshed:
		c.FareEntries.Set(float64(r.FareEntries))
	case faresEnabled:
		c.FareFailures.Inc()
	}
	c.StopsWarmed.Add(float64(r.StopsWarmed))
	c.StopFailures.Add(float64(r.StopsFailed))
}

func (c *Collector) observeJob(jobType string, err error) {
	if c == nil {
		return
	}
	outcome := "ok"
	switch {
	case errors.Is(err, ErrMalformedMessage):
		jobType, outcome = "", "malformed"
	case errors.Is(err, ErrUnknownJob):
		jobType, outcome = "unknown", "ignored"
	case err != nil:
		outcome = "failed"
	}
	c.Jobs.WithLabelValues(jobType, outcome).Inc()
}
