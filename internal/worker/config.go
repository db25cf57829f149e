// Package worker runs the background refresh jobs of the trip planner: fare
// table reloads and transit index cache warming.
package worker

import (
	"fmt"
	"strings"
	"time"

	"github.com/ottplanner/ottplanner/internal/otp"
	"github.com/ottplanner/ottplanner/internal/transitindex"
)

// RefreshConfig holds configuration for the refresh job.
type RefreshConfig struct {
	// Stops are the stops whose route lists are kept warm, in refresh order.
	Stops []otp.EntityID

	// Concurrency is the number of concurrent stop lookups.
	// Default: 3
	Concurrency int

	// Timeout bounds each refresh operation.
	// Default: 30 seconds
	Timeout time.Duration

	// RefreshFares enables fare table reloads.
	// Default: true
	RefreshFares bool

	// WarmIndex enables transit index warming.
	// Default: true
	WarmIndex bool
}

// DefaultRefreshConfig returns the default refresh configuration.
func DefaultRefreshConfig() RefreshConfig {
	return RefreshConfig{
		Concurrency:  3,
		Timeout:      30 * time.Second,
		RefreshFares: true,
		WarmIndex:    true,
	}
}

// withDefaults fills zero-valued limits.
func (c RefreshConfig) withDefaults() RefreshConfig {
	def := DefaultRefreshConfig()
	if c.Concurrency <= 0 {
		c.Concurrency = def.Concurrency
	}
	if c.Timeout <= 0 {
		c.Timeout = def.Timeout
	}
	return c
}

// ParseStops parses a comma separated list of AGENCY:ID stop references.
// Blank items are skipped; duplicates are kept once, in first-seen order.
func ParseStops(list string) ([]otp.EntityID, error) {
	var stops []otp.EntityID
	seen := make(map[otp.EntityID]struct{})
	for _, item := range strings.Split(list, ",") {
		if strings.TrimSpace(item) == "" {
			continue
		}
		stop, err := transitindex.ParseStop(item)
		if err != nil {
			return nil, fmt.Errorf("stop %q: %w", item, err)
		}
		if _, dup := seen[stop]; dup {
			continue
		}
		seen[stop] = struct{}{}
		stops = append(stops, stop)
	}
	return stops, nil
}
