package tripview

import (
	"time"

	"github.com/rs/zerolog"
)

// DefaultItineraryURLTemplate links to one itinerary of the current plan.
// {0} (or {}) is replaced with the itinerary's 1-based index.
const DefaultItineraryURLTemplate = "planner.html?itin_num={0}"

// Config configures a Builder.
type Config struct {
	Logger zerolog.Logger

	// Location renders dates and clock times. Defaults to UTC.
	Location *time.Location

	// Now is the reference time for alert effectiveness. Defaults to time.Now.
	Now func() time.Time

	// Fares, when set, fills in the non-adult fare tiers.
	Fares FareTable

	MapImageURLTemplate  string
	ItineraryURLTemplate string
}

// Builder turns raw engine fragments into view models. It holds no per-request
// state and is safe for concurrent use.
type Builder struct {
	logger            zerolog.Logger
	location          *time.Location
	now               func() time.Time
	fares             FareTable
	mapImageTemplate  string
	itineraryTemplate string
}

// NewBuilder creates a Builder, applying defaults for unset fields.
func NewBuilder(cfg Config) *Builder {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.MapImageURLTemplate == "" {
		cfg.MapImageURLTemplate = DefaultMapImageURLTemplate
	}
	if cfg.ItineraryURLTemplate == "" {
		cfg.ItineraryURLTemplate = DefaultItineraryURLTemplate
	}

	return &Builder{
		logger:            cfg.Logger,
		location:          cfg.Location,
		now:               cfg.Now,
		fares:             cfg.Fares,
		mapImageTemplate:  cfg.MapImageURLTemplate,
		itineraryTemplate: cfg.ItineraryURLTemplate,
	}
}

// Options carries the per-request inputs of a plan build.
type Options struct {
	// ItineraryNumber is the 1-based itinerary to select. Out of range selects the first.
	ItineraryNumber int

	// URLQuery is appended to each itinerary link.
	URLQuery string

	// Params are echoed on the plan for edit and return trip links.
	Params map[string]string
}
