package planner

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/ottplanner/ottplanner/internal/otp"
	"github.com/ottplanner/ottplanner/internal/tripview"
)

// GenericErrorID identifies the trip error shown when the engine gave no usable answer.
const GenericErrorID = 500

// GenericErrorMessage is shown with GenericErrorID.
const GenericErrorMessage = "We're sorry, the trip planner is unable to plan this trip. Please check the origin and destination and try again."

// Engine plans trips. It is implemented by *otp.Client.
type Engine interface {
	Plan(ctx context.Context, query url.Values) (*otp.Response, error)
}

// Result is the answer to a planning request: a plan or a trip error.
type Result struct {
	Plan  *tripview.Plan      `json:"plan,omitempty"`
	Error *tripview.PlanError `json:"error,omitempty"`
}

// ServiceConfig holds configuration for the planner service.
type ServiceConfig struct {
	Engine  Engine
	Builder *tripview.Builder
	Logger  zerolog.Logger

	// Location is the planner's time zone, used for requests without a date or time.
	Location *time.Location

	// Now defaults to time.Now.
	Now func() time.Time
}

// Service plans trips against the engine and normalizes the answers.
type Service struct {
	engine   Engine
	builder  *tripview.Builder
	logger   zerolog.Logger
	location *time.Location
	now      func() time.Time
}

// NewService creates a new planner service.
func NewService(cfg ServiceConfig) *Service {
	location := cfg.Location
	if location == nil {
		location = time.UTC
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	builder := cfg.Builder
	if builder == nil {
		builder = tripview.NewBuilder(tripview.Config{Logger: cfg.Logger, Location: location, Now: now})
	}

	return &Service{
		engine:   cfg.Engine,
		builder:  builder,
		logger:   cfg.Logger,
		location: location,
		now:      now,
	}
}

// ParseParams parses request parameters relative to the current planner time.
func (s *Service) ParseParams(v url.Values) Params {
	return ParseParams(v, s.now().In(s.location))
}

// PlanTrip plans one trip. Engine failures are returned as errors; an engine
// answer without a usable plan becomes a Result carrying a trip error.
func (s *Service) PlanTrip(ctx context.Context, p Params) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := s.engine.Plan(ctx, p.EngineQuery())
	if err != nil {
		return nil, fmt.Errorf("plan trip: %w", err)
	}

	log := s.logger.With().Str("from", p.From).Str("to", p.To).Str("mode", p.Mode).Logger()
	return s.normalize(resp, p, log, start), nil
}

// Convert normalizes an already fetched engine response.
func (s *Service) Convert(resp *otp.Response, p Params) *Result {
	return s.normalize(resp, p, s.logger, time.Now())
}

func (s *Service) normalize(resp *otp.Response, p Params, log zerolog.Logger, start time.Time) *Result {
	if resp.Plan == nil {
		log.Info().Interface("engine_error", resp.Error).Msg("engine returned no plan")
		return &Result{Error: tripError(resp.Error)}
	}

	plan, err := s.builder.Build(resp.Plan, tripview.Options{
		ItineraryNumber: p.ItineraryNumber,
		URLQuery:        p.EditTripQuery(),
		Params:          p.EchoParams(),
	})
	if err != nil {
		log.Warn().Err(err).Msg("engine plan is malformed")
		return &Result{Error: tripError(resp.Error)}
	}

	log.Debug().
		Int("itineraries", len(plan.Itineraries)).
		Dur("duration", time.Since(start)).
		Msg("trip planned")
	return &Result{Plan: plan}
}

// tripError converts the engine's error block, or yields the generic trip error.
func tripError(e *otp.EngineError) *tripview.PlanError {
	if e == nil || (e.ID == 0 && e.Msg == "") {
		return &tripview.PlanError{ID: GenericErrorID, Msg: GenericErrorMessage}
	}
	msg := e.Msg
	if msg == "" {
		msg = e.Message
	}
	return &tripview.PlanError{ID: e.ID, Msg: msg}
}
