package transitindex

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/ottplanner/ottplanner/internal/otp"
)

// Index is the engine's transit index. It is implemented by *otp.Client.
type Index interface {
	Routes(ctx context.Context) ([]otp.Fragment, error)
	StopRoutes(ctx context.Context, stop otp.EntityID) ([]otp.Fragment, error)
}

// EngineRepository reads the transit index served by the trip planning engine.
type EngineRepository struct {
	index  Index
	logger zerolog.Logger
}

// NewEngineRepository creates a repository over the engine index.
func NewEngineRepository(index Index, logger zerolog.Logger) *EngineRepository {
	return &EngineRepository{index: index, logger: logger}
}

// Name returns the source name.
func (r *EngineRepository) Name() string {
	return "engine"
}

// Routes lists every route.
func (r *EngineRepository) Routes(ctx context.Context) ([]Route, error) {
	fragments, err := r.index.Routes(ctx)
	if err != nil {
		return nil, err
	}
	return r.routes(fragments), nil
}

// StopRoutes lists the routes serving a stop.
func (r *EngineRepository) StopRoutes(ctx context.Context, stop otp.EntityID) ([]Route, error) {
	fragments, err := r.index.StopRoutes(ctx, stop)
	if errors.Is(err, otp.ErrNotFound) {
		return nil, ErrStopNotFound
	}
	if err != nil {
		return nil, err
	}
	return r.routes(fragments), nil
}

func (r *EngineRepository) routes(fragments []otp.Fragment) []Route {
	routes := make([]Route, 0, len(fragments))
	for i, f := range fragments {
		route, ok := RouteFromFragment(f)
		if !ok {
			r.logger.Debug().Int("index", i).Msg("skipping index route without id")
			continue
		}
		routes = append(routes, route)
	}
	SortRoutes(routes)
	return routes
}

var _ Repository = (*EngineRepository)(nil)
