package transitindex

import (
	"context"

	"github.com/ottplanner/ottplanner/internal/otp"
)

// Repository is a source of transit index data.
type Repository interface {
	// Routes lists every route.
	Routes(ctx context.Context) ([]Route, error)

	// StopRoutes lists the routes serving a stop. Returns ErrStopNotFound for unknown stops.
	StopRoutes(ctx context.Context, stop otp.EntityID) ([]Route, error)

	// Name identifies the source in logs.
	Name() string
}
