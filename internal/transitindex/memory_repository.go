package transitindex

import (
	"context"
	"sync"

	"github.com/ottplanner/ottplanner/internal/otp"
)

// InMemoryRepository is an in-memory implementation of Repository.
type InMemoryRepository struct {
	mu     sync.RWMutex
	routes map[otp.EntityID]Route
	stops  map[otp.EntityID][]otp.EntityID
}

// NewInMemoryRepository creates a repository holding routes.
func NewInMemoryRepository(routes ...Route) *InMemoryRepository {
	r := &InMemoryRepository{
		routes: make(map[otp.EntityID]Route, len(routes)),
		stops:  make(map[otp.EntityID][]otp.EntityID),
	}
	for _, route := range routes {
		r.routes[routeKey(route)] = route
	}
	return r
}

// Name returns the source name.
func (r *InMemoryRepository) Name() string {
	return "memory"
}

// AddRoute adds or replaces a route.
func (r *InMemoryRepository) AddRoute(route Route) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes[routeKey(route)] = route
}

// AddStop records the routes serving a stop.
func (r *InMemoryRepository) AddStop(stop otp.EntityID, routes ...otp.EntityID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stops[stop] = append(r.stops[stop], routes...)
}

// Routes lists every route.
func (r *InMemoryRepository) Routes(_ context.Context) ([]Route, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	routes := make([]Route, 0, len(r.routes))
	for _, route := range r.routes {
		routes = append(routes, route)
	}
	SortRoutes(routes)
	return routes, nil
}

// StopRoutes lists the routes serving a stop.
func (r *InMemoryRepository) StopRoutes(_ context.Context, stop otp.EntityID) ([]Route, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids, ok := r.stops[stop]
	if !ok {
		return nil, ErrStopNotFound
	}

	routes := make([]Route, 0, len(ids))
	for _, id := range ids {
		if route, ok := r.routes[id]; ok {
			routes = append(routes, route)
		}
	}
	SortRoutes(routes)
	return routes, nil
}

func routeKey(r Route) otp.EntityID {
	return otp.EntityID{AgencyID: r.AgencyID, ID: r.ID}
}

var _ Repository = (*InMemoryRepository)(nil)
