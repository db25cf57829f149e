package transitindex

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ottplanner/ottplanner/internal/otp"
)

// PostgresRepository reads routes from a GTFS database loaded with the
// gtfsdb schema (routes, agency, trips, stop_times).
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL transit index repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Name returns the source name.
func (r *PostgresRepository) Name() string {
	return "postgres"
}

const routeColumns = `
	r.route_id, r.agency_id, COALESCE(a.agency_name, ''),
	COALESCE(r.route_short_name, ''), COALESCE(r.route_long_name, ''),
	r.route_type, COALESCE(r.route_color, ''), r.route_sort_order
`

// Routes lists every route.
func (r *PostgresRepository) Routes(ctx context.Context) ([]Route, error) {
	query := `
		SELECT ` + routeColumns + `
		FROM routes r
		LEFT JOIN agency a ON a.agency_id = r.agency_id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query routes: %w", err)
	}
	return scanRoutes(rows)
}

// StopRoutes lists the routes with a trip calling at the stop.
func (r *PostgresRepository) StopRoutes(ctx context.Context, stop otp.EntityID) ([]Route, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM stops WHERE stop_id = $1)`,
		stop.ID,
	).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("query stops: %w", err)
	}
	if !exists {
		return nil, ErrStopNotFound
	}

	query := `
		SELECT DISTINCT ` + routeColumns + `
		FROM routes r
		JOIN trips t ON t.route_id = r.route_id
		JOIN stop_times st ON st.trip_id = t.trip_id
		LEFT JOIN agency a ON a.agency_id = r.agency_id
		WHERE st.stop_id = $1 AND ($2 = '' OR r.agency_id = $2)
	`

	rows, err := r.pool.Query(ctx, query, stop.ID, stop.AgencyID)
	if err != nil {
		return nil, fmt.Errorf("query stop routes: %w", err)
	}
	return scanRoutes(rows)
}

func scanRoutes(rows pgx.Rows) ([]Route, error) {
	defer rows.Close()

	var routes []Route
	for rows.Next() {
		var (
			route     Route
			routeType int
			sortOrder *int
		)
		if err := rows.Scan(
			&route.ID, &route.AgencyID, &route.AgencyName,
			&route.ShortName, &route.LongName,
			&routeType, &route.Color, &sortOrder,
		); err != nil {
			return nil, fmt.Errorf("scan route: %w", err)
		}
		route.Mode = ModeForRouteType(routeType)
		if sortOrder != nil {
			route.SortOrder = *sortOrder
			route.SortOrderSet = true
		}
		routes = append(routes, route)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	SortRoutes(routes)
	return routes, nil
}

var _ Repository = (*PostgresRepository)(nil)
