// Package transitindex answers route lookups: every route an agency runs and
// the routes serving one stop.
package transitindex

import (
	"errors"
	"sort"
	"strings"

	"github.com/ottplanner/ottplanner/internal/otp"
)

// Sentinel errors for transit index lookups.
var (
	// ErrStopNotFound indicates the stop is unknown to the index.
	ErrStopNotFound = errors.New("stop not found")
	// ErrInvalidStop indicates a stop id that is not of the form AGENCY:ID.
	ErrInvalidStop = errors.New("stop id must be AGENCY:ID")
	// ErrProviderUnavailable indicates the index source failed and no cached data could be served.
	ErrProviderUnavailable = errors.New("transit index unavailable")
)

// Route is one route in the transit index.
type Route struct {
	ID           string `json:"id"`
	AgencyID     string `json:"agencyId"`
	AgencyName   string `json:"agencyName,omitempty"`
	ShortName    string `json:"shortName,omitempty"`
	LongName     string `json:"longName,omitempty"`
	Mode         string `json:"mode"`
	Color        string `json:"color,omitempty"`
	SortOrder    int    `json:"sortOrder"`
	SortOrderSet bool   `json:"sortOrderSet"`
}

// Name returns the short name, or the long name for routes without one.
func (r Route) Name() string {
	if r.ShortName != "" {
		return r.ShortName
	}
	return r.LongName
}

// ParseStop parses a stop id of the form AGENCY:ID.
func ParseStop(s string) (otp.EntityID, error) {
	id, ok := otp.ParseEntityID(strings.TrimSpace(s))
	if !ok || id.AgencyID == "" {
		return otp.EntityID{}, ErrInvalidStop
	}
	return id, nil
}

// SortRoutes orders routes by sort order where set, then by name.
func SortRoutes(routes []Route) {
	sort.SliceStable(routes, func(i, j int) bool {
		a, b := routes[i], routes[j]
		if a.SortOrderSet != b.SortOrderSet {
			return a.SortOrderSet
		}
		if a.SortOrder != b.SortOrder {
			return a.SortOrder < b.SortOrder
		}
		return a.Name() < b.Name()
	})
}

// gtfsModes maps GTFS route_type values to engine mode names.
var gtfsModes = map[int]string{
	0: "TRAM",
	1: "SUBWAY",
	2: "RAIL",
	3: "BUS",
	4: "FERRY",
	5: "CABLE_CAR",
	6: "GONDOLA",
	7: "FUNICULAR",
}

// ModeForRouteType returns the engine mode for a GTFS route_type.
func ModeForRouteType(routeType int) string {
	if m, ok := gtfsModes[routeType]; ok {
		return m
	}
	return "BUS"
}

// RouteFromFragment reads a route from an engine index entry.
func RouteFromFragment(f otp.Fragment) (Route, bool) {
	raw, _ := f.Value("id")
	id, ok := otp.ParseEntityID(raw)
	if !ok {
		return Route{}, false
	}

	r := Route{ID: id.ID, AgencyID: id.AgencyID}
	r.AgencyName, _ = f.String("agencyName")
	r.ShortName, _ = f.String("shortName")
	r.LongName, _ = f.String("longName")
	r.Mode, _ = f.String("mode")
	r.Color, _ = f.String("color")
	if order, ok := f.Int64("sortOrder"); ok {
		r.SortOrder = int(order)
		r.SortOrderSet = true
	}
	if r.Mode == "" {
		r.Mode = "BUS"
	}
	return r, true
}
