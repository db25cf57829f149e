// Package models provides the request and response bodies of the planner API
// that are not part of the trip display model.
package models

import (
	"fmt"
	"time"

	"github.com/ottplanner/ottplanner/internal/transitindex"
)

// HealthStatus represents the health status of a service or dependency.
type HealthStatus string

const (
	HealthStatusOK       HealthStatus = "OK"
	HealthStatusDegraded HealthStatus = "DEGRADED"
	HealthStatusFail     HealthStatus = "FAIL"
)

// Timestamp is a time.Time encoded as an RFC 3339 string.
type Timestamp time.Time

// MarshalJSON implements json.Marshaler for Timestamp.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Time(t).Format(time.RFC3339) + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler for Timestamp.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("timestamp must be a string, got %s", s)
	}
	parsed, err := time.Parse(time.RFC3339, s[1:len(s)-1])
	if err != nil {
		return err
	}
	*t = Timestamp(parsed)
	return nil
}

// Time returns the underlying time.Time.
func (t Timestamp) Time() time.Time {
	return time.Time(t)
}

// RouteList is the body of the transit index endpoints.
type RouteList struct {
	Routes []transitindex.Route `json:"routes"`
	Count  int                  `json:"count"`
}

// NewRouteList wraps routes, never encoding a null list.
func NewRouteList(routes []transitindex.Route) RouteList {
	if routes == nil {
		routes = []transitindex.Route{}
	}
	return RouteList{Routes: routes, Count: len(routes)}
}
