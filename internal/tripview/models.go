// Package tripview converts a trip-planning engine response into the display
// model rendered by the trip planner front end. Field names of the view types
// are shared with the front end and must not change.
package tripview

import (
	"errors"

	"github.com/ottplanner/ottplanner/internal/elevation"
	"github.com/ottplanner/ottplanner/pkg/units"
)

// ErrMalformedPlan is returned when the plan root lacks from, to or itineraries.
// It is the only error a build returns; every other defect degrades a single field.
var ErrMalformedPlan = errors.New("malformed plan")

// PlanError is the error shown in place of a plan.
type PlanError struct {
	ID  int    `json:"id"`
	Msg string `json:"msg"`
}

// Plan is the normalized answer to one planning request.
type Plan struct {
	From        PlaceView         `json:"from"`
	To          PlaceView         `json:"to"`
	Itineraries []Itinerary       `json:"itineraries"`
	Params      map[string]string `json:"params"`
}

// Selected returns the selected itinerary, or nil for an empty plan.
func (p *Plan) Selected() *Itinerary {
	for i := range p.Itineraries {
		if p.Itineraries[i].Selected {
			return &p.Itineraries[i]
		}
	}
	return nil
}

// Itinerary is one way of making the trip.
type Itinerary struct {
	Index            int         `json:"itinNum"`
	URL              *string     `json:"url"`
	Selected         bool        `json:"selected"`
	DominantMode     string      `json:"dominantMode"`
	HasAlerts        bool        `json:"hasAlerts"`
	Alerts           []AlertView `json:"alerts"`
	TransferDetected bool        `json:"transferDetected"`
	Transfers        int         `json:"transfers"`
	Fare             FareView    `json:"fare"`
	Timing           TimingView  `json:"timing"`
	TripTimes        TripTimes   `json:"tripTimes"`
	Legs             []Leg       `json:"legs"`
}

// Leg is one single-mode segment of an itinerary.
type Leg struct {
	Mode             string             `json:"mode"`
	From             PlaceView          `json:"from"`
	To               PlaceView          `json:"to"`
	DistanceMeters   float64            `json:"distanceMeters"`
	Distance         units.Distance     `json:"dist"`
	Timing           TimingView         `json:"timing"`
	CompassDirection *string            `json:"compassDirection"`
	Steps            []StepView         `json:"steps"`
	Elevation        *elevation.Profile `json:"elevation"`
	Route            *RouteView         `json:"route"`
	Alerts           []AlertView        `json:"alerts"`
	IsInterline      bool               `json:"isInterline"`
}

// StepView is one turn-by-turn instruction of a walking or biking leg.
type StepView struct {
	Name              string         `json:"name"`
	Lat               float64        `json:"lat"`
	Lon               float64        `json:"lon"`
	DistanceMeters    float64        `json:"distanceMeters"`
	Distance          units.Distance `json:"dist"`
	CompassDirection  string         `json:"compassDirection,omitempty"`
	RelativeDirection string         `json:"relativeDirection,omitempty"`
}

// PlaceView is an origin, destination or leg endpoint.
type PlaceView struct {
	Name        string    `json:"name"`
	Lat         float64   `json:"lat"`
	Lon         float64   `json:"lon"`
	MapImageURL string    `json:"mapImageUrl"`
	Stop        *StopView `json:"stop"`
}

// StopView links a place to a transit stop.
type StopView struct {
	AgencyID    string `json:"agencyId"`
	StopID      string `json:"stopId"`
	Name        string `json:"name"`
	InfoURL     string `json:"infoUrl"`
	ScheduleURL string `json:"scheduleUrl"`
}

// RouteView describes the transit route a leg rides.
type RouteView struct {
	AgencyID       string  `json:"agencyId"`
	AgencyName     string  `json:"agencyName"`
	RouteID        string  `json:"routeId"`
	ShortName      string  `json:"shortName"`
	LongName       string  `json:"longName"`
	DisplayName    string  `json:"displayName"`
	Headsign       string  `json:"headsign"`
	TripID         string  `json:"tripId"`
	Color          string  `json:"color,omitempty"`
	TextColor      string  `json:"textColor,omitempty"`
	SortOrder      int     `json:"sortOrder"`
	SortOrderSet   bool    `json:"sortOrderSet"`
	URL            *string `json:"url"`
	ScheduleMapURL *string `json:"scheduleMapUrl"`
}

// AlertView is a service alert attached to a leg or an itinerary.
type AlertView struct {
	RouteID               string `json:"routeId,omitempty"`
	Header                string `json:"header,omitempty"`
	Text                  string `json:"text"`
	URL                   string `json:"url"`
	EffectiveStartEpochMs int64  `json:"effectiveStartEpochMs"`
	StartDatePretty       string `json:"startDatePretty,omitempty"`
	IsFutureEffective     bool   `json:"isFutureEffective"`
	IsLongTerm            bool   `json:"isLongTerm"`
}

// FareView lists the fares for an itinerary. Only Adult is always set.
type FareView struct {
	Adult      string `json:"adult"`
	AdultDay   string `json:"adultDay,omitempty"`
	Honored    string `json:"honored,omitempty"`
	HonoredDay string `json:"honoredDay,omitempty"`
	Youth      string `json:"youth,omitempty"`
	YouthDay   string `json:"youthDay,omitempty"`
	Tram       string `json:"tram,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

// TimingView holds the start, end and duration of a leg or itinerary.
type TimingView struct {
	StartEpochMs int64  `json:"startEpochMs"`
	EndEpochMs   int64  `json:"endEpochMs"`
	StartDate    string `json:"startDate"`
	EndDate      string `json:"endDate"`
	ServiceDate  string `json:"serviceDate"`
	PrettyDate   string `json:"prettyDate"`
	StartTime    string `json:"startTime"`
	EndTime      string `json:"endTime"`
	DurationMs   int64  `json:"durationMs"`
	Duration     string `json:"duration"`
}

// TripTimes breaks an itinerary's duration into transit, walk or bike, and wait time.
type TripTimes struct {
	TotalHours     *int   `json:"totalHours"`
	TotalMinutes   *int   `json:"totalMinutes"`
	TransitHours   *int   `json:"transitHours"`
	TransitMinutes *int   `json:"transitMinutes"`
	WalkHours      *int   `json:"walkHours"`
	WalkMinutes    *int   `json:"walkMinutes"`
	BikeHours      *int   `json:"bikeHours"`
	BikeMinutes    *int   `json:"bikeMinutes"`
	WaitHours      *int   `json:"waitHours"`
	WaitMinutes    *int   `json:"waitMinutes"`
	DurationMin    int    `json:"durationMin"`
	Text           string `json:"text"`
}
