package planner

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/ottplanner/ottplanner/internal/tripview"
	"github.com/ottplanner/ottplanner/pkg/units"
)

// Echo parameter keys set on every plan.
const (
	EchoArriveBy   = "is_arrive_by"
	EchoOptimize   = "optimize"
	EchoMapPlanner = "map_planner"
	EchoEditTrip   = "edit_trip"
	EchoReturnTrip = "return_trip"
	EchoModes      = "modes"
	EchoWalk       = "walk"
)

// returnTripDelay is how long after the outbound trip the return trip link plans for.
const returnTripDelay = 90 // minutes

// query builds a query string with keys in insertion order. Empty values are skipped.
type query []string

func (q *query) add(key, value string) {
	if value == "" {
		return
	}
	*q = append(*q, url.QueryEscape(key)+"="+url.QueryEscape(value))
}

func (q query) String() string { return strings.Join(q, "&") }

// EngineQuery returns the engine's /plan query for the request.
func (p Params) EngineQuery() url.Values {
	v := url.Values{}
	v.Set("fromPlace", p.From)
	v.Set("toPlace", p.To)
	v.Set("time", p.Clock())
	v.Set("date", p.Date())
	v.Set("mode", p.Mode)
	v.Set("optimize", p.Optimize)
	v.Set("maxWalkDistance", strconv.FormatFloat(p.WalkMeters, 'f', -1, 64))
	v.Set("arriveBy", strconv.FormatBool(p.ArriveBy))
	v.Set("maxHours", strconv.Itoa(p.MaxHours))
	return v
}

// EditTripQuery returns the planner form parameters that reproduce this request.
func (p Params) EditTripQuery() string {
	var q query
	q.add("from", p.From)
	q.add("to", p.To)
	p.addClock(&q, p.Hour, p.Minute, p.AmPm)
	p.addTripOptions(&q)
	return q.String()
}

// ReturnTripQuery returns planner form parameters for the trip back: origin and
// destination swapped, an hour and a half later.
func (p Params) ReturnTripQuery() string {
	total := (p.hour24()*60 + p.Minute + returnTripDelay) % (24 * 60)
	back := Params{}
	back.setClock(total/60, total%60)

	var q query
	p.addClock(&q, back.Hour, back.Minute, back.AmPm)
	q.add("from", p.To)
	q.add("to", p.From)
	p.addTripOptions(&q)
	return q.String()
}

// MapPlannerQuery returns the parameters for the interactive map planner.
func (p Params) MapPlannerQuery() string {
	var q query
	q.add("from", p.From)
	q.add("to", p.To)
	q.add("time", p.Clock())
	q.add("maxHours", strconv.Itoa(p.MaxHours))
	q.add("date", strconv.Itoa(int(p.Month))+"/"+strconv.Itoa(p.Day)+"/"+strconv.Itoa(p.Year))
	q.add("mode", p.Mode)
	q.add("optimize", p.Optimize)
	q.add("maxWalkDistance", strconv.FormatFloat(math.Round(p.WalkMeters), 'f', 0, 64))
	q.add("arriveBy", strconv.FormatBool(p.ArriveBy))
	return q.String()
}

// EchoParams returns the values the front end needs to offer edit and return trips.
func (p Params) EchoParams() map[string]string {
	return map[string]string{
		EchoArriveBy:   strconv.FormatBool(p.ArriveBy),
		EchoOptimize:   p.Optimize,
		EchoMapPlanner: p.MapPlannerQuery(),
		EchoEditTrip:   p.EditTripQuery(),
		EchoReturnTrip: p.ReturnTripQuery(),
		EchoModes:      tripview.PrettyMode(p.Mode),
		EchoWalk:       units.HumanizeMeters(p.WalkMeters),
	}
}

func (p Params) addClock(q *query, hour, minute int, ampm string) {
	q.add("Hour", strconv.Itoa(hour))
	q.add("Minute", twoDigits(minute))
	q.add("AmPm", ampm)
	q.add("maxHours", strconv.Itoa(p.MaxHours))
}

func (p Params) addTripOptions(q *query) {
	q.add("month", strconv.Itoa(int(p.Month)))
	q.add("day", strconv.Itoa(p.Day))
	q.add("year", strconv.Itoa(p.Year))
	q.add("Walk", p.Walk)
	q.add("Arr", p.ArriveDepart)
	q.add("min", p.Optimize)
	q.add("mode", p.Mode)
}
