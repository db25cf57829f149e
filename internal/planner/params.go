// Package planner turns trip planner requests into engine queries and
// normalized plans.
package planner

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrMissingPlace is returned when a request has no origin or destination.
var ErrMissingPlace = errors.New("missing origin or destination")

const (
	// DefaultMaxHours bounds how far after the requested time the engine searches.
	DefaultMaxHours = 6

	// DefaultWalk is the default maximum walk, about 3/4 mile in meters.
	DefaultWalk = "1260"

	// metersPerMile converts walk values given in miles.
	metersPerMile = 1609

	// walkMilesLimit is the largest walk value read as miles rather than meters.
	walkMilesLimit = 10.0

	coordSeparator = "::"
)

// Optimize values understood by the engine.
const (
	OptimizeQuick     = "QUICK"
	OptimizeSafe      = "SAFE"
	OptimizeTransfers = "TRANSFERS"
)

// Params is a parsed trip planner request.
type Params struct {
	From string
	To   string

	Year  int
	Month time.Month
	Day   int

	// Hour is on a 12-hour clock, paired with AmPm ("am" or "pm").
	Hour   int
	Minute int
	AmPm   string

	ArriveBy bool
	// ArriveDepart is the raw Arr value, echoed back in trip links.
	ArriveDepart string

	Optimize string

	// Walk is the raw walk value; WalkMeters is the distance sent to the engine.
	Walk       string
	WalkMeters float64

	Mode            string
	MaxHours        int
	ItineraryNumber int
	Pretty          bool
}

// ParseParams reads a request's query parameters. now supplies the date and
// time when the request does not, and should already be in the planner's zone.
func ParseParams(v url.Values, now time.Time) Params {
	p := Params{
		From:     parsePlace(v, []string{"from", "fromPlace", "f"}, "fromCoord", []string{"fromLat", "fLat"}, []string{"fromLon", "fLon"}),
		To:       parsePlace(v, []string{"to", "toPlace", "t"}, "toCoord", []string{"toLat", "tLat"}, []string{"toLon", "tLon"}),
		MaxHours: DefaultMaxHours,
	}

	p.parseDate(v, now)
	p.parseTime(v, now)
	p.parseArriveDepart(v)
	p.Optimize = parseOptimize(firstValue(v, "optimize", "opt", "Opt", "min", "Min"))
	p.parseWalk(v)
	p.Mode = parseMode(firstValue(v, "mode", "Mode"))

	if mh, err := strconv.Atoi(firstValue(v, "maxHours")); err == nil && mh > 0 {
		p.MaxHours = mh
	}

	p.ItineraryNumber = 1
	if n, err := strconv.Atoi(strings.TrimSpace(firstValue(v, "itin_num"))); err == nil {
		p.ItineraryNumber = n
	}

	p.Pretty = v.Has("pretty") || v.Has("is_pretty")
	return p
}

// Validate reports whether the request can be planned.
func (p Params) Validate() error {
	if p.From == "" || p.To == "" {
		return ErrMissingPlace
	}
	return nil
}

// Clock renders the requested time as "3:40pm".
func (p Params) Clock() string {
	return strconv.Itoa(p.Hour) + ":" + twoDigits(p.Minute) + p.AmPm
}

// Date renders the requested date as "2013-03-04".
func (p Params) Date() string {
	return time.Date(p.Year, p.Month, p.Day, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
}

func firstValue(v url.Values, keys ...string) string {
	for _, k := range keys {
		if s := strings.TrimSpace(v.Get(k)); s != "" {
			return s
		}
	}
	return ""
}

// parsePlace reads a place that is either "NAME::LAT,LON" already, or a name
// with its coordinate given separately.
func parsePlace(v url.Values, nameKeys []string, coordKey string, latKeys, lonKeys []string) string {
	name := firstValue(v, nameKeys...)
	if name == "" {
		return ""
	}
	if _, coord, ok := strings.Cut(name, coordSeparator); ok && coord != "" {
		return name
	}

	if coord := firstValue(v, coordKey); coord != "" {
		return namedCoord(name, coord)
	}
	lat, lon := firstValue(v, latKeys...), firstValue(v, lonKeys...)
	if lat != "" && lon != "" {
		return namedCoord(name, lat+","+lon)
	}
	return name
}

func namedCoord(name, coord string) string {
	name, _, _ = strings.Cut(name, coordSeparator)
	return name + coordSeparator + coord
}

var dateLayouts = []string{"2006-01-02", "1/2/2006", "01-02-2006"}

func (p *Params) parseDate(v url.Values, now time.Time) {
	p.Year, p.Month, p.Day = now.Date()

	if s := firstValue(v, "date"); s != "" {
		for _, layout := range dateLayouts {
			if d, err := time.Parse(layout, s); err == nil {
				p.Year, p.Month, p.Day = d.Date()
				return
			}
		}
	}

	if m, err := strconv.Atoi(firstValue(v, "month")); err == nil && m >= 1 && m <= 12 {
		p.Month = time.Month(m)
	}
	if d, err := strconv.Atoi(firstValue(v, "day")); err == nil && d >= 1 && d <= 31 {
		p.Day = d
	}
	if y, err := strconv.Atoi(firstValue(v, "year")); err == nil && y > 0 {
		p.Year = y
	}
}

var timeLayouts = []string{"3:04pm", "3:04 pm", "3:04PM", "3:04 PM", "15:04"}

func (p *Params) parseTime(v url.Values, now time.Time) {
	p.setClock(now.Hour(), now.Minute())

	if s := firstValue(v, "time"); s != "" {
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				p.setClock(t.Hour(), t.Minute())
				return
			}
		}
	}

	hour, minute := now.Hour(), now.Minute()
	if h, err := strconv.Atoi(firstValue(v, "Hour", "hour")); err == nil && h >= 0 && h <= 23 {
		hour = h
		if h <= 12 {
			switch strings.ToLower(firstValue(v, "AmPm", "ampm")) {
			case "pm":
				hour = h%12 + 12
			case "am":
				hour = h % 12
			}
		}
	}
	if m, err := strconv.Atoi(firstValue(v, "Minute", "minute")); err == nil && m >= 0 && m <= 59 {
		minute = m
	}
	p.setClock(hour, minute)
}

// setClock stores a 24-hour time on the 12-hour fields.
func (p *Params) setClock(hour, minute int) {
	p.AmPm = "am"
	if hour >= 12 {
		p.AmPm = "pm"
	}
	p.Hour = hour % 12
	if p.Hour == 0 {
		p.Hour = 12
	}
	p.Minute = minute
}

// hour24 returns the requested hour on a 24-hour clock.
func (p Params) hour24() int {
	h := p.Hour % 12
	if p.AmPm == "pm" {
		h += 12
	}
	return h
}

func (p *Params) parseArriveDepart(v url.Values) {
	val := firstValue(v, "Arr", "arr")
	if val == "" {
		return
	}
	p.ArriveDepart = val

	switch val {
	case "A", "Arr", "Arrive", "True", "true":
		p.ArriveBy = true
	case "L", "Late", "Latest":
		p.ArriveBy = true
		p.setClock(1, 30)
	case "E", "Early", "Earliest":
		p.ArriveBy = false
		p.setClock(4, 0)
	}
}

func parseOptimize(val string) string {
	switch val {
	case "F", "X", "TRANSFERS":
		return OptimizeTransfers
	case "S", "SAFE":
		return OptimizeSafe
	default:
		return OptimizeQuick
	}
}

func (p *Params) parseWalk(v url.Values) {
	p.Walk = firstValue(v, "walk", "Walk")
	if p.Walk == "" {
		p.Walk = DefaultWalk
	}

	dist, err := strconv.ParseFloat(p.Walk, 64)
	if err != nil {
		return
	}
	p.WalkMeters = dist
	if dist > 0 && dist <= walkMilesLimit {
		p.WalkMeters = metersPerMile * dist
	}
}

// parseMode maps legacy mode strings onto engine modes. The checks are ordered.
func parseMode(mode string) string {
	switch {
	case mode == "":
		return "TRANSIT,WALK"
	case mode == "WALK":
		return "WALK"
	case strings.Contains(mode, "TRANS") && strings.Contains(mode, "BIC"):
		return "TRANSIT,BICYCLE"
	case strings.Contains(mode, "TRAIN") && strings.Contains(mode, "BIC"):
		return "TRAINISH,BICYCLE"
	case mode == "BIKE" || mode == "BICYCLE":
		return "BICYCLE"
	case mode == "B" || mode == "BUS" || mode == "BUSISH" || mode == "BUSISH,WALK":
		return "BUSISH,WALK"
	case mode == "T" || mode == "TRAIN" || mode == "TRAINISH" || mode == "TRAINISH,WALK":
		return "TRAINISH,WALK"
	default:
		return "TRANSIT,WALK"
	}
}

func twoDigits(n int) string {
	if n < 10 && n >= 0 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
