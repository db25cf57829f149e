package tripview

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ottplanner/ottplanner/internal/otp"
)

// routeNameSeparator joins short and long route names, e.g. "54-Beaverton-Hillsdale Hwy".
const routeNameSeparator = "-"

// agencyLinks builds schedule links for one agency from a route number.
type agencyLinks struct {
	schedule    string
	scheduleMap string
	pad         bool
}

// agencyURLs is keyed by lower-cased agency id.
var agencyURLs = map[string]agencyLinks{
	"trimet": {
		schedule:    "http://trimet.org/schedules/r%s.htm",
		scheduleMap: "http://trimet.org/images/schedulemaps/%s.gif",
		pad:         true,
	},
	"c-tran": {
		schedule:    "http://c-tran.com/routes/%sroute/index.html",
		scheduleMap: "http://c-tran.com/images/routes/%smap.png",
	},
}

// routeNumber strips any non-numeric suffix ("18x" -> "18") and optionally
// zero-pads to 3 digits. Ids without a leading number are returned unchanged.
func routeNumber(routeID string, pad bool) string {
	end := 0
	for end < len(routeID) && routeID[end] >= '0' && routeID[end] <= '9' {
		end++
	}
	if end == 0 {
		return routeID
	}
	n := routeID[:end]
	if pad && len(n) < 3 {
		n = strings.Repeat("0", 3-len(n)) + n
	}
	return n
}

// routeLinks returns the schedule and schedule-map URLs for a route.
// Unknown agencies use the payload's own route URL, if any.
func routeLinks(agencyID, routeID string, raw otp.Fragment) (schedule, scheduleMap *string) {
	if links, ok := agencyURLs[strings.ToLower(agencyID)]; ok && routeID != "" {
		n := routeNumber(routeID, links.pad)
		s := fmt.Sprintf(links.schedule, n)
		m := fmt.Sprintf(links.scheduleMap, n)
		return &s, &m
	}
	if u, ok := raw.String("routeUrl"); ok && u != "" {
		return &u, nil
	}
	return nil, nil
}

// composeRouteName joins the short and long names, omitting an empty side.
func composeRouteName(short, long string) string {
	switch {
	case short != "" && long != "":
		return short + routeNameSeparator + long
	case short != "":
		return short
	default:
		return long
	}
}

// overlaps reports whether either name contains the other, ignoring case.
// An empty name overlaps nothing.
func overlaps(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	a, b = strings.ToLower(a), strings.ToLower(b)
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// buildRoute builds the RouteView of a transit leg.
func buildRoute(raw otp.Fragment, interline bool, log zerolog.Logger) *RouteView {
	route := &RouteView{}
	route.AgencyName, _ = raw.String("agencyName")
	route.ShortName, _ = raw.String("routeShortName")
	route.LongName, _ = raw.String("routeLongName")
	route.Headsign, _ = raw.String("headsign")
	route.Color, _ = raw.String("routeColor")
	route.TextColor, _ = raw.String("routeTextColor")

	if v, ok := raw.Value("routeId"); ok {
		if id, ok := otp.ParseID(v); ok {
			route.AgencyID, route.RouteID = id.AgencyID, id.ID
		} else {
			log.Debug().Str("field", "routeId").Interface("value", v).Msg("unrecognized route id")
		}
	}
	if agency, ok := raw.String("agencyId"); ok && agency != "" {
		route.AgencyID = agency
	}

	if v, ok := raw.Value("tripId"); ok {
		if id, ok := otp.ParseID(v); ok {
			route.TripID = id.ID
		}
	}

	if order, ok := raw.Int64("routeSortOrder"); ok {
		route.SortOrder = int(order)
		route.SortOrderSet = true
	}

	route.DisplayName = composeRouteName(route.ShortName, route.LongName)
	if interline {
		if name, ok := raw.String("route"); ok && name != "" && !overlaps(name, route.LongName) {
			route.DisplayName = name
		}
	}

	route.URL, route.ScheduleMapURL = routeLinks(route.AgencyID, route.RouteID, raw)
	return route
}
