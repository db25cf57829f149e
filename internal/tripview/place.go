package tripview

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ottplanner/ottplanner/internal/otp"
)

// DefaultMapImageURLTemplate renders a small locator map for a place.
// {lon}, {lat} and {icon} are substituted.
const DefaultMapImageURLTemplate = "http://maps.trimet.org/eapi/ws/V1/mapimage/format/png/width/300/height/288/zoom/7/coord/{lon},{lat}{icon}"

const iconParam = "/extraparams/format_options=layout:"

// endpointIcon returns the map icon parameter for a place's role in the trip.
func endpointIcon(role string) string {
	switch role {
	case "from", "start", "begin":
		return iconParam + "start"
	case "to", "end", "last":
		return iconParam + "end"
	default:
		return ""
	}
}

// stopLink carries the route and date a stop schedule link is filtered by.
type stopLink struct {
	routeID     string
	serviceDate string
}

// buildPlace builds a PlaceView. The role selects the map icon; link, when set,
// narrows the stop schedule URL to one route and date.
func (b *Builder) buildPlace(raw otp.Fragment, role string, link *stopLink, log zerolog.Logger) PlaceView {
	name, _ := raw.String("name")
	lat, _ := raw.Float("lat")
	lon, _ := raw.Float("lon")

	place := PlaceView{
		Name:        name,
		Lat:         lat,
		Lon:         lon,
		MapImageURL: b.mapImageURL(lat, lon, role),
	}

	if v, ok := raw.Value("stopId"); ok {
		id, ok := otp.ParseEntityID(v)
		if !ok {
			log.Debug().Str("field", "stopId").Str("role", role).Interface("value", v).Msg("unrecognized stop id")
		} else {
			place.Stop = buildStop(id, name, link)
		}
	}
	return place
}

func (b *Builder) mapImageURL(lat, lon float64, role string) string {
	return strings.NewReplacer(
		"{lon}", formatCoord(lon),
		"{lat}", formatCoord(lat),
		"{icon}", endpointIcon(role),
	).Replace(b.mapImageTemplate)
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func buildStop(id otp.EntityID, name string, link *stopLink) *StopView {
	stop := &StopView{
		AgencyID:    id.AgencyID,
		StopID:      id.ID,
		Name:        name,
		InfoURL:     "stop.html?stop_id=" + url.QueryEscape(id.ID),
		ScheduleURL: "stop_schedule.html?stop_id=" + url.QueryEscape(id.ID),
	}
	if link != nil {
		if link.routeID != "" {
			stop.ScheduleURL += "&route=" + url.QueryEscape(link.routeID)
		}
		if link.serviceDate != "" {
			stop.ScheduleURL += "&date=" + url.QueryEscape(link.serviceDate)
		}
	}
	return stop
}
