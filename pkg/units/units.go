// Package units turns raw trip quantities (milliseconds, seconds, meters, feet)
// into the short phrases shown next to an itinerary.
package units

import (
	"fmt"
	"math"
	"strconv"
)

// FeetPerMeter is the conversion factor used for every distance shown to riders.
const FeetPerMeter = 3.28

// FeetPerMile is the number of feet in a statute mile.
const FeetPerMile = 5280

// DefaultMinSeconds is the threshold at or below which SecondsToHoursMinutes reports nothing.
const DefaultMinSeconds = 60

// Distance is a humanized distance, e.g. {"1/4", "mile"} or {"300", "feet"}.
type Distance struct {
	Value string `json:"value"`
	Unit  string `json:"unit"`
}

// String renders the distance as "300 feet".
func (d Distance) String() string {
	return d.Value + " " + d.Unit
}

// MetersToFeet converts meters to feet.
func MetersToFeet(meters float64) float64 {
	return meters * FeetPerMeter
}

// HumanizeDistance buckets a distance in feet into a pedestrian-friendly value.
func HumanizeDistance(feet float64) Distance {
	switch {
	case feet <= 1.0:
		return Distance{Value: "1", Unit: "foot"}
	case feet < 1000:
		return Distance{Value: strconv.Itoa(int(feet)), Unit: "feet"}
	case feet < 1500:
		return Distance{Value: "1/4", Unit: "mile"}
	case feet < 2200:
		return Distance{Value: "1/3", Unit: "mile"}
	case feet < 3100:
		return Distance{Value: "1/2", Unit: "mile"}
	case feet < 4800:
		return Distance{Value: "3/4", Unit: "mile"}
	case feet < 5400:
		return Distance{Value: "1", Unit: "mile"}
	default:
		return Distance{Value: strconv.FormatFloat(Round(feet/FeetPerMile, 1), 'f', 1, 64), Unit: "miles"}
	}
}

// HumanizeMeters is HumanizeDistance for a distance in meters, rendered as text.
func HumanizeMeters(meters float64) string {
	return HumanizeDistance(MetersToFeet(meters)).String()
}

// HumanizeDuration renders milliseconds as "1 hour & 5 minutes".
// With showHours false everything is expressed in minutes.
// Zero-valued segments are omitted, so a sub-minute duration renders as "".
func HumanizeDuration(ms int64, showHours bool) string {
	minutes := ms / 1000 / 60
	var hours int64
	if showHours && minutes >= 60 {
		hours = minutes / 60
		minutes %= 60
	}

	var hourPart, minutePart string
	if hours > 0 {
		hourPart = fmt.Sprintf("%d %s", hours, plural(hours, "hour", "hours"))
	}
	if minutes > 0 {
		minutePart = fmt.Sprintf("%d %s", minutes, plural(minutes, "minute", "minutes"))
	}

	switch {
	case hourPart != "" && minutePart != "":
		return hourPart + " & " + minutePart
	case hourPart != "":
		return hourPart
	default:
		return minutePart
	}
}

// SecondsToHoursMinutes splits a duration in seconds into hour and minute parts.
// Both are nil when seconds <= minSeconds. Hours is nil when the total is under an hour.
func SecondsToHoursMinutes(seconds, minSeconds float64) (hours, minutes *int) {
	if seconds <= minSeconds {
		return nil, nil
	}
	total := int(math.Floor(seconds / 60))
	m := total % 60
	minutes = &m
	if total >= 60 {
		h := total / 60
		hours = &h
	}
	return hours, minutes
}

// HourMinString renders optional hour/minute parts as "2 hours, 5 minutes".
// It returns "" when neither part carries a value.
func HourMinString(hours, minutes *int) string {
	out := ""
	if hours != nil && *hours > 0 {
		out = fmt.Sprintf("%d %s", *hours, pluralGreater(*hours, "hour", "hours"))
	}
	if minutes != nil && *minutes > 0 {
		part := fmt.Sprintf("%d %s", *minutes, pluralGreater(*minutes, "minute", "minutes"))
		if out != "" {
			out += ", "
		}
		out += part
	}
	return out
}

// Round rounds v half away from zero to the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func plural(n int64, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func pluralGreater(n int, one, many string) string {
	if n > 1 {
		return many
	}
	return one
}
