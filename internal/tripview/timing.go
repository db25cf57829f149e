package tripview

import (
	"math"
	"time"

	"github.com/ottplanner/ottplanner/internal/otp"
	"github.com/ottplanner/ottplanner/pkg/units"
)

const (
	dateLayout       = "1/2/2006"
	prettyDateLayout = "Monday, January 2, 2006"
	timeLayout       = "3:04pm"
)

// buildTiming reads startTime, endTime, duration and serviceDate. Missing
// timestamps leave the corresponding fields empty.
func (b *Builder) buildTiming(raw otp.Fragment) TimingView {
	var timing TimingView

	start, haveStart := otp.EpochMillis(raw, "startTime")
	end, haveEnd := otp.EpochMillis(raw, "endTime")

	if haveStart {
		t := time.UnixMilli(start).In(b.location)
		timing.StartEpochMs = start
		timing.StartDate = t.Format(dateLayout)
		timing.PrettyDate = t.Format(prettyDateLayout)
		timing.StartTime = t.Format(timeLayout)
		timing.ServiceDate = timing.StartDate
	}
	if haveEnd {
		t := time.UnixMilli(end).In(b.location)
		timing.EndEpochMs = end
		timing.EndDate = t.Format(dateLayout)
		timing.EndTime = t.Format(timeLayout)
	}
	if d, ok := otp.ServiceDate(raw, "serviceDate"); ok {
		timing.ServiceDate = d.Format(dateLayout)
	}

	if ms, ok := otp.DurationMillis(raw, "duration", start, end, haveStart && haveEnd); ok {
		timing.DurationMs = ms
		timing.Duration = units.HumanizeDuration(ms, true)
	}
	return timing
}

// buildTripTimes splits an itinerary's time into its transit, walk or bike, and wait parts.
func buildTripTimes(raw otp.Fragment, biking bool) TripTimes {
	walk, _ := raw.Float("walkTime")
	transit, _ := raw.Float("transitTime")
	wait, _ := raw.Float("waitingTime")
	total := walk + transit + wait

	var tt TripTimes
	tt.TotalHours, tt.TotalMinutes = units.SecondsToHoursMinutes(total, units.DefaultMinSeconds)
	tt.TransitHours, tt.TransitMinutes = units.SecondsToHoursMinutes(transit, units.DefaultMinSeconds)
	if biking {
		tt.BikeHours, tt.BikeMinutes = units.SecondsToHoursMinutes(walk, units.DefaultMinSeconds)
	} else {
		tt.WalkHours, tt.WalkMinutes = units.SecondsToHoursMinutes(walk, units.DefaultMinSeconds)
	}
	tt.WaitHours, tt.WaitMinutes = units.SecondsToHoursMinutes(wait, units.DefaultMinSeconds)
	tt.DurationMin = int(math.Round(total / 60))
	tt.Text = units.HourMinString(tt.TotalHours, tt.TotalMinutes)
	return tt
}
