package tripview

import (
	"github.com/ottplanner/ottplanner/internal/otp"
)

// BuildItinerary normalizes one raw itinerary. index is 1-based.
func (b *Builder) BuildItinerary(raw otp.Fragment, index int) Itinerary {
	rawLegs, ok := raw.Objects("legs")
	if !ok {
		b.logger.Debug().Int("itinerary", index).Str("field", "legs").Msg("itinerary has no legs")
	}

	legs := make([]Leg, 0, len(rawLegs))
	for i, l := range rawLegs {
		legs = append(legs, b.BuildLeg(l, i))
	}

	itin := Itinerary{
		Index:  index,
		Legs:   legs,
		Timing: b.buildTiming(raw),
	}
	if n, ok := raw.Int64("transfers"); ok {
		itin.Transfers = int(n)
	}

	var (
		dominant  dominantModeTracker
		legAlerts [][]AlertView
		hasAir    bool
		biking    bool
	)
	for i, leg := range legs {
		dominant.observe(leg.Mode)
		if transferAt(legs, i) {
			itin.TransferDetected = true
		}
		if len(leg.Alerts) > 0 {
			itin.HasAlerts = true
			legAlerts = append(legAlerts, leg.Alerts)
		}
		if IsAirMode(leg.Mode) {
			hasAir = true
		}
		if leg.Mode == ModeBicycle {
			biking = true
		}
	}

	itin.DominantMode = dominant.mode
	itin.Alerts = DedupAlerts(legAlerts...)
	itin.Fare = b.buildFare(raw, hasAir)
	itin.TripTimes = buildTripTimes(raw, biking)
	return itin
}

// transferAt reports whether legs i..i+2 ride transit, leave it, and board again.
func transferAt(legs []Leg, i int) bool {
	if i+2 >= len(legs) {
		return false
	}
	return IsTransitMode(legs[i].Mode) &&
		IsNonTransitMode(legs[i+1].Mode) && !IsTransitMode(legs[i+1].Mode) &&
		IsTransitMode(legs[i+2].Mode)
}
