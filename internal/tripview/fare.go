package tripview

import (
	"fmt"

	"github.com/ottplanner/ottplanner/internal/otp"
)

// FareTable answers fare lookups by tier name, returning def when the tier is unknown.
type FareTable interface {
	Query(tier, def string) string
}

// Fare tiers and the values shown when the table has no entry.
const (
	TierAdult      = "adult"
	TierAdultDay   = "adult_day"
	TierHonored    = "honored"
	TierHonoredDay = "honored_day"
	TierYouth      = "youth"
	TierYouthDay   = "youth_day"
	TierTram       = "tram"
	TierTramNote   = "tram_note"

	DefaultAdultFare = "$2.50"
)

// DefaultFares are the literal fallbacks per tier.
var DefaultFares = map[string]string{
	TierAdult:      DefaultAdultFare,
	TierAdultDay:   "$5.00",
	TierHonored:    "$1.00",
	TierHonoredDay: "$2.00",
	TierYouth:      "$1.65",
	TierYouthDay:   "$3.30",
	TierTram:       "$4.00",
}

// engineFare reads fare.fare.regular as "$2.50".
func engineFare(raw otp.Fragment) (string, bool) {
	regular := raw.At("fare", "fare", "regular")
	cents, ok := regular.Float("cents")
	if !ok {
		return "", false
	}
	symbol, ok := regular.At("currency").String("symbol")
	if !ok {
		return "", false
	}
	return fmt.Sprintf("%s%.2f", symbol, cents*0.01), true
}

// buildFare prices an itinerary. The adult fare comes from the engine when it
// quotes one, then from the fare table, then from DefaultAdultFare. Other tiers
// are only filled in when a fare table is configured.
func (b *Builder) buildFare(raw otp.Fragment, hasAirLeg bool) FareView {
	var fare FareView

	if adult, ok := engineFare(raw); ok {
		fare.Adult = adult
	} else if b.fares != nil {
		fare.Adult = b.fares.Query(TierAdult, DefaultAdultFare)
	} else {
		fare.Adult = DefaultAdultFare
	}

	if b.fares == nil {
		return fare
	}

	fare.AdultDay = b.fares.Query(TierAdultDay, DefaultFares[TierAdultDay])
	fare.Honored = b.fares.Query(TierHonored, DefaultFares[TierHonored])
	fare.HonoredDay = b.fares.Query(TierHonoredDay, DefaultFares[TierHonoredDay])
	fare.Youth = b.fares.Query(TierYouth, DefaultFares[TierYouth])
	fare.YouthDay = b.fares.Query(TierYouthDay, DefaultFares[TierYouthDay])
	fare.Tram = b.fares.Query(TierTram, DefaultFares[TierTram])
	if hasAirLeg {
		fare.Notes = b.fares.Query(TierTramNote, "")
	}
	return fare
}
