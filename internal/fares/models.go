// Package fares provides the fare table used to price itineraries.
package fares

import (
	"errors"
	"fmt"
	"time"

	"github.com/ottplanner/ottplanner/internal/tripview"
)

// ErrInvalidEntry is returned when a fare table entry fails validation.
var ErrInvalidEntry = errors.New("invalid fare entry")

// Tiers lists every tier a fare table may define.
var Tiers = []string{
	tripview.TierAdult,
	tripview.TierAdultDay,
	tripview.TierHonored,
	tripview.TierHonoredDay,
	tripview.TierYouth,
	tripview.TierYouthDay,
	tripview.TierTram,
	tripview.TierTramNote,
}

// Entry is one row of the fare table. Priced tiers carry Cents and Symbol;
// note tiers carry Note instead.
type Entry struct {
	Tier      string    `yaml:"tier" csv:"tier" validate:"required,oneof=adult adult_day honored honored_day youth youth_day tram tram_note"`
	Cents     int       `yaml:"cents" csv:"cents" validate:"gte=0"`
	Symbol    string    `yaml:"symbol" csv:"symbol" validate:"required_without=Note,max=3"`
	Note      string    `yaml:"note" csv:"note" validate:"max=500"`
	UpdatedAt time.Time `yaml:"-" csv:"-"`
}

// Value renders the entry as shown to riders, e.g. "$2.50".
func (e Entry) Value() string {
	if e.Note != "" {
		return e.Note
	}
	return fmt.Sprintf("%s%.2f", e.Symbol, float64(e.Cents)/100)
}
