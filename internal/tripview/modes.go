package tripview

import "strings"

// Engine travel modes referenced by the builders.
const (
	ModeWalk    = "WALK"
	ModeBicycle = "BICYCLE"
	ModeBus     = "BUS"
	ModeFerry   = "FERRY"
	ModeGondola = "GONDOLA"
)

var (
	transitModes    = modeSet("BUS", "TRAM", "RAIL", "TRAIN", "SUBWAY", "CABLECAR", "GONDOLA", "FUNICULAR", "FERRY")
	seaModes        = modeSet("FERRY")
	airModes        = modeSet("GONDOLA")
	nonTransitModes = modeSet("BIKE", "BICYCLE", "WALK", "CAR", "AUTO")
)

func modeSet(modes ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(modes))
	for _, m := range modes {
		set[m] = struct{}{}
	}
	return set
}

func inSet(set map[string]struct{}, mode string) bool {
	_, ok := set[mode]
	return ok
}

// IsTransitMode reports whether mode is a scheduled transit mode.
func IsTransitMode(mode string) bool { return inSet(transitModes, mode) }

// IsSeaMode reports whether mode travels by water.
func IsSeaMode(mode string) bool { return inSet(seaModes, mode) }

// IsAirMode reports whether mode is an aerial tram.
func IsAirMode(mode string) bool { return inSet(airModes, mode) }

// IsNonTransitMode reports whether mode is walking, biking or driving.
func IsNonTransitMode(mode string) bool { return inSet(nonTransitModes, mode) }

// prettyModeRule maps a combined mode string to a label when match holds.
type prettyModeRule struct {
	label string
	match func(mode string) bool
}

func has(mode, token string) bool { return strings.Contains(mode, token) }

func hasRail(mode string) bool { return has(mode, "TRAIN") || has(mode, "RAIL") }

// prettyModeRules are checked in order; the first match wins.
var prettyModeRules = []prettyModeRule{
	{label: "Bike to Transit", match: func(m string) bool {
		return has(m, "BICYCLE") && (has(m, "TRANSIT") || (hasRail(m) && has(m, "BUS")))
	}},
	{label: "Bike to Rail", match: func(m string) bool { return has(m, "BICYCLE") && hasRail(m) }},
	{label: "Bike to Bus", match: func(m string) bool { return has(m, "BICYCLE") && has(m, "BUS") }},
	{label: "Transit", match: func(m string) bool { return has(m, "TRANSIT") }},
	{label: "Bus", match: func(m string) bool { return has(m, "BUS") }},
	{label: "Rail", match: hasRail},
	{label: "Bike", match: func(m string) bool { return has(m, "BICYCLE") }},
	{label: "Walk", match: func(m string) bool { return has(m, "WALK") }},
}

// PrettyMode labels a requested mode string such as "TRANSIT,BICYCLE".
// Anything unrecognized is labeled "Transit".
func PrettyMode(mode string) string {
	m := strings.ToUpper(mode)
	for _, rule := range prettyModeRules {
		if rule.match(m) {
			return rule.label
		}
	}
	return "Transit"
}

var knownDirections = modeSet(
	"LEFT", "RIGHT", "CONTINUE",
	"HARD_LEFT", "HARD_RIGHT", "SLIGHTLY_LEFT", "SLIGHTLY_RIGHT",
	"NORTH", "SOUTH", "EAST", "WEST",
	"NORTHEAST", "NORTHWEST", "SOUTHEAST", "SOUTHWEST",
)

// direction lower-cases known direction tokens and passes anything else through.
func direction(dir string) string {
	if inSet(knownDirections, dir) {
		return strings.ToLower(dir)
	}
	return dir
}

// dominantModeTracker folds legs into the itinerary's dominant mode.
// Rail outranks bus, and sea legs never change it.
type dominantModeTracker struct {
	mode string
}

func (d *dominantModeTracker) observe(legMode string) {
	if d.mode == "" {
		d.mode = strings.ToLower(legMode)
	}
	if IsTransitMode(legMode) && !IsSeaMode(legMode) {
		if d.mode != "rail" && legMode == ModeBus {
			d.mode = "bus"
		} else {
			d.mode = "rail"
		}
	}
}
