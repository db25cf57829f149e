package tripview

import (
	"github.com/rs/zerolog"

	"github.com/ottplanner/ottplanner/internal/elevation"
	"github.com/ottplanner/ottplanner/internal/otp"
	"github.com/ottplanner/ottplanner/pkg/units"
)

// BuildLeg normalizes one raw leg. It never fails: unreadable parts are left empty.
func (b *Builder) BuildLeg(raw otp.Fragment, index int) Leg {
	mode, ok := raw.String("mode")
	if !ok {
		b.logger.Debug().Int("leg_index", index).Str("field", "mode").Msg("leg has no mode")
	}
	log := b.logger.With().Int("leg_index", index).Str("mode", mode).Logger()

	distance, _ := raw.Float("distance")
	leg := Leg{
		Mode:           mode,
		DistanceMeters: distance,
		Distance:       units.HumanizeDistance(units.MetersToFeet(distance)),
		Timing:         b.buildTiming(raw),
	}

	var link *stopLink
	if IsTransitMode(mode) {
		interline, _ := raw.Bool("interlineWithPreviousLeg")
		leg.IsInterline = interline
		leg.Route = buildRoute(raw, interline, log)
		leg.Alerts = b.buildAlerts(raw, leg.Route.RouteID, log)
		link = &stopLink{routeID: leg.Route.RouteID}
		if d, ok := otp.ServiceDate(raw, "serviceDate"); ok {
			link.serviceDate = d.Format("2006-01-02")
		}
	}

	leg.From = b.buildPlace(raw.At("from"), "from", link, log)
	leg.To = b.buildPlace(raw.At("to"), "to", link, log)

	steps, _ := raw.Objects("steps")
	leg.Steps = buildSteps(steps)
	if len(leg.Steps) > 0 && leg.Steps[0].CompassDirection != "" {
		dir := leg.Steps[0].CompassDirection
		leg.CompassDirection = &dir
	}
	if len(steps) > 0 {
		leg.Elevation = buildElevation(steps, log)
	}
	return leg
}

func buildSteps(raw []otp.Fragment) []StepView {
	if len(raw) == 0 {
		return nil
	}
	steps := make([]StepView, 0, len(raw))
	for _, s := range raw {
		name, _ := s.String("streetName")
		lat, _ := s.Float("lat")
		lon, _ := s.Float("lon")
		meters, _ := s.Float("distance")
		absolute, _ := s.String("absoluteDirection")
		relative, _ := s.String("relativeDirection")
		steps = append(steps, StepView{
			Name:              name,
			Lat:               lat,
			Lon:               lon,
			DistanceMeters:    meters,
			Distance:          units.HumanizeDistance(units.MetersToFeet(meters)),
			CompassDirection:  direction(absolute),
			RelativeDirection: direction(relative),
		})
	}
	return steps
}

// buildElevation converts the steps' samples and analyzes them. A malformed
// sample anywhere drops the leg's elevation data.
func buildElevation(raw []otp.Fragment, log zerolog.Logger) *elevation.Profile {
	steps := make([]elevation.Step, 0, len(raw))
	for i, s := range raw {
		step := elevation.Step{}
		step.Distance, step.DistanceOK = s.Float("distance")

		if v, ok := s.Value("elevation"); ok {
			pairs, ok := otp.ElevationPairs(v)
			if !ok {
				log.Warn().Int("step_index", i).Str("field", "elevation").Msg("malformed elevation samples, dropping elevation")
				return nil
			}
			step.Samples = make([]elevation.Sample, len(pairs))
			for j, p := range pairs {
				step.Samples[j] = elevation.Sample{Distance: p.First, Elevation: p.Second}
			}
		}
		if !step.DistanceOK {
			log.Warn().Int("step_index", i).Str("field", "distance").Msg("step without distance, dropping total")
		}
		steps = append(steps, step)
	}
	return elevation.Analyze(steps)
}
