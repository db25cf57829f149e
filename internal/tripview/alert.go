package tripview

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/ottplanner/ottplanner/internal/otp"
)

// longTermAge is how long an alert must have been in effect to count as long-term.
const longTermAge = 35 * 24 * time.Hour

// buildAlerts reads a leg's alerts. Entries in neither known shape are skipped.
// The result is nil when the leg carries no usable alerts.
func (b *Builder) buildAlerts(raw otp.Fragment, routeID string, log zerolog.Logger) []AlertView {
	items, ok := raw.Objects("alerts")
	if !ok || len(items) == 0 {
		return nil
	}

	views := make([]AlertView, 0, len(items))
	for i, item := range items {
		alert, ok := otp.ParseAlert(item)
		if !ok {
			log.Debug().Str("field", "alerts").Int("alert_index", i).Msg("unrecognized alert shape")
			continue
		}
		views = append(views, b.alertView(alert, routeID))
	}
	if len(views) == 0 {
		return nil
	}
	return DedupAlerts(views)
}

func (b *Builder) alertView(a otp.Alert, routeID string) AlertView {
	view := AlertView{
		RouteID: a.RouteID,
		Header:  a.Header,
		Text:    a.Text,
		URL:     a.URL,
	}
	if view.RouteID == "" {
		view.RouteID = routeID
	}
	if a.HasStartMs {
		now := b.now()
		start := time.UnixMilli(a.StartMs).In(b.location)
		view.EffectiveStartEpochMs = a.StartMs
		view.StartDatePretty = start.Format("January 2 @ 3:04PM")
		view.IsFutureEffective = start.After(now)
		view.IsLongTerm = now.Sub(start) > longTermAge
	}
	return view
}

// DedupAlerts merges alert lists into one entry per distinct text.
// Entries keep the position of the first alert with that text and the
// content of the last one.
func DedupAlerts(lists ...[]AlertView) []AlertView {
	index := make(map[string]int)
	var out []AlertView
	for _, list := range lists {
		for _, a := range list {
			if i, seen := index[a.Text]; seen {
				out[i] = a
				continue
			}
			index[a.Text] = len(out)
			out = append(out, a)
		}
	}
	return out
}
