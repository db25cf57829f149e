package tripview

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ottplanner/ottplanner/internal/otp"
)

var errBadTemplate = errors.New("bad url template")

// Build normalizes the plan root of an engine response. It fails only with
// ErrMalformedPlan, when from, to or itineraries is missing.
func (b *Builder) Build(root otp.Fragment, opts Options) (*Plan, error) {
	from, ok := root.Object("from")
	if !ok {
		return nil, fmt.Errorf("%w: missing from", ErrMalformedPlan)
	}
	to, ok := root.Object("to")
	if !ok {
		return nil, fmt.Errorf("%w: missing to", ErrMalformedPlan)
	}
	raw, ok := root.Array("itineraries")
	if !ok {
		return nil, fmt.Errorf("%w: missing itineraries", ErrMalformedPlan)
	}

	plan := &Plan{
		From:        b.buildPlace(from, "from", nil, b.logger),
		To:          b.buildPlace(to, "to", nil, b.logger),
		Itineraries: make([]Itinerary, 0, len(raw)),
		Params:      make(map[string]string, len(opts.Params)),
	}
	for k, v := range opts.Params {
		plan.Params[k] = v
	}

	for i, v := range raw {
		f, ok := otp.AsFragment(v)
		if !ok {
			b.logger.Debug().Int("itinerary", i+1).Msg("skipping non-object itinerary")
			continue
		}
		itin := b.BuildItinerary(f, len(plan.Itineraries)+1)
		itin.URL = b.itineraryURL(itin.Index, opts.URLQuery)
		plan.Itineraries = append(plan.Itineraries, itin)
	}

	if n := len(plan.Itineraries); n > 0 {
		plan.Itineraries[SelectedIndex(opts.ItineraryNumber, n)].Selected = true
	}
	return plan, nil
}

// SelectedIndex converts a 1-based itinerary number into a 0-based index,
// clamping anything out of range to 0.
func SelectedIndex(number, count int) int {
	i := number - 1
	if i < 0 || i >= count {
		return 0
	}
	return i
}

func (b *Builder) itineraryURL(index int, query string) *string {
	u, err := formatTemplate(b.itineraryTemplate, strconv.Itoa(index))
	if err != nil {
		b.logger.Warn().Err(err).Str("template", b.itineraryTemplate).Msg("cannot format itinerary url")
		return nil
	}
	if query != "" {
		u += "&" + strings.TrimPrefix(query, "&")
	}
	return &u
}

// formatTemplate replaces "{0}" and "{}" with arg. "{{" and "}}" are literal
// braces; any other brace is an error.
func formatTemplate(tmpl, arg string) (string, error) {
	var sb strings.Builder
	for i := 0; i < len(tmpl); i++ {
		c := tmpl[i]
		switch {
		case c == '{' && strings.HasPrefix(tmpl[i:], "{{"):
			sb.WriteByte('{')
			i++
		case c == '}' && strings.HasPrefix(tmpl[i:], "}}"):
			sb.WriteByte('}')
			i++
		case c == '{' && strings.HasPrefix(tmpl[i:], "{0}"):
			sb.WriteString(arg)
			i += 2
		case c == '{' && strings.HasPrefix(tmpl[i:], "{}"):
			sb.WriteString(arg)
			i++
		case c == '{' || c == '}':
			return "", fmt.Errorf("%w: unexpected %q at %d", errBadTemplate, c, i)
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String(), nil
}
