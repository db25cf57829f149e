package tripview_test

import (
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/ottplanner/ottplanner/internal/otp"
	"github.com/ottplanner/ottplanner/internal/tripview"
)

var testNow = time.Date(2013, 3, 4, 12, 0, 0, 0, time.UTC)

func newTestBuilder(fares tripview.FareTable) *tripview.Builder {
	return tripview.NewBuilder(tripview.Config{
		Logger:   zerolog.Nop(),
		Location: time.UTC,
		Now:      func() time.Time { return testNow },
		Fares:    fares,
	})
}

func fragment(t *testing.T, raw string) otp.Fragment {
	t.Helper()
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var f otp.Fragment
	require.NoError(t, dec.Decode(&f))
	return f
}

func loadPlan(t *testing.T, name string) otp.Fragment {
	t.Helper()
	file, err := os.Open("testdata/" + name)
	require.NoError(t, err)
	defer file.Close()

	resp, err := otp.DecodeResponse(file)
	require.NoError(t, err)
	require.NotNil(t, resp.Plan)
	return resp.Plan
}

// itineraryWithModes builds a raw itinerary whose legs only carry a mode.
func itineraryWithModes(t *testing.T, modes ...string) otp.Fragment {
	t.Helper()
	legs := make([]map[string]any, len(modes))
	for i, m := range modes {
		legs[i] = map[string]any{"mode": m}
	}
	b, err := json.Marshal(map[string]any{"legs": legs})
	require.NoError(t, err)
	return fragment(t, string(b))
}

type fakeFares map[string]string

func (f fakeFares) Query(tier, def string) string {
	if v, ok := f[tier]; ok {
		return v
	}
	return def
}
