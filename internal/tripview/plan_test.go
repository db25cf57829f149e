package tripview_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ottplanner/ottplanner/internal/tripview"
)

func TestBuild_WalkThenBus(t *testing.T) {
	b := newTestBuilder(nil)

	plan, err := b.Build(loadPlan(t, "plan.json"), tripview.Options{ItineraryNumber: 1})
	require.NoError(t, err)

	assert.Equal(t, "SW Arthur & 1st", plan.From.Name)
	assert.Nil(t, plan.From.Stop)
	require.NotNil(t, plan.To.Stop)
	assert.Equal(t, "TriMet", plan.To.Stop.AgencyID)
	assert.Equal(t, "7601", plan.To.Stop.StopID)
	assert.Contains(t, plan.From.MapImageURL, "coord/-122.68,45.5/extraparams/format_options=layout:start")
	assert.Contains(t, plan.To.MapImageURL, "layout:end")

	require.Len(t, plan.Itineraries, 1)
	itin := plan.Itineraries[0]
	assert.Equal(t, 1, itin.Index)
	assert.True(t, itin.Selected)
	assert.Equal(t, "bus", itin.DominantMode)
	assert.False(t, itin.TransferDetected)
	assert.Equal(t, "$2.50", itin.Fare.Adult)
	assert.Empty(t, itin.Fare.Youth)

	require.Len(t, itin.Legs, 2)

	walk := itin.Legs[0]
	assert.Equal(t, "WALK", walk.Mode)
	assert.Equal(t, "300", walk.Distance.Value)
	assert.Equal(t, "feet", walk.Distance.Unit)
	assert.Nil(t, walk.Elevation)
	assert.Nil(t, walk.Route)
	assert.Nil(t, walk.Alerts)
	require.NotNil(t, walk.CompassDirection)
	assert.Equal(t, "north", *walk.CompassDirection)
	require.Len(t, walk.Steps, 1)
	assert.Equal(t, "DEPART", walk.Steps[0].RelativeDirection)
	require.NotNil(t, walk.To.Stop)
	assert.Equal(t, "stop_schedule.html?stop_id=13170", walk.To.Stop.ScheduleURL)

	bus := itin.Legs[1]
	require.NotNil(t, bus.Route)
	assert.Contains(t, bus.Route.DisplayName, "54")
	assert.Equal(t, "54-Beaverton-Hillsdale Hwy", bus.Route.DisplayName)
	assert.Equal(t, "TriMet", bus.Route.AgencyID)
	assert.Equal(t, "54", bus.Route.RouteID)
	assert.Equal(t, "4729573", bus.Route.TripID)
	require.NotNil(t, bus.Route.URL)
	assert.Equal(t, "http://trimet.org/schedules/r054.htm", *bus.Route.URL)
	assert.Equal(t, "1.2", bus.Distance.Value)
	assert.Equal(t, "miles", bus.Distance.Unit)
	assert.False(t, bus.IsInterline)
	require.NotNil(t, bus.From.Stop)
	assert.Equal(t, "stop_schedule.html?stop_id=13170&route=54&date=2013-03-04", bus.From.Stop.ScheduleURL)
	assert.Equal(t, "3/4/2013", bus.Timing.ServiceDate)

	require.Len(t, itin.Alerts, 1)
	assert.Equal(t, "Detour on 5th", itin.Alerts[0].Text)
	assert.Equal(t, "54", itin.Alerts[0].RouteID)
	assert.Equal(t, "February 26 @ 12:00AM", itin.Alerts[0].StartDatePretty)
	assert.False(t, itin.Alerts[0].IsFutureEffective)
	assert.False(t, itin.Alerts[0].IsLongTerm)
	assert.True(t, itin.HasAlerts)

	assert.Equal(t, int64(1200000), itin.Timing.DurationMs)
	assert.Equal(t, "20 minutes", itin.Timing.Duration)
	assert.Equal(t, "3:40pm", itin.Timing.StartTime)
	assert.Equal(t, "4:00pm", itin.Timing.EndTime)
	assert.Equal(t, "3/4/2013", itin.Timing.StartDate)
	assert.Equal(t, "Monday, March 4, 2013", itin.Timing.PrettyDate)

	assert.Equal(t, 20, itin.TripTimes.DurationMin)
	assert.Equal(t, "20 minutes", itin.TripTimes.Text)
	assert.Nil(t, itin.TripTimes.TotalHours)
	require.NotNil(t, itin.TripTimes.WalkMinutes)
	assert.Equal(t, 3, *itin.TripTimes.WalkMinutes)
	assert.Nil(t, itin.TripTimes.BikeMinutes)
}

func TestBuild_JSONFieldNames(t *testing.T) {
	b := newTestBuilder(nil)
	plan, err := b.Build(loadPlan(t, "plan.json"), tripview.Options{})
	require.NoError(t, err)

	out, err := json.Marshal(plan)
	require.NoError(t, err)

	for _, field := range []string{`"longName"`, `"shortName"`, `"agencyName"`, `"dist"`, `"sortOrderSet"`, `"itinNum"`} {
		assert.Contains(t, string(out), field)
	}
}

func TestBuild_MalformedRoot(t *testing.T) {
	b := newTestBuilder(nil)

	tests := []struct {
		name string
		raw  string
	}{
		{"missing from", `{"to": {}, "itineraries": []}`},
		{"missing to", `{"from": {}, "itineraries": []}`},
		{"missing itineraries", `{"from": {}, "to": {}}`},
		{"itineraries not a list", `{"from": {}, "to": {}, "itineraries": {}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := b.Build(fragment(t, tt.raw), tripview.Options{})
			assert.ErrorIs(t, err, tripview.ErrMalformedPlan)
			assert.Nil(t, plan)
		})
	}
}

func TestBuild_MalformedItineraryDoesNotBlankPlan(t *testing.T) {
	b := newTestBuilder(nil)
	raw := fragment(t, `{
		"from": {"name": "A"}, "to": {"name": "B"},
		"itineraries": [
			{"legs": [{"mode": "WALK", "steps": [{"distance": 10, "elevation": "1,2,3"}]}]},
			{"legs": "not a list"}
		]
	}`)

	plan, err := b.Build(raw, tripview.Options{})
	require.NoError(t, err)
	require.Len(t, plan.Itineraries, 2)
	assert.Nil(t, plan.Itineraries[0].Legs[0].Elevation)
	assert.Empty(t, plan.Itineraries[1].Legs)
	assert.Equal(t, tripview.DefaultAdultFare, plan.Itineraries[1].Fare.Adult)
}

func TestBuild_SelectionClamping(t *testing.T) {
	b := newTestBuilder(nil)
	raw := `{"from": {}, "to": {}, "itineraries": [{"legs": []}, {"legs": []}, {"legs": []}]}`

	tests := []struct {
		number int
		want   int
	}{
		{number: 0, want: 0},
		{number: -3, want: 0},
		{number: 4, want: 0},
		{number: 1, want: 0},
		{number: 2, want: 1},
		{number: 3, want: 2},
	}
	for _, tt := range tests {
		plan, err := b.Build(fragment(t, raw), tripview.Options{ItineraryNumber: tt.number})
		require.NoError(t, err)

		selected := 0
		for i, itin := range plan.Itineraries {
			if itin.Selected {
				selected++
				assert.Equal(t, tt.want, i, "itinerary number %d", tt.number)
			}
		}
		assert.Equal(t, 1, selected, "itinerary number %d", tt.number)
		assert.Equal(t, tt.want+1, plan.Selected().Index)
	}
}

func TestBuild_EmptyPlanSelectsNothing(t *testing.T) {
	b := newTestBuilder(nil)
	plan, err := b.Build(fragment(t, `{"from": {}, "to": {}, "itineraries": []}`), tripview.Options{ItineraryNumber: 1})
	require.NoError(t, err)
	assert.Empty(t, plan.Itineraries)
	assert.Nil(t, plan.Selected())
}

func TestSelectedIndex(t *testing.T) {
	assert.Equal(t, 0, tripview.SelectedIndex(0, 0))
	assert.Equal(t, 0, tripview.SelectedIndex(1, 2))
	assert.Equal(t, 1, tripview.SelectedIndex(2, 2))
	assert.Equal(t, 0, tripview.SelectedIndex(3, 2))
}

func TestBuild_ItineraryURLs(t *testing.T) {
	raw := `{"from": {}, "to": {}, "itineraries": [{"legs": []}, {"legs": []}]}`

	t.Run("default template with query", func(t *testing.T) {
		b := newTestBuilder(nil)
		plan, err := b.Build(fragment(t, raw), tripview.Options{URLQuery: "from=A&to=B"})
		require.NoError(t, err)
		require.NotNil(t, plan.Itineraries[1].URL)
		assert.Equal(t, "planner.html?itin_num=2&from=A&to=B", *plan.Itineraries[1].URL)
	})

	t.Run("positional and escaped braces", func(t *testing.T) {
		b := tripview.NewBuilder(tripview.Config{ItineraryURLTemplate: "trip/{}?x={{y}}"})
		plan, err := b.Build(fragment(t, raw), tripview.Options{})
		require.NoError(t, err)
		require.NotNil(t, plan.Itineraries[0].URL)
		assert.Equal(t, "trip/1?x={y}", *plan.Itineraries[0].URL)
	})

	t.Run("bad template degrades to nil", func(t *testing.T) {
		b := tripview.NewBuilder(tripview.Config{ItineraryURLTemplate: "trip/{name}"})
		plan, err := b.Build(fragment(t, raw), tripview.Options{})
		require.NoError(t, err)
		assert.Nil(t, plan.Itineraries[0].URL)
		assert.Len(t, plan.Itineraries, 2)
	})
}

func TestBuild_ParamsAreCopied(t *testing.T) {
	b := newTestBuilder(nil)
	params := map[string]string{"modes": "Bus"}

	plan, err := b.Build(fragment(t, `{"from": {}, "to": {}, "itineraries": []}`), tripview.Options{Params: params})
	require.NoError(t, err)

	params["modes"] = "Rail"
	assert.Equal(t, "Bus", plan.Params["modes"])
}
