package tripview_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ottplanner/ottplanner/internal/tripview"
)

func TestBuildLeg_ElevationFromPairs(t *testing.T) {
	b := newTestBuilder(nil)
	raw := fragment(t, `{"mode": "WALK", "distance": 30, "steps": [
		{"streetName": "SW Terwilliger Blvd", "distance": 30, "absoluteDirection": "SOUTHWEST",
		 "elevation": [{"first": 0, "second": 100}, {"first": 10, "second": 110}, {"first": 20, "second": 105}, {"first": 30, "second": 120}]}
	]}`)

	leg := b.BuildLeg(raw, 0)
	require.NotNil(t, leg.Elevation)
	assert.Equal(t, 150.0, leg.Elevation.MaxGrade.Up)
	assert.Equal(t, 50.0, leg.Elevation.MaxGrade.Down)
	assert.Equal(t, "100.00,110.00,105.00,120.00", leg.Elevation.Points)
	assert.Equal(t, "25.0", leg.Elevation.Rise)
	assert.Equal(t, "5.0", leg.Elevation.Fall)
	require.NotNil(t, leg.Elevation.TotalDistance)
	assert.Equal(t, 30.0, *leg.Elevation.TotalDistance)
	require.NotNil(t, leg.CompassDirection)
	assert.Equal(t, "southwest", *leg.CompassDirection)
}

func TestBuildLeg_ElevationFromCSV(t *testing.T) {
	b := newTestBuilder(nil)
	raw := fragment(t, `{"mode": "BICYCLE", "steps": [
		{"distance": 10, "elevation": "0,50,10,55"},
		{"distance": 10, "elevation": "0,55,10,50"}
	]}`)

	leg := b.BuildLeg(raw, 0)
	require.NotNil(t, leg.Elevation)
	assert.Equal(t, "50.0", leg.Elevation.Start)
	assert.Equal(t, "50.0", leg.Elevation.End)
	assert.Equal(t, "55.0", leg.Elevation.High)
	assert.Equal(t, 50.0, leg.Elevation.MaxGrade.Up)
	assert.Equal(t, 50.0, leg.Elevation.MaxGrade.Down)
}

func TestBuildLeg_ElevationDegrades(t *testing.T) {
	b := newTestBuilder(nil)

	t.Run("malformed sample drops elevation", func(t *testing.T) {
		raw := fragment(t, `{"mode": "WALK", "distance": 40, "steps": [
			{"distance": 20, "elevation": [{"first": 0, "second": 100}]},
			{"distance": 20, "elevation": [{"first": 0}]}
		]}`)
		leg := b.BuildLeg(raw, 0)
		assert.Nil(t, leg.Elevation)
		assert.Len(t, leg.Steps, 2)
		assert.Equal(t, 40.0, leg.DistanceMeters)
	})

	t.Run("missing step distance drops total only", func(t *testing.T) {
		raw := fragment(t, `{"mode": "WALK", "steps": [
			{"elevation": "0,100,5,101"},
			{"distance": 5}
		]}`)
		leg := b.BuildLeg(raw, 0)
		require.NotNil(t, leg.Elevation)
		assert.Nil(t, leg.Elevation.TotalDistance)
	})

	t.Run("no steps", func(t *testing.T) {
		leg := b.BuildLeg(fragment(t, `{"mode": "WALK"}`), 0)
		assert.Nil(t, leg.Elevation)
		assert.Nil(t, leg.CompassDirection)
		assert.Nil(t, leg.Steps)
	})
}

func TestBuildLeg_StopEncodings(t *testing.T) {
	b := newTestBuilder(nil)

	tests := []struct {
		name   string
		stopID string
		agency string
		id     string
	}{
		{"structured", `{"agencyId": "TriMet", "id": "8989"}`, "TriMet", "8989"},
		{"colon string", `"TriMet:8989"`, "TriMet", "8989"},
		{"colon in id", `"C-TRAN:a:b"`, "C-TRAN", "a:b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			leg := b.BuildLeg(fragment(t, `{"mode": "WALK", "to": {"name": "PSU", "stopId": `+tt.stopID+`}}`), 0)
			require.NotNil(t, leg.To.Stop)
			assert.Equal(t, tt.agency, leg.To.Stop.AgencyID)
			assert.Equal(t, tt.id, leg.To.Stop.StopID)
			assert.Equal(t, "PSU", leg.To.Stop.Name)
		})
	}

	for _, bad := range []string{`"8989"`, `{"agencyId": "TriMet"}`, `42`, `":8989"`} {
		leg := b.BuildLeg(fragment(t, `{"mode": "WALK", "to": {"stopId": `+bad+`}}`), 0)
		assert.Nil(t, leg.To.Stop, "stop id %s", bad)
	}
}

func TestBuildLeg_NonTransitHasNoRoute(t *testing.T) {
	b := newTestBuilder(nil)
	leg := b.BuildLeg(fragment(t, `{"mode": "WALK", "routeShortName": "54", "alerts": [{"alertDescriptionText": "x"}]}`), 0)
	assert.Nil(t, leg.Route)
	assert.Nil(t, leg.Alerts)
	assert.False(t, leg.IsInterline)
}

func TestBuildLeg_RouteURLs(t *testing.T) {
	b := newTestBuilder(nil)

	tests := []struct {
		name        string
		raw         string
		url         string
		scheduleMap string
	}{
		{
			name:        "trimet pads and strips suffix",
			raw:         `{"mode": "BUS", "routeId": {"agencyId": "TRIMET", "id": "18x"}}`,
			url:         "http://trimet.org/schedules/r018.htm",
			scheduleMap: "http://trimet.org/images/schedulemaps/018.gif",
		},
		{
			name:        "c-tran is not padded",
			raw:         `{"mode": "BUS", "routeId": "C-TRAN:4"}`,
			url:         "http://c-tran.com/routes/4route/index.html",
			scheduleMap: "http://c-tran.com/images/routes/4map.png",
		},
		{
			name: "unknown agency uses payload url",
			raw:  `{"mode": "RAIL", "routeId": "SMART:1", "routeUrl": "http://example.org/route/1"}`,
			url:  "http://example.org/route/1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			route := b.BuildLeg(fragment(t, tt.raw), 0).Route
			require.NotNil(t, route)
			require.NotNil(t, route.URL)
			assert.Equal(t, tt.url, *route.URL)
			if tt.scheduleMap == "" {
				assert.Nil(t, route.ScheduleMapURL)
			} else {
				require.NotNil(t, route.ScheduleMapURL)
				assert.Equal(t, tt.scheduleMap, *route.ScheduleMapURL)
			}
		})
	}

	t.Run("numeric route id", func(t *testing.T) {
		route := b.BuildLeg(fragment(t, `{"mode": "BUS", "routeId": 54, "agencyId": "TriMet", "tripId": 4455}`), 0).Route
		require.NotNil(t, route)
		assert.Equal(t, "54", route.RouteID)
		assert.Equal(t, "TriMet", route.AgencyID)
		assert.Equal(t, "4455", route.TripID)
		require.NotNil(t, route.URL)
		assert.Equal(t, "http://trimet.org/schedules/r054.htm", *route.URL)
		require.NotNil(t, route.ScheduleMapURL)
		assert.Equal(t, "http://trimet.org/images/schedulemaps/054.gif", *route.ScheduleMapURL)
	})

	route := b.BuildLeg(fragment(t, `{"mode": "RAIL", "routeId": "SMART:1"}`), 0).Route
	require.NotNil(t, route)
	assert.Nil(t, route.URL)
	assert.Nil(t, route.ScheduleMapURL)
}

func TestBuildLeg_RouteDisplayName(t *testing.T) {
	b := newTestBuilder(nil)

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"short and long", `{"mode": "BUS", "routeShortName": "54", "routeLongName": "Beaverton-Hillsdale Hwy"}`, "54-Beaverton-Hillsdale Hwy"},
		{"long only", `{"mode": "TRAM", "routeLongName": "Portland Streetcar"}`, "Portland Streetcar"},
		{"short only", `{"mode": "BUS", "routeShortName": "54"}`, "54"},
		{
			"interline with distinct route",
			`{"mode": "BUS", "interlineWithPreviousLeg": true, "route": "Hillsdale Express", "routeShortName": "54", "routeLongName": "Beaverton-Hillsdale Hwy"}`,
			"Hillsdale Express",
		},
		{
			"interline with overlapping route",
			`{"mode": "BUS", "interlineWithPreviousLeg": true, "route": "beaverton-hillsdale", "routeShortName": "54", "routeLongName": "Beaverton-Hillsdale Hwy"}`,
			"54-Beaverton-Hillsdale Hwy",
		},
		{
			"route ignored without interline",
			`{"mode": "BUS", "route": "Hillsdale Express", "routeShortName": "54"}`,
			"54",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			leg := b.BuildLeg(fragment(t, tt.raw), 0)
			require.NotNil(t, leg.Route)
			assert.Equal(t, tt.want, leg.Route.DisplayName)
		})
	}
}

func TestBuildLeg_Interline(t *testing.T) {
	b := newTestBuilder(nil)

	leg := b.BuildLeg(fragment(t, `{"mode": "BUS", "interlineWithPreviousLeg": true}`), 1)
	assert.True(t, leg.IsInterline)

	leg = b.BuildLeg(fragment(t, `{"mode": "BUS"}`), 1)
	assert.False(t, leg.IsInterline)
}

func TestBuildLeg_RouteSortOrder(t *testing.T) {
	b := newTestBuilder(nil)

	route := b.BuildLeg(fragment(t, `{"mode": "BUS", "routeSortOrder": 0}`), 0).Route
	assert.Equal(t, 0, route.SortOrder)
	assert.True(t, route.SortOrderSet)

	route = b.BuildLeg(fragment(t, `{"mode": "BUS"}`), 0).Route
	assert.False(t, route.SortOrderSet)
}

func TestBuildLeg_AlertEffectiveness(t *testing.T) {
	b := newTestBuilder(nil)

	raw := fragment(t, `{"mode": "BUS", "routeId": "TriMet:54", "alerts": [
		{"alertDescriptionText": "Old closure", "effectiveStartDate": 1356998400},
		{"alertDescriptionText": "Upcoming detour", "effectiveStartDate": 1363000000000},
		{"alertDescriptionText": "Old closure", "alertUrl": "http://trimet.org/alerts/"}
	]}`)

	alerts := b.BuildLeg(raw, 0).Alerts
	require.Len(t, alerts, 2)

	assert.Equal(t, "Old closure", alerts[0].Text)
	assert.Equal(t, "http://trimet.org/alerts/", alerts[0].URL)

	assert.Equal(t, "Upcoming detour", alerts[1].Text)
	assert.True(t, alerts[1].IsFutureEffective)
	assert.False(t, alerts[1].IsLongTerm)
	assert.Equal(t, int64(1363000000000), alerts[1].EffectiveStartEpochMs)
}

func TestBuildLeg_AlertLongTerm(t *testing.T) {
	b := newTestBuilder(nil)

	raw := fragment(t, `{"mode": "BUS", "alerts": [{"alertDescriptionText": "Old closure", "effectiveStartDate": 1356998400}]}`)
	alerts := b.BuildLeg(raw, 0).Alerts
	require.Len(t, alerts, 1)
	assert.True(t, alerts[0].IsLongTerm)
	assert.False(t, alerts[0].IsFutureEffective)
	assert.Equal(t, int64(1356998400000), alerts[0].EffectiveStartEpochMs)
	assert.Equal(t, "January 1 @ 12:00AM", alerts[0].StartDatePretty)
}

func TestBuildLeg_TimingUnits(t *testing.T) {
	b := newTestBuilder(nil)

	tests := []struct {
		name string
		raw  string
		want int64
	}{
		{"seconds duration", `{"mode": "WALK", "startTime": 1362411600000, "endTime": 1362415500000, "duration": 3900}`, 3900000},
		{"millis duration", `{"mode": "WALK", "startTime": 1362411600000, "endTime": 1362415500000, "duration": 3900000}`, 3900000},
		{"epoch seconds", `{"mode": "WALK", "startTime": 1362411600, "endTime": 1362415500, "duration": 3900}`, 3900000},
		{"missing duration", `{"mode": "WALK", "startTime": 1362411600000, "endTime": 1362415500000}`, 3900000},
		{"inconsistent duration", `{"mode": "WALK", "startTime": 1362411600000, "endTime": 1362415500000, "duration": 12}`, 3900000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			timing := b.BuildLeg(fragment(t, tt.raw), 0).Timing
			assert.Equal(t, tt.want, timing.DurationMs)
			assert.Equal(t, "1 hour & 5 minutes", timing.Duration)
			assert.Equal(t, "3:40pm", timing.StartTime)
			assert.Equal(t, "4:45pm", timing.EndTime)
		})
	}
}

func TestBuilder_Location(t *testing.T) {
	b := tripview.NewBuilder(tripview.Config{Location: time.FixedZone("PST", -8*3600)})
	timing := b.BuildLeg(fragment(t, `{"mode": "WALK", "startTime": 1362411600000}`), 0).Timing
	assert.Equal(t, "7:40am", timing.StartTime)
	assert.Equal(t, "3/4/2013", timing.StartDate)
}
