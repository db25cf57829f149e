package planner_test

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ottplanner/ottplanner/internal/planner"
)

var testNow = time.Date(2013, 3, 4, 8, 7, 0, 0, time.UTC)

func values(t *testing.T, raw string) url.Values {
	t.Helper()
	v, err := url.ParseQuery(raw)
	require.NoError(t, err)
	return v
}

func TestParseParams_Full(t *testing.T) {
	p := planner.ParseParams(values(t,
		"from=PSU&fromCoord=45.51,-122.68&to=ZOO::45.5097,-122.7163&date=2013-03-05&time=3:40pm&Arr=A&opt=X&Walk=0.5&mode=B&itin_num=2",
	), testNow)

	assert.Equal(t, "PSU::45.51,-122.68", p.From)
	assert.Equal(t, "ZOO::45.5097,-122.7163", p.To)
	assert.Equal(t, "2013-03-05", p.Date())
	assert.Equal(t, "3:40pm", p.Clock())
	assert.True(t, p.ArriveBy)
	assert.Equal(t, "A", p.ArriveDepart)
	assert.Equal(t, planner.OptimizeTransfers, p.Optimize)
	assert.Equal(t, "0.5", p.Walk)
	assert.InDelta(t, 804.5, p.WalkMeters, 1e-9)
	assert.Equal(t, "BUSISH,WALK", p.Mode)
	assert.Equal(t, 2, p.ItineraryNumber)
	assert.Equal(t, planner.DefaultMaxHours, p.MaxHours)
	assert.False(t, p.Pretty)
	assert.NoError(t, p.Validate())
}

func TestParseParams_Defaults(t *testing.T) {
	p := planner.ParseParams(url.Values{}, testNow)

	assert.Equal(t, "", p.From)
	assert.ErrorIs(t, p.Validate(), planner.ErrMissingPlace)
	assert.Equal(t, "2013-03-04", p.Date())
	assert.Equal(t, "8:07am", p.Clock())
	assert.False(t, p.ArriveBy)
	assert.Equal(t, planner.OptimizeQuick, p.Optimize)
	assert.Equal(t, planner.DefaultWalk, p.Walk)
	assert.Equal(t, 1260.0, p.WalkMeters)
	assert.Equal(t, "TRANSIT,WALK", p.Mode)
	assert.Equal(t, 1, p.ItineraryNumber)
	assert.Equal(t, 6, p.MaxHours)
}

func TestParseParams_Places(t *testing.T) {
	tests := []struct {
		name  string
		query string
		from  string
	}{
		{"plain name", "from=PDX", "PDX"},
		{"named coordinate", "fromPlace=PDX::45.58,-122.59", "PDX::45.58,-122.59"},
		{"lat and lon", "f=PDX&fromLat=45.58&fromLon=-122.59", "PDX::45.58,-122.59"},
		{"short lat and lon", "from=PDX&fLat=45.58&fLon=-122.59", "PDX::45.58,-122.59"},
		{"coord wins over lat lon", "from=PDX&fromCoord=1,2&fromLat=3&fromLon=4", "PDX::1,2"},
		{"dangling separator", "from=PDX::&fromCoord=1,2", "PDX::1,2"},
		{"lat without lon", "from=PDX&fromLat=45.58", "PDX"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := planner.ParseParams(values(t, tt.query), testNow)
			assert.Equal(t, tt.from, p.From)
		})
	}

	p := planner.ParseParams(values(t, "t=Zoo&toLat=45.5&toLon=-122.7"), testNow)
	assert.Equal(t, "Zoo::45.5,-122.7", p.To)
}

func TestParseParams_DateTime(t *testing.T) {
	tests := []struct {
		name  string
		query string
		date  string
		clock string
	}{
		{"us date", "date=3/15/2013", "2013-03-15", "8:07am"},
		{"month day year", "month=12&day=25&year=2013", "2013-12-25", "8:07am"},
		{"partial month", "month=6", "2013-06-04", "8:07am"},
		{"bad date falls back", "date=tomorrow", "2013-03-04", "8:07am"},
		{"24 hour time", "time=17:05", "2013-03-04", "5:05pm"},
		{"spaced time", "time=5:05 PM", "2013-03-04", "5:05pm"},
		{"hour minute ampm", "Hour=9&Minute=5&AmPm=pm", "2013-03-04", "9:05pm"},
		{"midnight", "Hour=12&Minute=0&AmPm=am", "2013-03-04", "12:00am"},
		{"noon", "Hour=12&Minute=15&AmPm=pm", "2013-03-04", "12:15pm"},
		{"latest trip", "time=3:40pm&Arr=L", "2013-03-04", "1:30am"},
		{"earliest trip", "time=3:40pm&Arr=E", "2013-03-04", "4:00am"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := planner.ParseParams(values(t, tt.query), testNow)
			assert.Equal(t, tt.date, p.Date())
			assert.Equal(t, tt.clock, p.Clock())
		})
	}
}

func TestParseParams_ArriveDepart(t *testing.T) {
	tests := []struct {
		arr  string
		want bool
	}{
		{"A", true}, {"Arr", true}, {"Arrive", true}, {"True", true}, {"true", true},
		{"L", true}, {"Late", true}, {"Latest", true},
		{"E", false}, {"Early", false}, {"D", false},
	}
	for _, tt := range tests {
		p := planner.ParseParams(url.Values{"Arr": {tt.arr}}, testNow)
		assert.Equal(t, tt.want, p.ArriveBy, "Arr=%s", tt.arr)
		assert.Equal(t, tt.arr, p.ArriveDepart)
	}
}

func TestParseParams_Optimize(t *testing.T) {
	tests := map[string]string{
		"optimize=F":         planner.OptimizeTransfers,
		"opt=TRANSFERS":      planner.OptimizeTransfers,
		"Opt=S":              planner.OptimizeSafe,
		"min=SAFE":           planner.OptimizeSafe,
		"Min=T":              planner.OptimizeQuick,
		"optimize=QUICK":     planner.OptimizeQuick,
		"optimize=&min=SAFE": planner.OptimizeSafe,
	}
	for query, want := range tests {
		p := planner.ParseParams(values(t, query), testNow)
		assert.Equal(t, want, p.Optimize, query)
	}
}

func TestParseParams_Walk(t *testing.T) {
	tests := []struct {
		query  string
		meters float64
	}{
		{"walk=1", 1609},
		{"Walk=10", 16090},
		{"walk=10.5", 10.5},
		{"walk=800", 800},
		{"walk=0", 0},
		{"walk=far", 0},
	}
	for _, tt := range tests {
		p := planner.ParseParams(values(t, tt.query), testNow)
		assert.InDelta(t, tt.meters, p.WalkMeters, 1e-9, tt.query)
	}
}

func TestParseParams_Mode(t *testing.T) {
	tests := map[string]string{
		"":                 "TRANSIT,WALK",
		"WALK":             "WALK",
		"TRANSIT,BICYCLE":  "TRANSIT,BICYCLE",
		"TRANS_BIC":        "TRANSIT,BICYCLE",
		"TRAIN,BICYCLE":    "TRAINISH,BICYCLE",
		"BIKE":             "BICYCLE",
		"BICYCLE":          "BICYCLE",
		"B":                "BUSISH,WALK",
		"BUSISH,WALK":      "BUSISH,WALK",
		"T":                "TRAINISH,WALK",
		"TRAINISH":         "TRAINISH,WALK",
		"FERRY":            "TRANSIT,WALK",
		"TRANSIT,WALK,BUS": "TRANSIT,WALK",
	}
	for mode, want := range tests {
		p := planner.ParseParams(url.Values{"mode": {mode}}, testNow)
		assert.Equal(t, want, p.Mode, "mode=%q", mode)
	}
}

func TestParseParams_Misc(t *testing.T) {
	p := planner.ParseParams(values(t, "maxHours=3&itin_num=abc&pretty"), testNow)
	assert.Equal(t, 3, p.MaxHours)
	assert.Equal(t, 1, p.ItineraryNumber)
	assert.True(t, p.Pretty)

	p = planner.ParseParams(values(t, "maxHours=-2&itin_num=-4&is_pretty=1"), testNow)
	assert.Equal(t, planner.DefaultMaxHours, p.MaxHours)
	assert.Equal(t, -4, p.ItineraryNumber)
	assert.True(t, p.Pretty)
}
