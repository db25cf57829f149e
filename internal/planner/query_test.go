package planner_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ottplanner/ottplanner/internal/planner"
)

const sampleQuery = "from=PSU::45.51,-122.68&to=ZOO::45.5097,-122.7163&date=2013-03-04&time=3:40pm&Arr=A&opt=X&Walk=0.5&mode=B"

func TestParams_EngineQuery(t *testing.T) {
	p := planner.ParseParams(values(t, sampleQuery), testNow)
	q := p.EngineQuery()

	assert.Equal(t, "PSU::45.51,-122.68", q.Get("fromPlace"))
	assert.Equal(t, "ZOO::45.5097,-122.7163", q.Get("toPlace"))
	assert.Equal(t, "3:40pm", q.Get("time"))
	assert.Equal(t, "2013-03-04", q.Get("date"))
	assert.Equal(t, "BUSISH,WALK", q.Get("mode"))
	assert.Equal(t, "TRANSFERS", q.Get("optimize"))
	assert.Equal(t, "804.5", q.Get("maxWalkDistance"))
	assert.Equal(t, "true", q.Get("arriveBy"))
	assert.Equal(t, "6", q.Get("maxHours"))
}

func TestParams_EditTripQuery(t *testing.T) {
	p := planner.ParseParams(values(t, sampleQuery), testNow)

	assert.Equal(t,
		"from=PSU%3A%3A45.51%2C-122.68&to=ZOO%3A%3A45.5097%2C-122.7163&Hour=3&Minute=40&AmPm=pm&maxHours=6"+
			"&month=3&day=4&year=2013&Walk=0.5&Arr=A&min=TRANSFERS&mode=BUSISH%2CWALK",
		p.EditTripQuery())

	// The edit trip link must parse back into the same request.
	again := planner.ParseParams(values(t, p.EditTripQuery()), testNow)
	assert.Equal(t, p, again)
}

func TestParams_ReturnTripQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		hour  string
		min   string
		ampm  string
	}{
		{"afternoon", "from=A&to=B&time=3:40pm", "5", "10", "pm"},
		{"crosses noon", "from=A&to=B&time=11:00am", "12", "30", "pm"},
		{"crosses midnight", "from=A&to=B&time=11:45pm", "1", "15", "am"},
		{"whole hour", "from=A&to=B&time=8:30am", "10", "00", "am"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := planner.ParseParams(values(t, tt.query), testNow)
			back, err := url.ParseQuery(p.ReturnTripQuery())
			require.NoError(t, err)

			assert.Equal(t, "B", back.Get("from"))
			assert.Equal(t, "A", back.Get("to"))
			assert.Equal(t, tt.hour, back.Get("Hour"))
			assert.Equal(t, tt.min, back.Get("Minute"))
			assert.Equal(t, tt.ampm, back.Get("AmPm"))
		})
	}
}

func TestParams_MapPlannerQuery(t *testing.T) {
	p := planner.ParseParams(values(t, sampleQuery), testNow)
	q, err := url.ParseQuery(p.MapPlannerQuery())
	require.NoError(t, err)

	assert.Equal(t, "3/4/2013", q.Get("date"))
	assert.Equal(t, "805", q.Get("maxWalkDistance"))
	assert.Equal(t, "true", q.Get("arriveBy"))
	assert.Equal(t, "PSU::45.51,-122.68", q.Get("from"))
}

func TestParams_EchoParams(t *testing.T) {
	p := planner.ParseParams(values(t, sampleQuery), testNow)
	echo := p.EchoParams()

	assert.Equal(t, "true", echo[planner.EchoArriveBy])
	assert.Equal(t, "TRANSFERS", echo[planner.EchoOptimize])
	assert.Equal(t, "Bus", echo[planner.EchoModes])
	assert.Equal(t, "1/2 mile", echo[planner.EchoWalk])
	assert.Equal(t, p.EditTripQuery(), echo[planner.EchoEditTrip])
	assert.Equal(t, p.ReturnTripQuery(), echo[planner.EchoReturnTrip])
	assert.Equal(t, p.MapPlannerQuery(), echo[planner.EchoMapPlanner])

	defaults := planner.ParseParams(values(t, "from=A&to=B"), testNow).EchoParams()
	assert.Equal(t, "Transit", defaults[planner.EchoModes])
	assert.Equal(t, "3/4 mile", defaults[planner.EchoWalk])
	assert.Equal(t, "false", defaults[planner.EchoArriveBy])
}
