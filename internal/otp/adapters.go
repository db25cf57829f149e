package otp

import (
	"math"
	"strings"
	"time"
)

// strategy is one way of reading a value that different engine versions encode differently.
type strategy[T any] struct {
	name  string
	parse func(v any) (T, bool)
}

// firstOf tries each strategy in order and returns the first success with its name.
func firstOf[T any](strategies []strategy[T], v any) (T, string, bool) {
	for _, s := range strategies {
		if out, ok := s.parse(v); ok {
			return out, s.name, true
		}
	}
	var zero T
	return zero, "", false
}

// EntityID identifies a stop, route or trip within an agency.
type EntityID struct {
	AgencyID string `json:"agencyId"`
	ID       string `json:"id"`
}

// String renders the id as "AGENCY:ID".
func (e EntityID) String() string {
	if e.AgencyID == "" {
		return e.ID
	}
	return e.AgencyID + ":" + e.ID
}

var entityIDStrategies = []strategy[EntityID]{
	{name: "structured", parse: structuredEntityID},
	{name: "colon", parse: colonEntityID},
}

// ParseEntityID reads an id encoded either as {"agencyId","id"} or as "AGENCY:ID".
func ParseEntityID(v any) (EntityID, bool) {
	id, _, ok := firstOf(entityIDStrategies, v)
	return id, ok
}

var idStrategies = append(entityIDStrategies[:len(entityIDStrategies):len(entityIDStrategies)],
	strategy[EntityID]{name: "scalar", parse: scalarEntityID},
)

// ParseID reads a route or trip id. Besides the ParseEntityID encodings it
// accepts a bare string or number, which yields an id with no agency.
func ParseID(v any) (EntityID, bool) {
	id, _, ok := firstOf(idStrategies, v)
	return id, ok
}

func structuredEntityID(v any) (EntityID, bool) {
	f, ok := AsFragment(v)
	if !ok {
		return EntityID{}, false
	}
	agency, _ := f.String("agencyId")
	id, ok := f.String("id")
	if !ok || id == "" {
		return EntityID{}, false
	}
	return EntityID{AgencyID: agency, ID: id}, true
}

func colonEntityID(v any) (EntityID, bool) {
	s, ok := v.(string)
	if !ok {
		return EntityID{}, false
	}
	agency, id, found := strings.Cut(s, ":")
	if !found || agency == "" || id == "" {
		return EntityID{}, false
	}
	return EntityID{AgencyID: agency, ID: id}, true
}

func scalarEntityID(v any) (EntityID, bool) {
	s, ok := asString(v)
	if !ok {
		return EntityID{}, false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return EntityID{}, false
	}
	return EntityID{ID: s}, true
}

// Alert is a service alert read from either alert encoding.
type Alert struct {
	Header     string
	Text       string
	URL        string
	RouteID    string
	StartMs    int64
	HasStartMs bool
	Shape      string
}

var alertStrategies = []strategy[Alert]{
	{name: "flat", parse: flatAlert},
	{name: "translated", parse: translatedAlert},
}

// ParseAlert reads an alert. Newer engines send plain strings; older ones wrap
// every text in a {"someTranslation": ...} object.
func ParseAlert(f Fragment) (Alert, bool) {
	alert, shape, ok := firstOf(alertStrategies, f)
	if !ok {
		return Alert{}, false
	}
	alert.Shape = shape

	if start, ok := EpochMillis(f, "effectiveStartDate"); ok {
		alert.StartMs = start
		alert.HasStartMs = true
	}
	if v, ok := f.Value("routeId"); ok {
		if id, ok := ParseID(v); ok {
			alert.RouteID = id.ID
		}
	}
	return alert, true
}

func flatAlert(v any) (Alert, bool) {
	f, _ := AsFragment(v)
	header, _ := stringField(f, "alertHeaderText")
	text, ok := stringField(f, "alertDescriptionText")
	if !ok {
		// A description in another encoding belongs to the translated shape.
		if f.Has("alertDescriptionText") {
			return Alert{}, false
		}
		text, ok = header, header != ""
	}
	if !ok {
		return Alert{}, false
	}
	url, _ := stringField(f, "alertUrl")
	return Alert{Header: header, Text: text, URL: url}, true
}

func translatedAlert(v any) (Alert, bool) {
	f, _ := AsFragment(v)
	text, ok := translatedField(f, "alertDescriptionText")
	if !ok {
		return Alert{}, false
	}
	header, _ := anyTextField(f, "alertHeaderText")
	url, _ := anyTextField(f, "alertUrl")
	return Alert{Header: header, Text: text, URL: url}, true
}

// anyTextField reads key in either text encoding.
func anyTextField(f Fragment, key string) (string, bool) {
	if s, ok := translatedField(f, key); ok {
		return s, true
	}
	return stringField(f, key)
}

func stringField(f Fragment, key string) (string, bool) {
	v, ok := f.Value(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func translatedField(f Fragment, key string) (string, bool) {
	v, ok := f.Path(key, "someTranslation")
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// secondsCutoff separates epoch seconds from epoch milliseconds.
// 1e11 ms is March 1973; 1e11 s is far beyond any trip date.
const secondsCutoff = 1e11

var epochStrategies = []strategy[int64]{
	{name: "millis", parse: func(v any) (int64, bool) {
		f, ok := asFloat(v)
		if !ok || math.Abs(f) < secondsCutoff {
			return 0, false
		}
		return int64(f), true
	}},
	{name: "seconds", parse: func(v any) (int64, bool) {
		f, ok := asFloat(v)
		if !ok {
			return 0, false
		}
		return int64(math.Round(f * 1000)), true
	}},
}

// EpochMillis reads an epoch timestamp and normalizes it to milliseconds.
func EpochMillis(f Fragment, key string) (int64, bool) {
	v, ok := f.Value(key)
	if !ok {
		return 0, false
	}
	ms, _, ok := firstOf(epochStrategies, v)
	return ms, ok
}

// durationTolerance is how far a reported duration may differ from end-start.
const durationTolerance = 2 * time.Second

// DurationMillis reads the duration under key as milliseconds. The engine reports
// seconds in newer versions and milliseconds in older ones; when a start/end span
// is known the unit that agrees with it is chosen, and if neither agrees the span
// itself is used.
func DurationMillis(f Fragment, key string, startMs, endMs int64, haveSpan bool) (int64, bool) {
	span := endMs - startMs
	raw, ok := f.Float(key)
	if !ok {
		if haveSpan {
			return span, true
		}
		return 0, false
	}
	if !haveSpan {
		return int64(math.Round(raw * 1000)), true
	}

	tolerance := float64(durationTolerance.Milliseconds())
	candidates := []strategy[int64]{
		{name: "seconds", parse: func(any) (int64, bool) {
			ms := raw * 1000
			return int64(math.Round(ms)), math.Abs(ms-float64(span)) <= tolerance
		}},
		{name: "millis", parse: func(any) (int64, bool) {
			return int64(math.Round(raw)), math.Abs(raw-float64(span)) <= tolerance
		}},
	}
	if ms, _, ok := firstOf(candidates, nil); ok {
		return ms, true
	}
	return span, true
}

// ServiceDate reads an 8-digit YYYYMMDD service date.
func ServiceDate(f Fragment, key string) (time.Time, bool) {
	s, ok := f.String(key)
	if !ok {
		return time.Time{}, false
	}
	return ParseServiceDate(s)
}

// ParseServiceDate parses a YYYYMMDD string into a date at midnight UTC.
func ParseServiceDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if len(s) != 8 {
		return time.Time{}, false
	}
	t, err := time.Parse("20060102", s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Pair is one {first, second} elevation sample: distance along the step, then elevation.
type Pair struct {
	First  float64
	Second float64
}

var elevationStrategies = []strategy[[]Pair]{
	{name: "pairs", parse: pairElevation},
	{name: "csv", parse: csvElevation},
}

// ElevationPairs reads a step's elevation profile, sent either as a list of
// {"first","second"} objects or as a comma-separated "d,e,d,e" string.
// A single malformed sample rejects the whole profile.
func ElevationPairs(v any) ([]Pair, bool) {
	pairs, _, ok := firstOf(elevationStrategies, v)
	return pairs, ok
}

func pairElevation(v any) ([]Pair, bool) {
	arr, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]Pair, 0, len(arr))
	for _, item := range arr {
		f, ok := AsFragment(item)
		if !ok {
			return nil, false
		}
		first, ok := f.Float("first")
		if !ok {
			return nil, false
		}
		second, ok := f.Float("second")
		if !ok {
			return nil, false
		}
		out = append(out, Pair{First: first, Second: second})
	}
	return out, true
}

func csvElevation(v any) ([]Pair, bool) {
	s, ok := v.(string)
	if !ok {
		return nil, false
	}
	if strings.TrimSpace(s) == "" {
		return []Pair{}, true
	}
	fields := strings.Split(s, ",")
	if len(fields)%2 != 0 {
		return nil, false
	}
	out := make([]Pair, 0, len(fields)/2)
	for i := 0; i < len(fields); i += 2 {
		first, ok := asFloat(fields[i])
		if !ok {
			return nil, false
		}
		second, ok := asFloat(fields[i+1])
		if !ok {
			return nil, false
		}
		out = append(out, Pair{First: first, Second: second})
	}
	return out, true
}
