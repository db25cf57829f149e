// Package elevation builds the elevation profile shown for walking and biking legs:
// a compressed point series for plotting, summary marks and the steepest grades.
package elevation

import (
	"math"
	"strconv"
	"strings"

	"github.com/ottplanner/ottplanner/pkg/units"
)

const (
	// DefaultMaxPoints is the target length of a compressed point series.
	DefaultMaxPoints = 50

	// compressionSlack lets a series run this far over the target before it is compressed.
	compressionSlack = 1.15
)

// Sample is one (distance, elevation) pair reported along a step.
type Sample struct {
	Distance  float64
	Elevation float64
}

// Step is the elevation-relevant part of one turn-by-turn step.
// Sample distances restart at zero for every step.
type Step struct {
	Distance   float64
	DistanceOK bool
	Samples    []Sample
}

// Grade holds the steepest climb and descent as percentages rounded to 1 decimal.
type Grade struct {
	Up   float64 `json:"up"`
	Down float64 `json:"down"`
}

// Profile is the analyzed elevation data for one leg.
type Profile struct {
	Points           string    `json:"points"`
	CompressedPoints []float64 `json:"compressedPoints"`
	TotalDistance    *float64  `json:"totalDistance"`
	Start            string    `json:"start"`
	End              string    `json:"end"`
	High             string    `json:"high"`
	Low              string    `json:"low"`
	Rise             string    `json:"rise"`
	Fall             string    `json:"fall"`
	MaxGrade         Grade     `json:"maxGrade"`
}

// Marks are the summary values of an uncompressed elevation series.
type Marks struct {
	Start float64
	End   float64
	High  float64
	Low   float64
	Rise  float64
	Fall  float64
}

// Analyze builds the profile for a leg's steps. It returns nil when the steps carry no samples.
func Analyze(steps []Step) *Profile {
	samples := Flatten(steps)
	if len(samples) == 0 {
		return nil
	}

	elevations := make([]float64, len(samples))
	for i, s := range samples {
		elevations[i] = s.Elevation
	}

	compressed := Compress(elevations, DefaultMaxPoints)
	marks := ComputeMarks(elevations)

	return &Profile{
		Points:           FormatPoints(compressed),
		CompressedPoints: compressed,
		TotalDistance:    TotalDistance(steps),
		Start:            formatMark(marks.Start),
		End:              formatMark(marks.End),
		High:             formatMark(marks.High),
		Low:              formatMark(marks.Low),
		Rise:             formatMark(marks.Rise),
		Fall:             formatMark(marks.Fall),
		MaxGrade:         MaxGrade(samples),
	}
}

// TotalDistance sums the steps' own distance fields. It returns nil if any step lacks one.
func TotalDistance(steps []Step) *float64 {
	total := 0.0
	for _, s := range steps {
		if !s.DistanceOK {
			return nil
		}
		total += s.Distance
	}
	return &total
}

// Flatten concatenates the samples of all steps, shifting each step's distances
// so they continue from where the previous step ended. The last sample of a step
// and the first of the next share a distance, so an elevation change between
// them has no run and does not count towards the grade.
func Flatten(steps []Step) []Sample {
	var out []Sample
	offset := 0.0
	for _, step := range steps {
		if len(step.Samples) == 0 {
			if step.DistanceOK {
				offset += step.Distance
			}
			continue
		}
		for _, s := range step.Samples {
			out = append(out, Sample{Distance: offset + s.Distance, Elevation: s.Elevation})
		}
		length := step.Samples[len(step.Samples)-1].Distance
		if step.DistanceOK && step.Distance > length {
			length = step.Distance
		}
		offset += length
	}
	return out
}

// Compress averages contiguous chunks of points when the series is longer than
// maxLen by more than the slack factor. A trailing chunk that does not fill a
// whole slice is dropped.
func Compress(points []float64, maxLen int) []float64 {
	if maxLen <= 0 || float64(len(points)) <= float64(maxLen)*compressionSlack {
		return points
	}

	size := int(math.Round(float64(len(points)) / float64(maxLen)))
	if size < 2 {
		size = 2
	}

	out := make([]float64, 0, len(points)/size)
	for i := 0; i+size <= len(points); i += size {
		sum := 0.0
		for _, p := range points[i : i+size] {
			sum += p
		}
		out = append(out, sum/float64(size))
	}
	return out
}

// FormatPoints renders points as a comma-joined list with 2 decimals.
func FormatPoints(points []float64) string {
	parts := make([]string, len(points))
	for i, p := range points {
		parts[i] = strconv.FormatFloat(p, 'f', 2, 64)
	}
	return strings.Join(parts, ",")
}

// ComputeMarks finds start, end, high, low and the cumulative rise and fall of a series.
// Fall is reported as a positive magnitude.
func ComputeMarks(points []float64) Marks {
	if len(points) == 0 {
		return Marks{}
	}

	m := Marks{
		Start: points[0],
		End:   points[len(points)-1],
		High:  points[0],
		Low:   points[0],
	}
	last := points[0]
	for _, p := range points {
		m.High = math.Max(m.High, p)
		m.Low = math.Min(m.Low, p)
		switch {
		case p > last:
			m.Rise += p - last
		case p < last:
			m.Fall += last - p
		}
		last = p
	}
	return m
}

// MaxGrade scans the samples once and reports the steepest run in each direction.
// A run spans from the sample where a climb or descent starts to the last sample
// that moved in that direction. Flat samples never start or end a run.
func MaxGrade(samples []Sample) Grade {
	var up, down float64
	if len(samples) < 2 {
		return Grade{}
	}

	record := func(from, to Sample, dir int) {
		run := math.Abs(to.Distance - from.Distance)
		if run == 0 {
			return
		}
		slope := math.Abs(to.Elevation-from.Elevation) / run
		if dir > 0 {
			up = math.Max(up, slope)
		} else {
			down = math.Max(down, slope)
		}
	}

	dir := 0
	var anchor, extreme Sample
	for i := 1; i < len(samples); i++ {
		delta := samples[i].Elevation - samples[i-1].Elevation
		if delta == 0 {
			continue
		}
		next := 1
		if delta < 0 {
			next = -1
		}
		if next != dir {
			if dir != 0 {
				record(anchor, extreme, dir)
			}
			anchor = samples[i-1]
			dir = next
		}
		extreme = samples[i]
	}
	if dir != 0 {
		record(anchor, extreme, dir)
	}

	return Grade{
		Up:   units.Round(up*100, 1),
		Down: units.Round(down*100, 1),
	}
}

func formatMark(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
