package visualize

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/adalundhe/lens/core/points"
)

// ColorMode selects the color-encoding strategy.
type ColorMode string

const (
	// ColorByScore maps each point's relevance score into a gradient.
	ColorByScore ColorMode = "score"

	// ColorByField assigns categorical palette colors per distinct
	// payload value.
	ColorByField ColorMode = "field"
)

// ColorSpec describes the requested color encoding. Field is meaningful
// only for ColorByField.
type ColorSpec struct {
	Mode  ColorMode `json:"mode"`
	Field string    `json:"field,omitempty"`
}

// missingValueLabel stands in for points without the chosen payload
// field so they still share one palette slot.
const missingValueLabel = "(missing)"

// Gradient stops for score coloring, low to high.
var gradientStops = [3][3]uint8{
	{43, 108, 176}, // blue
	{246, 224, 94}, // yellow
	{229, 62, 62},  // red
}

// palette is the fixed cyclic palette for categorical coloring.
var palette = []string{
	"#4e79a7", "#f28e2b", "#e15759", "#76b7b4", "#59a14f",
	"#edc948", "#b07aa1", "#ff9da7", "#9c755f", "#bab0ac",
}

// Colors assigns one hex color per point, index-aligned with the input.
// Score mode maps each score linearly into the three-stop gradient over
// the observed score range; field mode assigns palette colors to distinct
// stringified values in first-seen order, with missing values sharing a
// sentinel slot.
func Colors(pts []points.Point, spec ColorSpec) []string {
	switch spec.Mode {
	case ColorByScore:
		return scoreColors(pts)
	case ColorByField:
		return fieldColors(pts, spec.Field)
	default:
		return fieldColors(pts, spec.Field)
	}
}

func scoreColors(pts []points.Point) []string {
	scores := make([]float64, len(pts))
	for i, p := range pts {
		scores[i] = p.ScoreValue()
	}

	lo, hi := 0.0, 1.0
	if len(scores) > 0 {
		lo, hi = floats.Min(scores), floats.Max(scores)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	out := make([]string, len(pts))
	for i, s := range scores {
		out[i] = gradientColor((s - lo) / span)
	}
	return out
}

// gradientColor interpolates t in [0,1] across the three gradient stops.
func gradientColor(t float64) string {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}

	var from, to [3]uint8
	var local float64
	if t <= 0.5 {
		from, to = gradientStops[0], gradientStops[1]
		local = t * 2
	} else {
		from, to = gradientStops[1], gradientStops[2]
		local = (t - 0.5) * 2
	}

	var rgb [3]uint8
	for c := 0; c < 3; c++ {
		rgb[c] = uint8(float64(from[c]) + (float64(to[c])-float64(from[c]))*local)
	}
	return fmt.Sprintf("#%02x%02x%02x", rgb[0], rgb[1], rgb[2])
}

func fieldColors(pts []points.Point, field string) []string {
	assigned := make(map[string]string)
	next := 0

	out := make([]string, len(pts))
	for i, p := range pts {
		value, ok := p.PayloadString(field)
		if !ok {
			value = missingValueLabel
		}
		color, seen := assigned[value]
		if !seen {
			color = palette[next%len(palette)]
			assigned[value] = color
			next++
		}
		out[i] = color
	}
	return out
}
