package visualize

import (
	"gonum.org/v1/gonum/floats"
)

// Rect is the target canvas for normalized coordinates.
type Rect struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NormalizeTo min-max scales both axes independently into the canvas
// rectangle. This is a rendering convenience on top of the reduction
// output, not part of the reduction contract; index alignment with the
// input is preserved. A degenerate axis (max equals min) maps to zero
// rather than dividing by zero.
func NormalizeTo(coords []Coordinate, canvas Rect) []Coordinate {
	if len(coords) == 0 {
		return nil
	}

	xs := make([]float64, len(coords))
	ys := make([]float64, len(coords))
	for i, c := range coords {
		xs[i] = c.X
		ys[i] = c.Y
	}

	minX, maxX := floats.Min(xs), floats.Max(xs)
	minY, maxY := floats.Min(ys), floats.Max(ys)

	spanX := maxX - minX
	if spanX == 0 {
		spanX = 1
	}
	spanY := maxY - minY
	if spanY == 0 {
		spanY = 1
	}

	out := make([]Coordinate, len(coords))
	for i, c := range coords {
		out[i] = Coordinate{
			X: (c.X - minX) / spanX * canvas.Width,
			Y: (c.Y - minY) / spanY * canvas.Height,
		}
	}
	return out
}
