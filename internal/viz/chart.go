package viz

import (
	"math"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/compmath/internal/quadrature"
)

// Chart plots values as an ASCII line chart. Non-finite values are
// dropped; fewer than two points render as an empty string.
func Chart(values []float64, width, height int, caption string) string {
	data := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			data = append(data, v)
		}
	}
	if len(data) < 2 {
		return ""
	}
	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Precision(2),
		asciigraph.Caption(caption),
	)
}

// Log10 maps a positive trace onto decades. Zero entries become one decade
// below the smallest positive value so the curve stays continuous.
func Log10(values []float64) []float64 {
	floor := math.Inf(1)
	for _, v := range values {
		if v > 0 && !math.IsInf(v, 0) {
			floor = math.Min(floor, v)
		}
	}
	if math.IsInf(floor, 1) {
		floor = 1
	}

	out := make([]float64, len(values))
	for i, v := range values {
		switch {
		case math.IsNaN(v) || math.IsInf(v, 0):
			out[i] = math.NaN()
		case v <= 0:
			out[i] = math.Log10(floor) - 1
		default:
			out[i] = math.Log10(v)
		}
	}
	return out
}

// DeltaChart plots the per-iteration step sizes on a log scale.
func DeltaChart(deltas []float64, width, height int) string {
	return Chart(Log10(deltas), width, height, "log10 |delta| per iteration")
}

// SweepChart plots the absolute error of a subdivision sweep on a log
// scale, one point per subdivision count.
func SweepChart(points []quadrature.SweepPoint, width, height int) string {
	errs := make([]float64, len(points))
	for i, p := range points {
		errs[i] = p.AbsDelta
	}
	return Chart(Log10(errs), width, height, "log10 |error| per doubling")
}
