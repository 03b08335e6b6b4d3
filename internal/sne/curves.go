package sne

import (
	"math"

	"github.com/san-kum/compmath/internal/expr"
	"github.com/san-kum/compmath/internal/numeric"
	"github.com/san-kum/compmath/internal/plot"
)

const gridSize = 120

// frames draws the zero set of each equation once and adds the current
// iterate per frame. The first equation is traced as x over y, the second
// as y over x, matching the rearranged forms used by the convergence check.
func frames(funcs []*expr.Func, x0 numeric.Vector, rows []Row, opts Options) []*plot.Graphic {
	xl, yl := opts.XLimits, opts.YLimits
	if xl.IsZero() || yl.IsZero() {
		fx, fy := window(x0, rows)
		if xl.IsZero() {
			xl = fx
		}
		if yl.IsZero() {
			yl = fy
		}
	}

	c1x, c1y := traceRows(funcs[0], xl, yl)
	c2x, c2y := traceColumns(funcs[1], xl, yl)

	out := make([]*plot.Graphic, 0, len(rows))
	for _, row := range rows {
		g := plot.New(xl, yl)
		g.AddCurve(c1x, c1y, plot.ColorBlue)
		g.AddCurve(c2x, c2y, plot.ColorRed)
		g.AddPoint(row.Vector[0], row.Vector[1], plot.ColorGreen)
		out = append(out, g)
	}
	return out
}

func window(x0 numeric.Vector, rows []Row) (plot.Limits, plot.Limits) {
	minX, maxX := x0[0], x0[0]
	minY, maxY := x0[1], x0[1]
	for _, r := range rows {
		minX, maxX = math.Min(minX, r.Vector[0]), math.Max(maxX, r.Vector[0])
		minY, maxY = math.Min(minY, r.Vector[1]), math.Max(maxY, r.Vector[1])
	}
	return plot.Pad(minX, maxX, 0.2), plot.Pad(minY, maxY, 0.2)
}

// traceRows finds, for every y on the grid, the first sign change of f
// along x and interpolates the crossing. Rows without a crossing leave a
// gap in the curve.
func traceRows(f *expr.Func, xl, yl plot.Limits) ([]float64, []float64) {
	xs := make([]float64, gridSize)
	ys := make([]float64, gridSize)
	for j := 0; j < gridSize; j++ {
		y := yl[0] + (yl[1]-yl[0])*float64(j)/float64(gridSize-1)
		ys[j] = y
		xs[j] = crossing(func(x float64) float64 { return f.Call2(x, y) }, xl)
	}
	return xs, ys
}

func traceColumns(f *expr.Func, xl, yl plot.Limits) ([]float64, []float64) {
	xs := make([]float64, gridSize)
	ys := make([]float64, gridSize)
	for i := 0; i < gridSize; i++ {
		x := xl[0] + (xl[1]-xl[0])*float64(i)/float64(gridSize-1)
		xs[i] = x
		ys[i] = crossing(func(y float64) float64 { return f.Call2(x, y) }, yl)
	}
	return xs, ys
}

func crossing(g func(float64) float64, lim plot.Limits) float64 {
	step := (lim[1] - lim[0]) / float64(gridSize-1)
	prevT := lim[0]
	prev := g(prevT)
	for i := 1; i < gridSize; i++ {
		t := lim[0] + float64(i)*step
		cur := g(t)
		if prev == 0 {
			return prevT
		}
		if numeric.IsFinite(prev) && numeric.IsFinite(cur) && prev*cur < 0 {
			return prevT + (t-prevT)*prev/(prev-cur)
		}
		prevT, prev = t, cur
	}
	return math.NaN()
}
