// Package nonlinear finds roots of a single nonlinear equation.
package nonlinear

import (
	"math"

	"github.com/san-kum/compmath/internal/expr"
	"github.com/san-kum/compmath/internal/numeric"
	"github.com/san-kum/compmath/internal/plot"
)

// Row is one secant step. A and B are the bracketing interval and do not
// move between steps.
type Row struct {
	Iter     int     `json:"iter_num"`
	X        float64 `json:"x"`
	FX       float64 `json:"fx"`
	A        float64 `json:"a"`
	FA       float64 `json:"fa"`
	B        float64 `json:"b"`
	FB       float64 `json:"fb"`
	Distance float64 `json:"distance"`
}

type Options struct {
	XLimits plot.Limits
	YLimits plot.Limits
	// NoFrames skips building a plot frame per iteration.
	NoFrames bool
}

type Result struct {
	Root      float64
	FRoot     float64
	Iters     int
	Converged bool
	Rows      []Row
	Frames    []*plot.Graphic
}

// Final returns the last plot frame, or nil when none was recorded.
func (r *Result) Final() *plot.Graphic {
	if len(r.Frames) == 0 {
		return nil
	}
	return r.Frames[len(r.Frames)-1]
}

// Secant runs the one-step secant (chord) method on [a, b]. One end of the
// interval stays fixed as the chord anchor; the other is the moving
// approximation. Hitting maxIter is reported through Converged, not as an
// error.
func Secant(f func(float64) float64, a, b, eps float64, maxIter int, opts Options) (*Result, error) {
	if err := numeric.CheckTolerance(eps, maxIter); err != nil {
		return nil, err
	}
	if !(a < b) || !numeric.IsFinite(a) || !numeric.IsFinite(b) {
		return nil, numeric.Invalid("interval", numeric.ErrInvalidInterval, "interval start %g must be below end %g", a, b)
	}

	fa, fb := f(a), f(b)
	if !numeric.IsFinite(fa) || !numeric.IsFinite(fb) {
		return nil, numeric.Invalid("fx", numeric.ErrInvalidExpression, "function is undefined at the interval ends")
	}
	if fa*fb > 0 {
		return nil, numeric.Invalid("interval", numeric.ErrNoRootInInterval, "no root in interval [%g, %g]", a, b)
	}

	var c, x float64
	if expr.SecondDerivative(f, a)*fa > 0 {
		c, x = b, a
	} else {
		c, x = a, b
	}
	fc := f(c)

	res := &Result{Rows: make([]Row, 0, 16)}
	chord := plot.LineBetween(a, fa, b, fb)

	for n := 1; ; n++ {
		fx := f(x)
		den := fx - fc
		if den == 0 {
			return nil, numeric.Fault("secant", n, numeric.ErrZeroDenominator)
		}
		x -= fx * (x - c) / den
		fx = f(x)
		if !numeric.IsFinite(x) || !numeric.IsFinite(fx) {
			return nil, numeric.Fault("secant", n, numeric.ErrDiverged)
		}

		res.Rows = append(res.Rows, Row{
			Iter:     n,
			X:        x,
			FX:       fx,
			A:        a,
			FA:       fa,
			B:        b,
			FB:       fb,
			Distance: math.Abs(a - b),
		})

		if !opts.NoFrames {
			g := plot.New(opts.XLimits, opts.YLimits)
			lim := opts.XLimits
			if lim.IsZero() {
				lim = plot.Pad(a, b, 0.25)
			}
			g.AddGraph(f, lim, plot.ColorBlue)
			g.AddGraph(chord, plot.Limits{a, b}, plot.ColorGreen)
			g.AddPoint(x, fx, plot.ColorRed)
			g.AddPoint(a, fa, plot.ColorYellow)
			g.AddPoint(b, fb, plot.ColorYellow)
			res.Frames = append(res.Frames, g)
		}

		res.Root, res.FRoot, res.Iters = x, fx, n
		if math.Abs(fx) <= eps {
			res.Converged = true
			break
		}
		if n >= maxIter {
			break
		}
	}

	return res, nil
}
