package quadrature

import (
	"math"

	"gonum.org/v1/gonum/integrate/quad"

	"github.com/san-kum/compmath/internal/expr"
	"github.com/san-kum/compmath/internal/numeric"
	"github.com/san-kum/compmath/internal/plot"
)

type Row struct {
	Index int     `json:"index"`
	X0    float64 `json:"x0"`
	X1    float64 `json:"x1"`
	Value float64 `json:"value"`
}

type Options struct {
	XLimits  plot.Limits
	YLimits  plot.Limits
	NoFrames bool
}

type Result struct {
	Method    string
	Value     float64
	Reference float64
	AbsDelta  float64
	RelDelta  float64
	Rows      []Row
	Graphic   *plot.Graphic
}

// Reference panels and Gauss–Legendre nodes per panel.
const (
	refPanels = 16
	refNodes  = 32
)

// Reference approximates the integral of f on [a, b] with composite
// Gauss–Legendre quadrature.
func Reference(f func(float64) float64, a, b float64) float64 {
	h := (b - a) / refPanels
	var sum float64
	for i := 0; i < refPanels; i++ {
		x0 := a + float64(i)*h
		sum += quad.Fixed(f, x0, x0+h, refNodes, quad.Legendre{}, 0)
	}
	return sum
}

func validate(a, b float64, n int) error {
	if !(a < b) || !numeric.IsFinite(a) || !numeric.IsFinite(b) {
		return numeric.Invalid("interval", numeric.ErrInvalidInterval, "interval start %g must be below end %g", a, b)
	}
	return numeric.CheckIntervals(n)
}

// Integrate applies rule on n equal panels of [a, b] and compares the sum
// with the reference integral.
func Integrate(rule Rule, f func(float64) float64, a, b float64, n int, opts Options) (*Result, error) {
	if err := validate(a, b, n); err != nil {
		return nil, err
	}
	return integrate(rule, f, a, b, n, Reference(f, a, b), opts)
}

func integrate(rule Rule, f func(float64) float64, a, b float64, n int, ref float64, opts Options) (*Result, error) {
	res := &Result{Method: rule.Name(), Reference: ref, Rows: make([]Row, n)}

	var g *plot.Graphic
	if !opts.NoFrames {
		g = plot.New(opts.XLimits, opts.YLimits)
		lim := opts.XLimits
		if lim.IsZero() {
			lim = plot.Pad(a, b, 0.1)
		}
		g.AddGraph(f, lim, plot.ColorBlue)
	}

	h := (b - a) / float64(n)
	for i := 0; i < n; i++ {
		x0 := a + float64(i)*h
		x1 := x0 + h
		if i == n-1 {
			x1 = b
		}
		v := rule.Panel(f, x0, x1)
		res.Rows[i] = Row{Index: i + 1, X0: x0, X1: x1, Value: v}
		res.Value += v
		if g != nil {
			rule.Draw(g, f, x0, x1)
		}
	}

	if !numeric.IsFinite(res.Value) || !numeric.IsFinite(ref) {
		return nil, numeric.Fault(rule.Name(), 0, numeric.ErrDiverged)
	}

	res.AbsDelta = math.Abs(res.Value - ref)
	if ref == 0 {
		res.RelDelta = res.AbsDelta
	} else {
		res.RelDelta = res.AbsDelta / math.Abs(ref)
	}
	res.Graphic = g
	return res, nil
}

type Properties struct {
	Reference   float64 `json:"reference_result"`
	ArcLength   float64 `json:"arc_length"`
	Volume      float64 `json:"volume"`
	SurfaceArea float64 `json:"surface_area"`
}

// CurveProperties computes the integral of f and the geometry of its graph
// on [a, b]: arc length, and volume and surface area of the solid of
// revolution about the x axis.
func CurveProperties(f func(float64) float64, a, b float64) (*Properties, error) {
	if err := validate(a, b, 1); err != nil {
		return nil, err
	}

	slope := func(x float64) float64 {
		d := expr.Derivative(f, x)
		return math.Sqrt(1 + d*d)
	}

	p := &Properties{
		Reference: Reference(f, a, b),
		ArcLength: Reference(slope, a, b),
		Volume: math.Pi * Reference(func(x float64) float64 {
			y := f(x)
			return y * y
		}, a, b),
		SurfaceArea: 2 * math.Pi * Reference(func(x float64) float64 {
			return math.Abs(f(x)) * slope(x)
		}, a, b),
	}

	for _, v := range []float64{p.Reference, p.ArcLength, p.Volume, p.SurfaceArea} {
		if !numeric.IsFinite(v) {
			return nil, numeric.Fault("properties", 0, numeric.ErrDiverged)
		}
	}
	return p, nil
}
