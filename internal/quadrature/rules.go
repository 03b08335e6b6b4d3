// Package quadrature implements composite numerical integration rules.
package quadrature

import (
	"sort"

	"github.com/san-kum/compmath/internal/numeric"
	"github.com/san-kum/compmath/internal/plot"
)

// Rule integrates f over a single panel [x0, x1] and draws the panel's
// approximating shape.
type Rule interface {
	Name() string
	Title() string
	Panel(f func(float64) float64, x0, x1 float64) float64
	Draw(g *plot.Graphic, f func(float64) float64, x0, x1 float64)
}

type LeftRect struct{}

func NewLeftRect() *LeftRect { return &LeftRect{} }

func (LeftRect) Name() string  { return "lrm" }
func (LeftRect) Title() string { return "Left rectangles" }

func (LeftRect) Panel(f func(float64) float64, x0, x1 float64) float64 {
	return (x1 - x0) * f(x0)
}

func (LeftRect) Draw(g *plot.Graphic, f func(float64) float64, x0, x1 float64) {
	g.AddRect(x0, 0, x1-x0, f(x0), plot.ColorGreen)
}

type MidRect struct{}

func NewMidRect() *MidRect { return &MidRect{} }

func (MidRect) Name() string  { return "mrm" }
func (MidRect) Title() string { return "Middle rectangles" }

func (MidRect) Panel(f func(float64) float64, x0, x1 float64) float64 {
	return (x1 - x0) * f((x0+x1)/2)
}

func (MidRect) Draw(g *plot.Graphic, f func(float64) float64, x0, x1 float64) {
	g.AddRect(x0, 0, x1-x0, f((x0+x1)/2), plot.ColorGreen)
}

type RightRect struct{}

func NewRightRect() *RightRect { return &RightRect{} }

func (RightRect) Name() string  { return "rrm" }
func (RightRect) Title() string { return "Right rectangles" }

func (RightRect) Panel(f func(float64) float64, x0, x1 float64) float64 {
	return (x1 - x0) * f(x1)
}

func (RightRect) Draw(g *plot.Graphic, f func(float64) float64, x0, x1 float64) {
	g.AddRect(x0, 0, x1-x0, f(x1), plot.ColorGreen)
}

type Trapezoid struct{}

func NewTrapezoid() *Trapezoid { return &Trapezoid{} }

func (Trapezoid) Name() string  { return "tm" }
func (Trapezoid) Title() string { return "Trapezoids" }

func (Trapezoid) Panel(f func(float64) float64, x0, x1 float64) float64 {
	return (x1 - x0) / 2 * (f(x0) + f(x1))
}

func (Trapezoid) Draw(g *plot.Graphic, f func(float64) float64, x0, x1 float64) {
	g.AddPolygon(
		[]float64{x0, x0, x1, x1},
		[]float64{0, f(x0), f(x1), 0},
		plot.ColorGreen,
	)
}

// Simpson fits a parabola through the ends and the midpoint of each panel.
type Simpson struct{}

func NewSimpson() *Simpson { return &Simpson{} }

func (Simpson) Name() string  { return "sm1" }
func (Simpson) Title() string { return "Simpson (parabolas)" }

func (Simpson) Panel(f func(float64) float64, x0, x1 float64) float64 {
	return (x1 - x0) / 6 * (f(x0) + 4*f((x0+x1)/2) + f(x1))
}

func (Simpson) Draw(g *plot.Graphic, f func(float64) float64, x0, x1 float64) {
	drawInterpolant(g, f, []float64{x0, (x0 + x1) / 2, x1})
}

// Simpson38 fits a cubic through four equally spaced nodes of each panel.
type Simpson38 struct{}

func NewSimpson38() *Simpson38 { return &Simpson38{} }

func (Simpson38) Name() string  { return "sm2" }
func (Simpson38) Title() string { return "Simpson 3/8" }

func (Simpson38) Panel(f func(float64) float64, x0, x1 float64) float64 {
	h := x1 - x0
	return h / 8 * (f(x0) + 3*f(x0+h/3) + 3*f(x0+2*h/3) + f(x1))
}

func (Simpson38) Draw(g *plot.Graphic, f func(float64) float64, x0, x1 float64) {
	h := x1 - x0
	drawInterpolant(g, f, []float64{x0, x0 + h/3, x0 + 2*h/3, x1})
}

const shapeSamples = 16

// drawInterpolant shades the area under the Lagrange polynomial through
// f at nodes.
func drawInterpolant(g *plot.Graphic, f func(float64) float64, nodes []float64) {
	vals := make([]float64, len(nodes))
	for i, x := range nodes {
		vals[i] = f(x)
	}
	x0, x1 := nodes[0], nodes[len(nodes)-1]

	xs := make([]float64, 0, shapeSamples+2)
	ys := make([]float64, 0, shapeSamples+2)
	for i := 0; i < shapeSamples; i++ {
		x := x0 + (x1-x0)*float64(i)/float64(shapeSamples-1)
		xs = append(xs, x)
		ys = append(ys, lagrange(nodes, vals, x))
	}
	xs = append(xs, x1, x0)
	ys = append(ys, 0, 0)
	g.AddPolygon(xs, ys, plot.ColorGreen)
}

func lagrange(nodes, vals []float64, x float64) float64 {
	var sum float64
	for i := range nodes {
		term := vals[i]
		for j := range nodes {
			if i != j {
				term *= (x - nodes[j]) / (nodes[i] - nodes[j])
			}
		}
		sum += term
	}
	return sum
}

var rules = map[string]func() Rule{
	"lrm": func() Rule { return NewLeftRect() },
	"mrm": func() Rule { return NewMidRect() },
	"rrm": func() Rule { return NewRightRect() },
	"sm1": func() Rule { return NewSimpson() },
	"sm2": func() Rule { return NewSimpson38() },
	"tm":  func() Rule { return NewTrapezoid() },
}

func Lookup(name string) (Rule, error) {
	fn, ok := rules[name]
	if !ok {
		return nil, numeric.Invalid("method", numeric.ErrUnknownMethod, "unknown integration method %q", name)
	}
	return fn(), nil
}

func Names() []string {
	names := make([]string, 0, len(rules))
	for name := range rules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
