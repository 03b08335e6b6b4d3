// Package plot describes chart geometry produced by the solvers.
//
// A [Graphic] is a flat list of items (sampled graphs, rectangles,
// polygons and points) plus optional axis limits. It carries no
// rendering logic: the viz and export packages draw it.
package plot

import (
	"encoding/json"
	"math"
)

type Kind string

const (
	KindGraph   Kind = "graph"
	KindRect    Kind = "rect"
	KindPolygon Kind = "polygon"
	KindPoint   Kind = "point"
)

// Resolution is the number of samples taken when a function is graphed.
const Resolution = 200

const (
	ColorBlue   = "blue"
	ColorRed    = "red"
	ColorGreen  = "green"
	ColorYellow = "yellow"
	ColorGray   = "gray"
)

// Samples is a coordinate array whose NaN and Inf entries travel as JSON
// null. Gaps in a graph (poles, undefined points) survive the wire.
type Samples []float64

func (s Samples) MarshalJSON() ([]byte, error) {
	out := make([]*float64, len(s))
	for i := range s {
		if math.IsNaN(s[i]) || math.IsInf(s[i], 0) {
			continue
		}
		v := s[i]
		out[i] = &v
	}
	return json.Marshal(out)
}

func (s *Samples) UnmarshalJSON(data []byte) error {
	var in []*float64
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	out := make(Samples, len(in))
	for i, v := range in {
		if v == nil {
			out[i] = math.NaN()
			continue
		}
		out[i] = *v
	}
	*s = out
	return nil
}

type Item struct {
	Kind   Kind    `json:"type"`
	XData  Samples `json:"x_data,omitempty"`
	YData  Samples `json:"y_data,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
	Color  string  `json:"color,omitempty"`
}

// Limits is an axis range. The zero value means "fit to data".
type Limits [2]float64

func (l Limits) IsZero() bool { return l[0] == 0 && l[1] == 0 }

type Graphic struct {
	XLimits Limits `json:"x_limits"`
	YLimits Limits `json:"y_limits"`
	Items   []Item `json:"graphic_items"`
}

func New(xLimits, yLimits Limits) *Graphic {
	return &Graphic{XLimits: xLimits, YLimits: yLimits, Items: make([]Item, 0)}
}

// AddGraph samples f over lim (or the graphic's x limits when lim is zero).
func (g *Graphic) AddGraph(f func(float64) float64, lim Limits, color string) {
	if lim.IsZero() {
		lim = g.XLimits
	}
	xs, ys := Sample(f, lim[0], lim[1], Resolution)
	g.AddCurve(xs, ys, color)
}

func (g *Graphic) AddCurve(xs, ys []float64, color string) {
	g.Items = append(g.Items, Item{Kind: KindGraph, XData: xs, YData: ys, Color: color})
}

func (g *Graphic) AddPoint(x, y float64, color string) {
	g.Items = append(g.Items, Item{Kind: KindPoint, X: x, Y: y, Color: color})
}

// AddRect adds an axis-aligned rectangle anchored at its lower-left corner.
// A negative height is normalized so that Y is always the lower edge.
func (g *Graphic) AddRect(x, y, width, height float64, color string) {
	if height < 0 {
		y += height
		height = -height
	}
	g.Items = append(g.Items, Item{Kind: KindRect, X: x, Y: y, Width: width, Height: height, Color: color})
}

func (g *Graphic) AddPolygon(xs, ys []float64, color string) {
	g.Items = append(g.Items, Item{Kind: KindPolygon, XData: xs, YData: ys, Color: color})
}

// Bounds returns the drawing window: the explicit limits where set,
// otherwise the extent of the finite data.
func (g *Graphic) Bounds() (minX, maxX, minY, maxY float64) {
	minX, maxX = math.Inf(1), math.Inf(-1)
	minY, maxY = math.Inf(1), math.Inf(-1)
	grow := func(x, y float64) {
		if !math.IsNaN(x) && !math.IsInf(x, 0) {
			minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		}
		if !math.IsNaN(y) && !math.IsInf(y, 0) {
			minY, maxY = math.Min(minY, y), math.Max(maxY, y)
		}
	}

	for _, it := range g.Items {
		switch it.Kind {
		case KindGraph, KindPolygon:
			for i := range it.XData {
				if i < len(it.YData) {
					grow(it.XData[i], it.YData[i])
				}
			}
		case KindRect:
			grow(it.X, it.Y)
			grow(it.X+it.Width, it.Y+it.Height)
		case KindPoint:
			grow(it.X, it.Y)
		}
	}

	if !g.XLimits.IsZero() {
		minX, maxX = g.XLimits[0], g.XLimits[1]
	}
	if !g.YLimits.IsZero() {
		minY, maxY = g.YLimits[0], g.YLimits[1]
	}
	if math.IsInf(minX, 0) || math.IsInf(maxX, 0) {
		minX, maxX = 0, 1
	}
	if math.IsInf(minY, 0) || math.IsInf(maxY, 0) {
		minY, maxY = 0, 1
	}
	if maxX == minX {
		maxX = minX + 1
	}
	if maxY == minY {
		maxY = minY + 1
	}
	return minX, maxX, minY, maxY
}

// Sample evaluates f at n evenly spaced points of [a, b].
func Sample(f func(float64) float64, a, b float64, n int) (xs, ys []float64) {
	if n < 2 {
		n = 2
	}
	xs = make([]float64, n)
	ys = make([]float64, n)
	step := (b - a) / float64(n-1)
	for i := 0; i < n; i++ {
		x := a + float64(i)*step
		xs[i] = x
		ys[i] = f(x)
	}
	return xs, ys
}

// LineBetween returns the straight line through two points.
func LineBetween(x1, y1, x2, y2 float64) func(float64) float64 {
	slope := (y2 - y1) / (x2 - x1)
	return func(x float64) float64 {
		return y1 + slope*(x-x1)
	}
}

// Pad widens an interval by a fraction of its length on both sides.
func Pad(a, b, frac float64) Limits {
	d := (b - a) * frac
	if d == 0 {
		d = 1
	}
	return Limits{a - d, b + d}
}
