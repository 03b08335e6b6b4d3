// Package export writes plot geometry to SVG.
package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/compmath/internal/plot"
	"github.com/san-kum/compmath/internal/viz"
)

var palette = map[string]string{
	plot.ColorBlue:   "#1f77b4",
	plot.ColorRed:    "#d62728",
	plot.ColorGreen:  "#2ca02c",
	plot.ColorYellow: "#e6b800",
	plot.ColorGray:   "#7f7f7f",
}

func colorOf(name string) string {
	if c, ok := palette[name]; ok {
		return c
	}
	return "#333333"
}

type frame struct {
	minX, maxX, minY, maxY float64
	width, height          float64
}

func (f frame) x(v float64) float64 { return (v - f.minX) / (f.maxX - f.minX) * f.width }
func (f frame) y(v float64) float64 { return f.height - (v-f.minY)/(f.maxY-f.minY)*f.height }

func (f frame) inside(x, y float64) bool {
	dy := f.maxY - f.minY
	return !math.IsNaN(x) && !math.IsNaN(y) && !math.IsInf(x, 0) && !math.IsInf(y, 0) &&
		y >= f.minY-dy && y <= f.maxY+dy
}

// path builds path data for a polyline. A non-finite or far out of range
// sample starts a new subpath, so poles show as gaps.
func (f frame) path(xs, ys []float64, closed bool) string {
	n := min(len(xs), len(ys))
	var sb strings.Builder
	pen := false
	for i := 0; i < n; i++ {
		if !f.inside(xs[i], ys[i]) {
			pen = false
			continue
		}
		cmd := "L"
		if !pen {
			cmd = "M"
			pen = true
		}
		fmt.Fprintf(&sb, "%s%.2f,%.2f ", cmd, f.x(xs[i]), f.y(ys[i]))
	}
	if closed && sb.Len() > 0 {
		sb.WriteString("Z")
	}
	return strings.TrimSpace(sb.String())
}

// GraphicToSVG renders g as a standalone SVG document of the given pixel
// size.
func GraphicToSVG(g *plot.Graphic, width, height int) string {
	if g == nil {
		return ""
	}

	minX, maxX, minY, maxY := g.Bounds()
	f := frame{minX: minX, maxX: maxX, minY: minY, maxY: maxY, width: float64(width), height: float64(height)}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#ffffff"/>
`, width, height, width, height)

	sb.WriteString(`<g stroke="#bbbbbb" stroke-width="1">` + "\n")
	if minY < 0 && maxY > 0 {
		fmt.Fprintf(&sb, `<line x1="0" y1="%.2f" x2="%d" y2="%.2f"/>`+"\n", f.y(0), width, f.y(0))
	}
	if minX < 0 && maxX > 0 {
		fmt.Fprintf(&sb, `<line x1="%.2f" y1="0" x2="%.2f" y2="%d"/>`+"\n", f.x(0), f.x(0), height)
	}
	sb.WriteString("</g>\n")

	for _, it := range g.Items {
		color := colorOf(it.Color)
		switch it.Kind {
		case plot.KindGraph:
			if d := f.path(it.XData, it.YData, false); d != "" {
				fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="%s"/>`+"\n", color, d)
			}
		case plot.KindPolygon:
			if d := f.path(it.XData, it.YData, true); d != "" {
				fmt.Fprintf(&sb, `<path fill="%s" fill-opacity="0.3" stroke="%s" d="%s"/>`+"\n", color, color, d)
			}
		case plot.KindRect:
			x0, x1 := f.x(it.X), f.x(it.X+it.Width)
			y0, y1 := f.y(it.Y+it.Height), f.y(it.Y)
			fmt.Fprintf(&sb, `<rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s" fill-opacity="0.3" stroke="%s"/>`+"\n",
				math.Min(x0, x1), math.Min(y0, y1), math.Abs(x1-x0), math.Abs(y1-y0), color, color)
		case plot.KindPoint:
			if f.inside(it.X, it.Y) {
				fmt.Fprintf(&sb, `<circle cx="%.2f" cy="%.2f" r="4" fill="%s"/>`+"\n", f.x(it.X), f.y(it.Y), color)
			}
		}
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}

// CanvasToSVG converts a Braille canvas to SVG, one dot per lit pixel.
func CanvasToSVG(canvas *viz.Canvas, scale float64, fill string) string {
	if canvas == nil {
		return ""
	}

	width := float64(canvas.Width) * scale * 2
	height := float64(canvas.Height) * scale * 4

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g fill="%s">
`, width, height, width, height, fill)

	dotRadius := scale * 0.4
	for y := 0; y < canvas.Height*4; y++ {
		for x := 0; x < canvas.Width*2; x++ {
			if !canvas.IsSet(x, y) {
				continue
			}
			cx := float64(x)*scale + scale/2
			cy := float64(y)*scale + scale/2
			fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.1f"/>`+"\n", cx, cy, dotRadius)
		}
	}

	sb.WriteString("</g>\n</svg>\n")
	return sb.String()
}
