package viz

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/compmath/internal/plot"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = 0x2800

type Canvas struct {
	Width, Height int
	Grid          [][]rune
	colors        [][]lipgloss.Color
	pen           lipgloss.Color
}

func NewCanvas(w, h int) *Canvas {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
		colors: make([][]lipgloss.Color, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		c.colors[i] = make([]lipgloss.Color, w)
	}
	c.Clear()
	return c
}

// SetColor selects the color of subsequently drawn pixels. A cell takes
// the color of the last pixel set in it.
func (c *Canvas) SetColor(color lipgloss.Color) { c.pen = color }

// Set lights a pixel at (x, y) in sub-pixel coordinates.
// The canvas size in sub-pixels is (Width*2) x (Height*4).
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
	c.colors[row][col] = c.pen
}

// IsSet reports whether the pixel at (x, y) is lit.
func (c *Canvas) IsSet(x, y int) bool {
	if x < 0 || y < 0 || x/2 >= c.Width || y/4 >= c.Height {
		return false
	}
	return c.Grid[y/4][x/2]&rune(pixelMap[y%4][x%2]) != 0
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
			c.colors[i][j] = ""
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// String returns the raw Braille grid without colors.
func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

// Render returns the grid with each cell styled in its pen color.
func (c *Canvas) Render() string {
	var b strings.Builder
	for i, row := range c.Grid {
		for j, r := range row {
			if color := c.colors[i][j]; color != "" && r != blank {
				b.WriteString(lipgloss.NewStyle().Foreground(color).Render(string(r)))
				continue
			}
			b.WriteRune(r)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// viewport maps plot coordinates onto canvas sub-pixels.
type viewport struct {
	minX, maxX, minY, maxY float64
	w, h                   int
}

func (v viewport) px(x float64) int {
	return int(math.Round((x - v.minX) / (v.maxX - v.minX) * float64(v.w-1)))
}

func (v viewport) py(y float64) int {
	return int(math.Round((v.maxY - y) / (v.maxY - v.minY) * float64(v.h-1)))
}

func (v viewport) visible(x, y float64) bool {
	dx, dy := v.maxX-v.minX, v.maxY-v.minY
	return x >= v.minX-dx && x <= v.maxX+dx && y >= v.minY-dy && y <= v.maxY+dy
}

// DrawGraphic draws every item of g scaled to the canvas, with the x axis
// where it falls inside the window.
func (c *Canvas) DrawGraphic(g *plot.Graphic, theme Theme) {
	minX, maxX, minY, maxY := g.Bounds()
	v := viewport{minX: minX, maxX: maxX, minY: minY, maxY: maxY, w: c.Width * 2, h: c.Height * 4}

	if minY < 0 && maxY > 0 {
		c.SetColor(theme.Muted)
		y := v.py(0)
		c.DrawLine(0, y, v.w-1, y)
	}

	for _, it := range g.Items {
		c.SetColor(theme.PlotColor(it.Color))
		switch it.Kind {
		case plot.KindGraph:
			c.polyline(v, it.XData, it.YData, false)
		case plot.KindPolygon:
			c.polyline(v, it.XData, it.YData, true)
		case plot.KindRect:
			xs := []float64{it.X, it.X + it.Width, it.X + it.Width, it.X}
			ys := []float64{it.Y, it.Y, it.Y + it.Height, it.Y + it.Height}
			c.polyline(v, xs, ys, true)
		case plot.KindPoint:
			x, y := v.px(it.X), v.py(it.Y)
			for dx := -1; dx <= 1; dx++ {
				for dy := -1; dy <= 1; dy++ {
					c.Set(x+dx, y+dy)
				}
			}
		}
	}
}

func (c *Canvas) polyline(v viewport, xs, ys []float64, closed bool) {
	n := len(xs)
	if len(ys) < n {
		n = len(ys)
	}
	segment := func(i, j int) {
		if !v.visible(xs[i], ys[i]) || !v.visible(xs[j], ys[j]) {
			return
		}
		c.DrawLine(v.px(xs[i]), v.py(ys[i]), v.px(xs[j]), v.py(ys[j]))
	}
	for i := 1; i < n; i++ {
		segment(i-1, i)
	}
	if closed && n > 2 {
		segment(n-1, 0)
	}
}

// RenderGraphic draws g on a fresh w×h cell canvas.
func RenderGraphic(g *plot.Graphic, w, h int, theme Theme) string {
	c := NewCanvas(w, h)
	c.DrawGraphic(g, theme)
	return c.Render()
}
