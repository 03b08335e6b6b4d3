package compute

import (
	"github.com/san-kum/compmath/internal/nonlinear"
	"github.com/san-kum/compmath/internal/numeric"
	"github.com/san-kum/compmath/internal/plot"
	"github.com/san-kum/compmath/internal/quadrature"
	"github.com/san-kum/compmath/internal/slat"
	"github.com/san-kum/compmath/internal/sne"
)

type SecantRequest struct {
	Fx         string      `json:"fx"`
	A          float64     `json:"a"`
	B          float64     `json:"b"`
	Eps        float64     `json:"eps"`
	ItersLimit int         `json:"iters_limit"`
	XLimits    plot.Limits `json:"x_limits"`
	YLimits    plot.Limits `json:"y_limits"`
}

type SecantResponse struct {
	Result    float64            `json:"result"`
	Iters     int                `json:"iters"`
	Converged bool               `json:"converged"`
	Table     []nonlinear.Row    `json:"table"`
	Graphics  []*plot.Graphic    `json:"graphics"`
	Metrics   map[string]float64 `json:"metrics,omitempty"`
}

type NewtonRequest struct {
	Equations    []string       `json:"equations"`
	InitialGuess numeric.Vector `json:"initial_guess"`
	Eps          float64        `json:"eps"`
	ItersLimit   int            `json:"iters_limit"`
	XLimits      plot.Limits    `json:"x_limits"`
	YLimits      plot.Limits    `json:"y_limits"`
}

type NewtonResponse struct {
	Result    numeric.Vector     `json:"result"`
	Iters     int                `json:"iters"`
	Converged bool               `json:"converged"`
	Table     []sne.Row          `json:"table"`
	Log       []string           `json:"log"`
	Graphics  []*plot.Graphic    `json:"graphics"`
	Metrics   map[string]float64 `json:"metrics,omitempty"`
}

// IntegralRequest selects the rule through Method, which travels in the
// URL path rather than the body.
type IntegralRequest struct {
	Method    string      `json:"-"`
	A         float64     `json:"a"`
	B         float64     `json:"b"`
	Intervals int         `json:"intervals"`
	Fx        string      `json:"fx"`
	XLimits   plot.Limits `json:"x_limits"`
	YLimits   plot.Limits `json:"y_limits"`
}

type IntegralResponse struct {
	GraphicItems  []plot.Item      `json:"graphic_items"`
	XLimits       plot.Limits      `json:"x_limits"`
	YLimits       plot.Limits      `json:"y_limits"`
	Table         []quadrature.Row `json:"table"`
	Result        float64          `json:"result"`
	Reference     float64          `json:"reference_result"`
	AbsDelta      float64          `json:"abs_delta"`
	RelativeDelta float64          `json:"relative_delta"`
}

func (r *IntegralResponse) Graphic() *plot.Graphic {
	return &plot.Graphic{XLimits: r.XLimits, YLimits: r.YLimits, Items: r.GraphicItems}
}

type PropertiesRequest struct {
	A  float64 `json:"a"`
	B  float64 `json:"b"`
	Fx string  `json:"fx"`
}

type LinearRequest struct {
	Method     string      `json:"-"`
	A          [][]float64 `json:"a"`
	B          []float64   `json:"b"`
	Eps        float64     `json:"eps"`
	ItersLimit int         `json:"iters_limit"`
	X0         []float64   `json:"x0"`
}

type LinearResponse struct {
	Result    numeric.Vector     `json:"result"`
	Iters     int                `json:"iters"`
	Converged bool               `json:"converged"`
	Status    string             `json:"status"`
	Residual  float64            `json:"residual"`
	Table     []slat.Row         `json:"table"`
	Log       []string           `json:"log"`
	Metrics   map[string]float64 `json:"metrics,omitempty"`
}
