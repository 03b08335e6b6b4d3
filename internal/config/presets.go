package config

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/compmath/internal/numeric"
)

const (
	KindRoot     = "root"
	KindSystem   = "system"
	KindIntegral = "integral"
	KindLinear   = "linear"
)

// Problem is a saved problem definition. Only the fields relevant to Kind
// are used; zero values keep the model defaults.
type Problem struct {
	Kind       string      `yaml:"kind"`
	Method     string      `yaml:"method,omitempty"`
	Fx         string      `yaml:"fx,omitempty"`
	Equations  []string    `yaml:"equations,omitempty"`
	Interval   []float64   `yaml:"interval,omitempty"`
	Guess      []float64   `yaml:"guess,omitempty"`
	Intervals  int         `yaml:"intervals,omitempty"`
	Matrix     [][]float64 `yaml:"matrix,omitempty"`
	Eps        float64     `yaml:"eps,omitempty"`
	ItersLimit int         `yaml:"iters_limit,omitempty"`
}

func (p *Problem) Validate() error {
	switch p.Kind {
	case KindRoot, KindSystem, KindIntegral, KindLinear:
	default:
		return fmt.Errorf("unknown problem kind %q", p.Kind)
	}
	if len(p.Interval) != 0 && len(p.Interval) != 2 {
		return fmt.Errorf("interval needs 2 values, got %d", len(p.Interval))
	}
	if p.Kind == KindSystem && len(p.Guess) != 0 && len(p.Guess) != 2 {
		return fmt.Errorf("guess needs 2 values, got %d", len(p.Guess))
	}
	if p.ItersLimit != 0 {
		if err := numeric.CheckItersLimit(p.ItersLimit); err != nil {
			return err
		}
	}
	if p.Intervals != 0 {
		if err := numeric.CheckIntervals(p.Intervals); err != nil {
			return err
		}
	}
	for i, row := range p.Matrix {
		if len(row) != len(p.Matrix)+1 {
			return fmt.Errorf("matrix row %d has %d entries, expected %d", i+1, len(row), len(p.Matrix)+1)
		}
	}
	return nil
}

var Presets = map[string]map[string]*Problem{
	KindRoot: {
		"default": {Kind: KindRoot, Fx: "0.5**x + 1 - (x-2)**2", Interval: []float64{0, 1}, Eps: 1e-4},
		"cubic":   {Kind: KindRoot, Fx: "x**3 - 2*x - 5", Interval: []float64{2, 3}, Eps: 1e-3},
		"cosine":  {Kind: KindRoot, Fx: "cos(x) - x", Interval: []float64{0, 1}, Eps: 1e-6},
		"log":     {Kind: KindRoot, Fx: "ln(x) + x - 2", Interval: []float64{1, 2}, Eps: 1e-6},
	},
	KindSystem: {
		"default": {
			Kind:      KindSystem,
			Equations: []string{"x + cos(y) - 3", "cos(x - 1) - y - 1.2"},
			Guess:     []float64{0, 1},
			Eps:       1e-5,
		},
		"contraction": {
			Kind:      KindSystem,
			Equations: []string{"x - 0.3*sin(y) - 1", "y - 0.3*cos(x)"},
			Guess:     []float64{1, 0},
			Eps:       1e-8,
		},
	},
	KindIntegral: {
		"default":  {Kind: KindIntegral, Method: "mrm", Fx: "1/(1 + x**2)", Interval: []float64{0, 1}, Intervals: 10},
		"sine":     {Kind: KindIntegral, Method: "sm1", Fx: "sin(x)", Interval: []float64{0, math.Pi}, Intervals: 8},
		"gaussian": {Kind: KindIntegral, Method: "tm", Fx: "exp(-x**2)", Interval: []float64{-2, 2}, Intervals: 20},
		"cubic":    {Kind: KindIntegral, Method: "sm2", Fx: "x**3 - x", Interval: []float64{-1, 2}, Intervals: 3},
	},
	KindLinear: {
		"default": {
			Kind:   KindLinear,
			Method: "gm",
			Matrix: [][]float64{
				{2.39, -0.48, 1.08, 4.13},
				{0.54, 1.82, 0.73, 2.42},
				{0.32, -0.65, 1.11, -0.47},
			},
		},
		"dominant4": {
			Kind:   KindLinear,
			Method: "zm",
			Eps:    1e-8,
			Matrix: [][]float64{
				{10, -1, 2, 0, 6},
				{-1, 11, -1, 3, 25},
				{2, -1, 10, -1, -11},
				{0, 3, -1, 8, 15},
			},
		},
		"divergent": {
			Kind:       KindLinear,
			Method:     "sim",
			ItersLimit: 20,
			Matrix: [][]float64{
				{1, 2, 3},
				{3, 1, 4},
			},
		},
	},
}

func GetPreset(kind, name string) *Problem {
	presets, ok := Presets[kind]
	if !ok {
		return nil
	}
	p, ok := presets[name]
	if !ok {
		return nil
	}
	return p
}

func ListPresets(kind string) []string {
	presets, ok := Presets[kind]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func Kinds() []string {
	return []string{KindRoot, KindSystem, KindIntegral, KindLinear}
}
