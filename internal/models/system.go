package models

import (
	"context"

	"go.uber.org/zap"

	"github.com/san-kum/compmath/internal/compute"
	"github.com/san-kum/compmath/internal/expr"
	"github.com/san-kum/compmath/internal/numeric"
	"github.com/san-kum/compmath/internal/plot"
	"github.com/san-kum/compmath/internal/sne"
)

const DefaultSystemEps = 1e-5

var DefaultEquations = []string{
	"x + cos(y) - 3",
	"cos(x - 1) - y - 1.2",
}

// SystemModel solves a nonlinear system in x and y with Newton's method.
// The editor allows more equations than the solver accepts; Calc rejects
// any count other than two.
type SystemModel struct {
	Base

	equations []string
	guess     numeric.Vector
	result    *compute.NewtonResponse
}

func NewSystemModel(backend compute.Backend, logger *zap.Logger) *SystemModel {
	m := &SystemModel{
		Base:      newBase("Newton's method", "Newton's method for a system of two nonlinear equations.", backend, logger),
		equations: append([]string(nil), DefaultEquations...),
		guess:     numeric.Vector{0, 1},
	}
	m.eps = DefaultSystemEps
	return m
}

func (m *SystemModel) Equations() []string { return append([]string(nil), m.equations...) }

// SetEquationCount grows the list with empty equations or truncates it.
func (m *SystemModel) SetEquationCount(n int) error {
	if n < 2 {
		return m.reject(numeric.Invalid("equations", numeric.ErrEquationCount, "invalid number of equations %d: at least 2 required", n))
	}
	if n > len(m.equations) {
		m.equations = append(m.equations, make([]string, n-len(m.equations))...)
	} else {
		m.equations = m.equations[:n]
	}
	m.NotifyObservers()
	return nil
}

func (m *SystemModel) SetEquation(i int, src string) error {
	if i < 0 || i >= len(m.equations) {
		return m.reject(numeric.Invalid("equations", numeric.ErrIndexOutOfRange, "equation index %d out of range [0, %d)", i, len(m.equations)))
	}
	if _, err := expr.Compile(src, sne.Vars...); err != nil {
		return m.reject(asValidation(err))
	}
	m.equations[i] = src
	m.NotifyObservers()
	return nil
}

func (m *SystemModel) InitialGuess() (x, y float64) { return m.guess[0], m.guess[1] }

func (m *SystemModel) SetInitialGuess(x, y float64) error {
	if !numeric.IsFinite(x) || !numeric.IsFinite(y) {
		return m.reject(numeric.Invalid("initial_guess", numeric.ErrDimensionMismatch, "initial guess must be finite"))
	}
	m.guess = numeric.Vector{x, y}
	m.NotifyObservers()
	return nil
}

func (m *SystemModel) Result() *compute.NewtonResponse { return m.result }

func (m *SystemModel) Graphics() []*plot.Graphic {
	if m.result == nil {
		return nil
	}
	return m.result.Graphics
}

func (m *SystemModel) Request() *compute.NewtonRequest {
	return &compute.NewtonRequest{
		Equations:    m.Equations(),
		InitialGuess: m.guess.Clone(),
		Eps:          m.eps,
		ItersLimit:   m.itersLimit,
		XLimits:      m.xLimits,
		YLimits:      m.yLimits,
	}
}

func (m *SystemModel) Calc(ctx context.Context) error {
	m.result = nil
	return m.calc(ctx, "newton", func(ctx context.Context) error {
		res, err := m.backend.Newton(ctx, m.Request())
		if err != nil {
			return err
		}
		m.result = res
		return nil
	})
}
