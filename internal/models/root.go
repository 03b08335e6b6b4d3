package models

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/san-kum/compmath/internal/compute"
	"github.com/san-kum/compmath/internal/expr"
	"github.com/san-kum/compmath/internal/numeric"
	"github.com/san-kum/compmath/internal/plot"
)

const (
	DefaultRootFx  = "0.5**x + 1 - (x-2)**2"
	DefaultRootEps = 1e-4
)

// RootModel finds a root of f(x) on [a, b] with the secant method.
type RootModel struct {
	Base

	fx     string
	a, b   float64
	result *compute.SecantResponse
}

func NewRootModel(backend compute.Backend, logger *zap.Logger) *RootModel {
	m := &RootModel{
		Base: newBase("Secant method (one-step)",
			"Chord method: one end of the interval stays fixed while the other converges to the root.",
			backend, logger),
		fx: DefaultRootFx,
		a:  0,
		b:  1,
	}
	m.eps = DefaultRootEps
	return m
}

func (m *RootModel) Fx() string { return m.fx }

func (m *RootModel) SetFx(fx string) error {
	if _, err := expr.Compile(fx, "x"); err != nil {
		return m.reject(asValidation(err))
	}
	m.fx = fx
	m.NotifyObservers()
	return nil
}

func (m *RootModel) Interval() (a, b float64) { return m.a, m.b }

func (m *RootModel) SetInterval(a, b float64) error {
	if !(a < b) || !numeric.IsFinite(a) || !numeric.IsFinite(b) {
		return m.reject(numeric.Invalid("interval", numeric.ErrInvalidInterval, "invalid interval [%g, %g]", a, b))
	}
	m.a, m.b = a, b
	m.NotifyObservers()
	return nil
}

// Result is nil until a computation succeeds.
func (m *RootModel) Result() *compute.SecantResponse { return m.result }

func (m *RootModel) Graphics() []*plot.Graphic {
	if m.result == nil {
		return nil
	}
	return m.result.Graphics
}

func (m *RootModel) Request() *compute.SecantRequest {
	return &compute.SecantRequest{
		Fx:         m.fx,
		A:          m.a,
		B:          m.b,
		Eps:        m.eps,
		ItersLimit: m.itersLimit,
		XLimits:    m.xLimits,
		YLimits:    m.yLimits,
	}
}

func (m *RootModel) Calc(ctx context.Context) error {
	m.result = nil
	return m.calc(ctx, "secant", func(ctx context.Context) error {
		res, err := m.backend.Secant(ctx, m.Request())
		if err != nil {
			return err
		}
		m.result = res
		return nil
	})
}

// asValidation keeps validation errors as they are and wraps anything else
// as an invalid expression.
func asValidation(err error) *numeric.ValidationError {
	var ve *numeric.ValidationError
	if errors.As(err, &ve) {
		return ve
	}
	return numeric.Invalid("expression", numeric.ErrInvalidExpression, "%v", err)
}
