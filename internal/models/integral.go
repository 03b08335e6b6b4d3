package models

import (
	"context"

	"go.uber.org/zap"

	"github.com/san-kum/compmath/internal/compute"
	"github.com/san-kum/compmath/internal/expr"
	"github.com/san-kum/compmath/internal/numeric"
	"github.com/san-kum/compmath/internal/quadrature"
)

const (
	DefaultIntegralFx        = "1/(1 + x**2)"
	DefaultIntegralMethod    = "mrm"
	DefaultIntegralIntervals = 10
)

// IntegralModel integrates f over [a, b] with one of the quadrature rules.
type IntegralModel struct {
	Base

	method     string
	fx         string
	a, b       float64
	intervals  int
	result     *compute.IntegralResponse
	properties *quadrature.Properties
}

func NewIntegralModel(backend compute.Backend, logger *zap.Logger) *IntegralModel {
	rule, _ := quadrature.Lookup(DefaultIntegralMethod)
	return &IntegralModel{
		Base:      newBase(rule.Title(), "Composite quadrature on equal subintervals.", backend, logger),
		method:    DefaultIntegralMethod,
		fx:        DefaultIntegralFx,
		a:         0,
		b:         1,
		intervals: DefaultIntegralIntervals,
	}
}

func (m *IntegralModel) Method() string { return m.method }

func (m *IntegralModel) SetMethod(name string) error {
	rule, err := quadrature.Lookup(name)
	if err != nil {
		return m.reject(asValidation(err))
	}
	m.method = name
	m.title = rule.Title()
	m.NotifyObservers()
	return nil
}

func (m *IntegralModel) Fx() string { return m.fx }

func (m *IntegralModel) SetFx(fx string) error {
	if _, err := expr.Compile(fx, "x"); err != nil {
		return m.reject(asValidation(err))
	}
	m.fx = fx
	m.NotifyObservers()
	return nil
}

func (m *IntegralModel) Interval() (a, b float64) { return m.a, m.b }

func (m *IntegralModel) SetInterval(a, b float64) error {
	if !(a < b) || !numeric.IsFinite(a) || !numeric.IsFinite(b) {
		return m.reject(numeric.Invalid("interval", numeric.ErrInvalidInterval, "invalid interval [%g, %g]", a, b))
	}
	m.a, m.b = a, b
	m.NotifyObservers()
	return nil
}

func (m *IntegralModel) Intervals() int { return m.intervals }

func (m *IntegralModel) SetIntervals(n int) error {
	if err := numeric.CheckIntervals(n); err != nil {
		return m.reject(err)
	}
	m.intervals = n
	m.NotifyObservers()
	return nil
}

func (m *IntegralModel) Result() *compute.IntegralResponse { return m.result }

func (m *IntegralModel) Properties() *quadrature.Properties { return m.properties }

func (m *IntegralModel) Request() *compute.IntegralRequest {
	return &compute.IntegralRequest{
		Method:    m.method,
		A:         m.a,
		B:         m.b,
		Intervals: m.intervals,
		Fx:        m.fx,
		XLimits:   m.xLimits,
		YLimits:   m.yLimits,
	}
}

func (m *IntegralModel) Calc(ctx context.Context) error {
	m.result = nil
	return m.calc(ctx, "integral", func(ctx context.Context) error {
		res, err := m.backend.Integrate(ctx, m.Request())
		if err != nil {
			return err
		}
		m.result = res
		return nil
	})
}

// CalcProperties computes the reference integral and the curve geometry of
// f on [a, b].
func (m *IntegralModel) CalcProperties(ctx context.Context) error {
	m.properties = nil
	return m.calc(ctx, "properties", func(ctx context.Context) error {
		props, err := m.backend.Properties(ctx, &compute.PropertiesRequest{A: m.a, B: m.b, Fx: m.fx})
		if err != nil {
			return err
		}
		m.properties = props
		return nil
	})
}
