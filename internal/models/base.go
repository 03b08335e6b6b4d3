// Package models holds the editable problem definitions behind every
// view. Each model validates its setters, delegates computation to a
// compute.Backend and reports every change through its observer Bus.
package models

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/san-kum/compmath/internal/compute"
	"github.com/san-kum/compmath/internal/numeric"
	"github.com/san-kum/compmath/internal/plot"
)

const (
	DefaultEps        = 1e-4
	DefaultItersLimit = 100
)

// Model is the surface shared by all problem models.
type Model interface {
	Title() string
	Description() string
	Eps() float64
	SetEps(eps float64) error
	ItersLimit() int
	SetItersLimit(n int) error
	Calc(ctx context.Context) error
	AddObserver(o Observer)
	RemoveObserver(o Observer)
}

type Base struct {
	Bus

	title       string
	description string
	eps         float64
	itersLimit  int
	xLimits     plot.Limits
	yLimits     plot.Limits

	backend compute.Backend
	logger  *zap.Logger
}

func newBase(title, description string, backend compute.Backend, logger *zap.Logger) Base {
	if backend == nil {
		backend = compute.NewLocal(logger)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return Base{
		title:       title,
		description: description,
		eps:         DefaultEps,
		itersLimit:  DefaultItersLimit,
		backend:     backend,
		logger:      logger.Named("models"),
	}
}

func (b *Base) Title() string { return b.title }

func (b *Base) Description() string { return b.description }

func (b *Base) Eps() float64 { return b.eps }

func (b *Base) SetEps(eps float64) error {
	if !(eps > 0) || !numeric.IsFinite(eps) {
		return b.reject(numeric.Invalid("eps", numeric.ErrInvalidTolerance, "invalid tolerance %g: must be positive", eps))
	}
	b.eps = eps
	b.NotifyObservers()
	return nil
}

func (b *Base) ItersLimit() int { return b.itersLimit }

func (b *Base) SetItersLimit(n int) error {
	if err := numeric.CheckItersLimit(n); err != nil {
		return b.reject(err)
	}
	b.itersLimit = n
	b.NotifyObservers()
	return nil
}

func (b *Base) Limits() (x, y plot.Limits) { return b.xLimits, b.yLimits }

// SetLimits sets the plot window. A zero Limits fits the axis to the data.
func (b *Base) SetLimits(x, y plot.Limits) error {
	for _, l := range []plot.Limits{x, y} {
		if !l.IsZero() && !(l[0] < l[1]) {
			return b.reject(numeric.Invalid("limits", numeric.ErrInvalidInterval, "invalid plot limits [%g, %g]", l[0], l[1]))
		}
	}
	b.xLimits, b.yLimits = x, y
	b.NotifyObservers()
	return nil
}

func (b *Base) Backend() compute.Backend { return b.backend }

func (b *Base) SetBackend(backend compute.Backend) {
	b.backend = backend
}

// reject broadcasts exactly one validation event and returns err.
func (b *Base) reject(err error) error {
	b.ValidationError(err.Error())
	return err
}

// calc runs one computation. clear has already been applied by the caller
// when run starts. On success it emits Calculated then ModelChanged. A
// validation failure emits a single ValidationError. Any other failure
// leaves the results cleared and emits ModelChanged.
func (b *Base) calc(ctx context.Context, op string, run func(context.Context) error) error {
	b.logger.Debug("calc started", zap.String("model", op), zap.String("backend", b.backend.Name()))

	err := run(ctx)
	switch {
	case err == nil:
		b.logger.Debug("calc finished", zap.String("model", op))
		b.WasCalculated()
		b.NotifyObservers()
		return nil
	case numeric.IsValidation(err):
		var ve *numeric.ValidationError
		errors.As(err, &ve)
		b.logger.Debug("calc rejected", zap.String("model", op), zap.Error(err))
		b.ValidationError(ve.Error())
		return err
	default:
		b.logger.Warn("calc failed", zap.String("model", op), zap.Error(err))
		b.NotifyObservers()
		return err
	}
}
