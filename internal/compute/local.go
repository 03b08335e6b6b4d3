package compute

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/san-kum/compmath/internal/expr"
	"github.com/san-kum/compmath/internal/metrics"
	"github.com/san-kum/compmath/internal/nonlinear"
	"github.com/san-kum/compmath/internal/numeric"
	"github.com/san-kum/compmath/internal/quadrature"
	"github.com/san-kum/compmath/internal/slat"
	"github.com/san-kum/compmath/internal/sne"
)

// Local runs the solvers in the calling goroutine. Every call compiles its
// own expressions, so one Local may serve concurrent requests.
type Local struct {
	logger *zap.Logger
}

func NewLocal(logger *zap.Logger) *Local {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Local{logger: logger.Named("compute")}
}

func (l *Local) Name() string { return "local" }

func (l *Local) done(op string, start time.Time, err error, fields ...zap.Field) {
	fields = append(fields, zap.String("op", op), zap.Duration("elapsed", time.Since(start)))
	if err != nil {
		l.logger.Debug("computation failed", append(fields, zap.Error(err))...)
		return
	}
	l.logger.Debug("computation finished", fields...)
}

func (l *Local) Secant(ctx context.Context, req *SecantRequest) (resp *SecantResponse, err error) {
	start := time.Now()
	defer func() { l.done("secant", start, err) }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := expr.Unary(req.Fx)
	if err != nil {
		return nil, err
	}

	res, err := nonlinear.Secant(f, req.A, req.B, req.Eps, req.ItersLimit, nonlinear.Options{
		XLimits: req.XLimits,
		YLimits: req.YLimits,
	})
	if err != nil {
		return nil, err
	}

	deltas := make([]float64, len(res.Rows))
	for i, row := range res.Rows {
		deltas[i] = math.Abs(row.FX)
	}

	return &SecantResponse{
		Result:    res.Root,
		Iters:     res.Iters,
		Converged: res.Converged,
		Table:     res.Rows,
		Graphics:  res.Frames,
		Metrics:   metrics.Collect(metrics.Default(), deltas),
	}, nil
}

func (l *Local) Newton(ctx context.Context, req *NewtonRequest) (resp *NewtonResponse, err error) {
	start := time.Now()
	defer func() { l.done("newton", start, err) }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	funcs, err := sne.Compile(req.Equations)
	if err != nil {
		return nil, err
	}

	res, err := sne.Newton(funcs, req.InitialGuess, req.Eps, req.ItersLimit, sne.Options{
		XLimits: req.XLimits,
		YLimits: req.YLimits,
	})
	if err != nil {
		return nil, err
	}

	deltas := make([]float64, len(res.Rows))
	for i, row := range res.Rows {
		deltas[i] = row.Delta
	}

	return &NewtonResponse{
		Result:    res.Solution,
		Iters:     res.Iters,
		Converged: res.Converged,
		Table:     res.Rows,
		Log:       res.Log,
		Graphics:  res.Frames,
		Metrics:   metrics.Collect(metrics.Default(), deltas),
	}, nil
}

func (l *Local) Integrate(ctx context.Context, req *IntegralRequest) (resp *IntegralResponse, err error) {
	start := time.Now()
	defer func() { l.done("integrate", start, err, zap.String("method", req.Method)) }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rule, err := quadrature.Lookup(req.Method)
	if err != nil {
		return nil, err
	}
	f, err := expr.Unary(req.Fx)
	if err != nil {
		return nil, err
	}

	res, err := quadrature.Integrate(rule, f, req.A, req.B, req.Intervals, quadrature.Options{
		XLimits: req.XLimits,
		YLimits: req.YLimits,
	})
	if err != nil {
		return nil, err
	}

	return &IntegralResponse{
		GraphicItems:  res.Graphic.Items,
		XLimits:       res.Graphic.XLimits,
		YLimits:       res.Graphic.YLimits,
		Table:         res.Rows,
		Result:        res.Value,
		Reference:     res.Reference,
		AbsDelta:      res.AbsDelta,
		RelativeDelta: res.RelDelta,
	}, nil
}

func (l *Local) Properties(ctx context.Context, req *PropertiesRequest) (props *quadrature.Properties, err error) {
	start := time.Now()
	defer func() { l.done("properties", start, err) }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := expr.Unary(req.Fx)
	if err != nil {
		return nil, err
	}
	return quadrature.CurveProperties(f, req.A, req.B)
}

func (l *Local) Linear(ctx context.Context, req *LinearRequest) (resp *LinearResponse, err error) {
	start := time.Now()
	defer func() { l.done("linear", start, err, zap.String("method", req.Method)) }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	method, err := slat.Lookup(req.Method)
	if err != nil {
		return nil, err
	}
	a, err := slat.FromRows(req.A)
	if err != nil {
		return nil, err
	}

	var x0 numeric.Vector
	if len(req.X0) > 0 {
		x0 = req.X0
	}
	res, err := method.Solve(a, req.B, x0, req.Eps, req.ItersLimit)
	if err != nil {
		return nil, err
	}

	deltas := make([]float64, len(res.Rows))
	for i, row := range res.Rows {
		deltas[i] = row.Delta
	}

	return &LinearResponse{
		Result:    res.X,
		Iters:     res.Iters,
		Converged: res.Converged,
		Status:    res.Status,
		Residual:  res.Residual,
		Table:     res.Rows,
		Log:       res.Log,
		Metrics:   metrics.Collect(metrics.Default(), deltas),
	}, nil
}
