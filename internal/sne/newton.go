// Package sne solves systems of two nonlinear equations in x and y.
package sne

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/compmath/internal/expr"
	"github.com/san-kum/compmath/internal/numeric"
	"github.com/san-kum/compmath/internal/plot"
)

// Vars are the unknowns every equation is written in.
var Vars = []string{"x", "y"}

type Row struct {
	Iter   int            `json:"iter_num"`
	Vector numeric.Vector `json:"vector"`
	Delta  float64        `json:"delta"`
}

type Options struct {
	XLimits  plot.Limits
	YLimits  plot.Limits
	NoFrames bool
}

type Result struct {
	Solution  numeric.Vector
	Iters     int
	Converged bool
	// Norm is the max-row-sum norm of the fixed-point iteration matrix at
	// the initial guess.
	Norm   float64
	Rows   []Row
	Log    []string
	Frames []*plot.Graphic
}

func (r *Result) Final() *plot.Graphic {
	if len(r.Frames) == 0 {
		return nil
	}
	return r.Frames[len(r.Frames)-1]
}

// Compile checks the equation count and compiles every equation over x, y.
func Compile(equations []string) ([]*expr.Func, error) {
	if len(equations) != 2 {
		return nil, numeric.Invalid("equations", numeric.ErrEquationCount, "expected 2 equations, got %d", len(equations))
	}
	funcs := make([]*expr.Func, len(equations))
	for i, src := range equations {
		f, err := expr.Compile(src, Vars...)
		if err != nil {
			return nil, err
		}
		funcs[i] = f
	}
	return funcs, nil
}

// CheckConvergence evaluates the sufficient condition for the rearranged
// forms x = φ1(x, y) and y = φ2(x, y). Their iteration matrix is
// [[0, -f1y/f1x], [-f2x/f2y, 0]] and its max-row-sum norm must be below 1.
func CheckConvergence(funcs []*expr.Func, x0 numeric.Vector) (float64, error) {
	if len(funcs) != 2 {
		return 0, numeric.Invalid("equations", numeric.ErrEquationCount, "expected 2 equations, got %d", len(funcs))
	}
	if len(x0) != 2 {
		return 0, numeric.Invalid("initial_guess", numeric.ErrDimensionMismatch, "initial guess must have 2 components, got %d", len(x0))
	}

	j := expr.Jacobian(funcs, x0)
	f1x, f1y := j.At(0, 0), j.At(0, 1)
	f2x, f2y := j.At(1, 0), j.At(1, 1)

	if f1x == 0 || f2y == 0 || !numeric.IsFinite(f1x) || !numeric.IsFinite(f2y) {
		return math.Inf(1), numeric.Invalid("equations", numeric.ErrConvergenceCondition,
			"convergence condition not satisfied: equations cannot be solved for x and y at (%g, %g)", x0[0], x0[1])
	}

	q := math.Max(math.Abs(f1y/f1x), math.Abs(f2x/f2y))
	if !(q < 1) {
		return q, numeric.Invalid("equations", numeric.ErrConvergenceCondition,
			"convergence condition not satisfied: norm %.4g >= 1 at (%g, %g)", q, x0[0], x0[1])
	}
	return q, nil
}

// Newton solves F(x, y) = 0 starting from x0. Each step solves
// J(x)·Δx = -F(x) through the inverse Jacobian and stops once max|Δx| <= eps.
func Newton(funcs []*expr.Func, x0 numeric.Vector, eps float64, maxIter int, opts Options) (*Result, error) {
	if err := numeric.CheckTolerance(eps, maxIter); err != nil {
		return nil, err
	}
	if !x0.IsValid() {
		return nil, numeric.Invalid("initial_guess", numeric.ErrDimensionMismatch, "initial guess must be finite")
	}

	q, err := CheckConvergence(funcs, x0)
	if err != nil {
		return nil, err
	}

	res := &Result{Norm: q}
	for i, f := range funcs {
		res.Log = append(res.Log, fmt.Sprintf("Equation %d: %s", i+1, f))
	}
	res.Log = append(res.Log, fmt.Sprintf("Convergence norm at (%g, %g): %.6g", x0[0], x0[1], q))
	res.Log = append(res.Log, "Jacobian W(x0, y0):")
	res.Log = append(res.Log, formatMatrix(expr.Jacobian(funcs, x0))...)

	x := x0.Clone()
	fv := mat.NewVecDense(2, nil)
	var inv mat.Dense
	var dx mat.VecDense

	for k := 1; k <= maxIter; k++ {
		j := expr.Jacobian(funcs, x)
		if err := inv.Inverse(j); err != nil {
			return nil, numeric.Fault("newton", k, numeric.ErrSingularMatrix)
		}

		for i, f := range funcs {
			fv.SetVec(i, f.CallN(x))
		}
		dx.MulVec(&inv, fv)

		step := numeric.Vector{-dx.AtVec(0), -dx.AtVec(1)}
		x = x.Add(step)
		if !x.IsValid() {
			return nil, numeric.Fault("newton", k, numeric.ErrDiverged)
		}

		delta := step.MaxAbs()
		res.Rows = append(res.Rows, Row{Iter: k, Vector: x.Clone(), Delta: delta})
		res.Iters = k
		if delta <= eps {
			res.Converged = true
			break
		}
	}

	res.Solution = x
	res.Log = append(res.Log, fmt.Sprintf("Solution: (%.10g, %.10g)", x[0], x[1]))
	if !res.Converged {
		res.Log = append(res.Log, fmt.Sprintf("Iteration limit %d reached", maxIter))
	}

	if !opts.NoFrames {
		res.Frames = frames(funcs, x0, res.Rows, opts)
	}
	return res, nil
}

func formatMatrix(m mat.Matrix) []string {
	r, c := m.Dims()
	lines := make([]string, r)
	for i := 0; i < r; i++ {
		cells := make([]string, c)
		for j := 0; j < c; j++ {
			cells[j] = fmt.Sprintf("%10.5f", m.At(i, j))
		}
		lines[i] = strings.Join(cells, "\t")
	}
	return lines
}
