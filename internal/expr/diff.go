package expr

import (
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
)

// Derivative approximates f'(x) with a central difference.
func Derivative(f func(float64) float64, x float64) float64 {
	return fd.Derivative(f, x, &fd.Settings{Formula: fd.Central})
}

// SecondDerivative approximates f''(x).
func SecondDerivative(f func(float64) float64, x float64) float64 {
	return fd.Derivative(f, x, &fd.Settings{Formula: fd.Central2nd})
}

// Partial returns the derivative of f with respect to variable i at x.
func Partial(f func([]float64) float64, x []float64, i int) float64 {
	p := make([]float64, len(x))
	copy(p, x)
	return fd.Derivative(func(v float64) float64 {
		p[i] = v
		return f(p)
	}, x[i], &fd.Settings{Formula: fd.Central})
}

// Jacobian evaluates the Jacobian of the system funcs at x. Every func
// must take len(x) variables.
func Jacobian(funcs []*Func, x []float64) *mat.Dense {
	jac := mat.NewDense(len(funcs), len(x), nil)
	fd.Jacobian(jac, func(y, v []float64) {
		for i, f := range funcs {
			y[i] = f.CallN(v)
		}
	}, x, &fd.JacobianSettings{Formula: fd.Central})
	return jac
}

// CallN evaluates the formula on a slice of arguments, NaN on failure.
func (f *Func) CallN(args []float64) float64 {
	v, err := f.Eval(args...)
	if err != nil {
		return math.NaN()
	}
	return v
}
