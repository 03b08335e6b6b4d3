package numeric

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

type Vector []float64

func (v Vector) Clone() Vector {
	c := make(Vector, len(v))
	copy(c, v)
	return c
}

func (v Vector) IsValid() bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

func (v Vector) Norm() float64 {
	if len(v) == 0 {
		return 0
	}
	return floats.Norm(v, 2)
}

// MaxAbs is the infinity norm, the delta metric of every iterative method.
func (v Vector) MaxAbs() float64 {
	if len(v) == 0 {
		return 0
	}
	return floats.Norm(v, math.Inf(1))
}

func (v Vector) Add(other Vector) Vector {
	result := make(Vector, len(v))
	for i := range v {
		if i < len(other) {
			result[i] = v[i] + other[i]
		} else {
			result[i] = v[i]
		}
	}
	return result
}

func (v Vector) Sub(other Vector) Vector {
	result := make(Vector, len(v))
	for i := range v {
		if i < len(other) {
			result[i] = v[i] - other[i]
		} else {
			result[i] = v[i]
		}
	}
	return result
}

func (v Vector) Scale(factor float64) Vector {
	result := make(Vector, len(v))
	for i := range v {
		result[i] = v[i] * factor
	}
	return result
}

func IsFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// Upper bounds on the work a single computation may request. Every
// iteration and every subinterval keeps a table row and plot geometry.
const (
	MaxItersLimit = 10_000
	MaxIntervals  = 10_000
)

// CheckTolerance validates the common eps/limit pair of iterative methods.
func CheckTolerance(eps float64, itersLimit int) error {
	if !(eps > 0) || math.IsInf(eps, 0) {
		return Invalid("eps", ErrInvalidTolerance, "tolerance must be positive, got %g", eps)
	}
	return CheckItersLimit(itersLimit)
}

func CheckItersLimit(n int) error {
	if n <= 0 || n > MaxItersLimit {
		return Invalid("iters_limit", ErrInvalidIterLimit, "iteration limit must be in [1, %d], got %d", MaxItersLimit, n)
	}
	return nil
}

func CheckIntervals(n int) error {
	if n < 1 || n > MaxIntervals {
		return Invalid("intervals", ErrInvalidIntervals, "number of subintervals must be in [1, %d], got %d", MaxIntervals, n)
	}
	return nil
}
