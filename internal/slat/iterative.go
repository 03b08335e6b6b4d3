package slat

import (
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/compmath/internal/numeric"
)

// Jacobi iterates x_i = (b_i - Σ_{j≠i} a_ij x_j) / a_ii using only the
// previous vector.
func Jacobi(a *mat.Dense, b, x0 numeric.Vector, eps float64, maxIter int) (*Result, error) {
	return iterate("sim", false, a, b, x0, eps, maxIter)
}

// Seidel is Jacobi with each component used as soon as it is updated.
func Seidel(a *mat.Dense, b, x0 numeric.Vector, eps float64, maxIter int) (*Result, error) {
	return iterate("zm", true, a, b, x0, eps, maxIter)
}

func iterate(name string, inPlace bool, a *mat.Dense, b, x0 numeric.Vector, eps float64, maxIter int) (*Result, error) {
	if err := numeric.CheckTolerance(eps, maxIter); err != nil {
		return nil, err
	}
	if err := checkSystem(a, b, x0); err != nil {
		return nil, err
	}
	n, _ := a.Dims()
	for i := 0; i < n; i++ {
		if a.At(i, i) == 0 {
			return nil, numeric.Fault(name, 0, numeric.ErrSingularMatrix)
		}
	}

	res := &Result{Method: name, Status: StatusLimit}
	if DiagonallyDominant(a) {
		res.logf("Matrix is diagonally dominant: convergence guaranteed")
	} else {
		res.logf("Matrix is not diagonally dominant: convergence not guaranteed")
	}

	x := make(numeric.Vector, n)
	if x0 != nil {
		copy(x, x0)
	}
	next := make(numeric.Vector, n)

	for k := 1; k <= maxIter; k++ {
		src := x
		if inPlace {
			copy(next, x)
			src = next
		}
		for i := 0; i < n; i++ {
			sum := b[i]
			for j := 0; j < n; j++ {
				if j != i {
					sum -= a.At(i, j) * src[j]
				}
			}
			next[i] = sum / a.At(i, i)
		}
		if !next.IsValid() {
			return nil, numeric.Fault(name, k, numeric.ErrDiverged)
		}

		delta := next.Sub(x).MaxAbs()
		x, next = next, x

		res.Rows = append(res.Rows, Row{Iter: k, X: x.Clone(), Delta: delta})
		res.Iters = k
		if delta <= eps {
			res.Converged = true
			res.Status = StatusConverged
			break
		}
	}

	res.X = x
	res.Residual = Residual(a, x, b)
	res.logf("%s after %d iterations", res.Status, res.Iters)
	res.logf("Residual ||Ax - b|| = %.3e", res.Residual)
	return res, nil
}
