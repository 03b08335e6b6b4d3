package slat

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/compmath/internal/numeric"
)

// pivotTolerance is the smallest pivot magnitude accepted as non-zero.
const pivotTolerance = 1e-12

// Gauss solves A·x = b by forward elimination with partial pivoting and
// back substitution. Every elimination step is recorded in the log.
func Gauss(a *mat.Dense, b numeric.Vector) (*Result, error) {
	if err := checkSystem(a, b, nil); err != nil {
		return nil, err
	}
	n, _ := a.Dims()

	aug := mat.NewDense(n, n+1, nil)
	aug.Slice(0, n, 0, n).(*mat.Dense).Copy(a)
	aug.SetCol(n, b)

	res := &Result{Method: "gm"}
	res.logf("Augmented matrix %dx%d", n, n+1)

	for k := 0; k < n; k++ {
		p := k
		for i := k + 1; i < n; i++ {
			if math.Abs(aug.At(i, k)) > math.Abs(aug.At(p, k)) {
				p = i
			}
		}
		if math.Abs(aug.At(p, k)) < pivotTolerance {
			return nil, numeric.Fault("gauss", k+1, numeric.ErrSingularMatrix)
		}
		if p != k {
			rk, rp := aug.RawRowView(k), aug.RawRowView(p)
			tmp := append([]float64(nil), rk...)
			copy(rk, rp)
			copy(rp, tmp)
			res.logf("Step %d: swap rows %d and %d", k+1, k+1, p+1)
		}

		pivot := aug.At(k, k)
		res.logf("Step %d: pivot a[%d][%d] = %.6g", k+1, k+1, k+1, pivot)
		for i := k + 1; i < n; i++ {
			m := aug.At(i, k) / pivot
			if m == 0 {
				continue
			}
			for j := k; j <= n; j++ {
				aug.Set(i, j, aug.At(i, j)-m*aug.At(k, j))
			}
			res.logf("Step %d: row %d -= %.6g * row %d", k+1, i+1, m, k+1)
		}
	}

	x := make(numeric.Vector, n)
	for i := n - 1; i >= 0; i-- {
		sum := aug.At(i, n)
		for j := i + 1; j < n; j++ {
			sum -= aug.At(i, j) * x[j]
		}
		x[i] = sum / aug.At(i, i)
	}
	if !x.IsValid() {
		return nil, numeric.Fault("gauss", n, numeric.ErrDiverged)
	}

	res.X = x
	res.Iters = n
	res.Converged = true
	res.Status = StatusSolved
	res.Residual = Residual(a, x, b)
	res.Rows = []Row{{Iter: 1, X: x.Clone(), Delta: res.Residual}}
	for i, v := range x {
		res.logf("x%d = %.10g", i+1, v)
	}
	res.logf("Residual ||Ax - b|| = %.3e", res.Residual)
	return res, nil
}
