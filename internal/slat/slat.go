// Package slat solves systems of linear algebraic equations A·x = b.
//
// Gauss is direct; Jacobi and Seidel iterate from an initial vector until
// the largest component change drops to eps or the iteration cap is hit.
// Reaching the cap is not an error: the result carries Converged=false and
// StatusLimit.
package slat

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/compmath/internal/numeric"
)

const (
	StatusSolved    = "solved"
	StatusConverged = "converged"
	StatusLimit     = "iteration limit reached"
)

type Row struct {
	Iter  int            `json:"iter_num"`
	X     numeric.Vector `json:"x"`
	Delta float64        `json:"delta"`
}

type Result struct {
	Method    string
	X         numeric.Vector
	Iters     int
	Converged bool
	Status    string
	Residual  float64
	Rows      []Row
	Log       []string
}

func (r *Result) logf(format string, args ...any) {
	r.Log = append(r.Log, fmt.Sprintf(format, args...))
}

type Method interface {
	Name() string
	Title() string
	Solve(a *mat.Dense, b, x0 numeric.Vector, eps float64, maxIter int) (*Result, error)
}

// FromRows builds the coefficient matrix, rejecting ragged or non-square
// input.
func FromRows(rows [][]float64) (*mat.Dense, error) {
	n := len(rows)
	if n == 0 {
		return nil, numeric.Invalid("a", numeric.ErrDimensionMismatch, "empty coefficient matrix")
	}
	data := make([]float64, 0, n*n)
	for i, row := range rows {
		if len(row) != n {
			return nil, numeric.Invalid("a", numeric.ErrDimensionMismatch,
				"coefficient matrix must be %dx%d, row %d has %d entries", n, n, i+1, len(row))
		}
		data = append(data, row...)
	}
	return mat.NewDense(n, n, data), nil
}

func checkSystem(a *mat.Dense, b, x0 numeric.Vector) error {
	r, c := a.Dims()
	if r != c {
		return numeric.Invalid("a", numeric.ErrDimensionMismatch, "coefficient matrix must be square, got %dx%d", r, c)
	}
	if len(b) != r {
		return numeric.Invalid("b", numeric.ErrDimensionMismatch, "free column has %d entries, expected %d", len(b), r)
	}
	if x0 != nil && len(x0) != r {
		return numeric.Invalid("x0", numeric.ErrDimensionMismatch, "initial guess has %d entries, expected %d", len(x0), r)
	}
	return nil
}

// DiagonallyDominant reports whether |a_ii| > Σ_{j≠i} |a_ij| on every row.
func DiagonallyDominant(a mat.Matrix) bool {
	n, _ := a.Dims()
	for i := 0; i < n; i++ {
		var off float64
		for j := 0; j < n; j++ {
			if j != i {
				off += math.Abs(a.At(i, j))
			}
		}
		if math.Abs(a.At(i, i)) <= off {
			return false
		}
	}
	return true
}

// Residual returns ‖A·x - b‖₂.
func Residual(a mat.Matrix, x, b numeric.Vector) float64 {
	n, _ := a.Dims()
	var ax mat.VecDense
	ax.MulVec(a, mat.NewVecDense(n, x.Clone()))
	r := make([]float64, n)
	for i := range r {
		r[i] = ax.AtVec(i) - b[i]
	}
	return floats.Norm(r, 2)
}

var methods = map[string]func() Method{
	"gm":  func() Method { return gaussMethod{} },
	"sim": func() Method { return jacobiMethod{} },
	"zm":  func() Method { return seidelMethod{} },
}

func Lookup(name string) (Method, error) {
	fn, ok := methods[name]
	if !ok {
		return nil, numeric.Invalid("method", numeric.ErrUnknownMethod, "unknown linear method %q", name)
	}
	return fn(), nil
}

func Names() []string {
	names := make([]string, 0, len(methods))
	for name := range methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type gaussMethod struct{}

func (gaussMethod) Name() string  { return "gm" }
func (gaussMethod) Title() string { return "Gauss elimination" }
func (gaussMethod) Solve(a *mat.Dense, b, _ numeric.Vector, _ float64, _ int) (*Result, error) {
	return Gauss(a, b)
}

type jacobiMethod struct{}

func (jacobiMethod) Name() string  { return "sim" }
func (jacobiMethod) Title() string { return "Simple iteration (Jacobi)" }
func (jacobiMethod) Solve(a *mat.Dense, b, x0 numeric.Vector, eps float64, maxIter int) (*Result, error) {
	return Jacobi(a, b, x0, eps, maxIter)
}

type seidelMethod struct{}

func (seidelMethod) Name() string  { return "zm" }
func (seidelMethod) Title() string { return "Gauss-Seidel" }
func (seidelMethod) Solve(a *mat.Dense, b, x0 numeric.Vector, eps float64, maxIter int) (*Result, error) {
	return Seidel(a, b, x0, eps, maxIter)
}
