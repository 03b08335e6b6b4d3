package slat

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/compmath/internal/numeric"
)

var defaultA = [][]float64{
	{2.39, -0.48, 1.08},
	{0.54, 1.82, 0.73},
	{0.32, -0.65, 1.11},
}

var defaultB = numeric.Vector{4.13, 2.42, -0.47}

func mustMatrix(t *testing.T, rows [][]float64) *mat.Dense {
	t.Helper()
	a, err := FromRows(rows)
	if err != nil {
		t.Fatalf("FromRows failed: %v", err)
	}
	return a
}

func TestMethodsAgree(t *testing.T) {
	a := mustMatrix(t, defaultA)
	if !DiagonallyDominant(a) {
		t.Fatal("default system should be diagonally dominant")
	}

	gauss, err := Gauss(a, defaultB)
	if err != nil {
		t.Fatalf("gauss: %v", err)
	}
	if gauss.Residual > 1e-10 {
		t.Errorf("gauss residual %g", gauss.Residual)
	}

	for _, name := range []string{"sim", "zm"} {
		m, err := Lookup(name)
		if err != nil {
			t.Fatal(err)
		}
		res, err := m.Solve(a, defaultB, numeric.Vector{0, 0, 0}, 1e-8, 500)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if !res.Converged || res.Status != StatusConverged {
			t.Errorf("%s did not converge: %s", name, res.Status)
		}
		for i := range gauss.X {
			if math.Abs(res.X[i]-gauss.X[i]) > 1e-6 {
				t.Errorf("%s: x%d = %v, gauss gives %v", name, i+1, res.X[i], gauss.X[i])
			}
		}
		for i, row := range res.Rows {
			if row.Iter != i+1 {
				t.Errorf("%s: row %d has index %d", name, i, row.Iter)
			}
		}
	}
}

func TestSeidelFasterThanJacobi(t *testing.T) {
	a := mustMatrix(t, defaultA)

	j, err := Jacobi(a, defaultB, nil, 1e-8, 500)
	if err != nil {
		t.Fatal(err)
	}
	s, err := Seidel(a, defaultB, nil, 1e-8, 500)
	if err != nil {
		t.Fatal(err)
	}
	if s.Iters > j.Iters {
		t.Errorf("seidel took %d iterations, jacobi %d", s.Iters, j.Iters)
	}
}

func TestIterationLimit(t *testing.T) {
	a := mustMatrix(t, [][]float64{{1, 2}, {3, 1}})
	b := numeric.Vector{3, 4}

	for _, solve := range []func(*mat.Dense, numeric.Vector, numeric.Vector, float64, int) (*Result, error){Jacobi, Seidel} {
		res, err := solve(a, b, nil, 1e-6, 20)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Converged {
			t.Error("non-dominant system should not converge")
		}
		if res.Status != StatusLimit || res.Iters != 20 {
			t.Errorf("status %q after %d iterations", res.Status, res.Iters)
		}
	}
}

func TestGaussPivoting(t *testing.T) {
	// Zero leading entry needs a row swap.
	a := mustMatrix(t, [][]float64{{0, 1}, {1, 1}})
	res, err := Gauss(a, numeric.Vector{2, 3})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(res.X[0]-1) > 1e-12 || math.Abs(res.X[1]-2) > 1e-12 {
		t.Errorf("got %v, want [1 2]", res.X)
	}
	if len(res.Log) == 0 {
		t.Error("expected an elimination log")
	}
}

func TestSingular(t *testing.T) {
	singular := mustMatrix(t, [][]float64{{1, 2}, {2, 4}})
	_, err := Gauss(singular, numeric.Vector{1, 2})
	if !errors.Is(err, numeric.ErrSingularMatrix) || !numeric.IsFault(err) {
		t.Errorf("expected singular matrix fault, got %v", err)
	}

	zeroDiag := mustMatrix(t, [][]float64{{0, 1}, {1, 0}})
	_, err = Jacobi(zeroDiag, numeric.Vector{1, 1}, nil, 1e-6, 10)
	if !errors.Is(err, numeric.ErrSingularMatrix) {
		t.Errorf("expected singular matrix fault, got %v", err)
	}
}

func TestDimensionMismatch(t *testing.T) {
	if _, err := FromRows([][]float64{{1, 2}, {3}}); !errors.Is(err, numeric.ErrDimensionMismatch) {
		t.Errorf("ragged rows: got %v", err)
	}

	a := mustMatrix(t, defaultA)
	if _, err := Gauss(a, numeric.Vector{1, 2}); !errors.Is(err, numeric.ErrDimensionMismatch) {
		t.Errorf("short b: got %v", err)
	}
	if _, err := Seidel(a, defaultB, numeric.Vector{0}, 1e-6, 10); !errors.Is(err, numeric.ErrDimensionMismatch) {
		t.Errorf("short x0: got %v", err)
	}
	if _, err := Seidel(a, defaultB, nil, -1, 10); !errors.Is(err, numeric.ErrInvalidTolerance) {
		t.Errorf("negative eps: got %v", err)
	}
}

func TestLookup(t *testing.T) {
	if _, err := Lookup("lu"); !errors.Is(err, numeric.ErrUnknownMethod) {
		t.Errorf("expected unknown method, got %v", err)
	}
	names := Names()
	if len(names) != 3 || names[0] != "gm" || names[1] != "sim" || names[2] != "zm" {
		t.Errorf("unexpected names %v", names)
	}
}
