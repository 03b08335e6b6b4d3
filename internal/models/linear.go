package models

import (
	"context"

	"go.uber.org/zap"

	"github.com/san-kum/compmath/internal/compute"
	"github.com/san-kum/compmath/internal/numeric"
	"github.com/san-kum/compmath/internal/slat"
)

const DefaultLinearMethod = "gm"

// DefaultMatrix is the augmented matrix [A | b] of a diagonally dominant
// 3x3 system.
var DefaultMatrix = [][]float64{
	{2.39, -0.48, 1.08, 4.13},
	{0.54, 1.82, 0.73, 2.42},
	{0.32, -0.65, 1.11, -0.47},
}

// LinearModel edits and solves A·x = b stored as an n×(n+1) augmented
// matrix whose last column is b.
type LinearModel struct {
	Base

	method string
	matrix [][]float64
	x0     []float64
	result *compute.LinearResponse
}

func NewLinearModel(backend compute.Backend, logger *zap.Logger) *LinearModel {
	method, _ := slat.Lookup(DefaultLinearMethod)
	m := &LinearModel{
		Base:   newBase(method.Title(), "System of linear algebraic equations.", backend, logger),
		method: DefaultLinearMethod,
		matrix: cloneMatrix(DefaultMatrix),
	}
	m.x0 = make([]float64, len(m.matrix))
	return m
}

func (m *LinearModel) Method() string { return m.method }

func (m *LinearModel) SetMethod(name string) error {
	method, err := slat.Lookup(name)
	if err != nil {
		return m.reject(asValidation(err))
	}
	m.method = name
	m.title = method.Title()
	m.NotifyObservers()
	return nil
}

func (m *LinearModel) Size() int { return len(m.matrix) }

// Matrix returns a copy of the augmented matrix.
func (m *LinearModel) Matrix() [][]float64 { return cloneMatrix(m.matrix) }

func (m *LinearModel) A() [][]float64 {
	a := make([][]float64, len(m.matrix))
	for i, row := range m.matrix {
		a[i] = append([]float64(nil), row[:len(row)-1]...)
	}
	return a
}

func (m *LinearModel) B() []float64 {
	b := make([]float64, len(m.matrix))
	for i, row := range m.matrix {
		b[i] = row[len(row)-1]
	}
	return b
}

// Resize changes the system to n equations. Growing adds zero rows and
// inserts zero coefficient columns before the free column; shrinking drops
// trailing rows and the last coefficient columns. Retained coefficients and
// the free column keep their values.
func (m *LinearModel) Resize(n int) error {
	if n < 1 {
		return m.reject(numeric.Invalid("size", numeric.ErrDimensionMismatch, "invalid system size %d: at least 1 required", n))
	}
	cur := len(m.matrix)
	if n == cur {
		return nil
	}

	if cur == 0 {
		m.matrix = make([][]float64, n)
		for i := range m.matrix {
			m.matrix[i] = make([]float64, n+1)
		}
	} else if n > cur {
		for i := cur; i < n; i++ {
			m.matrix = append(m.matrix, make([]float64, cur+1))
		}
		for i, row := range m.matrix {
			grown := make([]float64, 0, n+1)
			grown = append(grown, row[:len(row)-1]...)
			grown = append(grown, make([]float64, n-cur)...)
			grown = append(grown, row[len(row)-1])
			m.matrix[i] = grown
		}
	} else {
		m.matrix = m.matrix[:n]
		for i, row := range m.matrix {
			shrunk := make([]float64, 0, n+1)
			shrunk = append(shrunk, row[:n]...)
			shrunk = append(shrunk, row[len(row)-1])
			m.matrix[i] = shrunk
		}
	}

	x0 := make([]float64, n)
	copy(x0, m.x0)
	m.x0 = x0

	m.NotifyObservers()
	return nil
}

// SetMatrix replaces the augmented matrix. Every row needs n+1 finite
// entries. The initial guess is resized to match.
func (m *LinearModel) SetMatrix(aug [][]float64) error {
	n := len(aug)
	if n < 1 {
		return m.reject(numeric.Invalid("matrix", numeric.ErrDimensionMismatch, "matrix must have at least one row"))
	}
	for i, row := range aug {
		if len(row) != n+1 {
			return m.reject(numeric.Invalid("matrix", numeric.ErrDimensionMismatch,
				"row %d has %d entries, expected %d", i+1, len(row), n+1))
		}
		if !numeric.Vector(row).IsValid() {
			return m.reject(numeric.Invalid("matrix", numeric.ErrInvalidExpression, "row %d has a non-finite entry", i+1))
		}
	}
	m.matrix = cloneMatrix(aug)
	x0 := make([]float64, n)
	copy(x0, m.x0)
	m.x0 = x0
	m.NotifyObservers()
	return nil
}

func (m *LinearModel) SetItem(row, col int, v float64) error {
	if row < 0 || row >= len(m.matrix) || col < 0 || col > len(m.matrix) {
		return m.reject(numeric.Invalid("matrix", numeric.ErrIndexOutOfRange,
			"cell (%d, %d) outside %dx%d matrix", row, col, len(m.matrix), len(m.matrix)+1))
	}
	if !numeric.IsFinite(v) {
		return m.reject(numeric.Invalid("matrix", numeric.ErrInvalidExpression, "cell value must be finite"))
	}
	m.matrix[row][col] = v
	m.NotifyObservers()
	return nil
}

func (m *LinearModel) InitialGuess() []float64 { return append([]float64(nil), m.x0...) }

func (m *LinearModel) SetInitialGuess(x0 []float64) error {
	if len(x0) != len(m.matrix) {
		return m.reject(numeric.Invalid("x0", numeric.ErrDimensionMismatch, "initial guess has %d entries, expected %d", len(x0), len(m.matrix)))
	}
	if !numeric.Vector(x0).IsValid() {
		return m.reject(numeric.Invalid("x0", numeric.ErrDimensionMismatch, "initial guess must be finite"))
	}
	m.x0 = append([]float64(nil), x0...)
	m.NotifyObservers()
	return nil
}

func (m *LinearModel) Result() *compute.LinearResponse { return m.result }

func (m *LinearModel) Request() *compute.LinearRequest {
	return &compute.LinearRequest{
		Method:     m.method,
		A:          m.A(),
		B:          m.B(),
		Eps:        m.eps,
		ItersLimit: m.itersLimit,
		X0:         m.InitialGuess(),
	}
}

func (m *LinearModel) Calc(ctx context.Context) error {
	m.result = nil
	return m.calc(ctx, "linear", func(ctx context.Context) error {
		res, err := m.backend.Linear(ctx, m.Request())
		if err != nil {
			return err
		}
		m.result = res
		return nil
	})
}

func cloneMatrix(src [][]float64) [][]float64 {
	out := make([][]float64, len(src))
	for i, row := range src {
		out[i] = append([]float64(nil), row...)
	}
	return out
}
