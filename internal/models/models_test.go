package models_test

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/compmath/internal/compute"
	"github.com/san-kum/compmath/internal/models"
	"github.com/san-kum/compmath/internal/numeric"
	"github.com/san-kum/compmath/internal/plot"
)

var (
	_ models.Model = (*models.RootModel)(nil)
	_ models.Model = (*models.SystemModel)(nil)
	_ models.Model = (*models.IntegralModel)(nil)
	_ models.Model = (*models.LinearModel)(nil)
)

type failingBackend struct {
	compute.Backend
	err error
}

func (f failingBackend) Linear(context.Context, *compute.LinearRequest) (*compute.LinearResponse, error) {
	return nil, f.err
}

var _ = Describe("Models", func() {
	var (
		ctx context.Context
		rec *recorder
	)

	BeforeEach(func() {
		ctx = context.Background()
		rec = &recorder{}
	})

	Describe("common parameters", func() {
		It("rejects an invalid tolerance without changing state", func() {
			m := models.NewRootModel(nil, nil)
			m.AddObserver(rec)
			before := m.Eps()

			for _, eps := range []float64{0, -1, math.NaN(), math.Inf(1)} {
				rec.reset()
				err := m.SetEps(eps)
				Expect(errors.Is(err, numeric.ErrInvalidTolerance)).To(BeTrue())
				Expect(m.Eps()).To(Equal(before))
				Expect(rec.events).To(HaveLen(1))
				Expect(rec.count("invalid")).To(Equal(1))
			}
		})

		It("applies valid values and notifies once", func() {
			m := models.NewLinearModel(nil, nil)
			m.AddObserver(rec)

			Expect(m.SetEps(1e-6)).To(Succeed())
			Expect(m.SetItersLimit(7)).To(Succeed())
			Expect(m.Eps()).To(Equal(1e-6))
			Expect(m.ItersLimit()).To(Equal(7))
			Expect(rec.events).To(Equal([]string{"changed", "changed"}))
		})

		It("rejects a non-positive iteration cap", func() {
			m := models.NewSystemModel(nil, nil)
			m.AddObserver(rec)

			err := m.SetItersLimit(0)
			Expect(errors.Is(err, numeric.ErrInvalidIterLimit)).To(BeTrue())
			Expect(m.ItersLimit()).To(Equal(models.DefaultItersLimit))
			Expect(rec.events).To(HaveLen(1))
		})

		It("rejects caps and subdivision counts above the work bounds", func() {
			m := models.NewIntegralModel(nil, nil)
			m.AddObserver(rec)

			Expect(errors.Is(m.SetItersLimit(numeric.MaxItersLimit+1), numeric.ErrInvalidIterLimit)).To(BeTrue())
			Expect(errors.Is(m.SetIntervals(numeric.MaxIntervals+1), numeric.ErrInvalidIntervals)).To(BeTrue())
			Expect(m.ItersLimit()).To(Equal(models.DefaultItersLimit))
			Expect(m.Intervals()).To(Equal(models.DefaultIntegralIntervals))
			Expect(rec.count("invalid")).To(Equal(2))

			Expect(m.SetIntervals(numeric.MaxIntervals)).To(Succeed())
		})
	})

	Describe("RootModel", func() {
		It("starts from the default problem", func() {
			m := models.NewRootModel(nil, nil)
			a, b := m.Interval()
			Expect(m.Fx()).To(Equal(models.DefaultRootFx))
			Expect([]float64{a, b}).To(Equal([]float64{0, 1}))
			Expect(m.Eps()).To(Equal(1e-4))
			Expect(m.Result()).To(BeNil())
		})

		It("computes and emits Calculated then ModelChanged", func() {
			m := models.NewRootModel(nil, nil)
			Expect(m.SetFx("x**3 - 2*x - 5")).To(Succeed())
			Expect(m.SetInterval(2, 3)).To(Succeed())
			Expect(m.SetEps(0.001)).To(Succeed())
			m.AddObserver(rec)

			Expect(m.Calc(ctx)).To(Succeed())
			Expect(rec.events).To(Equal([]string{"calculated", "changed"}))

			res := m.Result()
			Expect(res.Converged).To(BeTrue())
			Expect(res.Result).To(BeNumerically("~", 2.0946, 1e-3))
			Expect(res.Iters).To(BeNumerically("<=", 10))
			Expect(m.Graphics()).To(HaveLen(res.Iters))
		})

		It("reports an interval without a root as one validation event", func() {
			m := models.NewRootModel(nil, nil)
			Expect(m.SetFx("x**2 + 1")).To(Succeed())
			Expect(m.SetInterval(-1, 1)).To(Succeed())
			m.AddObserver(rec)

			err := m.Calc(ctx)
			Expect(errors.Is(err, numeric.ErrNoRootInInterval)).To(BeTrue())
			Expect(rec.events).To(HaveLen(1))
			Expect(rec.count("invalid")).To(Equal(1))
			Expect(m.Result()).To(BeNil())
		})

		It("rejects malformed expressions and intervals", func() {
			m := models.NewRootModel(nil, nil)
			m.AddObserver(rec)

			Expect(errors.Is(m.SetFx("x +"), numeric.ErrInvalidExpression)).To(BeTrue())
			Expect(errors.Is(m.SetFx("x + y"), numeric.ErrInvalidExpression)).To(BeTrue())
			Expect(errors.Is(m.SetInterval(1, 0), numeric.ErrInvalidInterval)).To(BeTrue())
			Expect(m.Fx()).To(Equal(models.DefaultRootFx))
			Expect(rec.count("invalid")).To(Equal(3))
			Expect(rec.count("changed")).To(Equal(0))
		})

		It("passes plot limits through to the request", func() {
			m := models.NewRootModel(nil, nil)
			m.AddObserver(rec)

			Expect(m.SetLimits(plot.Limits{-2, 3}, plot.Limits{})).To(Succeed())
			Expect(m.Request().XLimits).To(Equal(plot.Limits{-2, 3}))
			Expect(m.Request().YLimits.IsZero()).To(BeTrue())

			Expect(errors.Is(m.SetLimits(plot.Limits{1, 1}, plot.Limits{}), numeric.ErrInvalidInterval)).To(BeTrue())
			x, _ := m.Limits()
			Expect(x).To(Equal(plot.Limits{-2, 3}))
			Expect(rec.count("changed")).To(Equal(1))
			Expect(rec.count("invalid")).To(Equal(1))
		})
	})

	Describe("SystemModel", func() {
		It("solves the default system", func() {
			m := models.NewSystemModel(nil, nil)
			m.AddObserver(rec)

			Expect(m.Calc(ctx)).To(Succeed())
			res := m.Result()
			Expect(res.Converged).To(BeTrue())
			Expect(res.Table[len(res.Table)-1].Delta).To(BeNumerically("<=", 1e-5))
			Expect(rec.events).To(Equal([]string{"calculated", "changed"}))
		})

		It("grows and truncates the equation list", func() {
			m := models.NewSystemModel(nil, nil)

			Expect(m.SetEquationCount(4)).To(Succeed())
			Expect(m.Equations()).To(Equal([]string{models.DefaultEquations[0], models.DefaultEquations[1], "", ""}))

			Expect(m.SetEquationCount(2)).To(Succeed())
			Expect(m.Equations()).To(Equal(models.DefaultEquations))

			m.AddObserver(rec)
			Expect(errors.Is(m.SetEquationCount(1), numeric.ErrEquationCount)).To(BeTrue())
			Expect(rec.events).To(HaveLen(1))
		})

		It("refuses to compute with the wrong equation count", func() {
			m := models.NewSystemModel(nil, nil)
			Expect(m.SetEquationCount(3)).To(Succeed())
			Expect(m.SetEquation(2, "x - y")).To(Succeed())
			m.AddObserver(rec)

			err := m.Calc(ctx)
			Expect(errors.Is(err, numeric.ErrEquationCount)).To(BeTrue())
			Expect(rec.events).To(HaveLen(1))
			Expect(m.Result()).To(BeNil())
		})

		It("validates equation edits", func() {
			m := models.NewSystemModel(nil, nil)

			Expect(errors.Is(m.SetEquation(5, "x"), numeric.ErrIndexOutOfRange)).To(BeTrue())
			Expect(errors.Is(m.SetEquation(0, "x + z"), numeric.ErrInvalidExpression)).To(BeTrue())
			Expect(m.SetEquation(0, "x - 1")).To(Succeed())
			Expect(m.Equations()[0]).To(Equal("x - 1"))
		})

		It("reports a failed convergence condition", func() {
			m := models.NewSystemModel(nil, nil)
			Expect(m.SetEquation(0, "x + 2*y - 1")).To(Succeed())
			Expect(m.SetEquation(1, "x - 3*y")).To(Succeed())

			err := m.Calc(ctx)
			Expect(errors.Is(err, numeric.ErrConvergenceCondition)).To(BeTrue())
		})
	})

	Describe("IntegralModel", func() {
		It("integrates with the selected rule", func() {
			m := models.NewIntegralModel(nil, nil)
			Expect(m.SetMethod("sm1")).To(Succeed())
			Expect(m.Title()).To(Equal("Simpson (parabolas)"))

			Expect(m.Calc(ctx)).To(Succeed())
			Expect(m.Result().Result).To(BeNumerically("~", math.Pi/4, 1e-6))
			Expect(m.Result().Table).To(HaveLen(models.DefaultIntegralIntervals))

			Expect(m.CalcProperties(ctx)).To(Succeed())
			Expect(m.Properties().Reference).To(BeNumerically("~", math.Pi/4, 1e-12))
		})

		It("validates its parameters", func() {
			m := models.NewIntegralModel(nil, nil)
			m.AddObserver(rec)

			Expect(errors.Is(m.SetMethod("xx"), numeric.ErrUnknownMethod)).To(BeTrue())
			Expect(errors.Is(m.SetIntervals(0), numeric.ErrInvalidIntervals)).To(BeTrue())
			Expect(errors.Is(m.SetInterval(2, 2), numeric.ErrInvalidInterval)).To(BeTrue())
			Expect(m.Method()).To(Equal(models.DefaultIntegralMethod))
			Expect(m.Intervals()).To(Equal(models.DefaultIntegralIntervals))
			Expect(rec.count("invalid")).To(Equal(3))
		})
	})

	Describe("LinearModel", func() {
		It("splits the augmented matrix", func() {
			m := models.NewLinearModel(nil, nil)
			Expect(m.Size()).To(Equal(3))
			Expect(m.A()[0]).To(Equal([]float64{2.39, -0.48, 1.08}))
			Expect(m.B()).To(Equal([]float64{4.13, 2.42, -0.47}))
		})

		It("preserves retained coefficients across a resize round trip", func() {
			m := models.NewLinearModel(nil, nil)
			before := m.Matrix()

			Expect(m.Resize(5)).To(Succeed())
			grown := m.Matrix()
			Expect(grown).To(HaveLen(5))
			for i, row := range grown {
				Expect(row).To(HaveLen(6))
				if i < 3 {
					Expect(row[:3]).To(Equal(before[i][:3]))
					Expect(row[3:5]).To(Equal([]float64{0, 0}))
					Expect(row[5]).To(Equal(before[i][3]))
				} else {
					Expect(row).To(Equal(make([]float64, 6)))
				}
			}

			Expect(m.Resize(3)).To(Succeed())
			Expect(m.Matrix()).To(Equal(before))
			Expect(m.InitialGuess()).To(HaveLen(3))
		})

		It("drops the last coefficient columns when shrinking", func() {
			m := models.NewLinearModel(nil, nil)
			Expect(m.Resize(2)).To(Succeed())
			Expect(m.Matrix()).To(Equal([][]float64{
				{2.39, -0.48, 4.13},
				{0.54, 1.82, 2.42},
			}))
		})

		It("does not notify when the size is unchanged", func() {
			m := models.NewLinearModel(nil, nil)
			m.AddObserver(rec)
			Expect(m.Resize(3)).To(Succeed())
			Expect(rec.events).To(BeEmpty())
		})

		It("bounds-checks cell edits", func() {
			m := models.NewLinearModel(nil, nil)
			Expect(m.SetItem(0, 3, 9)).To(Succeed())
			Expect(m.B()[0]).To(Equal(9.0))

			Expect(errors.Is(m.SetItem(3, 0, 1), numeric.ErrIndexOutOfRange)).To(BeTrue())
			Expect(errors.Is(m.SetItem(0, 4, 1), numeric.ErrIndexOutOfRange)).To(BeTrue())
			Expect(errors.Is(m.SetInitialGuess([]float64{1}), numeric.ErrDimensionMismatch)).To(BeTrue())
		})

		It("replaces the whole matrix", func() {
			m := models.NewLinearModel(nil, nil)
			m.AddObserver(rec)

			Expect(m.SetMatrix([][]float64{{4, 1, 5}, {1, 3, 4}})).To(Succeed())
			Expect(m.Size()).To(Equal(2))
			Expect(m.InitialGuess()).To(HaveLen(2))

			Expect(errors.Is(m.SetMatrix([][]float64{{1, 2, 3}}), numeric.ErrDimensionMismatch)).To(BeTrue())
			Expect(errors.Is(m.SetMatrix(nil), numeric.ErrDimensionMismatch)).To(BeTrue())
			Expect(m.Size()).To(Equal(2))
			Expect(rec.count("changed")).To(Equal(1))
			Expect(rec.count("invalid")).To(Equal(2))
		})

		It("agrees across methods on the default system", func() {
			var results [][]float64
			for _, name := range []string{"gm", "sim", "zm"} {
				m := models.NewLinearModel(nil, nil)
				Expect(m.SetMethod(name)).To(Succeed())
				Expect(m.SetEps(1e-9)).To(Succeed())
				Expect(m.Calc(ctx)).To(Succeed())
				Expect(m.Result().Converged).To(BeTrue())
				results = append(results, m.Result().Result)
			}
			for _, r := range results[1:] {
				for i := range r {
					Expect(r[i]).To(BeNumerically("~", results[0][i], 1e-6))
				}
			}
		})

		It("keeps results cleared on a numeric fault", func() {
			m := models.NewLinearModel(nil, nil)
			Expect(m.Calc(ctx)).To(Succeed())
			Expect(m.Result()).NotTo(BeNil())

			fault := numeric.Fault("gauss", 1, numeric.ErrSingularMatrix)
			m.SetBackend(failingBackend{Backend: compute.NewLocal(nil), err: fault})
			m.AddObserver(rec)

			err := m.Calc(ctx)
			Expect(numeric.IsFault(err)).To(BeTrue())
			Expect(errors.Is(err, numeric.ErrSingularMatrix)).To(BeTrue())
			Expect(m.Result()).To(BeNil())
			Expect(rec.events).To(Equal([]string{"changed"}))
		})
	})
})
