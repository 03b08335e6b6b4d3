package quadrature

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/compmath/internal/numeric"
	"github.com/san-kum/compmath/internal/plot"
)

func identity(x float64) float64 { return x }

func TestExactForLinear(t *testing.T) {
	for _, name := range []string{"tm", "sm1", "sm2", "mrm"} {
		rule, err := Lookup(name)
		if err != nil {
			t.Fatal(err)
		}
		for _, n := range []int{1, 2, 3, 7, 50} {
			res, err := Integrate(rule, identity, -1, 3, n, Options{NoFrames: true})
			if err != nil {
				t.Fatalf("%s n=%d: %v", name, n, err)
			}
			if math.Abs(res.Value-4) > 1e-12 {
				t.Errorf("%s n=%d: got %.15f, want 4", name, n, res.Value)
			}
		}
	}
}

func TestRulesOnQuadratic(t *testing.T) {
	sq := func(x float64) float64 { return x * x }
	want := 1.0 / 3

	tests := []struct {
		name string
		tol  float64
	}{
		{"lrm", 0.06},
		{"rrm", 0.06},
		{"mrm", 1e-3},
		{"tm", 2e-3},
		{"sm1", 1e-12},
		{"sm2", 1e-12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, _ := Lookup(tt.name)
			res, err := Integrate(rule, sq, 0, 1, 10, Options{})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(res.Value-want) > tt.tol {
				t.Errorf("got %.8f, want %.8f ± %g", res.Value, want, tt.tol)
			}
			if math.Abs(res.Reference-want) > 1e-12 {
				t.Errorf("reference %.15f", res.Reference)
			}
			if math.Abs(res.AbsDelta-math.Abs(res.Value-want)) > 1e-12 {
				t.Errorf("abs delta %g inconsistent", res.AbsDelta)
			}
			if len(res.Rows) != 10 || res.Rows[0].Index != 1 || res.Rows[9].X1 != 1 {
				t.Errorf("unexpected rows %+v", res.Rows)
			}
			// One function graph plus one shape per panel.
			if len(res.Graphic.Items) != 11 {
				t.Errorf("expected 11 plot items, got %d", len(res.Graphic.Items))
			}
		})
	}
}

func TestLeftRightBounds(t *testing.T) {
	exp := math.Exp
	left, _ := Integrate(NewLeftRect(), exp, 0, 1, 20, Options{NoFrames: true})
	right, _ := Integrate(NewRightRect(), exp, 0, 1, 20, Options{NoFrames: true})
	want := math.E - 1

	if !(left.Value < want && want < right.Value) {
		t.Errorf("increasing function: expected left %v < %v < right %v", left.Value, want, right.Value)
	}
}

func TestRelativeDeltaZeroReference(t *testing.T) {
	// Gauss–Legendre never samples the end points, so the reference of this
	// step is exactly zero while the right rectangles pick up the step.
	step := func(x float64) float64 {
		if x >= 1 {
			return 1
		}
		return 0
	}

	res, err := Integrate(NewRightRect(), step, 0, 1, 4, Options{NoFrames: true})
	if err != nil {
		t.Fatal(err)
	}
	if res.Reference != 0 {
		t.Fatalf("reference %g, expected 0", res.Reference)
	}
	if res.AbsDelta != 0.25 || res.RelDelta != res.AbsDelta {
		t.Errorf("abs %g rel %g, expected both 0.25", res.AbsDelta, res.RelDelta)
	}
}

func TestIntegrateValidation(t *testing.T) {
	tests := []struct {
		name string
		a, b float64
		n    int
		want error
	}{
		{"reversed", 1, 0, 4, numeric.ErrInvalidInterval},
		{"empty", 1, 1, 4, numeric.ErrInvalidInterval},
		{"zero panels", 0, 1, 0, numeric.ErrInvalidIntervals},
		{"too many panels", 0, 1, numeric.MaxIntervals + 1, numeric.ErrInvalidIntervals},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Integrate(NewTrapezoid(), identity, tt.a, tt.b, tt.n, Options{})
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}

	_, err := Lookup("nope")
	if !errors.Is(err, numeric.ErrUnknownMethod) {
		t.Errorf("expected unknown method, got %v", err)
	}
}

func TestDivergentIntegrand(t *testing.T) {
	inv := func(x float64) float64 { return 1 / x }
	_, err := Integrate(NewLeftRect(), inv, 0, 1, 4, Options{NoFrames: true})
	if !errors.Is(err, numeric.ErrDiverged) {
		t.Errorf("expected diverged fault, got %v", err)
	}
}

func TestCurveProperties(t *testing.T) {
	// f(x) = 1 on [0, 2] is a cylinder of radius 1 and height 2.
	one := func(float64) float64 { return 1 }
	p, err := CurveProperties(one, 0, 2)
	if err != nil {
		t.Fatal(err)
	}

	checks := []struct {
		name      string
		got, want float64
	}{
		{"reference", p.Reference, 2},
		{"arc length", p.ArcLength, 2},
		{"volume", p.Volume, 2 * math.Pi},
		{"surface", p.SurfaceArea, 4 * math.Pi},
	}
	for _, c := range checks {
		if math.Abs(c.got-c.want) > 1e-9 {
			t.Errorf("%s: got %v, want %v", c.name, c.got, c.want)
		}
	}

	// Straight line y = x on [0, 1] has length sqrt(2).
	p, err = CurveProperties(identity, 0, 1)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(p.ArcLength-math.Sqrt2) > 1e-6 {
		t.Errorf("arc length %v, want sqrt(2)", p.ArcLength)
	}
}

func TestSweep(t *testing.T) {
	ns := Doubling(2, 5)
	points, err := Sweep(context.Background(), NewTrapezoid(), math.Sin, 0, math.Pi, ns)
	if err != nil {
		t.Fatal(err)
	}

	if len(points) != len(ns) {
		t.Fatalf("expected %d points, got %d", len(ns), len(points))
	}
	for i := range points {
		if points[i].N != ns[i] {
			t.Errorf("point %d has n=%d, want %d", i, points[i].N, ns[i])
		}
		if i > 0 && points[i].AbsDelta >= points[i-1].AbsDelta {
			t.Errorf("error did not shrink: n=%d %g -> n=%d %g",
				points[i-1].N, points[i-1].AbsDelta, points[i].N, points[i].AbsDelta)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Sweep(ctx, NewTrapezoid(), math.Sin, 0, math.Pi, ns); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestDrawShapes(t *testing.T) {
	g := plot.New(plot.Limits{}, plot.Limits{})
	NewSimpson().Draw(g, func(x float64) float64 { return x * x }, 0, 2)

	it := g.Items[0]
	if it.Kind != plot.KindPolygon {
		t.Fatalf("expected polygon, got %s", it.Kind)
	}
	// The parabola through three points of x² is x² itself.
	for i := 0; i < shapeSamples; i++ {
		x := it.XData[i]
		if math.Abs(it.YData[i]-x*x) > 1e-12 {
			t.Errorf("interpolant at %v = %v, want %v", x, it.YData[i], x*x)
		}
	}
}

func TestNames(t *testing.T) {
	names := Names()
	want := []string{"lrm", "mrm", "rrm", "sm1", "sm2", "tm"}
	if len(names) != len(want) {
		t.Fatalf("got %v", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("got %v, want %v", names, want)
		}
	}
}
