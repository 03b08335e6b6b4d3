package automation

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/compmath/internal/compute"
	"github.com/san-kum/compmath/internal/config"
	"github.com/san-kum/compmath/internal/models"
	"github.com/san-kum/compmath/internal/numeric"
	"github.com/san-kum/compmath/internal/storage"
)

const scenarioYAML = `
name: smoke
description: one of each
steps:
  - kind: root
    preset: cubic
    save: true
  - name: tight newton
    kind: system
    preset: default
    eps: 1.0e-8
  - kind: integral
    preset: default
    method: sm1
    properties: true
    sweep: 3
    save: true
  - kind: linear
    matrix: [[4, 1, 5], [1, 3, 4]]
    method: zm
    eps: 1.0e-10
  - kind: root
    fx: "x**2 + 1"
    interval: [-1, 1]
`

func TestParseScenario(t *testing.T) {
	sc, err := ParseScenario([]byte(scenarioYAML))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if sc.Name != "smoke" || len(sc.Steps) != 5 {
		t.Fatalf("unexpected scenario %+v", sc)
	}

	step := sc.Steps[2]
	if step.Kind != config.KindIntegral || step.Method != "sm1" || !step.Properties || step.Sweep != 3 {
		t.Errorf("inline fields not decoded: %+v", step)
	}
	if got := sc.Steps[3].Matrix; len(got) != 2 || got[1][2] != 4 {
		t.Errorf("matrix not decoded: %v", got)
	}
}

func TestParseScenarioErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"no steps", "name: empty\n"},
		{"missing kind", "steps:\n  - preset: default\n"},
		{"bad yaml", "steps: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseScenario([]byte(tt.data)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestRunScenario(t *testing.T) {
	sc, err := ParseScenario([]byte(scenarioYAML))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	st := storage.New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	results, err := NewRunner(compute.NewLocal(nil), st, nil).Run(context.Background(), sc)
	if !errors.Is(err, numeric.ErrNoRootInInterval) {
		t.Fatalf("expected joined no-root error, got %v", err)
	}
	if len(results) != 5 {
		t.Fatalf("expected 5 results, got %d", len(results))
	}

	for _, r := range results[:4] {
		if r.Err != nil {
			t.Errorf("step %d (%s): %v", r.Index, r.Name, r.Err)
		}
		if r.Record == nil {
			t.Errorf("step %d: missing record", r.Index)
		}
	}
	if results[1].Name != "tight newton" || results[0].Name != "root/cubic" {
		t.Errorf("unexpected names %q, %q", results[0].Name, results[1].Name)
	}

	root := results[0].Model.(*models.RootModel)
	if math.Abs(root.Result().Result-2.0946) > 1e-3 {
		t.Errorf("cubic root = %f", root.Result().Result)
	}

	integral := results[2]
	if integral.Properties == nil || math.Abs(integral.Properties.Reference-math.Pi/4) > 1e-10 {
		t.Errorf("unexpected properties %+v", integral.Properties)
	}
	if len(integral.Sweep) != 3 || integral.Sweep[2].N != 40 {
		t.Errorf("unexpected sweep %+v", integral.Sweep)
	}

	linear := results[3].Model.(*models.LinearModel)
	x := linear.Result().Result
	if math.Abs(x[0]-1) > 1e-8 || math.Abs(x[1]-1) > 1e-8 {
		t.Errorf("linear solution = %v", x)
	}

	if results[4].Record != nil {
		t.Error("failed step should not produce a record")
	}

	runs, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 saved runs, got %d", len(runs))
	}
}

func TestRunCancelled(t *testing.T) {
	sc, err := ParseScenario([]byte(scenarioYAML))
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := NewRunner(compute.NewLocal(nil), nil, nil).Run(ctx, sc)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestRunnerUsesConfigProblems(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Problems = map[string]*config.Problem{
		"half": {Kind: config.KindRoot, Fx: "x - 0.5", Interval: []float64{0, 1}},
	}
	sc := &Scenario{Steps: []Step{{Preset: "half", Problem: config.Problem{Kind: config.KindRoot}}}}

	results, err := NewRunner(nil, nil, nil).WithConfig(cfg).Run(context.Background(), sc)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	root := results[0].Model.(*models.RootModel)
	if math.Abs(root.Result().Result-0.5) > 1e-9 {
		t.Errorf("root = %f", root.Result().Result)
	}
}

func TestUnknownPreset(t *testing.T) {
	sc := &Scenario{Steps: []Step{{Preset: "nope", Problem: config.Problem{Kind: config.KindLinear}}}}

	results, err := NewRunner(nil, nil, nil).Run(context.Background(), sc)
	if err == nil || results[0].Err == nil {
		t.Fatal("expected unknown preset error")
	}
}

func TestApplyRejectsBadValues(t *testing.T) {
	m := models.NewIntegralModel(nil, nil)
	err := Apply(&config.Problem{Kind: config.KindIntegral, Method: "xyz"}, m)
	if !errors.Is(err, numeric.ErrUnknownMethod) {
		t.Errorf("expected ErrUnknownMethod, got %v", err)
	}
	if m.Method() != models.DefaultIntegralMethod {
		t.Errorf("method changed to %q", m.Method())
	}
}

func TestApplyDefaults(t *testing.T) {
	m := models.NewIntegralModel(nil, nil)
	d := config.DefaultsConfig{Eps: 1e-6, ItersLimit: 42, Intervals: 16}

	if err := ApplyDefaults(d, m); err != nil {
		t.Fatal(err)
	}
	if m.Eps() != 1e-6 || m.ItersLimit() != 42 || m.Intervals() != 16 {
		t.Errorf("defaults not applied: eps=%g iters=%d n=%d", m.Eps(), m.ItersLimit(), m.Intervals())
	}

	if err := ApplyDefaults(config.DefaultsConfig{}, m); err != nil {
		t.Fatal(err)
	}
	if m.Intervals() != 16 {
		t.Error("zero defaults must not change the model")
	}
}
