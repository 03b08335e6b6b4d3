// Package automation runs scripted sequences of problems described in YAML.
package automation

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/compmath/internal/compute"
	"github.com/san-kum/compmath/internal/config"
	"github.com/san-kum/compmath/internal/expr"
	"github.com/san-kum/compmath/internal/models"
	"github.com/san-kum/compmath/internal/quadrature"
	"github.com/san-kum/compmath/internal/storage"
)

// Scenario defines a scripted sequence of computations.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Steps       []Step `yaml:"steps"`
}

// Step names a preset and overrides any of its fields inline.
type Step struct {
	Name           string `yaml:"name"`
	Preset         string `yaml:"preset"`
	config.Problem `yaml:",inline"`

	Properties bool `yaml:"properties"`
	Sweep      int  `yaml:"sweep"`
	Save       bool `yaml:"save"`
}

type StepResult struct {
	Index      int
	Name       string
	Problem    *config.Problem
	Model      models.Model
	Record     *storage.Record
	RunID      string
	Properties *quadrature.Properties
	Sweep      []quadrature.SweepPoint
	Err        error
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}
	for i := range scenario.Steps {
		if scenario.Steps[i].Kind == "" {
			return nil, fmt.Errorf("step %d: kind is required", i+1)
		}
	}
	return &scenario, nil
}

type Runner struct {
	defaults *config.DefaultsConfig
	backend  compute.Backend
	store    *storage.Store
	logger   *zap.Logger
	problems func(kind, name string) *config.Problem
}

// NewRunner builds a runner. store may be nil, in which case steps marked
// save are computed but not persisted.
func NewRunner(backend compute.Backend, store *storage.Store, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{backend: backend, store: store, logger: logger, problems: config.GetPreset}
}

// WithConfig resolves presets against the problems defined in cfg first
// and seeds every model with the configured defaults.
func (r *Runner) WithConfig(cfg *config.Config) *Runner {
	r.problems = cfg.Problem
	r.defaults = &cfg.Defaults
	return r
}

// Run executes every step in order. A failing step is recorded in its
// result and the run moves on; the returned error joins all step failures.
// Cancellation stops the run at once.
func (r *Runner) Run(ctx context.Context, scenario *Scenario) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))
	var errs []error

	for i, step := range scenario.Steps {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		name := step.Name
		if name == "" {
			name = fmt.Sprintf("%s/%s", step.Kind, step.Preset)
		}
		r.logger.Info("running step",
			zap.Int("step", i+1),
			zap.Int("steps", len(scenario.Steps)),
			zap.String("name", name))

		res := r.runStep(ctx, step)
		res.Index = i + 1
		res.Name = name
		if res.Err != nil {
			if errors.Is(res.Err, context.Canceled) || errors.Is(res.Err, context.DeadlineExceeded) {
				return append(results, res), res.Err
			}
			r.logger.Warn("step failed", zap.String("name", name), zap.Error(res.Err))
			errs = append(errs, fmt.Errorf("step %d (%s): %w", i+1, name, res.Err))
		}
		results = append(results, res)
	}

	return results, errors.Join(errs...)
}

func (r *Runner) runStep(ctx context.Context, step Step) StepResult {
	var res StepResult

	p, err := r.resolve(step)
	if err != nil {
		res.Err = err
		return res
	}
	res.Problem = p

	m, err := NewModel(p.Kind, r.backend, r.logger)
	if err != nil {
		res.Err = err
		return res
	}
	res.Model = m

	if r.defaults != nil {
		if err := ApplyDefaults(*r.defaults, m); err != nil {
			res.Err = err
			return res
		}
	}
	if err := Apply(p, m); err != nil {
		res.Err = err
		return res
	}
	if err := m.Calc(ctx); err != nil {
		res.Err = err
		return res
	}
	res.Record = Record(m)

	if im, ok := m.(*models.IntegralModel); ok {
		if step.Properties {
			if err := im.CalcProperties(ctx); err != nil {
				res.Err = err
				return res
			}
			res.Properties = im.Properties()
		}
		if step.Sweep > 0 {
			req := im.Request()
			res.Sweep, res.Err = SweepIntegral(ctx, req, step.Sweep)
			if res.Err != nil {
				return res
			}
		}
	}

	if step.Save && r.store != nil {
		res.RunID, res.Err = r.store.Save(res.Record)
	}
	return res
}

// resolve overlays the inline fields of step onto its preset.
func (r *Runner) resolve(step Step) (*config.Problem, error) {
	p := &config.Problem{Kind: step.Kind}
	if step.Preset != "" {
		base := r.problems(step.Kind, step.Preset)
		if base == nil {
			return nil, fmt.Errorf("unknown %s preset %q", step.Kind, step.Preset)
		}
		cp := *base
		p = &cp
	}

	o := step.Problem
	if o.Method != "" {
		p.Method = o.Method
	}
	if o.Fx != "" {
		p.Fx = o.Fx
	}
	if len(o.Equations) > 0 {
		p.Equations = o.Equations
	}
	if len(o.Interval) > 0 {
		p.Interval = o.Interval
	}
	if len(o.Guess) > 0 {
		p.Guess = o.Guess
	}
	if o.Intervals != 0 {
		p.Intervals = o.Intervals
	}
	if len(o.Matrix) > 0 {
		p.Matrix = o.Matrix
	}
	if o.Eps != 0 {
		p.Eps = o.Eps
	}
	if o.ItersLimit != 0 {
		p.ItersLimit = o.ItersLimit
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func NewModel(kind string, backend compute.Backend, logger *zap.Logger) (models.Model, error) {
	switch kind {
	case config.KindRoot:
		return models.NewRootModel(backend, logger), nil
	case config.KindSystem:
		return models.NewSystemModel(backend, logger), nil
	case config.KindIntegral:
		return models.NewIntegralModel(backend, logger), nil
	case config.KindLinear:
		return models.NewLinearModel(backend, logger), nil
	default:
		return nil, fmt.Errorf("unknown problem kind %q", kind)
	}
}

// ApplyDefaults seeds m with the configured defaults. Zero values keep the
// model's own defaults.
func ApplyDefaults(d config.DefaultsConfig, m models.Model) error {
	if d.Eps > 0 {
		if err := m.SetEps(d.Eps); err != nil {
			return err
		}
	}
	if d.ItersLimit > 0 {
		if err := m.SetItersLimit(d.ItersLimit); err != nil {
			return err
		}
	}
	if im, ok := m.(*models.IntegralModel); ok && d.Intervals > 0 {
		return im.SetIntervals(d.Intervals)
	}
	return nil
}

// Apply copies the non-zero fields of p into m through its validating
// setters and stops at the first rejected value.
func Apply(p *config.Problem, m models.Model) error {
	if p.Eps != 0 {
		if err := m.SetEps(p.Eps); err != nil {
			return err
		}
	}
	if p.ItersLimit != 0 {
		if err := m.SetItersLimit(p.ItersLimit); err != nil {
			return err
		}
	}

	switch m := m.(type) {
	case *models.RootModel:
		if p.Fx != "" {
			if err := m.SetFx(p.Fx); err != nil {
				return err
			}
		}
		if len(p.Interval) == 2 {
			return m.SetInterval(p.Interval[0], p.Interval[1])
		}
	case *models.SystemModel:
		if len(p.Equations) > 0 {
			if err := m.SetEquationCount(len(p.Equations)); err != nil {
				return err
			}
			for i, eq := range p.Equations {
				if err := m.SetEquation(i, eq); err != nil {
					return err
				}
			}
		}
		if len(p.Guess) == 2 {
			return m.SetInitialGuess(p.Guess[0], p.Guess[1])
		}
	case *models.IntegralModel:
		if p.Method != "" {
			if err := m.SetMethod(p.Method); err != nil {
				return err
			}
		}
		if p.Fx != "" {
			if err := m.SetFx(p.Fx); err != nil {
				return err
			}
		}
		if len(p.Interval) == 2 {
			if err := m.SetInterval(p.Interval[0], p.Interval[1]); err != nil {
				return err
			}
		}
		if p.Intervals != 0 {
			return m.SetIntervals(p.Intervals)
		}
	case *models.LinearModel:
		if p.Method != "" {
			if err := m.SetMethod(p.Method); err != nil {
				return err
			}
		}
		if len(p.Matrix) > 0 {
			return m.SetMatrix(p.Matrix)
		}
	default:
		return fmt.Errorf("unsupported model %T", m)
	}
	return nil
}

// Record converts the last result of m into a storable run, or nil when m
// has not computed anything.
func Record(m models.Model) *storage.Record {
	switch m := m.(type) {
	case *models.RootModel:
		if m.Result() != nil {
			return storage.SecantRecord(m.Request(), m.Result())
		}
	case *models.SystemModel:
		if m.Result() != nil {
			return storage.NewtonRecord(m.Request(), m.Result())
		}
	case *models.IntegralModel:
		if m.Result() != nil {
			return storage.IntegralRecord(m.Request(), m.Result())
		}
	case *models.LinearModel:
		if m.Result() != nil {
			return storage.LinearRecord(m.Request(), m.Result())
		}
	}
	return nil
}

// SweepIntegral reruns req with count doublings of its subinterval count.
func SweepIntegral(ctx context.Context, req *compute.IntegralRequest, count int) ([]quadrature.SweepPoint, error) {
	rule, err := quadrature.Lookup(req.Method)
	if err != nil {
		return nil, err
	}
	f, err := expr.Unary(req.Fx)
	if err != nil {
		return nil, err
	}
	return quadrature.Sweep(ctx, rule, f, req.A, req.B, quadrature.Doubling(req.Intervals, count))
}
