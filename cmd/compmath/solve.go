package main

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/san-kum/compmath/internal/automation"
	"github.com/san-kum/compmath/internal/config"
	"github.com/san-kum/compmath/internal/models"
	"github.com/san-kum/compmath/internal/storage"
	"github.com/san-kum/compmath/internal/tui"
	"github.com/san-kum/compmath/internal/viz"
)

// problemFlags are shared by every solver command.
type problemFlags struct {
	preset  string
	eps     float64
	iters   int
	save    bool
	plot    bool
	verbose bool
	showLog bool
	rows    int
}

func (pf *problemFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&pf.preset, "preset", "", "start from a named preset")
	cmd.Flags().Float64Var(&pf.eps, "eps", models.DefaultEps, "tolerance")
	cmd.Flags().IntVar(&pf.iters, "iters", models.DefaultItersLimit, "iteration limit")
	cmd.Flags().BoolVar(&pf.save, "save", false, "save the run to the history")
	cmd.Flags().BoolVar(&pf.plot, "plot", false, "draw the final plot")
	cmd.Flags().BoolVarP(&pf.verbose, "verbose", "v", false, "print model events")
	cmd.Flags().BoolVar(&pf.showLog, "show-log", false, "print the solver log")
	cmd.Flags().IntVar(&pf.rows, "rows", 12, "maximum table rows (0 for all)")
}

// solve builds a model of kind from the preset and the explicitly set
// flags, computes it and prints the result.
func solve(cmd *cobra.Command, kind string, pf *problemFlags, overlay func(p *config.Problem) error) (models.Model, error) {
	p := &config.Problem{Kind: kind}
	if pf.preset != "" {
		base := cfg.Problem(kind, pf.preset)
		if base == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", pf.preset, config.ListPresets(kind))
		}
		cp := *base
		p = &cp
	}
	if err := overlay(p); err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("eps") {
		p.Eps = pf.eps
	}
	if cmd.Flags().Changed("iters") {
		p.ItersLimit = pf.iters
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	m, err := automation.NewModel(kind, backend, logger)
	if err != nil {
		return nil, err
	}
	if pf.verbose {
		m.AddObserver(tui.NewConsole(os.Stderr, kind))
	}
	if configFile != "" {
		if err := automation.ApplyDefaults(cfg.Defaults, m); err != nil {
			return nil, err
		}
	}
	if err := automation.Apply(p, m); err != nil {
		return nil, err
	}
	if err := m.Calc(cmd.Context()); err != nil {
		return nil, err
	}

	rec := automation.Record(m)
	printRecord(m.Title(), rec, pf.rows)
	printStatus(m)
	if pf.showLog {
		printLog(m)
	}
	if pf.plot && rec.Graphic != nil {
		fmt.Println(viz.RenderGraphic(rec.Graphic, 60, 16, viz.CurrentTheme))
	}

	if pf.save {
		st, err := openStore()
		if err != nil {
			return m, err
		}
		runID, err := st.Save(rec)
		if err != nil {
			return m, err
		}
		fmt.Printf("run id: %s\n", runID)
	}
	return m, nil
}

func printRecord(title string, rec *storage.Record, rows int) {
	fmt.Println(viz.Title.Render(title))
	fmt.Println(viz.Table(rec.Header, rec.Rows, rows))
	if len(rec.Metrics) > 0 {
		fmt.Println(viz.KeyValues(rec.Metrics))
	}
	if chart := viz.DeltaChart(traceOf(rec.Kind, rec.Header, rec.Rows), 60, 8); chart != "" {
		fmt.Println(chart)
	}
}

// traceOf extracts the convergence measure of each iteration row: |f(x)|
// for root finding, the step size otherwise.
func traceOf(kind string, header []string, rows [][]float64) []float64 {
	col := -1
	for i, h := range header {
		switch {
		case kind == config.KindRoot && h == "fx":
			col = i
		case kind != config.KindRoot && h == "delta":
			col = i
		}
	}
	if col < 0 {
		return nil
	}
	out := make([]float64, 0, len(rows))
	for _, row := range rows {
		if col < len(row) {
			out = append(out, math.Abs(row[col]))
		}
	}
	return out
}

func printStatus(m models.Model) {
	switch m := m.(type) {
	case *models.RootModel:
		r := m.Result()
		fmt.Println(viz.Status(r.Converged, r.Iters))
		fmt.Println(viz.Metric("x", r.Result))
	case *models.SystemModel:
		r := m.Result()
		fmt.Println(viz.Status(r.Converged, r.Iters))
		fmt.Println(viz.Metric("x", r.Result[0]) + "  " + viz.Metric("y", r.Result[1]))
	case *models.IntegralModel:
		r := m.Result()
		fmt.Println(viz.Metric("result", r.Result))
		fmt.Println(viz.Metric("reference_result", r.Reference))
		fmt.Println(viz.Metric("abs_delta", r.AbsDelta) + "  " + viz.Metric("relative_delta", r.RelativeDelta))
	case *models.LinearModel:
		r := m.Result()
		fmt.Println(viz.Status(r.Converged, r.Iters) + "  " + viz.Subtle.Render(r.Status))
		for i, x := range r.Result {
			fmt.Println(viz.Metric(fmt.Sprintf("x%d", i+1), x))
		}
		fmt.Println(viz.Metric("residual", r.Residual))
	}
}

func printLog(m models.Model) {
	var lines []string
	switch m := m.(type) {
	case *models.SystemModel:
		lines = m.Result().Log
	case *models.LinearModel:
		lines = m.Result().Log
	}
	for _, l := range lines {
		fmt.Println(viz.Subtle.Render(l))
	}
}

// interval merges --a and --b into p, keeping the other end from the
// preset or the flag default when only one is set.
func interval(cmd *cobra.Command, p *config.Problem, a, b float64) {
	ca, cb := cmd.Flags().Changed("a"), cmd.Flags().Changed("b")
	if !ca && !cb {
		return
	}
	cur := []float64{a, b}
	if len(p.Interval) == 2 {
		cur = append([]float64(nil), p.Interval...)
	}
	if ca {
		cur[0] = a
	}
	if cb {
		cur[1] = b
	}
	p.Interval = cur
}

func parseVector(s string) ([]float64, error) {
	fields := strings.Fields(strings.ReplaceAll(s, ",", " "))
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", f)
		}
		out[i] = v
	}
	return out, nil
}

// parseMatrix reads rows separated by ';' with entries separated by spaces
// or commas.
func parseMatrix(s string) ([][]float64, error) {
	var out [][]float64
	for i, row := range strings.Split(s, ";") {
		if strings.TrimSpace(row) == "" {
			continue
		}
		vs, err := parseVector(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		out = append(out, vs)
	}
	return out, nil
}

func secantCmd() *cobra.Command {
	var (
		pf   problemFlags
		fx   string
		a, b float64
	)
	cmd := &cobra.Command{
		Use:   "secant",
		Short: "find a root of f(x) on [a, b] with the secant method",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := solve(cmd, config.KindRoot, &pf, func(p *config.Problem) error {
				if cmd.Flags().Changed("fx") {
					p.Fx = fx
				}
				interval(cmd, p, a, b)
				return nil
			})
			return err
		},
	}
	pf.register(cmd)
	cmd.Flags().StringVar(&fx, "fx", models.DefaultRootFx, "function of x")
	cmd.Flags().Float64Var(&a, "a", 0, "interval start")
	cmd.Flags().Float64Var(&b, "b", 1, "interval end")
	return cmd
}

func newtonCmd() *cobra.Command {
	var (
		pf     problemFlags
		eqs    []string
		x0, y0 float64
	)
	cmd := &cobra.Command{
		Use:   "newton",
		Short: "solve a system of two nonlinear equations in x and y",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := solve(cmd, config.KindSystem, &pf, func(p *config.Problem) error {
				if cmd.Flags().Changed("eq") {
					p.Equations = eqs
				}
				if cmd.Flags().Changed("x0") || cmd.Flags().Changed("y0") {
					guess := []float64{x0, y0}
					if len(p.Guess) == 2 {
						guess = append([]float64(nil), p.Guess...)
					}
					if cmd.Flags().Changed("x0") {
						guess[0] = x0
					}
					if cmd.Flags().Changed("y0") {
						guess[1] = y0
					}
					p.Guess = guess
				}
				return nil
			})
			return err
		},
	}
	pf.register(cmd)
	cmd.Flags().StringArrayVar(&eqs, "eq", nil, "equation f(x, y) = 0 (repeat for each equation)")
	cmd.Flags().Float64Var(&x0, "x0", 0, "initial x")
	cmd.Flags().Float64Var(&y0, "y0", 1, "initial y")
	return cmd
}

func integrateCmd() *cobra.Command {
	var (
		pf         problemFlags
		fx         string
		a, b       float64
		n          int
		sweep      int
		properties bool
	)
	cmd := &cobra.Command{
		Use:   "integrate [method]",
		Short: "integrate f(x) over [a, b] (methods: lrm, mrm, rrm, tm, sm1, sm2)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := solve(cmd, config.KindIntegral, &pf, func(p *config.Problem) error {
				if len(args) == 1 {
					p.Method = args[0]
				}
				if cmd.Flags().Changed("fx") {
					p.Fx = fx
				}
				interval(cmd, p, a, b)
				if cmd.Flags().Changed("n") {
					p.Intervals = n
				}
				return nil
			})
			if err != nil {
				return err
			}
			im := m.(*models.IntegralModel)

			if properties {
				if err := im.CalcProperties(cmd.Context()); err != nil {
					return err
				}
				printProperties(im)
			}
			if sweep > 0 {
				points, err := automation.SweepIntegral(cmd.Context(), im.Request(), sweep)
				if err != nil {
					return err
				}
				rows := make([][]float64, len(points))
				for i, pt := range points {
					rows[i] = []float64{float64(pt.N), pt.Value, pt.AbsDelta, pt.RelDelta}
				}
				fmt.Println(viz.Table([]string{"intervals", "result", "abs_delta", "relative_delta"}, rows, 0))
				if chart := viz.SweepChart(points, 60, 8); chart != "" {
					fmt.Println(chart)
				}
			}
			return nil
		},
	}
	pf.register(cmd)
	cmd.Flags().StringVar(&fx, "fx", models.DefaultIntegralFx, "function of x")
	cmd.Flags().Float64Var(&a, "a", 0, "lower limit")
	cmd.Flags().Float64Var(&b, "b", 1, "upper limit")
	cmd.Flags().IntVar(&n, "n", models.DefaultIntegralIntervals, "number of subintervals")
	cmd.Flags().IntVar(&sweep, "sweep", 0, "also run this many doublings of n")
	cmd.Flags().BoolVar(&properties, "properties", false, "also compute arc length, volume and surface area")
	return cmd
}

func printProperties(im *models.IntegralModel) {
	p := im.Properties()
	fmt.Println(viz.KeyValues(map[string]float64{
		"reference_result": p.Reference,
		"arc_length":       p.ArcLength,
		"volume":           p.Volume,
		"surface_area":     p.SurfaceArea,
	}))
}

func propertiesCmd() *cobra.Command {
	var (
		fx      string
		a, b    float64
		verbose bool
	)
	cmd := &cobra.Command{
		Use:   "properties",
		Short: "reference integral and curve geometry of f(x) on [a, b]",
		RunE: func(cmd *cobra.Command, args []string) error {
			im := models.NewIntegralModel(backend, logger)
			if verbose {
				im.AddObserver(tui.NewConsole(os.Stderr, config.KindIntegral))
			}
			if err := im.SetFx(fx); err != nil {
				return err
			}
			if err := im.SetInterval(a, b); err != nil {
				return err
			}
			if err := im.CalcProperties(cmd.Context()); err != nil {
				return err
			}
			printProperties(im)
			return nil
		},
	}
	cmd.Flags().StringVar(&fx, "fx", models.DefaultIntegralFx, "function of x")
	cmd.Flags().Float64Var(&a, "a", 0, "lower limit")
	cmd.Flags().Float64Var(&b, "b", 1, "upper limit")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print model events")
	return cmd
}

func linearCmd() *cobra.Command {
	var (
		pf     problemFlags
		matrix string
		x0     string
	)
	cmd := &cobra.Command{
		Use:   "linear [method]",
		Short: "solve A·x = b (methods: gm, sim, zm)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var guess []float64
			m, err := solve(cmd, config.KindLinear, &pf, func(p *config.Problem) error {
				if len(args) == 1 {
					p.Method = args[0]
				}
				if cmd.Flags().Changed("matrix") {
					aug, err := parseMatrix(matrix)
					if err != nil {
						return err
					}
					p.Matrix = aug
				}
				if cmd.Flags().Changed("x0") {
					vs, err := parseVector(x0)
					if err != nil {
						return err
					}
					guess = vs
				}
				return nil
			})
			if err != nil || guess == nil {
				return err
			}

			lm := m.(*models.LinearModel)
			if err := lm.SetInitialGuess(guess); err != nil {
				return err
			}
			if err := lm.Calc(cmd.Context()); err != nil {
				return err
			}
			fmt.Println(viz.Separator(40))
			printRecord(lm.Title()+" (with x0)", automation.Record(lm), pf.rows)
			printStatus(lm)
			return nil
		},
	}
	pf.register(cmd)
	cmd.Flags().StringVar(&matrix, "matrix", "", `augmented matrix [A|b], rows separated by ';' (e.g. "4 1 5; 1 3 4")`)
	cmd.Flags().StringVar(&x0, "x0", "", "initial guess for iterative methods")
	return cmd
}
