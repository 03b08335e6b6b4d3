package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/compmath/internal/automation"
	"github.com/san-kum/compmath/internal/config"
	"github.com/san-kum/compmath/internal/export"
	"github.com/san-kum/compmath/internal/viz"
)

func scenarioCmd() *cobra.Command {
	var (
		save bool
		rows int
	)
	cmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted sequence of problems from a yaml file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := automation.LoadScenario(args[0])
			if err != nil {
				return err
			}
			if save {
				for i := range sc.Steps {
					sc.Steps[i].Save = true
				}
			}
			st, err := openStore()
			if err != nil {
				return err
			}

			fmt.Println(viz.GradientText(sc.Name, viz.CurrentTheme.Primary, viz.CurrentTheme.Secondary))
			if sc.Description != "" {
				fmt.Println(viz.Subtle.Render(sc.Description))
			}

			results, runErr := automation.NewRunner(backend, st, logger).WithConfig(cfg).Run(cmd.Context(), sc)
			for _, r := range results {
				fmt.Println(viz.Separator(50))
				fmt.Printf("%d. %s\n", r.Index+1, viz.HeaderStyle.Render(r.Name))
				if r.Err != nil {
					fmt.Println(viz.StatusError.Render(r.Err.Error()))
					continue
				}
				printRecord(r.Model.Title(), r.Record, rows)
				printStatus(r.Model)
				if r.Properties != nil {
					fmt.Println(viz.KeyValues(map[string]float64{
						"arc_length":   r.Properties.ArcLength,
						"volume":       r.Properties.Volume,
						"surface_area": r.Properties.SurfaceArea,
					}))
				}
				if chart := viz.SweepChart(r.Sweep, 60, 8); chart != "" {
					fmt.Println(chart)
				}
				if r.RunID != "" {
					fmt.Printf("run id: %s\n", r.RunID)
				}
			}

			failed := 0
			for _, r := range results {
				if r.Err != nil {
					failed++
				}
			}
			fmt.Println(viz.Separator(50))
			fmt.Printf("%d steps, %d failed\n", len(results), failed)
			return runErr
		},
	}
	cmd.Flags().BoolVar(&save, "save", false, "save every step regardless of the scenario")
	cmd.Flags().IntVar(&rows, "rows", 8, "maximum table rows per step (0 for all)")
	return cmd
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			runs, err := st.List()
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Println("no runs found")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tKIND\tMETHOD\tTIME\tITERS\tCONVERGED")
			for _, run := range runs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%t\n",
					run.ID,
					run.Kind,
					run.Method,
					run.Timestamp.Format("2006-01-02 15:04:05"),
					run.Iters,
					run.Converged,
				)
			}
			return w.Flush()
		},
	}
}

func plotCmd() *cobra.Command {
	var width, height int
	cmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "draw a saved run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			meta, err := st.Load(args[0])
			if err != nil {
				return err
			}
			header, rows, err := st.LoadTable(args[0])
			if err != nil {
				return err
			}
			g, err := st.LoadGraphic(args[0])
			if err != nil {
				return err
			}

			fmt.Println(viz.Title.Render(fmt.Sprintf("%s (%s)", meta.Kind, meta.Method)))
			if g != nil {
				fmt.Println(viz.RenderGraphic(g, width, height, viz.CurrentTheme))
			}
			if chart := viz.DeltaChart(traceOf(meta.Kind, header, rows), width, 8); chart != "" {
				fmt.Println(chart)
			}
			if g == nil && len(rows) == 0 {
				fmt.Println(viz.Subtle.Render("nothing to draw"))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&width, "width", 60, "plot width in cells")
	cmd.Flags().IntVar(&height, "height", 16, "plot height in cells")
	return cmd
}

// output opens path for writing, or stdout when path is empty.
func output(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func exportJSONCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a saved run with its table and plot as json",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			w, err := output(out)
			if err != nil {
				return err
			}
			if err := st.ExportJSON(w, args[0]); err != nil {
				_ = w.Close()
				return err
			}
			if err := w.Close(); err != nil {
				return err
			}
			if out != "" {
				fmt.Printf("exported to %s\n", out)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}

func exportSVGCmd() *cobra.Command {
	var (
		out           string
		width, height int
		dots          bool
	)
	cmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export the plot of a saved run as svg",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			g, err := st.LoadGraphic(args[0])
			if err != nil {
				return err
			}
			if g == nil {
				return errors.New("run has no plot")
			}

			var svg string
			if dots {
				canvas := viz.NewCanvas(width/8, height/8)
				canvas.DrawGraphic(g, viz.CurrentTheme)
				svg = export.CanvasToSVG(canvas, 4, string(viz.CurrentTheme.Secondary))
			} else {
				svg = export.GraphicToSVG(g, width, height)
			}

			w, err := output(out)
			if err != nil {
				return err
			}
			if _, err := io.WriteString(w, svg); err != nil {
				_ = w.Close()
				return err
			}
			if err := w.Close(); err != nil {
				return err
			}
			if out != "" {
				fmt.Printf("exported to %s\n", out)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	cmd.Flags().IntVar(&width, "width", 640, "image width in pixels")
	cmd.Flags().IntVar(&height, "height", 480, "image height in pixels")
	cmd.Flags().BoolVar(&dots, "dots", false, "render the braille raster instead of vector paths")
	return cmd
}

func presetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets [kind]",
		Short: "list built-in and configured problem presets",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds := config.Kinds()
			if len(args) == 1 {
				kinds = args[:1]
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "KIND\tPRESET\tMETHOD\tDEFINITION")
			for _, kind := range kinds {
				if !slices.Contains(config.Kinds(), kind) {
					return fmt.Errorf("unknown problem kind %q", kind)
				}
				names := config.ListPresets(kind)
				var custom []string
				for name, p := range cfg.Problems {
					if p.Kind == kind && !slices.Contains(names, name) {
						custom = append(custom, name)
					}
				}
				sort.Strings(custom)
				names = append(names, custom...)
				for _, name := range names {
					p := cfg.Problem(kind, name)
					if p == nil {
						continue
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", kind, name, p.Method, describe(p))
				}
			}
			return w.Flush()
		},
	}
}

func describe(p *config.Problem) string {
	switch p.Kind {
	case config.KindSystem:
		return fmt.Sprintf("%v", p.Equations)
	case config.KindLinear:
		return fmt.Sprintf("%d×%d", len(p.Matrix), len(p.Matrix))
	default:
		if len(p.Interval) == 2 {
			return fmt.Sprintf("%s on [%g, %g]", p.Fx, p.Interval[0], p.Interval[1])
		}
		return p.Fx
	}
}
