// Package tui is the interactive terminal front end. Each problem model is
// edited field by field; every accepted change recomputes the model and
// redraws its plot, table and convergence trace.
package tui

import (
	"context"
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/san-kum/compmath/internal/automation"
	"github.com/san-kum/compmath/internal/compute"
	"github.com/san-kum/compmath/internal/models"
	"github.com/san-kum/compmath/internal/numeric"
	"github.com/san-kum/compmath/internal/plot"
	"github.com/san-kum/compmath/internal/viz"
)

type screen int

const (
	screenMenu screen = iota
	screenModel
)

const tableRows = 8

type entry struct {
	name   string
	model  models.Model
	fields func() []field
}

type App struct {
	ctx     context.Context
	entries []entry
	track   *tracker

	screen  screen
	cursor  int
	active  int
	field   int
	editing bool
	buf     string
	frame   int

	autoCalc bool
	err      string
	theme    viz.Theme

	width  int
	height int
}

func New(ctx context.Context, backend compute.Backend, logger *zap.Logger) *App {
	root := models.NewRootModel(backend, logger)
	system := models.NewSystemModel(backend, logger)
	integral := models.NewIntegralModel(backend, logger)
	linear := models.NewLinearModel(backend, logger)

	a := &App{
		ctx:   ctx,
		track: &tracker{},
		entries: []entry{
			{name: "root", model: root, fields: func() []field { return rootFields(root) }},
			{name: "system", model: system, fields: func() []field { return systemFields(system) }},
			{name: "integral", model: integral, fields: func() []field { return integralFields(integral) }},
			{name: "linear", model: linear, fields: func() []field { return linearFields(linear) }},
		},
		autoCalc: true,
		theme:    viz.CurrentTheme,
		width:    100,
		height:   40,
	}
	for _, e := range a.entries {
		e.model.AddObserver(a.track)
	}
	return a
}

// Run starts the program on the alternate screen and blocks until quit.
func Run(ctx context.Context, backend compute.Backend, logger *zap.Logger) error {
	p := tea.NewProgram(New(ctx, backend, logger), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func (a *App) Init() tea.Cmd { return nil }

func (a *App) current() entry { return a.entries[a.active] }

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		return a, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return a, tea.Quit
		}
		switch a.screen {
		case screenMenu:
			return a.menuKey(msg)
		case screenModel:
			if a.editing {
				return a.editKey(msg)
			}
			return a.modelKey(msg)
		}
	}
	return a, nil
}

func (a *App) menuKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return a, tea.Quit
	case "up", "k":
		if a.cursor > 0 {
			a.cursor--
		}
	case "down", "j":
		if a.cursor < len(a.entries)-1 {
			a.cursor++
		}
	case "enter", " ":
		a.active = a.cursor
		a.screen = screenModel
		a.field = 0
		if automation.Record(a.current().model) == nil {
			a.recalc()
		}
	}
	return a, nil
}

func (a *App) modelKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	fields := a.current().fields()
	switch msg.String() {
	case "q", "esc":
		a.screen = screenMenu
		a.err = ""
	case "up", "k":
		if a.field > 0 {
			a.field--
		}
	case "down", "j":
		if a.field < len(fields)-1 {
			a.field++
		}
	case "enter", "e":
		a.editing = true
		a.buf = fields[a.field].get()
	case "m":
		a.cycleMethod()
	case "c":
		a.recalc()
	case "a":
		a.autoCalc = !a.autoCalc
	case "p":
		if im, ok := a.current().model.(*models.IntegralModel); ok {
			if err := im.CalcProperties(a.ctx); err != nil && !numeric.IsValidation(err) {
				a.err = err.Error()
			}
			a.track.dirty = false
		}
	case "[":
		if a.frame > 0 {
			a.frame--
		}
	case "]":
		if a.frame < len(a.frames())-1 {
			a.frame++
		}
	case "t":
		a.theme = viz.NextTheme(a.theme)
	}
	a.afterChange()
	return a, nil
}

func (a *App) editKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		a.editing = false
		a.apply(a.buf)
		a.buf = ""
	case tea.KeyEsc:
		a.editing = false
		a.buf = ""
	case tea.KeyBackspace:
		if r := []rune(a.buf); len(r) > 0 {
			a.buf = string(r[:len(r)-1])
		}
	case tea.KeyCtrlU:
		a.buf = ""
	case tea.KeySpace:
		a.buf += " "
	case tea.KeyRunes:
		a.buf += string(msg.Runes)
	}
	return a, nil
}

// apply hands the edited text to the focused field's setter. Validation
// messages arrive through the tracker; parse errors are shown directly.
func (a *App) apply(text string) {
	fields := a.current().fields()
	if a.field >= len(fields) {
		return
	}
	a.err = ""
	if err := fields[a.field].set(text); err != nil && !numeric.IsValidation(err) {
		a.err = err.Error()
	}
	a.afterChange()
}

func (a *App) afterChange() {
	if n := len(a.current().fields()); a.field >= n {
		a.field = n - 1
	}
	if a.track.dirty && a.autoCalc {
		a.recalc()
	}
}

func (a *App) cycleMethod() {
	m := a.current().model
	choices := methodChoices(m)
	if len(choices) == 0 {
		return
	}
	var cur string
	switch mm := m.(type) {
	case *models.IntegralModel:
		cur = mm.Method()
	case *models.LinearModel:
		cur = mm.Method()
	}
	next := choices[0]
	for i, c := range choices {
		if c == cur {
			next = choices[(i+1)%len(choices)]
		}
	}
	for i, f := range a.current().fields() {
		if f.label == "method" {
			a.field = i
			a.apply(next)
			return
		}
	}
}

// recalc runs Calc on the active model. Calc itself reports a change, so
// the dirty flag is cleared afterwards to avoid a second pass.
func (a *App) recalc() {
	a.err = ""
	a.track.lastError = ""
	err := a.current().model.Calc(a.ctx)
	a.track.dirty = false
	if err != nil && !numeric.IsValidation(err) {
		a.err = err.Error()
	}
	a.frame = max(0, len(a.frames())-1)
}

func (a *App) frames() []*plot.Graphic {
	switch m := a.current().model.(type) {
	case *models.RootModel:
		return m.Graphics()
	case *models.SystemModel:
		return m.Graphics()
	case *models.IntegralModel:
		if m.Result() != nil {
			return []*plot.Graphic{m.Result().Graphic()}
		}
	}
	return nil
}

// trace returns the per-iteration convergence measure of the last result.
func (a *App) trace() []float64 {
	var out []float64
	switch m := a.current().model.(type) {
	case *models.RootModel:
		if r := m.Result(); r != nil {
			for _, row := range r.Table {
				out = append(out, math.Abs(row.FX))
			}
		}
	case *models.SystemModel:
		if r := m.Result(); r != nil {
			for _, row := range r.Table {
				out = append(out, row.Delta)
			}
		}
	case *models.LinearModel:
		if r := m.Result(); r != nil {
			for _, row := range r.Table {
				out = append(out, row.Delta)
			}
		}
	}
	return out
}

func (a *App) View() string {
	switch a.screen {
	case screenModel:
		return a.viewModel()
	default:
		return a.viewMenu()
	}
}

func (a *App) viewMenu() string {
	var b strings.Builder
	b.WriteString("\n  " + viz.GradientText("compmath", a.theme.Primary, a.theme.Secondary) + "\n\n")
	for i, e := range a.entries {
		line := fmt.Sprintf("%-9s %s", e.name, viz.Subtle.Render(e.model.Title()))
		if i == a.cursor {
			b.WriteString("  " + viz.Selected.Render("▸ "+line) + "\n")
		} else {
			b.WriteString("    " + line + "\n")
		}
	}
	b.WriteString("\n  " + viz.KeyHint.Render("↑/↓ select · enter open · q quit") + "\n")
	return b.String()
}

func (a *App) viewModel() string {
	e := a.current()
	var b strings.Builder

	b.WriteString(viz.Title.Render(e.model.Title()) + "  " + viz.Subtle.Render(e.model.Description()) + "\n\n")

	var left strings.Builder
	for i, f := range e.fields() {
		value := f.get()
		if a.editing && i == a.field {
			value = a.buf + "▏"
		}
		line := fmt.Sprintf("%-12s %s", f.label, value)
		if i == a.field {
			left.WriteString(viz.Selected.Render("▸ "+line) + "\n")
		} else {
			left.WriteString("  " + line + "\n")
		}
	}
	left.WriteString("\n" + a.viewStatus())

	panes := []string{viz.Panel.Render(left.String())}
	if frames := a.frames(); len(frames) > 0 {
		w := max(20, a.width/2-4)
		canvas := viz.RenderGraphic(frames[a.frame], w, 12, a.theme)
		caption := viz.Subtle.Render(fmt.Sprintf("frame %d/%d", a.frame+1, len(frames)))
		panes = append(panes, viz.Panel.Render(canvas+caption))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, panes...) + "\n")

	if tr := a.trace(); len(tr) > 0 {
		b.WriteString(viz.MetricLabel.Render("trace ") + viz.SparklineChart(viz.Log10(tr), 40) + "\n")
	}
	if rec := automation.Record(e.model); rec != nil {
		b.WriteString(viz.Table(rec.Header, rec.Rows, tableRows) + "\n")
	}
	if im, ok := e.model.(*models.IntegralModel); ok && im.Properties() != nil {
		p := im.Properties()
		b.WriteString(viz.KeyValues(map[string]float64{
			"reference_result": p.Reference,
			"arc_length":       p.ArcLength,
			"volume":           p.Volume,
			"surface_area":     p.SurfaceArea,
		}) + "\n")
	}

	auto := "off"
	if a.autoCalc {
		auto = "on"
	}
	b.WriteString(viz.KeyHint.Render(fmt.Sprintf(
		"↑/↓ field · enter edit · m method · c calc · a auto(%s) · p properties · [ ] frame · t theme · esc back", auto)))
	return b.String()
}

func budget(iters, limit int) string {
	if limit <= 0 {
		return ""
	}
	return viz.ProgressBar(float64(iters)/float64(limit), 20)
}

func (a *App) viewStatus() string {
	switch {
	case a.track.lastError != "":
		return viz.StatusError.Render("✗ " + a.track.lastError)
	case a.err != "":
		return viz.StatusError.Render("✗ " + a.err)
	}

	switch m := a.current().model.(type) {
	case *models.RootModel:
		if r := m.Result(); r != nil {
			return viz.Status(r.Converged, r.Iters) + " " + budget(r.Iters, m.ItersLimit()) + "\n" + viz.Metric("x", r.Result)
		}
	case *models.SystemModel:
		if r := m.Result(); r != nil {
			return viz.Status(r.Converged, r.Iters) + " " + budget(r.Iters, m.ItersLimit()) + "\n" + viz.Metric("x", r.Result[0]) + "  " + viz.Metric("y", r.Result[1])
		}
	case *models.IntegralModel:
		if r := m.Result(); r != nil {
			return viz.Metric("result", r.Result) + "\n" + viz.Metric("reference", r.Reference) + "\n" +
				viz.Metric("abs Δ", r.AbsDelta) + "  " + viz.Metric("rel Δ", r.RelativeDelta)
		}
	case *models.LinearModel:
		if r := m.Result(); r != nil {
			return viz.Status(r.Converged, r.Iters) + " " + budget(r.Iters, m.ItersLimit()) + "\n" + viz.MetricLabel.Render("x: ") +
				viz.MetricValue.Render(formatFloats(r.Result)) + "\n" + viz.Metric("residual", r.Residual)
		}
	}
	return viz.Subtle.Render("not calculated")
}
