package tui

import (
	"bytes"
	"context"
	"math"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/compmath/internal/compute"
	"github.com/san-kum/compmath/internal/models"
)

func newApp() *App {
	return New(context.Background(), compute.NewLocal(nil), nil)
}

func press(a *App, keys ...string) {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "ctrl+u":
			msg = tea.KeyMsg{Type: tea.KeyCtrlU}
		case "backspace":
			msg = tea.KeyMsg{Type: tea.KeyBackspace}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		a.Update(msg)
	}
}

func TestOpenComputesModel(t *testing.T) {
	a := newApp()
	press(a, "enter")

	if a.screen != screenModel || a.active != 0 {
		t.Fatalf("expected root model screen, got screen=%d active=%d", a.screen, a.active)
	}
	root := a.current().model.(*models.RootModel)
	if root.Result() == nil {
		t.Fatal("opening a model should compute it")
	}
	if a.frame != len(root.Graphics())-1 {
		t.Errorf("frame = %d, want last of %d", a.frame, len(root.Graphics()))
	}
	if !strings.Contains(a.View(), "converged") {
		t.Error("view should show the convergence status")
	}
}

func TestEditRecomputes(t *testing.T) {
	a := newApp()
	press(a, "enter")
	press(a, "enter", "ctrl+u", "x - 0.5", "enter")

	root := a.current().model.(*models.RootModel)
	if root.Fx() != "x - 0.5" {
		t.Fatalf("fx = %q", root.Fx())
	}
	if math.Abs(root.Result().Result-0.5) > 1e-9 {
		t.Errorf("root = %f, want 0.5", root.Result().Result)
	}
	if a.track.calculated < 2 {
		t.Errorf("expected two calculations, got %d", a.track.calculated)
	}
}

func TestValidationShownAndStateKept(t *testing.T) {
	a := newApp()
	press(a, "enter")
	press(a, "down", "enter", "ctrl+u", "5", "enter")

	root := a.current().model.(*models.RootModel)
	if lo, _ := root.Interval(); lo != 0 {
		t.Errorf("interval start changed to %f", lo)
	}
	if a.track.lastError == "" {
		t.Fatal("expected a validation message")
	}
	if !strings.Contains(a.View(), "✗") {
		t.Error("view should show the error")
	}
}

func TestParseErrorShown(t *testing.T) {
	a := newApp()
	press(a, "enter")
	press(a, "down", "enter", "ctrl+u", "abc", "enter")

	if !strings.Contains(a.err, "not a number") {
		t.Errorf("err = %q", a.err)
	}
}

func TestEditCancel(t *testing.T) {
	a := newApp()
	press(a, "enter")
	before := a.track.calculated
	press(a, "enter", "zz", "backspace", "esc")

	if a.editing {
		t.Error("esc should leave edit mode")
	}
	if a.track.calculated != before {
		t.Error("cancelled edit must not recompute")
	}
}

func TestCycleMethod(t *testing.T) {
	a := newApp()
	press(a, "down", "down", "enter")

	im := a.current().model.(*models.IntegralModel)
	before := im.Method()
	press(a, "m")
	if im.Method() == before {
		t.Error("method did not change")
	}
	if im.Result() == nil || a.current().fields()[a.field].label != "method" {
		t.Error("cycling should recompute and focus the method field")
	}

	press(a, "p")
	if im.Properties() == nil {
		t.Error("properties not computed")
	}
}

func TestLinearResizeUpdatesFields(t *testing.T) {
	a := newApp()
	press(a, "down", "down", "down", "enter")

	lm := a.current().model.(*models.LinearModel)
	n := len(a.current().fields())
	press(a, "down", "enter", "ctrl+u", "2", "enter")

	if lm.Size() != 2 {
		t.Fatalf("size = %d", lm.Size())
	}
	if got := len(a.current().fields()); got != n-1 {
		t.Errorf("fields = %d, want %d", got, n-1)
	}
	if lm.Result() == nil {
		t.Error("resize should recompute")
	}
}

func TestAutoCalcOff(t *testing.T) {
	a := newApp()
	press(a, "enter", "a")
	before := a.track.calculated
	press(a, "enter", "ctrl+u", "x - 0.25", "enter")

	if a.track.calculated != before {
		t.Error("auto calc off should not recompute")
	}
	press(a, "c")
	if a.track.calculated != before+1 {
		t.Error("c should recompute")
	}
}

func TestFramesAndTheme(t *testing.T) {
	a := newApp()
	press(a, "enter")
	last := a.frame
	press(a, "[")
	if last > 0 && a.frame != last-1 {
		t.Errorf("frame = %d, want %d", a.frame, last-1)
	}
	press(a, "]", "]")
	if a.frame != last {
		t.Errorf("frame = %d, want %d", a.frame, last)
	}

	theme := a.theme.Name
	press(a, "t")
	if a.theme.Name == theme {
		t.Error("theme did not change")
	}
}

func TestMenuNavigation(t *testing.T) {
	a := newApp()
	press(a, "up", "down", "down", "down", "down", "down")
	if a.cursor != len(a.entries)-1 {
		t.Errorf("cursor = %d", a.cursor)
	}
	press(a, "enter", "esc")
	if a.screen != screenMenu {
		t.Error("esc should return to the menu")
	}
	if !strings.Contains(a.View(), "compmath") && !strings.Contains(a.View(), "linear") {
		t.Error("menu view missing entries")
	}

	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Error("ctrl+c should quit")
	}
}

func TestViewsRender(t *testing.T) {
	a := newApp()
	a.Update(tea.WindowSizeMsg{Width: 120, Height: 50})
	for i := range a.entries {
		a.cursor = i
		press(a, "enter")
		if a.View() == "" {
			t.Errorf("%s view is empty", a.entries[i].name)
		}
		press(a, "esc")
	}
}

func TestConsole(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, "root")

	m := models.NewRootModel(nil, nil)
	m.AddObserver(c)
	if err := m.Calc(context.Background()); err != nil {
		t.Fatal(err)
	}
	_ = m.SetEps(-1)

	out := buf.String()
	for _, want := range []string{"root: calculated", "root: model changed", "root: validation error"} {
		if !strings.Contains(out, want) {
			t.Errorf("console output missing %q:\n%s", want, out)
		}
	}
}
