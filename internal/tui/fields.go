package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/san-kum/compmath/internal/models"
	"github.com/san-kum/compmath/internal/quadrature"
	"github.com/san-kum/compmath/internal/slat"
)

// field is one editable parameter of a model.
type field struct {
	label string
	get   func() string
	set   func(string) error
}

func parseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	return v, nil
}

func parseInt(s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("not an integer: %q", s)
	}
	return v, nil
}

func parseFloats(s string) ([]float64, error) {
	parts := strings.Fields(strings.ReplaceAll(s, ",", " "))
	out := make([]float64, len(parts))
	for i, p := range parts {
		v, err := parseFloat(p)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func formatFloats(vs []float64) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, " ")
}

func fmtFloat(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

func commonFields(m models.Model) []field {
	return []field{
		{
			label: "eps",
			get:   func() string { return fmtFloat(m.Eps()) },
			set: func(s string) error {
				v, err := parseFloat(s)
				if err != nil {
					return err
				}
				return m.SetEps(v)
			},
		},
		{
			label: "iters limit",
			get:   func() string { return strconv.Itoa(m.ItersLimit()) },
			set: func(s string) error {
				v, err := parseInt(s)
				if err != nil {
					return err
				}
				return m.SetItersLimit(v)
			},
		},
	}
}

func intervalFields(get func() (float64, float64), set func(a, b float64) error) []field {
	return []field{
		{
			label: "a",
			get:   func() string { a, _ := get(); return fmtFloat(a) },
			set: func(s string) error {
				v, err := parseFloat(s)
				if err != nil {
					return err
				}
				_, b := get()
				return set(v, b)
			},
		},
		{
			label: "b",
			get:   func() string { _, b := get(); return fmtFloat(b) },
			set: func(s string) error {
				v, err := parseFloat(s)
				if err != nil {
					return err
				}
				a, _ := get()
				return set(a, v)
			},
		},
	}
}

func rootFields(m *models.RootModel) []field {
	fs := []field{{label: "f(x)", get: m.Fx, set: m.SetFx}}
	fs = append(fs, intervalFields(m.Interval, m.SetInterval)...)
	return append(fs, commonFields(m)...)
}

func systemFields(m *models.SystemModel) []field {
	fs := make([]field, 0, 6)
	for i := range m.Equations() {
		fs = append(fs, field{
			label: fmt.Sprintf("f%d(x, y)", i+1),
			get:   func() string { return m.Equations()[i] },
			set:   func(s string) error { return m.SetEquation(i, s) },
		})
	}
	fs = append(fs, field{
		label: "x0 y0",
		get:   func() string { x, y := m.InitialGuess(); return formatFloats([]float64{x, y}) },
		set: func(s string) error {
			vs, err := parseFloats(s)
			if err != nil {
				return err
			}
			if len(vs) != 2 {
				return fmt.Errorf("need two values, got %d", len(vs))
			}
			return m.SetInitialGuess(vs[0], vs[1])
		},
	})
	return append(fs, commonFields(m)...)
}

func integralFields(m *models.IntegralModel) []field {
	fs := []field{
		{
			label: "method",
			get:   m.Method,
			set:   m.SetMethod,
		},
		{label: "f(x)", get: m.Fx, set: m.SetFx},
	}
	fs = append(fs, intervalFields(m.Interval, m.SetInterval)...)
	return append(fs, field{
		label: "intervals",
		get:   func() string { return strconv.Itoa(m.Intervals()) },
		set: func(s string) error {
			v, err := parseInt(s)
			if err != nil {
				return err
			}
			return m.SetIntervals(v)
		},
	})
}

// linearFields rebuilds on every call since the row count follows the
// matrix size.
func linearFields(m *models.LinearModel) []field {
	fs := []field{
		{label: "method", get: m.Method, set: m.SetMethod},
		{
			label: "size",
			get:   func() string { return strconv.Itoa(m.Size()) },
			set: func(s string) error {
				v, err := parseInt(s)
				if err != nil {
					return err
				}
				return m.Resize(v)
			},
		},
	}
	for i := 0; i < m.Size(); i++ {
		fs = append(fs, field{
			label: fmt.Sprintf("row %d [A|b]", i+1),
			get:   func() string { return formatFloats(m.Matrix()[i]) },
			set: func(s string) error {
				vs, err := parseFloats(s)
				if err != nil {
					return err
				}
				aug := m.Matrix()
				if len(vs) != len(aug[i]) {
					return fmt.Errorf("row needs %d values, got %d", len(aug[i]), len(vs))
				}
				aug[i] = vs
				return m.SetMatrix(aug)
			},
		})
	}
	fs = append(fs, field{
		label: "x0",
		get:   func() string { return formatFloats(m.InitialGuess()) },
		set: func(s string) error {
			vs, err := parseFloats(s)
			if err != nil {
				return err
			}
			return m.SetInitialGuess(vs)
		},
	})
	return append(fs, commonFields(m)...)
}

// methodChoices lists the selectable methods of a model, if any.
func methodChoices(m models.Model) []string {
	switch m.(type) {
	case *models.IntegralModel:
		return quadrature.Names()
	case *models.LinearModel:
		return slat.Names()
	}
	return nil
}
