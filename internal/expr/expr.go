// Package expr compiles user-entered formulas into callable functions.
//
// Formulas use the usual infix syntax with ** (or ^) for powers, e.g.
// "x**3 - 2*x - 5", "-x**2 + 4" or "cos(x - 1) - y - 1.2e0". Powers bind
// tighter than unary minus and group from the right. The constants pi and
// e and the functions registered in [Functions] are available.
package expr

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/Knetic/govaluate"

	"github.com/san-kum/compmath/internal/numeric"
)

// Func is a compiled formula over an ordered list of variables.
type Func struct {
	src  string
	vars []string
	expr *govaluate.EvaluableExpression
}

var constants = map[string]float64{
	"pi": math.Pi,
	"e":  math.E,
}

// Functions lists the callable names accepted in formulas.
var Functions = map[string]govaluate.ExpressionFunction{
	"sin":   unary(math.Sin),
	"cos":   unary(math.Cos),
	"tan":   unary(math.Tan),
	"asin":  unary(math.Asin),
	"acos":  unary(math.Acos),
	"atan":  unary(math.Atan),
	"sinh":  unary(math.Sinh),
	"cosh":  unary(math.Cosh),
	"tanh":  unary(math.Tanh),
	"exp":   unary(math.Exp),
	"log":   unary(math.Log),
	"ln":    unary(math.Log),
	"log10": unary(math.Log10),
	"sqrt":  unary(math.Sqrt),
	"abs":   unary(math.Abs),
	"floor": unary(math.Floor),
	"ceil":  unary(math.Ceil),
	"pow": func(args ...interface{}) (interface{}, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("pow expects 2 arguments, got %d", len(args))
		}
		return math.Pow(toFloat(args[0]), toFloat(args[1])), nil
	},
}

func unary(fn func(float64) float64) govaluate.ExpressionFunction {
	return func(args ...interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("expected 1 argument, got %d", len(args))
		}
		return fn(toFloat(args[0])), nil
	}
}

// Compile parses src and checks that it only references vars and known
// constants.
func Compile(src string, vars ...string) (*Func, error) {
	if strings.TrimSpace(src) == "" {
		return nil, numeric.Invalid("expression", numeric.ErrInvalidExpression, "empty expression")
	}

	canonical, err := normalize(src)
	if err != nil {
		return nil, numeric.Invalid("expression", numeric.ErrInvalidExpression, "invalid expression %q: %v", src, err)
	}
	parsed, err := govaluate.NewEvaluableExpressionWithFunctions(canonical, Functions)
	if err != nil {
		return nil, numeric.Invalid("expression", numeric.ErrInvalidExpression, "invalid expression %q: %v", src, err)
	}

	allowed := make(map[string]bool, len(vars)+len(constants))
	for _, v := range vars {
		allowed[v] = true
	}
	for c := range constants {
		allowed[c] = true
	}
	for _, name := range parsed.Vars() {
		if !allowed[name] {
			return nil, numeric.Invalid("expression", numeric.ErrInvalidExpression,
				"invalid expression %q: unknown variable %q (allowed: %s)", src, name, strings.Join(vars, ", "))
		}
	}

	return &Func{src: src, vars: append([]string(nil), vars...), expr: parsed}, nil
}

// MustCompile is Compile for formulas known at build time.
func MustCompile(src string, vars ...string) *Func {
	f, err := Compile(src, vars...)
	if err != nil {
		panic(err)
	}
	return f
}

// Valid reports whether src compiles over vars.
func Valid(src string, vars ...string) bool {
	_, err := Compile(src, vars...)
	return err == nil
}

func (f *Func) String() string { return f.src }

func (f *Func) Vars() []string { return append([]string(nil), f.vars...) }

// Eval evaluates the formula with args bound to the variables in order.
// A fresh parameter map is built per call so one Func may be shared
// between goroutines.
func (f *Func) Eval(args ...float64) (float64, error) {
	if len(args) != len(f.vars) {
		return math.NaN(), fmt.Errorf("expr: %q expects %d arguments, got %d", f.src, len(f.vars), len(args))
	}

	params := make(map[string]interface{}, len(f.vars)+len(constants))
	for name, v := range constants {
		params[name] = v
	}
	for i, name := range f.vars {
		params[name] = args[i]
	}

	v, err := f.expr.Evaluate(params)
	if err != nil {
		return math.NaN(), fmt.Errorf("expr: evaluate %q: %w", f.src, err)
	}

	switch t := v.(type) {
	case float64:
		return t, nil
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case bool:
		if t {
			return 1, nil
		}
		return 0, nil
	case string:
		parsed, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return math.NaN(), err
		}
		return parsed, nil
	default:
		return math.NaN(), fmt.Errorf("expr: %q did not return a number: %T", f.src, v)
	}
}

// Call evaluates a formula of one variable; evaluation failures yield NaN
// so the result plugs into gonum routines.
func (f *Func) Call(x float64) float64 {
	v, err := f.Eval(x)
	if err != nil {
		return math.NaN()
	}
	return v
}

// Call2 is Call for formulas of two variables.
func (f *Func) Call2(x, y float64) float64 {
	v, err := f.Eval(x, y)
	if err != nil {
		return math.NaN()
	}
	return v
}

// Unary compiles a formula of x and returns its plain function form.
func Unary(src string) (func(float64) float64, error) {
	f, err := Compile(src, "x")
	if err != nil {
		return nil, err
	}
	return f.Call, nil
}

// Names returns the registered function names, sorted.
func Names() []string {
	names := make([]string, 0, len(Functions))
	for name := range Functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func toFloat(v interface{}) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case string:
		f, _ := strconv.ParseFloat(t, 64)
		return f
	default:
		return math.NaN()
	}
}
