package numeric

import (
	"errors"
	"fmt"
)

// Validation sentinels. Input is rejected before any iteration runs.
var (
	ErrInvalidTolerance     = errors.New("numeric: invalid tolerance")
	ErrInvalidIterLimit     = errors.New("numeric: invalid iteration limit")
	ErrInvalidInterval      = errors.New("numeric: invalid interval")
	ErrInvalidIntervals     = errors.New("numeric: invalid number of subintervals")
	ErrNoRootInInterval     = errors.New("numeric: no root in interval")
	ErrConvergenceCondition = errors.New("numeric: convergence condition not satisfied")
	ErrEquationCount        = errors.New("numeric: wrong number of equations")
	ErrDimensionMismatch    = errors.New("numeric: dimension mismatch")
	ErrInvalidExpression    = errors.New("numeric: invalid expression")
	ErrIndexOutOfRange      = errors.New("numeric: index out of range")
	ErrUnknownMethod        = errors.New("numeric: unknown method")
)

// Fault sentinels. Raised while iterating.
var (
	ErrZeroDenominator = errors.New("numeric: division by zero")
	ErrSingularMatrix  = errors.New("numeric: singular matrix")
	ErrDiverged        = errors.New("numeric: iteration diverged (NaN or Inf)")
)

// ValidationError reports inadmissible input. State is left untouched and
// the caller may retry with corrected input.
type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func Invalid(field string, err error, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Msg: fmt.Sprintf(format, args...), Err: err}
}

// FaultError wraps a numeric fault with the iteration it happened on.
type FaultError struct {
	Op   string
	Iter int
	Err  error
}

func (e *FaultError) Error() string {
	if e.Iter > 0 {
		return fmt.Sprintf("%s: iteration %d: %v", e.Op, e.Iter, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *FaultError) Unwrap() error {
	return e.Err
}

func Fault(op string, iter int, err error) *FaultError {
	return &FaultError{Op: op, Iter: iter, Err: err}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsFault(err error) bool {
	var fe *FaultError
	return errors.As(err, &fe)
}

const (
	KindValidation = "validation"
	KindNumeric    = "numeric"
)

var codes = map[string]error{
	"invalid_tolerance":     ErrInvalidTolerance,
	"invalid_iters_limit":   ErrInvalidIterLimit,
	"invalid_interval":      ErrInvalidInterval,
	"invalid_intervals":     ErrInvalidIntervals,
	"no_root_in_interval":   ErrNoRootInInterval,
	"convergence_condition": ErrConvergenceCondition,
	"equation_count":        ErrEquationCount,
	"dimension_mismatch":    ErrDimensionMismatch,
	"invalid_expression":    ErrInvalidExpression,
	"index_out_of_range":    ErrIndexOutOfRange,
	"unknown_method":        ErrUnknownMethod,
	"zero_denominator":      ErrZeroDenominator,
	"singular_matrix":       ErrSingularMatrix,
	"diverged":              ErrDiverged,
}

// Code returns the kind and stable code of a solver error. Errors outside
// the taxonomy yield empty strings.
func Code(err error) (kind, code string) {
	switch {
	case IsValidation(err):
		kind = KindValidation
	case IsFault(err):
		kind = KindNumeric
	default:
		return "", ""
	}
	for c, sentinel := range codes {
		if errors.Is(err, sentinel) {
			return kind, c
		}
	}
	return kind, ""
}

// FromCode rebuilds an error produced by Code on the other side of a wire.
func FromCode(kind, code, msg string) error {
	sentinel, ok := codes[code]
	if !ok {
		sentinel = errors.New(msg)
	}
	switch kind {
	case KindValidation:
		return &ValidationError{Msg: msg, Err: sentinel}
	case KindNumeric:
		return &FaultError{Op: "remote", Err: sentinel}
	default:
		return errors.New(msg)
	}
}
