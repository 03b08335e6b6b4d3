// Package numeric provides the shared primitives of the solver layer.
//
// The package defines the vector type used by iterative methods and the
// error taxonomy every solver reports through:
//
//   - [Vector]: approximation vector of an iterative method
//   - [ValidationError]: inadmissible input, recoverable by the caller
//   - [FaultError]: numeric fault raised while iterating
//
// Sentinel errors identify the exact failure and survive wrapping, so
// callers test them with errors.Is:
//
//	res, err := nonlinear.Secant(f, a, b, eps, limit, nil)
//	if errors.Is(err, numeric.ErrNoRootInInterval) {
//		// ask for another interval
//	}
//
// [Code] and [FromCode] translate errors to and from the stable string
// codes used on the HTTP boundary.
package numeric
