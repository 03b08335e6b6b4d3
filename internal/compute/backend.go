package compute

import (
	"context"

	"github.com/san-kum/compmath/internal/quadrature"
)

// Backend runs one computation per call. Validation failures come back as
// *numeric.ValidationError and numeric faults as *numeric.FaultError, on
// every implementation.
type Backend interface {
	Name() string
	Secant(ctx context.Context, req *SecantRequest) (*SecantResponse, error)
	Newton(ctx context.Context, req *NewtonRequest) (*NewtonResponse, error)
	Integrate(ctx context.Context, req *IntegralRequest) (*IntegralResponse, error)
	Properties(ctx context.Context, req *PropertiesRequest) (*quadrature.Properties, error)
	Linear(ctx context.Context, req *LinearRequest) (*LinearResponse, error)
}
