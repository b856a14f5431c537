package integrators

import (
	"context"
	"errors"
	"fmt"

	"github.com/san-kum/tissueheat/internal/heat"
	"gonum.org/v1/gonum/mat"
)

const (
	SchemeExplicit = "explicit"
	SchemeImplicit = "implicit"
	SchemeCrank    = "crank"
)

// pollEvery is how many rows are computed between context checks.
const pollEvery = 1024

// ErrUnknownScheme indicates a scheme name the registry does not know.
var ErrUnknownScheme = errors.New("integrators: unknown scheme")

// Scheme produces the full normalized temperature grid of one run.
type Scheme interface {
	Name() string
	Integrate(ctx context.Context, c heat.PhysicalConstants, p heat.StepParams) (*mat.Dense, error)
}

// StepError wraps a failure of a single time step.
type StepError struct {
	Scheme string
	Row    int
	Err    error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: row %d: %v", e.Scheme, e.Row, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// prepare validates the run before any allocation and returns the row count.
func prepare(c heat.PhysicalConstants, p heat.StepParams) (int, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}
	if err := p.Validate(); err != nil {
		return 0, err
	}
	return heat.Rows(c, p.Dt), nil
}

func poll(ctx context.Context, row int) error {
	if (row-1)%pollEvery != 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("row %d: %w", row, err)
	}
	return nil
}
