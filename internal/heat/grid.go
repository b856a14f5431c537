package heat

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// StepParams are the dimensionless step sizes of one run.
type StepParams struct {
	Q  float64
	Dx float64
	Dt float64
}

// NewStepParams derives dx = 1/(N-1) and dt = q·dx² for ratio q.
func NewStepParams(c PhysicalConstants, q float64) (StepParams, error) {
	if c.N < 3 {
		return StepParams{}, fmt.Errorf("%w: n must be >= 3, got %d", ErrInvalidConfig, c.N)
	}
	if err := validateRatio(q); err != nil {
		return StepParams{}, err
	}
	dx := 1 / float64(c.N-1)
	return StepParams{Q: q, Dx: dx, Dt: q * dx * dx}, nil
}

// Beta is dt/dx², the mesh ratio of the explicit and implicit stencils.
func (p StepParams) Beta() float64 {
	return p.Dt / (p.Dx * p.Dx)
}

// Validate checks the step sizes independently of how they were built.
func (p StepParams) Validate() error {
	if !(p.Dx > 0) || !(p.Dt > 0) || math.IsInf(p.Dx, 0) || math.IsInf(p.Dt, 0) {
		return fmt.Errorf("%w: dx and dt must be positive, got dx=%g dt=%g", ErrInvalidConfig, p.Dx, p.Dt)
	}
	return nil
}

// Rows is the number of grid rows needed to reach t_a: ⌊t_a/dt⌋+1.
func Rows(c PhysicalConstants, dt float64) int {
	return int(math.Floor(c.Duration/dt)) + 1
}

// NewGrid allocates a rows×N grid with every sample set to value.
func NewGrid(rows, n int, value float64) *mat.Dense {
	data := make([]float64, rows*n)
	if value != 0 {
		for i := range data {
			data[i] = value
		}
	}
	return mat.NewDense(rows, n, data)
}

// DenormalizeGrid returns a new grid in °C. The input is not modified.
func DenormalizeGrid(c PhysicalConstants, g mat.Matrix) *mat.Dense {
	var out mat.Dense
	out.Apply(func(_, _ int, v float64) float64 {
		return c.DenormalizeTemperature(v)
	}, g)
	return &out
}

// NormalizeGrid is the inverse of DenormalizeGrid.
func NormalizeGrid(c PhysicalConstants, g mat.Matrix) *mat.Dense {
	var out mat.Dense
	out.Apply(func(_, _ int, v float64) float64 {
		return c.NormalizeTemperature(v)
	}, g)
	return &out
}

// Axis returns the N normalized positions j/(N-1).
func Axis(c PhysicalConstants) []float64 {
	x := make([]float64, c.N)
	last := float64(c.N - 1)
	for j := range x {
		x[j] = float64(j) / last
	}
	return x
}

// PhysicalAxis returns the positions in metres.
func PhysicalAxis(c PhysicalConstants) []float64 {
	x := Axis(c)
	for j := range x {
		x[j] = c.DenormalizeDistance(x[j])
	}
	return x
}

// CheckShape reports whether g has N columns.
func CheckShape(c PhysicalConstants, g mat.Matrix) error {
	if _, cols := g.Dims(); cols != c.N {
		return fmt.Errorf("%w: %d columns, n=%d", ErrShapeMismatch, cols, c.N)
	}
	return nil
}
