package integrators

import (
	"context"

	"github.com/san-kum/tissueheat/internal/heat"
	"gonum.org/v1/gonum/mat"
)

// Explicit is the forward-time centred-space scheme. It is only stable for
// dt/dx² <= 1/2; larger ratios diverge and are returned as computed.
type Explicit struct{}

func NewExplicit() *Explicit {
	return &Explicit{}
}

func (e *Explicit) Name() string { return SchemeExplicit }

func (e *Explicit) Integrate(ctx context.Context, c heat.PhysicalConstants, p heat.StepParams) (*mat.Dense, error) {
	rows, err := prepare(c, p)
	if err != nil {
		return nil, err
	}

	tb := c.NormalizeTemperature(c.BodyTemp)
	g := heat.NewGrid(rows, c.N, tb)
	beta := p.Beta()

	for i := 1; i < rows; i++ {
		if err := poll(ctx, i); err != nil {
			return nil, err
		}
		ExplicitStep(g.RawRowView(i), g.RawRowView(i-1), beta, p.Dt, tb)
	}
	return g, nil
}

// ExplicitStep writes the next profile into next from now.
func ExplicitStep(next, now []float64, beta, dt, boundary float64) {
	n := len(now)
	next[0] = boundary
	next[n-1] = boundary
	for j := 1; j < n-1; j++ {
		next[j] = beta*(now[j+1]-2*now[j]+now[j-1]) + dt + now[j]
	}
}
