package integrators

import (
	"context"

	"github.com/san-kum/tissueheat/internal/heat"
	"github.com/san-kum/tissueheat/internal/linsolve"
	"gonum.org/v1/gonum/mat"
)

// CrankNicolson averages the forward and backward stencils with
// β = dt/(2dx²). It solves for the rise above body temperature, starting
// from zero, and adds the normalized body temperature once the whole grid is
// computed.
type CrankNicolson struct {
	cache *MatrixCache
}

// NewCrankNicolson uses cache for the system matrix; a nil cache gets a private one.
func NewCrankNicolson(cache *MatrixCache) *CrankNicolson {
	if cache == nil {
		cache = NewMatrixCache()
	}
	return &CrankNicolson{cache: cache}
}

func (s *CrankNicolson) Name() string { return SchemeCrank }

func (s *CrankNicolson) Integrate(ctx context.Context, c heat.PhysicalConstants, p heat.StepParams) (*mat.Dense, error) {
	rows, err := prepare(c, p)
	if err != nil {
		return nil, err
	}

	beta := p.Dt / (2 * p.Dx * p.Dx)
	n := c.N - 2
	last := c.N - 1
	A := s.cache.Crank(n, beta)

	g := heat.NewGrid(rows, c.N, 0)
	rhs := make([]float64, n)

	for i := 1; i < rows; i++ {
		if err := poll(ctx, i); err != nil {
			return nil, err
		}

		now := g.RawRowView(i - 1)
		for j := 0; j < n; j++ {
			rhs[j] = beta*now[j] + (1-2*beta)*now[j+1] + beta*now[j+2] + p.Dt
		}
		rhs[0] += beta * now[0]
		rhs[n-1] += beta * now[last]

		interior, err := linsolve.Solve(A, rhs)
		if err != nil {
			return nil, &StepError{Scheme: s.Name(), Row: i, Err: err}
		}
		copy(g.RawRowView(i)[1:last], interior)
	}

	tb := c.NormalizeTemperature(c.BodyTemp)
	for i := 0; i < rows; i++ {
		row := g.RawRowView(i)
		for j := range row {
			row[j] += tb
		}
	}
	return g, nil
}
