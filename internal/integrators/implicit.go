package integrators

import (
	"context"

	"github.com/san-kum/tissueheat/internal/heat"
	"github.com/san-kum/tissueheat/internal/linsolve"
	"gonum.org/v1/gonum/mat"
)

// Implicit is backward Euler: one (N-2)×(N-2) solve per row, unconditionally
// stable.
type Implicit struct {
	cache *MatrixCache
}

// NewImplicit uses cache for the system matrix; a nil cache gets a private one.
func NewImplicit(cache *MatrixCache) *Implicit {
	if cache == nil {
		cache = NewMatrixCache()
	}
	return &Implicit{cache: cache}
}

func (s *Implicit) Name() string { return SchemeImplicit }

func (s *Implicit) Integrate(ctx context.Context, c heat.PhysicalConstants, p heat.StepParams) (*mat.Dense, error) {
	rows, err := prepare(c, p)
	if err != nil {
		return nil, err
	}

	tb := c.NormalizeTemperature(c.BodyTemp)
	beta := p.Beta()
	n := c.N - 2
	A := s.cache.Implicit(n, beta)

	g := heat.NewGrid(rows, c.N, tb)
	rhs := make([]float64, n)

	for i := 1; i < rows; i++ {
		if err := poll(ctx, i); err != nil {
			return nil, err
		}

		now := g.RawRowView(i - 1)
		for j := 0; j < n; j++ {
			rhs[j] = now[j+1] + p.Dt
		}
		// Both neighbours of the end points are fixed at the boundary.
		rhs[0] += beta * tb
		rhs[n-1] += beta * tb

		interior, err := linsolve.Solve(A, rhs)
		if err != nil {
			return nil, &StepError{Scheme: s.Name(), Row: i, Err: err}
		}

		next := g.RawRowView(i)
		next[0] = tb
		next[c.N-1] = tb
		copy(next[1:c.N-1], interior)
	}
	return g, nil
}
