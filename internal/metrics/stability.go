package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Stability is the fraction of observed profiles that stayed finite and
// within ±bound. An explicit run past q = 1/2 drops below 1 once the
// oscillation grows past the bound.
type Stability struct {
	bound    float64
	diverged int
	rows     int
	onset    float64
}

func NewStability(bound float64) *Stability {
	return &Stability{bound: bound, onset: math.NaN()}
}

func (s *Stability) Name() string { return "stability" }

func (s *Stability) Observe(profile []float64, t float64) {
	s.rows++
	if len(profile) == 0 || s.within(profile) {
		return
	}
	s.diverged++
	if math.IsNaN(s.onset) {
		s.onset = t
	}
}

func (s *Stability) within(profile []float64) bool {
	if floats.HasNaN(profile) {
		return false
	}
	return floats.Max(profile) <= s.bound && floats.Min(profile) >= -s.bound
}

func (s *Stability) Value() float64 {
	if s.rows == 0 {
		return 1
	}
	return float64(s.rows-s.diverged) / float64(s.rows)
}

// Onset is the time of the first profile outside the bound.
func (s *Stability) Onset() (float64, bool) {
	return s.onset, !math.IsNaN(s.onset)
}

func (s *Stability) Reset() {
	s.diverged, s.rows = 0, 0
	s.onset = math.NaN()
}
