// Package analytic evaluates the closed-form solution of the normalized
// problem ∂T/∂t = ∂²T/∂x² + 1 with T = 0 at both ends and T(x, 0) = 0.
package analytic

import (
	"math"

	"github.com/san-kum/tissueheat/internal/heat"
)

// DefaultTerms is the truncation used for reports.
const DefaultTerms = 300

// Series is the normalized temperature rise at (x, t):
//
//	(4/π³) Σ_{i<terms} (1 − e^{−(2i+1)²π²t}) / (2i+1)³ · sin((2i+1)πx)
func Series(x, t float64, terms int) float64 {
	sum := 0.0
	for i := 0; i < terms; i++ {
		k := float64(2*i + 1)
		sum += (1 - math.Exp(-k*k*math.Pi*math.Pi*t)) / (k * k * k) * math.Sin(k*math.Pi*x)
	}
	return 4 / (math.Pi * math.Pi * math.Pi) * sum
}

// Profile samples the solution on the N grid points at dimensionless time t.
// It returns positions in metres and temperatures in °C. A non-positive terms
// falls back to DefaultTerms.
func Profile(c heat.PhysicalConstants, t float64, terms int) (x, T []float64) {
	if terms <= 0 {
		terms = DefaultTerms
	}
	x = heat.Axis(c)
	T = make([]float64, len(x))
	for j, xj := range x {
		T[j] = c.BodyTemp + c.DenormalizeTemperature(Series(xj, t, terms))
		x[j] = c.DenormalizeDistance(xj)
	}
	return x, T
}

// Midpoint is the temperature at the slab centre, where the rise is largest.
func Midpoint(c heat.PhysicalConstants, t float64, terms int) float64 {
	if terms <= 0 {
		terms = DefaultTerms
	}
	return c.BodyTemp + c.DenormalizeTemperature(Series(0.5, t, terms))
}

// Steady is the t → ∞ limit x(1−x)/2 of Series.
func Steady(x float64) float64 {
	return x * (1 - x) / 2
}
