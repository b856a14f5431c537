package heat

import (
	"fmt"
	"math"
)

// PhysicalConstants describes the tissue, the applied field and the run
// layout. It is built once from configuration and never mutated.
type PhysicalConstants struct {
	HeatCapacity           float64 // Cv, volumetric heat capacity [J/(kg·K)]
	Density                float64 // ρ [kg/m³]
	ThermalConductivity    float64 // K [W/(m·K)]
	ElectricalConductivity float64 // κ [S/m]
	HalfThickness          float64 // L [m]
	LesionHalfWidth        float64 // l_mal [m]
	Voltage                float64 // V [V]
	BodyTemp               float64 // boundary and initial temperature [°C]

	N        int     // grid points on [0, 1]
	Duration float64 // t_a, dimensionless

	ExplicitRatios []float64
	ImplicitRatios []float64
	CrankRatios    []float64
}

// Validate rejects combinations the integrators cannot run with.
func (c PhysicalConstants) Validate() error {
	if c.N < 3 {
		return fmt.Errorf("%w: n must be >= 3, got %d", ErrInvalidConfig, c.N)
	}
	if !(c.Duration > 0) || math.IsInf(c.Duration, 0) {
		return fmt.Errorf("%w: t_a must be positive, got %g", ErrInvalidConfig, c.Duration)
	}

	positive := []struct {
		name string
		val  float64
	}{
		{"c_v", c.HeatCapacity},
		{"rho", c.Density},
		{"k", c.ThermalConductivity},
		{"conductivity", c.ElectricalConductivity},
		{"l", c.HalfThickness},
		{"voltage", c.Voltage},
	}
	for _, p := range positive {
		if !(p.val > 0) || math.IsInf(p.val, 0) {
			return fmt.Errorf("%w: %s must be positive, got %g", ErrInvalidConfig, p.name, p.val)
		}
	}
	if c.LesionHalfWidth < 0 || c.LesionHalfWidth > c.HalfThickness {
		return fmt.Errorf("%w: l_mal must lie in [0, l], got %g", ErrInvalidConfig, c.LesionHalfWidth)
	}
	if math.IsNaN(c.BodyTemp) || math.IsInf(c.BodyTemp, 0) {
		return fmt.Errorf("%w: t_body must be finite", ErrInvalidConfig)
	}

	for name, ratios := range map[string][]float64{
		"q_explicit": c.ExplicitRatios,
		"q_implicit": c.ImplicitRatios,
		"q_crank":    c.CrankRatios,
	} {
		for _, q := range ratios {
			if err := validateRatio(q); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
		}
	}
	return nil
}

// WithBodyTemp returns a copy with a different boundary/initial temperature.
func (c PhysicalConstants) WithBodyTemp(t float64) PhysicalConstants {
	c.BodyTemp = t
	return c
}

func validateRatio(q float64) error {
	if !(q > 0) || math.IsInf(q, 0) {
		return fmt.Errorf("%w: step ratio must be positive, got %g", ErrInvalidConfig, q)
	}
	return nil
}
