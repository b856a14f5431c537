package integrators

import (
	"context"
	"testing"

	"github.com/san-kum/tissueheat/internal/heat"
)

func benchConstants(n int) heat.PhysicalConstants {
	return heat.PhysicalConstants{
		HeatCapacity:           3686,
		Density:                1081,
		ThermalConductivity:    0.56,
		ElectricalConductivity: 0.472,
		HalfThickness:          0.02,
		LesionHalfWidth:        0.005,
		Voltage:                40,
		BodyTemp:               36.5,
		N:                      n,
		Duration:               0.005,
	}
}

func benchScheme(b *testing.B, s Scheme, n int, q float64) {
	c := benchConstants(n)
	p, err := heat.NewStepParams(c, q)
	if err != nil {
		b.Fatal(err)
	}
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.Integrate(ctx, c, p); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkExplicit(b *testing.B) {
	benchScheme(b, NewExplicit(), 101, 0.49)
}

func BenchmarkImplicit(b *testing.B) {
	benchScheme(b, NewImplicit(nil), 51, 1)
}

func BenchmarkCrank(b *testing.B) {
	benchScheme(b, NewCrankNicolson(nil), 51, 1)
}

func BenchmarkExplicitStep(b *testing.B) {
	now := make([]float64, 1001)
	next := make([]float64, 1001)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ExplicitStep(next, now, 0.25, 1e-6, 0)
		now, next = next, now
	}
}
