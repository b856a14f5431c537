package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/tissueheat/internal/heat"
	"gonum.org/v1/gonum/mat"
)

func testConstants() heat.PhysicalConstants {
	return heat.PhysicalConstants{
		HeatCapacity:           3686,
		Density:                1081,
		ThermalConductivity:    0.56,
		ElectricalConductivity: 0.472,
		HalfThickness:          0.02,
		LesionHalfWidth:        0.005,
		Voltage:                40,
		BodyTemp:               36.5,
		N:                      3,
		Duration:               0.025,
	}
}

func TestStability(t *testing.T) {
	s := NewStability(10)

	s.Observe([]float64{1, 2, 3}, 0)
	s.Observe([]float64{1, 20, 3}, 1)
	s.Observe([]float64{math.NaN()}, 2)
	s.Observe([]float64{-5, 5}, 3)

	if got := s.Value(); got != 0.5 {
		t.Errorf("expected 0.5, got %f", got)
	}
	if at, ok := s.Onset(); !ok || at != 1 {
		t.Errorf("expected onset at 1, got %v (%v)", at, ok)
	}

	s.Reset()
	if s.Value() != 1.0 {
		t.Errorf("expected 1.0 after reset, got %f", s.Value())
	}
	if _, ok := s.Onset(); ok {
		t.Error("onset should clear on reset")
	}
}

func TestHeatContent(t *testing.T) {
	c := testConstants()
	h := NewHeatContent(c)

	h.Observe([]float64{36.5, 36.5, 36.5}, 0)
	if h.Value() != 0 {
		t.Errorf("expected 0 at body temperature, got %f", h.Value())
	}

	// Triangle of height 10 over [0, 0.02].
	h.Observe([]float64{36.5, 46.5, 36.5}, 1)
	expected := c.Density * c.HeatCapacity * 0.5 * 0.02 * 10
	if math.Abs(h.Value()-expected) > 1e-6 {
		t.Errorf("expected %f, got %f", expected, h.Value())
	}

	h.Observe([]float64{1, 2}, 2)
	if math.Abs(h.Value()-expected) > 1e-6 {
		t.Error("mismatched profile should be ignored")
	}

	h.Reset()
	if h.Value() != 0 {
		t.Errorf("expected 0 after reset, got %f", h.Value())
	}
}

func TestPeak(t *testing.T) {
	p := NewPeak()
	if p.Value() != 0 {
		t.Errorf("expected 0 before observing, got %f", p.Value())
	}

	p.Observe([]float64{36, 40, 38}, 0)
	p.Observe([]float64{36, 39, 38}, 1)
	if p.Value() != 40 {
		t.Errorf("expected 40, got %f", p.Value())
	}
}

func TestPeakTime(t *testing.T) {
	p := NewPeakTime()
	p.Observe([]float64{1, 2}, 0)
	p.Observe([]float64{1, 5}, 0.5)
	p.Observe([]float64{5, 1}, 1.0)
	if p.Value() != 0.5 {
		t.Errorf("expected 0.5, got %f", p.Value())
	}
}

func TestCollect(t *testing.T) {
	g := mat.NewDense(3, 3, []float64{
		36.5, 36.5, 36.5,
		36.5, 40, 36.5,
		36.5, 45, 36.5,
	})
	stab := NewStability(44)
	stab.Observe([]float64{1000}, 0)

	got := Collect(g, 0.1, stab, NewPeak(), NewPeakTime())

	if math.Abs(got["stability"]-2.0/3) > 1e-12 {
		t.Errorf("expected stability 2/3 after reset, got %f", got["stability"])
	}
	if got["peak"] != 45 {
		t.Errorf("expected peak 45, got %f", got["peak"])
	}
	if math.Abs(got["peak_time"]-0.2) > 1e-12 {
		t.Errorf("expected peak_time 0.2, got %f", got["peak_time"])
	}
}

func BenchmarkCollect(b *testing.B) {
	g := mat.NewDense(500, 101, nil)
	ms := []Metric{NewStability(100), NewPeak()}
	for i := 0; i < b.N; i++ {
		Collect(g, 1e-4, ms...)
	}
}
