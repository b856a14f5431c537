package metrics

import (
	"math"

	"github.com/san-kum/tissueheat/internal/heat"
	"gonum.org/v1/gonum/floats"
)

// HeatContent is the energy per unit area deposited in the slab by the end
// of the run, ρ·Cv·∫(T − T_body) dx over the physical axis [J/m²]. Profiles
// must be in °C.
type HeatContent struct {
	name  string
	c     heat.PhysicalConstants
	x     []float64
	last  float64
	valid bool
}

func NewHeatContent(c heat.PhysicalConstants) *HeatContent {
	return &HeatContent{
		name: "heat_content",
		c:    c,
		x:    heat.PhysicalAxis(c),
	}
}

func (h *HeatContent) Name() string { return h.name }

func (h *HeatContent) Observe(profile []float64, t float64) {
	if len(profile) != len(h.x) {
		return
	}
	h.last = h.c.Density * h.c.HeatCapacity * trapezoid(h.x, profile, h.c.BodyTemp)
	h.valid = true
}

func (h *HeatContent) Value() float64 {
	if !h.valid {
		return 0
	}
	return h.last
}

func (h *HeatContent) Reset() {
	h.last = 0
	h.valid = false
}

func trapezoid(x, y []float64, offset float64) float64 {
	sum := 0.0
	for j := 1; j < len(x); j++ {
		sum += (x[j] - x[j-1]) * ((y[j] - offset) + (y[j-1] - offset)) / 2
	}
	return sum
}

// Peak tracks the highest temperature seen in any profile.
type Peak struct {
	name string
	max  float64
}

func NewPeak() *Peak {
	return &Peak{name: "peak", max: math.Inf(-1)}
}

func (p *Peak) Name() string { return p.name }

func (p *Peak) Observe(profile []float64, t float64) {
	if len(profile) == 0 {
		return
	}
	p.max = math.Max(p.max, floats.Max(profile))
}

func (p *Peak) Value() float64 {
	if math.IsInf(p.max, -1) {
		return 0
	}
	return p.max
}

func (p *Peak) Reset() {
	p.max = math.Inf(-1)
}

// PeakTime is the first time at which the profile maximum reached its
// overall peak.
type PeakTime struct {
	name string
	max  float64
	at   float64
}

func NewPeakTime() *PeakTime {
	return &PeakTime{name: "peak_time", max: math.Inf(-1)}
}

func (p *PeakTime) Name() string { return p.name }

func (p *PeakTime) Observe(profile []float64, t float64) {
	if len(profile) == 0 {
		return
	}
	if m := floats.Max(profile); m > p.max {
		p.max = m
		p.at = t
	}
}

func (p *PeakTime) Value() float64 { return p.at }

func (p *PeakTime) Reset() {
	p.max = math.Inf(-1)
	p.at = 0
}
