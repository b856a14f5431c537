package metrics

import (
	"gonum.org/v1/gonum/mat"
)

// Metric accumulates a scalar over the rows of a temperature grid.
type Metric interface {
	Name() string
	Observe(profile []float64, t float64)
	Value() float64
	Reset()
}

// Collect feeds every row of g to each metric. Row i is observed at time
// i·dt. Metrics are reset first.
func Collect(g mat.Matrix, dt float64, ms ...Metric) map[string]float64 {
	for _, m := range ms {
		m.Reset()
	}

	rows, cols := g.Dims()
	row := make([]float64, cols)
	for i := 0; i < rows; i++ {
		mat.Row(row, i, g)
		for _, m := range ms {
			m.Observe(row, float64(i)*dt)
		}
	}

	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}
