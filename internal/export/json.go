package export

import (
	"encoding/json"
	"io"
	"math"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/tissueheat/internal/storage"
)

// Sample is a grid value that encodes NaN and ±Inf as null, so diverged
// runs still export.
type Sample float64

func (v Sample) MarshalJSON() ([]byte, error) {
	f := float64(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, f, 'g', -1, 64), nil
}

// UnmarshalJSON reads null back as NaN.
func (v *Sample) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*v = Sample(math.NaN())
		return nil
	}
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return err
	}
	*v = Sample(f)
	return nil
}

func samples(row []float64) []Sample {
	out := make([]Sample, len(row))
	for j, f := range row {
		out[j] = Sample(f)
	}
	return out
}

// RunData is a stored run as a single JSON document.
type RunData struct {
	ID       string             `json:"id"`
	Scheme   string             `json:"scheme,omitempty"`
	Q        float64            `json:"q,omitempty"`
	Dx       float64            `json:"dx,omitempty"`
	Dt       float64            `json:"dt,omitempty"`
	Duration float64            `json:"duration,omitempty"`
	X        []float64          `json:"x"`
	Times    []float64          `json:"times"`
	Rows     [][]Sample         `json:"rows"`
	Metrics  map[string]float64 `json:"metrics,omitempty"`
	Diverged bool               `json:"diverged,omitempty"`
}

// NewRunData copies the grid row by row; Times is i·dt in dimensionless units.
func NewRunData(meta storage.RunMetadata, x []float64, g mat.Matrix) RunData {
	rows, _ := g.Dims()
	data := RunData{
		ID:       meta.ID,
		Scheme:   meta.Scheme,
		Q:        meta.Q,
		Dx:       meta.Dx,
		Dt:       meta.Dt,
		Duration: meta.Duration,
		X:        x,
		Times:    make([]float64, rows),
		Rows:     make([][]Sample, rows),
		Metrics:  storage.FiniteMetrics(meta.Metrics),
		Diverged: meta.Diverged,
	}
	for i := range data.Rows {
		data.Times[i] = float64(i) * meta.Dt
		data.Rows[i] = samples(mat.Row(nil, i, g))
	}
	return data
}

func ExportJSON(w io.Writer, meta storage.RunMetadata, x []float64, g mat.Matrix) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewRunData(meta, x, g))
}
