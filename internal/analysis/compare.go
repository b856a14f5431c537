package analysis

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrLengthMismatch = errors.New("analysis: length mismatch")
	ErrEmpty          = errors.New("analysis: empty profile")
)

// RelativeError returns |num[j]−ref[j]| / |ref[j]|.
func RelativeError(num, ref []float64) ([]float64, error) {
	if len(num) != len(ref) {
		return nil, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(num), len(ref))
	}
	out := make([]float64, len(num))
	floats.SubTo(out, num, ref)
	for j := range out {
		out[j] = math.Abs(out[j]) / math.Abs(ref[j])
	}
	return out, nil
}

// Summary condenses a relative-error profile.
type Summary struct {
	Max      float64
	Mean     float64
	Midpoint float64
	ArgMax   int
}

func Compare(final, ref []float64) (Summary, error) {
	if len(final) == 0 {
		return Summary{}, ErrEmpty
	}
	rel, err := RelativeError(final, ref)
	if err != nil {
		return Summary{}, err
	}
	i := floats.MaxIdx(rel)
	return Summary{
		Max:      rel[i],
		Mean:     floats.Sum(rel) / float64(len(rel)),
		Midpoint: rel[len(rel)/2],
		ArgMax:   i,
	}, nil
}

// LastRow copies the final profile of a grid.
func LastRow(g mat.Matrix) []float64 {
	rows, _ := g.Dims()
	return mat.Row(nil, rows-1, g)
}

// MaxAbs is the largest absolute value in g.
func MaxAbs(g mat.Matrix) float64 {
	return math.Max(math.Abs(mat.Max(g)), math.Abs(mat.Min(g)))
}

// Bounded reports whether every value of g is finite and within ±bound.
func Bounded(g mat.Matrix, bound float64) bool {
	rows, cols := g.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v := g.At(i, j)
			if math.IsNaN(v) || math.Abs(v) > bound {
				return false
			}
		}
	}
	return true
}

// RowErrors returns the maximum relative error of every row of g against the
// reference profile produced by ref for that row.
func RowErrors(g mat.Matrix, ref func(row int) []float64) ([]float64, error) {
	rows, _ := g.Dims()
	out := make([]float64, rows)
	for i := 0; i < rows; i++ {
		s, err := Compare(mat.Row(nil, i, g), ref(i))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = s.Max
	}
	return out, nil
}
