package linsolve

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// pivotTolerance is the relative size, against max|A|, below which a pivot
// counts as zero.
const pivotTolerance = 1e-14

// Solve returns x with A·x = b. a and b are copied, never modified.
func Solve(a mat.Matrix, b []float64) ([]float64, error) {
	rows, cols := a.Dims()
	if rows != cols {
		return nil, fmt.Errorf("%w: %dx%d", ErrNotSquare, rows, cols)
	}
	if len(b) != rows {
		return nil, fmt.Errorf("%w: matrix order %d, len(b)=%d", ErrDimensionMismatch, rows, len(b))
	}
	n := rows
	if n == 0 {
		return nil, ErrEmpty
	}

	A := mat.DenseCopyOf(a)
	rhs := make([]float64, n)
	copy(rhs, b)

	scale := maxAbs(A)
	if scale == 0 || math.IsNaN(scale) {
		return nil, fmt.Errorf("%w: all coefficients are zero", ErrSingular)
	}
	tol := pivotTolerance * scale

	order := Identity(n)

	for i := 0; i < n-1; i++ {
		pr, pc := findPivot(A, i)

		swapRows(A, i, pr)
		swapCols(A, i, pc)
		rhs[i], rhs[pr] = rhs[pr], rhs[i]
		order.Swap(i, pc)

		pivotRow := A.RawRowView(i)
		pivot := pivotRow[i]
		if math.Abs(pivot) <= tol {
			return nil, fmt.Errorf("%w: zero pivot at step %d", ErrSingular, i)
		}

		for k := i + 1; k < n; k++ {
			row := A.RawRowView(k)
			m := row[i] / pivot
			if m == 0 {
				continue
			}
			for j := i; j < n; j++ {
				row[j] -= m * pivotRow[j]
			}
			rhs[k] -= m * rhs[i]
		}
	}

	if math.Abs(A.At(n-1, n-1)) <= tol {
		return nil, fmt.Errorf("%w: zero pivot at step %d", ErrSingular, n-1)
	}

	// Back-substitution in permuted variable order.
	y := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		row := A.RawRowView(i)
		sum := floats.Dot(row[i+1:], y[i+1:])
		y[i] = (rhs[i] - sum) / row[i]
	}

	return order.Scatter(y), nil
}

// Residual returns ‖A·x − b‖₂.
func Residual(a mat.Matrix, x, b []float64) float64 {
	var ax mat.VecDense
	ax.MulVec(a, mat.NewVecDense(len(x), x))
	r := make([]float64, len(b))
	floats.SubTo(r, ax.RawVector().Data, b)
	return floats.Norm(r, 2)
}

// findPivot locates the largest |A[r][c]| with r, c >= i.
func findPivot(A *mat.Dense, i int) (int, int) {
	n, _ := A.Dims()
	pr, pc := i, i
	best := -1.0
	for r := i; r < n; r++ {
		row := A.RawRowView(r)
		for c := i; c < n; c++ {
			if v := math.Abs(row[c]); v > best {
				best = v
				pr, pc = r, c
			}
		}
	}
	return pr, pc
}

func swapRows(A *mat.Dense, i, k int) {
	if i == k {
		return
	}
	ri, rk := A.RawRowView(i), A.RawRowView(k)
	for j := range ri {
		ri[j], rk[j] = rk[j], ri[j]
	}
}

func swapCols(A *mat.Dense, i, k int) {
	if i == k {
		return
	}
	n, _ := A.Dims()
	for r := 0; r < n; r++ {
		row := A.RawRowView(r)
		row[i], row[k] = row[k], row[i]
	}
}

func maxAbs(A *mat.Dense) float64 {
	n, _ := A.Dims()
	m := 0.0
	for r := 0; r < n; r++ {
		for _, v := range A.RawRowView(r) {
			m = math.Max(m, math.Abs(v))
		}
	}
	return m
}
