// Package safety checks temperature profiles against the tissue damage
// thresholds and searches for the longest treatment that respects them.
package safety

import (
	"math"

	"github.com/san-kum/tissueheat/internal/heat"
	"gonum.org/v1/gonum/mat"
)

const (
	HealthyLimit = 50.0 // °C, outside the lesion
	LesionLimit  = 80.0 // °C, inside the lesion
)

// Limits returns the column band occupied by the lesion:
// left = ⌈N·(L−l_mal)/(2L)⌉ and right = N − left. Columns j with
// left <= j <= right are lesion tissue.
func Limits(c heat.PhysicalConstants) (left, right float64) {
	left = math.Ceil(float64(c.N) * (c.HalfThickness - c.LesionHalfWidth) / (2 * c.HalfThickness))
	return left, float64(c.N) - left
}

// Threshold is the maximum allowed temperature at column j.
func Threshold(c heat.PhysicalConstants, j int) float64 {
	left, right := Limits(c)
	if healthy(float64(j), left, right) {
		return HealthyLimit
	}
	return LesionLimit
}

func healthy(j, left, right float64) bool {
	return j < left || j > right
}

func violates(T, j, left, right float64) bool {
	if healthy(j, left, right) {
		return T > HealthyLimit
	}
	return T > LesionLimit
}

// ScanProfile walks a single profile in °C and returns (0, j-1) for the first
// violating column j, or (0, -1) when every column is within its limit.
func ScanProfile(c heat.PhysicalConstants, T []float64) (int, int) {
	left, right := Limits(c)
	for j, v := range T {
		if violates(v, float64(j), left, right) {
			return 0, j - 1
		}
	}
	return 0, -1
}

// ScanGrid walks a time×space grid in °C row by row. At the first violation
// in row i, column j, it returns (i-1, j): the last row that was still safe
// and the column that failed. Without a violation it returns the grid
// dimensions.
func ScanGrid(c heat.PhysicalConstants, g mat.Matrix) (int, int) {
	left, right := Limits(c)
	rows, cols := g.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if violates(g.At(i, j), float64(j), left, right) {
				return i - 1, j
			}
		}
	}
	return rows, cols
}

// Margin is the largest excess of a profile over its thresholds. It is
// positive exactly when ScanProfile finds a violation.
func Margin(c heat.PhysicalConstants, T []float64) float64 {
	_, m := Worst(c, T)
	return m
}

// Worst returns the column whose temperature exceeds its threshold by the
// most, and that excess. An empty profile gives (-1, -Inf).
func Worst(c heat.PhysicalConstants, T []float64) (int, float64) {
	left, right := Limits(c)
	col, m := -1, math.Inf(-1)
	for j, v := range T {
		limit := LesionLimit
		if healthy(float64(j), left, right) {
			limit = HealthyLimit
		}
		if v-limit > m {
			col, m = j, v-limit
		}
	}
	return col, m
}
