// Package rootfind brackets roots of scalar functions by bisection.
package rootfind

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrNoSignChange  = errors.New("rootfind: f(a) and f(b) have the same sign")
	ErrMaxIterations = errors.New("rootfind: maximum iterations reached")
	ErrInvalidBounds = errors.New("rootfind: invalid bracket")
)

// Result is the midpoint of the final bracket and its half-width.
type Result struct {
	Root       float64
	Error      float64
	Iterations int
}

// Bisect halves [a, b] until its half-width is at most tol or f hits zero.
// f(a) and f(b) must have opposite signs. If maxIter runs out first, the best
// estimate is returned together with ErrMaxIterations.
func Bisect(f func(float64) float64, a, b, tol float64, maxIter int) (Result, error) {
	if math.IsNaN(a) || math.IsNaN(b) || !(tol > 0) {
		return Result{}, ErrInvalidBounds
	}
	if a > b {
		a, b = b, a
	}

	fa, fb := f(a), f(b)
	switch {
	case fa == 0:
		return Result{Root: a}, nil
	case fb == 0:
		return Result{Root: b}, nil
	case math.Signbit(fa) == math.Signbit(fb):
		return Result{}, fmt.Errorf("%w on [%g, %g]", ErrNoSignChange, a, b)
	}

	var res Result
	for res.Iterations = 1; res.Iterations <= maxIter; res.Iterations++ {
		mid := a + (b-a)/2
		fm := f(mid)
		res.Root = mid
		res.Error = (b - a) / 2

		if fm == 0 || res.Error <= tol {
			return res, nil
		}
		if math.Signbit(fm) == math.Signbit(fa) {
			a, fa = mid, fm
		} else {
			b = mid
		}
	}
	res.Iterations = maxIter
	return res, ErrMaxIterations
}

// Iterations is the number of halvings needed to shrink a bracket of width
// b-a below tol.
func Iterations(a, b, tol float64) int {
	return int(math.Ceil(math.Log2(math.Abs(b-a) / tol)))
}
