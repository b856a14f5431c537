package integrators

import (
	"sync"

	"gonum.org/v1/gonum/mat"
)

type matrixKind int

const (
	backwardEuler matrixKind = iota
	crankNicolson
)

type cacheKey struct {
	kind matrixKind
	n    int
	beta float64
}

// MatrixCache memoizes the constant system matrices of the implicit schemes
// per (scheme, n, β). Returned matrices are shared and must not be modified;
// linsolve.Solve only reads them.
type MatrixCache struct {
	mu       sync.Mutex
	matrices map[cacheKey]*mat.Dense
}

func NewMatrixCache() *MatrixCache {
	return &MatrixCache{matrices: make(map[cacheKey]*mat.Dense)}
}

// Implicit returns the backward-Euler matrix for n interior points.
func (mc *MatrixCache) Implicit(n int, beta float64) *mat.Dense {
	return mc.get(cacheKey{kind: backwardEuler, n: n, beta: beta}, ImplicitMatrix)
}

// Crank returns the Crank–Nicolson matrix for n interior points.
func (mc *MatrixCache) Crank(n int, beta float64) *mat.Dense {
	return mc.get(cacheKey{kind: crankNicolson, n: n, beta: beta}, CrankMatrix)
}

// Len reports how many matrices are cached.
func (mc *MatrixCache) Len() int {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return len(mc.matrices)
}

func (mc *MatrixCache) get(key cacheKey, build func(int, float64) *mat.Dense) *mat.Dense {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	if m, ok := mc.matrices[key]; ok {
		return m
	}
	m := build(key.n, key.beta)
	mc.matrices[key] = m
	return m
}

// ImplicitMatrix builds the tridiagonal (1+2β, −β) matrix, stored densely.
func ImplicitMatrix(n int, beta float64) *mat.Dense {
	return tridiagonal(n, 1+2*beta, -beta)
}

// CrankMatrix is the same band with β = dt/(2dx²) and both corner diagonal
// entries reduced by a further β.
func CrankMatrix(n int, beta float64) *mat.Dense {
	A := tridiagonal(n, 1+2*beta, -beta)
	A.Set(0, 0, A.At(0, 0)-beta)
	A.Set(n-1, n-1, A.At(n-1, n-1)-beta)
	return A
}

func tridiagonal(n int, diag, off float64) *mat.Dense {
	A := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		A.Set(i, i, diag)
		if i > 0 {
			A.Set(i, i-1, off)
		}
		if i < n-1 {
			A.Set(i, i+1, off)
		}
	}
	return A
}
