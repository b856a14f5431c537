package linsolve

import "errors"

var (
	// ErrSingular indicates a numerically zero pivot after full pivoting.
	ErrSingular = errors.New("linsolve: singular matrix")

	// ErrNotSquare indicates a coefficient matrix with rows != cols.
	ErrNotSquare = errors.New("linsolve: matrix is not square")

	// ErrDimensionMismatch indicates len(b) differs from the matrix order.
	ErrDimensionMismatch = errors.New("linsolve: dimension mismatch between matrix and vector")

	// ErrEmpty indicates a 0×0 system.
	ErrEmpty = errors.New("linsolve: empty system")
)
