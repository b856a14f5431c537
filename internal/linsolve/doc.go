// Package linsolve solves dense square systems A·x = b by Gauss elimination
// with full pivoting.
//
// At elimination step i the largest-magnitude entry of the remaining
// submatrix A[i:, i:] is moved to (i, i) with one row swap and one column
// swap. Row swaps are applied to b; column swaps are recorded in a
// [Permutation] and undone after back-substitution, so the returned solution
// is always in the caller's variable order.
//
// Solve works on private copies: neither A nor b is modified.
package linsolve
