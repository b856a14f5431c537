// Package integrators advances the dimensionless heat equation
//
//	∂T/∂t = ∂²T/∂x² + 1,  T(0,t) = T(1,t) = T_body,  T(x,0) = T_body
//
// with three finite-difference schemes: forward Euler ([Explicit]),
// backward Euler ([Implicit]) and [CrankNicolson].
//
// Every scheme returns a complete rows×N grid in normalized temperature or an
// error, never a partial grid. Rows are computed strictly in order; the
// implicit schemes solve one dense system per row through package linsolve.
package integrators
