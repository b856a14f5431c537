// Package heat holds the shared model of the tissue-heating problem: the
// physical constants, the transforms between physical and dimensionless
// units, and the time×space grids produced by the integrators.
//
// All quantities used by the finite-difference schemes are dimensionless:
//
//   - distance: x̂ = x / L, so the slab spans [0, 1]
//   - time:     t̂ = t·K / (Cv·ρ·L²)
//   - temperature: T̂ = T·K / (κ·V²/2)
//
// A [PhysicalConstants] value is passed explicitly to every component; there
// is no package-level state.
//
// # Grids
//
// A grid is a *mat.Dense whose row i is the profile at time i·dt and whose
// column j is the sample at x̂ = j·dx. Row 0 is the initial condition.
package heat
