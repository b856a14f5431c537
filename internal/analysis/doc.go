// Package analysis compares numerical temperature profiles with a reference
// and summarizes whole grids.
//
//   - [RelativeError]: pointwise |num−ref|/|ref|
//   - [Compare]: max, mean and midpoint relative error of one profile
//   - [MaxAbs], [Bounded]: divergence checks for explicit runs
//
// Grids are time×space *mat.Dense values in any consistent unit.
package analysis
