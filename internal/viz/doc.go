// Package viz renders temperature grids in the terminal.
//
//   - [PlotProfiles]: several profiles on one asciigraph chart
//   - [ViolationMap]: Braille map of the cells above their damage threshold
//   - [Viewer]: Bubble Tea model that steps through the rows of a grid
//   - [Picker]: menu over the stored runs that opens a Viewer
//
// # Key Bindings
//
//	←/→ h/l  - Previous/next row
//	PgUp/PgDn - Jump ten percent of the run
//	Home/End - First/last row
//	Space    - Play/Pause
//	T        - Cycle color themes
//	?        - Show help overlay
//	Q        - Quit (Esc returns to the picker)
package viz
