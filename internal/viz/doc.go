// Package viz renders computation results in the terminal.
//
//   - [Canvas]: Braille pixel canvas that draws a [plot.Graphic]
//   - [Chart]: asciigraph line charts of convergence traces
//   - [Table]: lipgloss tables of iteration rows
//   - Theme selection with 5 built-in color schemes
package viz
