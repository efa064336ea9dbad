// Package viz draws a running simulation in the terminal.
//
//   - [Model]: bubbletea viewer that steps a Simulator on every tick
//   - [Canvas]: braille pixel canvas, 2x4 sub-pixels per cell
//   - [Projection]: meters to sub-pixels with zoom and planet scale
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	R     - Reset to initial bodies
//	O     - Toggle the quadtree overlay
//	+/-   - Zoom
//	T     - Cycle color themes
//	G     - Toggle GIF recording
//	?     - Show help overlay
//	[]    - Replay recent steps
//
// The overlay outlines the tree built by the last step; nodes smaller than a
// few sub-pixels are skipped.
package viz
