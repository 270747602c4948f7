// Package sink draws a laid-out task graph ([graph.Model]) without any
// external tool.
//
// [RenderSVG] places every node at its projected coordinates, so the output
// matches what the HTTP API and TUI report, pixel for pixel:
//
//	svg := sink.RenderSVG(model, sink.WithFocus(3))
//
// Each node is a <g id="task-N" class="task TYPE"> group with a <title>
// carrying the full task text; edges carry data-source and data-target
// attributes holding task ids.
package sink
