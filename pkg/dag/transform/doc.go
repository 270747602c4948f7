// Package transform computes the layout of a task graph in place.
//
// # Overview
//
// The layout is a simple layered placement. Three passes run in order, each
// filling one field of every [dag.Node]:
//
//   - [AssignLayers] sets Layer to the longest path from any root
//   - [AssignColumns] sets Column, a horizontal slot within the layer
//   - [ClassifyStatus] sets Status to DONE, ACTIONABLE or BLOCKED
//
// [Layout] runs all three. The passes are pure functions of the graph: the
// same batch always produces the same placement, and nothing is carried
// over from an earlier build.
//
// # Layers
//
// Roots sit at layer 0 and every other node one below its deepest parent.
// The walk is iterative, so arbitrarily long dependency chains do not grow
// the goroutine stack.
//
// # Cycles
//
// A cyclic batch has no layering. [AssignLayers] detects the cycle, runs
// Tarjan's strongly connected components algorithm (gonum topo.TarjanSCC)
// to name every task involved, and returns a GRAPH_CYCLE error wrapping a
// [*CycleError]. [FindCycles] exposes the same analysis on its own.
//
// # Columns
//
// Nodes of a layer are ordered by the largest column among their parents,
// ties broken by input order, then packed left to right without ever moving
// left of that parent column. Children therefore hang under or to the right
// of their rightmost prerequisite. Crossings are not minimised; see
// [dag.CountCrossings] for a measure.
package transform
