// Package dag provides the node and edge store that the task layout engine
// works on.
//
// # Overview
//
// A task batch is a flat, ordered list of records where each record names
// the tasks that depend on it. [Build] resolves that list into a [Graph]:
// one [Node] per record, addressed by its input position, with parent and
// child links stored as index slices. Task ids are only used to resolve
// successor references and to label output; inside the graph everything is
// an index.
//
//	g, err := dag.Build(records)
//	if err != nil {
//	    // DATA_INTEGRITY: a successor id is unknown or an id is repeated
//	}
//
// Build never returns a partial graph. A batch that references a task it
// does not contain is rejected as a whole.
//
// # Layout fields
//
// Every node carries Layer, Column and Status. Build leaves them unassigned;
// the [transform] subpackage fills them in:
//
//	transform.AssignLayers(g)
//	transform.AssignColumns(g)
//	transform.ClassifyStatus(g)
//
// [Graph.Validate] checks the result: children sit strictly below their
// parents, never left of their rightmost parent, and no two nodes of one
// layer share a column.
//
// # Concurrency
//
// A Graph is built and laid out by a single goroutine. After layout it is
// treated as immutable and may be shared between readers; edits to the task
// list produce a fresh graph instead of mutating an old one.
//
// [transform]: github.com/matzehuels/taskdag/pkg/dag/transform
package dag
