package dag

import (
	"errors"
	"slices"

	dagerrors "github.com/matzehuels/taskdag/pkg/errors"
	"github.com/matzehuels/taskdag/pkg/task"
)

var (
	// ErrUnknownTask is returned by [Build] when a successor id names a task
	// that is not part of the batch. The returned error carries the
	// DATA_INTEGRITY code.
	ErrUnknownTask = errors.New("unknown task")

	// ErrDuplicateTask is returned by [Build] when two records share an id.
	// The returned error carries the DATA_INTEGRITY code.
	ErrDuplicateTask = errors.New("duplicate task id")

	// ErrInvalidLayering is returned by [Graph.Validate] when an edge does not
	// point strictly downward, or a node sits above a parent.
	ErrInvalidLayering = errors.New("edge does not point to a deeper layer")

	// ErrColumnCollision is returned by [Graph.Validate] when two nodes of the
	// same layer share a column.
	ErrColumnCollision = errors.New("two nodes share a layer and column")

	// ErrAsymmetricLinks is returned by [Graph.Validate] when the parent and
	// child lists disagree. This indicates graph corruption.
	ErrAsymmetricLinks = errors.New("parent and child links disagree")
)

// Status classifies a node for display.
type Status string

const (
	// StatusDone marks a completed task.
	StatusDone Status = "DONE"
	// StatusActionable marks an open task whose parents are all completed.
	StatusActionable Status = "ACTIONABLE"
	// StatusBlocked marks an open task waiting on at least one open parent.
	StatusBlocked Status = "BLOCKED"
)

// Unassigned is the Layer and Column value of a node that has not been placed.
const Unassigned = -1

// Node is one task inside a built graph. Parents and Children hold node
// indices, not task ids. Children keeps the order of the record's successor
// list; Parents is ordered by parent index.
type Node struct {
	Index    int
	Task     task.Record
	Parents  []int
	Children []int
	Layer    int
	Column   int
	Status   Status
}

// ID returns the task id of the node.
func (n *Node) ID() int { return n.Task.ID }

// IsRoot reports whether the node has no parents.
func (n *Node) IsRoot() bool { return len(n.Parents) == 0 }

// Edge is a parent to child link between two node indices.
type Edge struct {
	Source int
	Target int
}

// Graph is the node and edge store for one task batch. Nodes live in a flat
// slice addressed by their input position, so a graph built from the same
// batch always has the same shape.
//
// A Graph is rebuilt from scratch on every batch change and is never shared
// between builds. The layout passes in the transform package fill in Layer,
// Column and Status in place. Graph is not safe for concurrent mutation;
// once laid out it may be read from many goroutines.
type Graph struct {
	nodes []Node
	edges []Edge
	index map[int]int // task id -> node index
}

// Build resolves a task batch into a graph.
//
// Nodes appear in input order and edges in parent-major, successor-list
// order. A successor id that names no task in the batch, or two tasks with
// the same id, fail the whole build with a DATA_INTEGRITY error wrapping
// [ErrUnknownTask] or [ErrDuplicateTask]; no partial graph is returned.
// A successor listed twice by the same task yields a single edge.
//
// Build does not look for cycles. Those surface when layers are assigned.
func Build(records []task.Record) (*Graph, error) {
	g := &Graph{
		nodes: make([]Node, len(records)),
		index: make(map[int]int, len(records)),
	}

	for i, r := range records {
		if prev, dup := g.index[r.ID]; dup {
			return nil, dagerrors.Wrap(dagerrors.ErrCodeDataIntegrity, ErrDuplicateTask,
				"task %d appears at positions %d and %d", r.ID, prev, i)
		}
		g.index[r.ID] = i
		g.nodes[i] = Node{
			Index:  i,
			Task:   r.Clone(),
			Layer:  Unassigned,
			Column: Unassigned,
		}
	}

	for i, r := range records {
		for _, succ := range r.SuccessorIDs {
			j, ok := g.index[succ]
			if !ok {
				return nil, dagerrors.Wrap(dagerrors.ErrCodeDataIntegrity, ErrUnknownTask,
					"task %d lists successor %d", r.ID, succ)
			}
			if slices.Contains(g.nodes[i].Children, j) {
				continue
			}
			g.nodes[i].Children = append(g.nodes[i].Children, j)
			g.nodes[j].Parents = append(g.nodes[j].Parents, i)
			g.edges = append(g.edges, Edge{Source: i, Target: j})
		}
	}

	return g, nil
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Node returns the node at index i. The pointer refers to the graph's own
// storage, so layout passes can update it in place.
func (g *Graph) Node(i int) *Node { return &g.nodes[i] }

// Nodes returns the node slice in input order. The slice is the graph's own
// storage.
func (g *Graph) Nodes() []Node { return g.nodes }

// Edges returns a copy of all edges.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// IndexOf returns the node index of the task with the given id.
func (g *Graph) IndexOf(id int) (int, bool) {
	i, ok := g.index[id]
	return i, ok
}

// NodeByID returns the node for a task id.
func (g *Graph) NodeByID(id int) (*Node, bool) {
	i, ok := g.index[id]
	if !ok {
		return nil, false
	}
	return &g.nodes[i], true
}

// Children returns the child indices of node i. Read-only.
func (g *Graph) Children(i int) []int { return g.nodes[i].Children }

// Parents returns the parent indices of node i. Read-only.
func (g *Graph) Parents(i int) []int { return g.nodes[i].Parents }

// HasEdge reports whether an edge from node i to node j exists.
func (g *Graph) HasEdge(i, j int) bool {
	return slices.Contains(g.nodes[i].Children, j)
}

// Roots returns the indices of nodes without parents, in input order.
func (g *Graph) Roots() []int {
	var roots []int
	for i := range g.nodes {
		if g.nodes[i].IsRoot() {
			roots = append(roots, i)
		}
	}
	return roots
}

// MaxLayer returns the deepest assigned layer, or -1 if nothing is placed.
func (g *Graph) MaxLayer() int {
	deepest := Unassigned
	for i := range g.nodes {
		deepest = max(deepest, g.nodes[i].Layer)
	}
	return deepest
}

// Layers groups node indices by assigned layer. Within a layer indices are
// in input order. Unplaced nodes are omitted.
func (g *Graph) Layers() [][]int {
	layers := make([][]int, g.MaxLayer()+1)
	for i := range g.nodes {
		if l := g.nodes[i].Layer; l >= 0 {
			layers[l] = append(layers[l], i)
		}
	}
	return layers
}

// Validate checks the link structure and, for placed nodes, the layout
// invariants: every child sits in a deeper layer than its parent, no
// layer holds two nodes in the same column, and no node sits left of its
// rightmost parent.
func (g *Graph) Validate() error {
	for _, e := range g.edges {
		if !slices.Contains(g.nodes[e.Target].Parents, e.Source) ||
			!slices.Contains(g.nodes[e.Source].Children, e.Target) {
			return ErrAsymmetricLinks
		}
		src, dst := &g.nodes[e.Source], &g.nodes[e.Target]
		if src.Layer == Unassigned || dst.Layer == Unassigned {
			continue
		}
		if dst.Layer <= src.Layer {
			return ErrInvalidLayering
		}
		if src.Column != Unassigned && dst.Column != Unassigned && dst.Column < src.Column {
			return ErrInvalidLayering
		}
	}

	type slot struct{ layer, column int }
	seen := make(map[slot]bool, len(g.nodes))
	for i := range g.nodes {
		n := &g.nodes[i]
		if n.Layer == Unassigned || n.Column == Unassigned {
			continue
		}
		s := slot{n.Layer, n.Column}
		if seen[s] {
			return ErrColumnCollision
		}
		seen[s] = true
	}
	return nil
}
