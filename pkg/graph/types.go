package graph

import "slices"

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// NodeType is the visual state of a task node. The values match dag.Status.
type NodeType string

// Node types.
const (
	NodeTypeDone       NodeType = "DONE"
	NodeTypeActionable NodeType = "ACTIONABLE"
	NodeTypeBlocked    NodeType = "BLOCKED"
)

// EdgeType is the visual type of a dependency edge.
type EdgeType string

// EdgeTypeNormal is the only edge type the layout produces.
const EdgeTypeNormal EdgeType = "NORMAL"

// Layout constants. Coordinates are node centres in render units.
const (
	ColumnSpacing = 200
	ColumnOrigin  = 200
	LayerSpacing  = 200
	LayerOrigin   = 300
)

// =============================================================================
// Model - Render Model
// =============================================================================

// Model is the render-ready form of a laid-out task graph. It is what the
// HTTP API serves, what renderers draw and what the artifact cache keys on.
//
// Nodes are in task input order and edges in parent-major order, so the same
// task batch always serializes to the same bytes.
type Model struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node is a positioned task. ID is the task id, never a node index.
type Node struct {
	ID    int      `json:"id"`
	Title string   `json:"title"`
	X     float64  `json:"x"`
	Y     float64  `json:"y"`
	Type  NodeType `json:"type"`
	Lines []string `json:"lines"` // Title chunked for display, at most two
}

// Edge is a dependency from Source to Target, both task ids.
type Edge struct {
	Source int      `json:"source"`
	Target int      `json:"target"`
	Type   EdgeType `json:"type"`
}

// Node returns the node with the given task id.
func (m *Model) Node(id int) (*Node, bool) {
	i := slices.IndexFunc(m.Nodes, func(n Node) bool { return n.ID == id })
	if i < 0 {
		return nil, false
	}
	return &m.Nodes[i], true
}

// Bounds returns the extent of all node centres plus one spacing unit of
// margin on each side, so a renderer can size its canvas. An empty model
// yields a canvas that fits a single node at the origin.
func (m *Model) Bounds() (width, height float64) {
	maxX, maxY := float64(ColumnOrigin), float64(LayerOrigin)
	for _, n := range m.Nodes {
		maxX = max(maxX, n.X)
		maxY = max(maxY, n.Y)
	}
	return maxX + ColumnSpacing, maxY + LayerSpacing
}

// Empty reports whether the model has no nodes.
func (m *Model) Empty() bool { return len(m.Nodes) == 0 }
