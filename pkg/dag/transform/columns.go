package transform

import (
	"slices"

	"github.com/matzehuels/taskdag/pkg/dag"
)

// AssignColumns places the nodes of each layer into horizontal slots.
// Layers must already be assigned (see [AssignLayers]).
//
// Layers are processed top to bottom. Within a layer every node gets a key,
// the largest column among its parents (0 for roots). Nodes are stably
// sorted by that key, so ties keep input order, and then handed out left to
// right by a cursor:
//
//	column = max(cursor, key)
//	cursor = column + 1
//
// The result keeps children under or to the right of their rightmost parent
// and gives each node of a layer its own column. Columns may leave gaps.
func AssignColumns(g *dag.Graph) {
	type slot struct {
		node int
		key  int
	}

	for _, layer := range g.Layers() {
		slots := make([]slot, len(layer))
		for i, idx := range layer {
			key := 0
			for _, p := range g.Parents(idx) {
				key = max(key, g.Node(p).Column)
			}
			slots[i] = slot{node: idx, key: key}
		}

		slices.SortStableFunc(slots, func(a, b slot) int { return a.key - b.key })

		cursor := 0
		for _, s := range slots {
			col := max(cursor, s.key)
			g.Node(s.node).Column = col
			cursor = col + 1
		}
	}
}
