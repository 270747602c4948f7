package transform

import (
	"github.com/matzehuels/taskdag/pkg/dag"
	dagerrors "github.com/matzehuels/taskdag/pkg/errors"
)

// AssignLayers assigns every node its layer: the length of the longest path
// from any root to it. Roots (nodes without parents) are at layer 0 and every
// other node sits one below its deepest parent, so:
//   - All parents are strictly above their children
//   - Each node is pushed as deep as its longest chain of prerequisites
//
// Existing layer assignments are overwritten.
//
// # Algorithm
//
// Layers are computed by a depth-first walk over parent links with an
// explicit stack. Each node is marked in progress when first entered and
// done once all its parents are done; its layer is then one plus the
// maximum parent layer. Stack depth is bounded by the heap, not the
// goroutine stack, so long dependency chains are fine.
//
// # Cycles
//
// Meeting a node that is still in progress means the batch is cyclic.
// AssignLayers then returns a GRAPH_CYCLE error wrapping a [*CycleError]
// that lists the strongly connected components involved, and leaves the
// layers unassigned. Every node is visited, so cycles that no root can
// reach are reported too.
//
// # Performance
//
// Time complexity is O(V + E). Space is O(V) for the markers and stack.
func AssignLayers(g *dag.Graph) error {
	const (
		unvisited = iota
		inProgress
		done
	)

	type frame struct {
		node int
		next int // next parent to look at
	}

	n := g.Len()
	state := make([]int, n)
	layers := make([]int, n)
	stack := make([]frame, 0, 16)

	for start := 0; start < n; start++ {
		if state[start] == done {
			continue
		}
		state[start] = inProgress
		stack = append(stack[:0], frame{node: start})

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			parents := g.Parents(top.node)

			if top.next < len(parents) {
				p := parents[top.next]
				top.next++
				switch state[p] {
				case unvisited:
					state[p] = inProgress
					stack = append(stack, frame{node: p})
				case inProgress:
					return cycleFailure(g)
				}
				continue
			}

			layer := 0
			for _, p := range parents {
				layer = max(layer, layers[p]+1)
			}
			layers[top.node] = layer
			state[top.node] = done
			stack = stack[:len(stack)-1]
		}
	}

	for i := 0; i < n; i++ {
		g.Node(i).Layer = layers[i]
	}
	return nil
}

func cycleFailure(g *dag.Graph) error {
	cerr := newCycleError(g, FindCycles(g))
	return dagerrors.Wrap(dagerrors.ErrCodeGraphCycle, cerr, "dependencies form a cycle")
}
