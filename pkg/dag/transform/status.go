package transform

import "github.com/matzehuels/taskdag/pkg/dag"

// ClassifyStatus sets the display status of every node:
//   - DONE when the task is completed
//   - ACTIONABLE when it is open and every parent is completed (roots included)
//   - BLOCKED otherwise
//
// Status depends on direct parents only, never on ancestors further up.
func ClassifyStatus(g *dag.Graph) {
	for i := 0; i < g.Len(); i++ {
		g.Node(i).Status = statusOf(g, i)
	}
}

func statusOf(g *dag.Graph, i int) dag.Status {
	if g.Node(i).Task.Completed {
		return dag.StatusDone
	}
	for _, p := range g.Parents(i) {
		if !g.Node(p).Task.Completed {
			return dag.StatusBlocked
		}
	}
	return dag.StatusActionable
}

// Layout runs the full layout on g: layers, columns, then statuses. It stops
// at the first error, which is only possible when the batch is cyclic.
func Layout(g *dag.Graph) error {
	if err := AssignLayers(g); err != nil {
		return err
	}
	AssignColumns(g)
	ClassifyStatus(g)
	return nil
}
