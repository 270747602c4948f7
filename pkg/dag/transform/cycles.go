package transform

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/matzehuels/taskdag/pkg/dag"
)

// ErrCycle is wrapped by every [CycleError].
var ErrCycle = errors.New("task graph contains a cycle")

// CycleError reports the cyclic parts of a task batch. Each entry of Cycles
// is one strongly connected component, listed as task ids in input order.
// A task that lists itself as a successor shows up as a single-element
// component.
type CycleError struct {
	Cycles [][]int
}

func (e *CycleError) Error() string {
	parts := make([]string, len(e.Cycles))
	for i, c := range e.Cycles {
		ids := make([]string, len(c))
		for j, id := range c {
			ids[j] = fmt.Sprint(id)
		}
		parts[i] = "[" + strings.Join(ids, " ") + "]"
	}
	return fmt.Sprintf("%v: %s", ErrCycle, strings.Join(parts, ", "))
}

func (e *CycleError) Unwrap() error { return ErrCycle }

// FindCycles returns the cyclic strongly connected components of g as node
// index sets. Components and their members are sorted by index, so the
// result is stable across runs. A nil result means g is acyclic.
func FindCycles(g *dag.Graph) [][]int {
	sg := simple.NewDirectedGraph()
	var selfLoops []int
	for i := 0; i < g.Len(); i++ {
		sg.AddNode(simple.Node(int64(i)))
	}
	for _, e := range g.Edges() {
		if e.Source == e.Target {
			// simple.DirectedGraph does not allow self edges.
			selfLoops = append(selfLoops, e.Source)
			continue
		}
		sg.SetEdge(sg.NewEdge(sg.Node(int64(e.Source)), sg.Node(int64(e.Target))))
	}

	var cycles [][]int
	for _, scc := range topo.TarjanSCC(sg) {
		if len(scc) < 2 {
			continue
		}
		c := make([]int, len(scc))
		for i, n := range scc {
			c[i] = int(n.ID())
		}
		slices.Sort(c)
		cycles = append(cycles, c)
	}
	for _, i := range selfLoops {
		// A self loop inside a larger component is already reported.
		if !slices.ContainsFunc(cycles, func(c []int) bool { return slices.Contains(c, i) }) {
			cycles = append(cycles, []int{i})
		}
	}

	slices.SortFunc(cycles, func(a, b []int) int { return a[0] - b[0] })
	return cycles
}

// newCycleError converts index components into a CycleError keyed by task id.
func newCycleError(g *dag.Graph, cycles [][]int) *CycleError {
	out := make([][]int, len(cycles))
	for i, c := range cycles {
		ids := make([]int, len(c))
		for j, idx := range c {
			ids[j] = g.Node(idx).ID()
		}
		out[i] = ids
	}
	return &CycleError{Cycles: out}
}
