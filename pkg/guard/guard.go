// Package guard decides whether a proposed dependency edge may be added to a
// task graph.
//
// [Validate] is pure: it inspects a built graph and never changes it. Rules
// are checked in a fixed order and the first one that matches decides:
//
//  1. Either endpoint is not a task of the graph: [ReasonUnknownTask]
//  2. Source and target are the same task: [ReasonSelfLoop]
//  3. The edge already exists: [ReasonDuplicate]
//  4. The edge would close a cycle: [ReasonCycle]
//
// Anything else is accepted.
package guard

import (
	"fmt"

	"github.com/matzehuels/taskdag/pkg/dag"
	dagerrors "github.com/matzehuels/taskdag/pkg/errors"
)

// Reason explains a rejection.
type Reason string

// Rejection reasons.
const (
	ReasonUnknownTask Reason = "UNKNOWN_TASK"
	ReasonSelfLoop    Reason = "SELF_LOOP"
	ReasonDuplicate   Reason = "DUPLICATE"
	ReasonCycle       Reason = "CYCLE"
)

// Decision is the outcome of [Validate]. Reason is empty when Accepted.
type Decision struct {
	Accepted bool   `json:"accepted"`
	Reason   Reason `json:"reason,omitempty"`
}

// Accept is the accepting decision.
var Accept = Decision{Accepted: true}

func reject(r Reason) Decision { return Decision{Reason: r} }

// Silent reports whether the rejection should not be surfaced to the user.
// Re-proposing an existing edge is a no-op, not a mistake.
func (d Decision) Silent() bool { return d.Reason == ReasonDuplicate }

func (d Decision) String() string {
	if d.Accepted {
		return "ACCEPT"
	}
	return "REJECT(" + string(d.Reason) + ")"
}

// Err converts a rejection into an EDGE_REJECTED error. It returns nil for
// an accepting decision.
func (d Decision) Err(sourceID, targetID int) error {
	if d.Accepted {
		return nil
	}
	return dagerrors.New(dagerrors.ErrCodeEdgeRejected,
		"dependency %d -> %d rejected: %s", sourceID, targetID, d.Reason)
}

// Validate decides whether the edge sourceID -> targetID (task ids) may be
// added to g, meaning targetID would become a successor of sourceID.
//
// The cycle rule simulates the insertion: the new edge closes a cycle iff
// targetID can already reach sourceID along existing edges. As a safety net
// for graphs that were never layered, a cycle already present among the
// nodes reachable from a root also rejects the proposal.
func Validate(g *dag.Graph, sourceID, targetID int) Decision {
	src, ok := g.IndexOf(sourceID)
	if !ok {
		return reject(ReasonUnknownTask)
	}
	dst, ok := g.IndexOf(targetID)
	if !ok {
		return reject(ReasonUnknownTask)
	}
	if src == dst {
		return reject(ReasonSelfLoop)
	}
	if g.HasEdge(src, dst) {
		return reject(ReasonDuplicate)
	}
	if Reaches(g, dst, src) || hasCycleFromRoots(g) {
		return reject(ReasonCycle)
	}
	return Accept
}

// Reaches reports whether node index to is reachable from node index from
// along child edges. A node reaches itself. The walk is iterative.
func Reaches(g *dag.Graph, from, to int) bool {
	if from == to {
		return true
	}
	seen := make([]bool, g.Len())
	seen[from] = true
	stack := []int{from}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, c := range g.Children(n) {
			if c == to {
				return true
			}
			if !seen[c] {
				seen[c] = true
				stack = append(stack, c)
			}
		}
	}
	return false
}

// hasCycleFromRoots runs a colouring DFS from every root and reports whether
// a back edge is met. A graph where every node sits on a cycle has no roots
// and is not detected here; such graphs never pass layer assignment.
func hasCycleFromRoots(g *dag.Graph) bool {
	const (
		white = iota
		gray
		black
	)
	type frame struct {
		node int
		next int
	}

	color := make([]int, g.Len())
	for _, root := range g.Roots() {
		if color[root] != white {
			continue
		}
		color[root] = gray
		stack := []frame{{node: root}}
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			children := g.Children(top.node)
			if top.next == len(children) {
				color[top.node] = black
				stack = stack[:len(stack)-1]
				continue
			}
			c := children[top.next]
			top.next++
			switch color[c] {
			case white:
				color[c] = gray
				stack = append(stack, frame{node: c})
			case gray:
				return true
			}
		}
	}
	return false
}

// Explain renders a decision for logs and user messages.
func Explain(d Decision, sourceID, targetID int) string {
	switch d.Reason {
	case "":
		return fmt.Sprintf("%d -> %d accepted", sourceID, targetID)
	case ReasonUnknownTask:
		return fmt.Sprintf("%d -> %d rejected: unknown task", sourceID, targetID)
	case ReasonSelfLoop:
		return fmt.Sprintf("%d -> %d rejected: a task cannot depend on itself", sourceID, targetID)
	case ReasonDuplicate:
		return fmt.Sprintf("%d -> %d rejected: dependency already exists", sourceID, targetID)
	case ReasonCycle:
		return fmt.Sprintf("%d -> %d rejected: would create a cycle", sourceID, targetID)
	default:
		return fmt.Sprintf("%d -> %d rejected: %s", sourceID, targetID, d.Reason)
	}
}
