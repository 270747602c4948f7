package dag

import "slices"

// CountCrossings returns the number of edge crossings between consecutive
// layers of a laid-out graph. Only edges that span exactly one layer are
// considered; longer edges are drawn as straight lines through the layers
// in between and are left out of the count. Unplaced nodes are ignored.
//
// The count is a layout quality figure for logs and stats. Column
// assignment does not try to minimise it.
func CountCrossings(g *Graph) int {
	byLayer := make(map[int][]Edge)
	for _, e := range g.edges {
		src, dst := &g.nodes[e.Source], &g.nodes[e.Target]
		if src.Column == Unassigned || dst.Column == Unassigned {
			continue
		}
		if dst.Layer == src.Layer+1 {
			byLayer[src.Layer] = append(byLayer[src.Layer], e)
		}
	}

	crossings := 0
	for _, edges := range byLayer {
		crossings += countLayerCrossings(g, edges)
	}
	return crossings
}

// countLayerCrossings counts inversions with a Fenwick tree. Two edges
// (u1,v1) and (u2,v2) cross iff col(u1) < col(u2) and col(v1) > col(v2).
func countLayerCrossings(g *Graph, edges []Edge) int {
	if len(edges) < 2 {
		return 0
	}

	type span struct{ upper, lower int }
	spans := make([]span, len(edges))
	width := 0
	for i, e := range edges {
		spans[i] = span{g.nodes[e.Source].Column, g.nodes[e.Target].Column}
		width = max(width, spans[i].lower+1)
	}
	slices.SortFunc(spans, func(a, b span) int {
		if a.upper != b.upper {
			return a.upper - b.upper
		}
		return a.lower - b.lower
	})

	fenwick := make([]int, width+1)
	crossings, total := 0, 0
	for _, s := range spans {
		lessOrEqual := 0
		for q := s.lower + 1; q > 0; q -= q & (-q) {
			lessOrEqual += fenwick[q]
		}
		crossings += total - lessOrEqual

		total++
		for idx := s.lower + 1; idx < len(fenwick); idx += idx & (-idx) {
			fenwick[idx]++
		}
	}
	return crossings
}
