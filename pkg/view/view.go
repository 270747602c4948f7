// Package view projects a laid-out task graph onto render coordinates.
package view

import (
	"github.com/matzehuels/taskdag/pkg/dag"
	"github.com/matzehuels/taskdag/pkg/graph"
)

// Position returns the render coordinates of a (layer, column) slot.
func Position(layer, column int) (x, y float64) {
	x = float64(column*graph.ColumnSpacing + graph.ColumnOrigin)
	y = float64(layer*graph.LayerSpacing + graph.LayerOrigin)
	return x, y
}

// Project converts a laid-out graph into a render model. Node ids in the
// model are task ids. Every node must have its layer, column and status
// assigned (see transform.Layout).
func Project(g *dag.Graph) graph.Model {
	return ProjectWidth(g, DefaultLineWidth)
}

// ProjectWidth is [Project] with labels chunked to lineWidth display cells.
func ProjectWidth(g *dag.Graph, lineWidth int) graph.Model {
	if lineWidth <= 0 {
		lineWidth = DefaultLineWidth
	}
	m := graph.Model{
		Nodes: make([]graph.Node, g.Len()),
		Edges: make([]graph.Edge, 0, g.EdgeCount()),
	}

	for i, n := range g.Nodes() {
		x, y := Position(n.Layer, n.Column)
		m.Nodes[i] = graph.Node{
			ID:    n.ID(),
			Title: n.Task.Text,
			X:     x,
			Y:     y,
			Type:  graph.NodeType(n.Status),
			Lines: Lines(n.Task.Text, lineWidth),
		}
	}
	for _, e := range g.Edges() {
		m.Edges = append(m.Edges, graph.Edge{
			Source: g.Node(e.Source).ID(),
			Target: g.Node(e.Target).ID(),
			Type:   graph.EdgeTypeNormal,
		})
	}
	return m
}
