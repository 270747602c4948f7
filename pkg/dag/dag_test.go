package dag

import (
	"errors"
	"reflect"
	"testing"

	dagerrors "github.com/matzehuels/taskdag/pkg/errors"
	"github.com/matzehuels/taskdag/pkg/task"
)

func diamond() []task.Record {
	return []task.Record{
		{ID: 1, SuccessorIDs: []int{2, 3}},
		{ID: 2, SuccessorIDs: []int{4}},
		{ID: 3, SuccessorIDs: []int{4}},
		{ID: 4},
	}
}

func TestBuild(t *testing.T) {
	g, err := Build(diamond())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if g.Len() != 4 {
		t.Errorf("Len() = %d, want 4", g.Len())
	}
	wantEdges := []Edge{{0, 1}, {0, 2}, {1, 3}, {2, 3}}
	if got := g.Edges(); !reflect.DeepEqual(got, wantEdges) {
		t.Errorf("Edges() = %v, want %v", got, wantEdges)
	}
	if got := g.Children(0); !reflect.DeepEqual(got, []int{1, 2}) {
		t.Errorf("Children(0) = %v, want [1 2]", got)
	}
	if got := g.Parents(3); !reflect.DeepEqual(got, []int{1, 2}) {
		t.Errorf("Parents(3) = %v, want [1 2]", got)
	}
	for i, n := range g.Nodes() {
		if n.Index != i {
			t.Errorf("node %d has Index %d", i, n.Index)
		}
		if n.Layer != Unassigned || n.Column != Unassigned {
			t.Errorf("node %d placed before layout: layer=%d column=%d", i, n.Layer, n.Column)
		}
	}
	if err := g.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name    string
		records []task.Record
		want    error
	}{
		{
			name:    "unknown successor",
			records: []task.Record{{ID: 1, SuccessorIDs: []int{2}}},
			want:    ErrUnknownTask,
		},
		{
			name: "unknown successor after valid ones",
			records: []task.Record{
				{ID: 1, SuccessorIDs: []int{2, 5}},
				{ID: 2},
			},
			want: ErrUnknownTask,
		},
		{
			name:    "duplicate id",
			records: []task.Record{{ID: 1}, {ID: 1}},
			want:    ErrDuplicateTask,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Build(tt.records)
			if g != nil {
				t.Errorf("Build() returned a partial graph")
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Build() error = %v, want %v", err, tt.want)
			}
			if !dagerrors.Is(err, dagerrors.ErrCodeDataIntegrity) {
				t.Errorf("Build() code = %v, want %v", dagerrors.GetCode(err), dagerrors.ErrCodeDataIntegrity)
			}
		})
	}
}

func TestBuildEmpty(t *testing.T) {
	g, err := Build(nil)
	if err != nil {
		t.Fatalf("Build(nil) error = %v", err)
	}
	if g.Len() != 0 || g.EdgeCount() != 0 {
		t.Errorf("Build(nil) = %d nodes, %d edges", g.Len(), g.EdgeCount())
	}
	if g.MaxLayer() != Unassigned {
		t.Errorf("MaxLayer() = %d, want %d", g.MaxLayer(), Unassigned)
	}
	if len(g.Layers()) != 0 {
		t.Errorf("Layers() = %v, want empty", g.Layers())
	}
}

func TestBuildRepeatedSuccessor(t *testing.T) {
	g, err := Build([]task.Record{{ID: 1, SuccessorIDs: []int{2, 2}}, {ID: 2}})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if g.EdgeCount() != 1 {
		t.Errorf("EdgeCount() = %d, want 1", g.EdgeCount())
	}
}

func TestBuildDoesNotAlias(t *testing.T) {
	records := diamond()
	g, _ := Build(records)
	records[0].SuccessorIDs[0] = 99
	if got := g.Node(0).Task.SuccessorIDs[0]; got != 2 {
		t.Errorf("graph shares record storage: successor = %d", got)
	}
}

func TestGraphLookup(t *testing.T) {
	g, _ := Build(diamond())

	if i, ok := g.IndexOf(3); !ok || i != 2 {
		t.Errorf("IndexOf(3) = %d, %v, want 2, true", i, ok)
	}
	if _, ok := g.IndexOf(7); ok {
		t.Errorf("IndexOf(7) found a node")
	}
	if n, ok := g.NodeByID(4); !ok || n.ID() != 4 {
		t.Errorf("NodeByID(4) = %v, %v", n, ok)
	}
	if !g.HasEdge(0, 1) || g.HasEdge(1, 0) {
		t.Errorf("HasEdge mismatch")
	}
	if got := g.Roots(); !reflect.DeepEqual(got, []int{0}) {
		t.Errorf("Roots() = %v, want [0]", got)
	}
}

func TestValidate(t *testing.T) {
	place := func(g *Graph, layers, columns []int) {
		for i := range g.nodes {
			g.nodes[i].Layer = layers[i]
			g.nodes[i].Column = columns[i]
		}
	}

	tests := []struct {
		name    string
		layers  []int
		columns []int
		want    error
	}{
		{"valid", []int{0, 1, 1, 2}, []int{0, 0, 1, 1}, nil},
		{"child above parent", []int{0, 1, 1, 1}, []int{0, 0, 1, 2}, ErrInvalidLayering},
		{"child left of parent", []int{0, 1, 1, 2}, []int{0, 0, 1, 0}, ErrInvalidLayering},
		{"column collision", []int{0, 1, 1, 2}, []int{0, 1, 1, 1}, ErrColumnCollision},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, _ := Build(diamond())
			place(g, tt.layers, tt.columns)
			if err := g.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLayers(t *testing.T) {
	g, _ := Build(diamond())
	for i, l := range []int{0, 1, 1, 2} {
		g.nodes[i].Layer = l
	}
	want := [][]int{{0}, {1, 2}, {3}}
	if got := g.Layers(); !reflect.DeepEqual(got, want) {
		t.Errorf("Layers() = %v, want %v", got, want)
	}
}

func TestCountCrossings(t *testing.T) {
	// 1 -> 4, 2 -> 3 with 1,2 on layer 0 and 3,4 on layer 1
	records := []task.Record{
		{ID: 1, SuccessorIDs: []int{4}},
		{ID: 2, SuccessorIDs: []int{3}},
		{ID: 3},
		{ID: 4},
	}

	tests := []struct {
		name    string
		columns []int
		want    int
	}{
		{"crossed", []int{0, 1, 0, 1}, 1},
		{"uncrossed", []int{0, 1, 1, 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, _ := Build(records)
			for i, l := range []int{0, 0, 1, 1} {
				g.nodes[i].Layer = l
				g.nodes[i].Column = tt.columns[i]
			}
			if got := CountCrossings(g); got != tt.want {
				t.Errorf("CountCrossings() = %d, want %d", got, tt.want)
			}
		})
	}
}
