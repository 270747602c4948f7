package nodelink

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/taskdag/pkg/graph"
)

func diamond() graph.Model {
	return graph.Model{
		Nodes: []graph.Node{
			{ID: 1, Title: "plan", X: 200, Y: 300, Type: graph.NodeTypeActionable, Lines: []string{"plan"}},
			{ID: 2, Title: "build", X: 200, Y: 500, Type: graph.NodeTypeBlocked, Lines: []string{"build"}},
			{ID: 3, Title: "test", X: 400, Y: 500, Type: graph.NodeTypeBlocked, Lines: []string{"test"}},
			{ID: 4, Title: "ship", X: 400, Y: 700, Type: graph.NodeTypeBlocked, Lines: []string{"ship"}},
		},
		Edges: []graph.Edge{
			{Source: 1, Target: 2, Type: graph.EdgeTypeNormal},
			{Source: 1, Target: 3, Type: graph.EdgeTypeNormal},
			{Source: 2, Target: 4, Type: graph.EdgeTypeNormal},
			{Source: 3, Target: 4, Type: graph.EdgeTypeNormal},
		},
	}
}

func TestToDOT_Basic(t *testing.T) {
	dot := ToDOT(diamond(), Options{})

	for _, want := range []string{
		"digraph G {",
		"inputscale=72;",
		`1 [label="plan"`,
		"1 -> 2;",
		"3 -> 4;",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() output missing %q\n%s", want, dot)
		}
	}
}

func TestToDOT_Pinned(t *testing.T) {
	dot := ToDOT(diamond(), Options{})
	if !strings.Contains(dot, `pos="400,-700!"`) {
		t.Errorf("ToDOT() did not pin node 4:\n%s", dot)
	}
}

func TestToDOT_Free(t *testing.T) {
	dot := ToDOT(diamond(), Options{Free: true})
	if strings.Contains(dot, "pos=") || strings.Contains(dot, "inputscale") {
		t.Errorf("free layout should not pin nodes:\n%s", dot)
	}
	if !strings.Contains(dot, "rankdir=TB;") {
		t.Error("free layout should rank top to bottom")
	}
}

func TestToDOT_Fill(t *testing.T) {
	dot := ToDOT(diamond(), Options{})
	if !strings.Contains(dot, `fillcolor="#cfe3f7"`) {
		t.Error("actionable node missing its fill")
	}
}

func TestToDOT_Focus(t *testing.T) {
	focus := 3
	dot := ToDOT(diamond(), Options{Focus: &focus})
	for _, line := range strings.Split(dot, "\n") {
		highlighted := strings.Contains(line, `penwidth=3`) && strings.Contains(line, `color="#1f6fd1"`)
		if strings.HasPrefix(strings.TrimSpace(line), "3 [") != highlighted {
			t.Errorf("focus outline on wrong node: %s", line)
		}
	}

	if strings.Contains(ToDOT(diamond(), Options{}), "penwidth") {
		t.Error("outline drawn without a focus")
	}
}

func TestToDOT_Empty(t *testing.T) {
	if got := ToDOT(graph.Model{}, Options{}); !strings.HasPrefix(got, "digraph G {") || !strings.HasSuffix(got, "}\n") {
		t.Errorf("ToDOT(empty) = %q", got)
	}
}

func TestFmtLabel(t *testing.T) {
	tests := []struct {
		name     string
		node     graph.Node
		detailed bool
		want     string
	}{
		{"lines", graph.Node{Title: "a long title", Lines: []string{"a long", "title"}}, false, "a long\ntitle"},
		{"no lines", graph.Node{Title: "x"}, false, "x"},
		{"detailed", graph.Node{Title: "x", Lines: []string{"x"}, Type: graph.NodeTypeDone}, true, "x\n[DONE]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fmtLabel(tt.node, tt.detailed); got != tt.want {
				t.Errorf("fmtLabel() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="62pt" height="116pt" viewBox="0.00 0.00 62.00 116.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	got := string(normalizeViewBox(in))
	if !strings.Contains(got, `width="62" height="116"`) {
		t.Errorf("normalizeViewBox() = %s", got)
	}

	plain := []byte(`<svg><g/></svg>`)
	if string(normalizeViewBox(plain)) != string(plain) {
		t.Error("svg without viewBox should be unchanged")
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(context.Background(), ToDOT(diamond(), Options{}))
	if err != nil {
		t.Fatalf("RenderSVG() error = %v", err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Error("RenderSVG() output is not SVG")
	}
}

func TestRenderSVG_InvalidDOT(t *testing.T) {
	if _, err := RenderSVG(context.Background(), "digraph {"); err == nil {
		t.Error("RenderSVG() should fail on malformed DOT")
	}
}
