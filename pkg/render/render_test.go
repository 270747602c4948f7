package render

import (
	"context"
	"strings"
	"testing"

	dagerrors "github.com/matzehuels/taskdag/pkg/errors"
	"github.com/matzehuels/taskdag/pkg/graph"
)

func model() graph.Model {
	return graph.Model{
		Nodes: []graph.Node{
			{ID: 1, Title: "plan", X: 200, Y: 300, Type: graph.NodeTypeActionable, Lines: []string{"plan"}},
			{ID: 2, Title: "ship", X: 200, Y: 500, Type: graph.NodeTypeBlocked, Lines: []string{"ship"}},
		},
		Edges: []graph.Edge{{Source: 1, Target: 2, Type: graph.EdgeTypeNormal}},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"svg", FormatSVG, false},
		{"DOT", FormatDOT, false},
		{" graphviz ", FormatGraphviz, false},
		{"png", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if tt.wantErr && !dagerrors.Is(err, dagerrors.ErrCodeInvalidFormat) {
			t.Errorf("ParseFormat(%q) error code = %s", tt.in, dagerrors.GetCode(err))
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatMetadata(t *testing.T) {
	if FormatDOT.Extension() != ".dot" || FormatSVG.Extension() != ".svg" || FormatGraphviz.Extension() != ".svg" {
		t.Error("unexpected extensions")
	}
	if !strings.HasPrefix(FormatDOT.ContentType(), "text/vnd.graphviz") {
		t.Errorf("DOT content type = %q", FormatDOT.ContentType())
	}
	if FormatSVG.ContentType() != "image/svg+xml" {
		t.Errorf("SVG content type = %q", FormatSVG.ContentType())
	}
}

func TestRender(t *testing.T) {
	ctx := context.Background()

	svg, err := Render(ctx, model(), FormatSVG, Options{})
	if err != nil || !strings.Contains(string(svg), `id="task-1"`) {
		t.Errorf("Render(svg) = %.80s, %v", svg, err)
	}

	dot, err := Render(ctx, model(), FormatDOT, Options{})
	if err != nil || !strings.Contains(string(dot), "1 -> 2;") {
		t.Errorf("Render(dot) = %s, %v", dot, err)
	}

	if _, err := Render(ctx, model(), Format("pdf"), Options{}); !dagerrors.Is(err, dagerrors.ErrCodeInvalidFormat) {
		t.Errorf("Render(pdf) error = %v, want INVALID_FORMAT", err)
	}
}

func TestRenderFocus(t *testing.T) {
	focus := 2
	svg, err := Render(context.Background(), model(), FormatSVG, Options{Focus: &focus})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(svg), "stroke:#1f6fd1") {
		t.Error("focused task is not highlighted")
	}
}

func TestRenderFocusDOT(t *testing.T) {
	focus := 2
	plain, err := Render(context.Background(), model(), FormatDOT, Options{})
	if err != nil {
		t.Fatal(err)
	}
	focused, err := Render(context.Background(), model(), FormatDOT, Options{Focus: &focus})
	if err != nil {
		t.Fatal(err)
	}
	if string(plain) == string(focused) {
		t.Fatal("focus does not change the DOT output")
	}
	if !strings.Contains(string(focused), `2 [label="ship"`) || !strings.Contains(string(focused), "penwidth=3") {
		t.Errorf("focused task is not outlined:\n%s", focused)
	}
}
