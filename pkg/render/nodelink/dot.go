package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/taskdag/pkg/graph"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed appends the node type to every label.
	Detailed bool

	// Free drops the pinned coordinates and lets Graphviz rank the graph
	// itself (dot layout, top to bottom).
	Free bool

	// Focus, when non-nil, is the id of a task drawn with a heavy outline.
	Focus *int
}

// focusColor matches the outline the native SVG sink draws.
const focusColor = "#1f6fd1"

// Fill colors per node type, shared with the native SVG sink.
var fills = map[graph.NodeType]string{
	graph.NodeTypeDone:       "#d9e8d4",
	graph.NodeTypeActionable: "#cfe3f7",
	graph.NodeTypeBlocked:    "#f6dcc7",
}

// ToDOT converts a render model to Graphviz DOT. Node names are task ids.
// Unless opts.Free is set every node is pinned at its projected position
// (pos="x,y!" in points, y flipped since Graphviz grows upwards), which the
// neato engine used by [RenderSVG] honours.
func ToDOT(m graph.Model, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	if opts.Free {
		buf.WriteString("  rankdir=TB;\n")
		buf.WriteString("  ranksep=0.5;\n")
		buf.WriteString("  nodesep=0.3;\n")
	} else {
		buf.WriteString("  inputscale=72;\n")
		buf.WriteString("  splines=line;\n")
	}
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=monospace, fontsize=14, width=2.2, height=0.9, fixedsize=true];\n")
	buf.WriteString("\n")

	for _, n := range m.Nodes {
		attrs := fmtAttrs(n, opts)
		fmt.Fprintf(&buf, "  %d [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range m.Edges {
		fmt.Fprintf(&buf, "  %d -> %d;\n", e.Source, e.Target)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n graph.Node, detailed bool) string {
	lines := n.Lines
	if len(lines) == 0 {
		lines = []string{n.Title}
	}
	label := strings.Join(lines, "\n")
	if detailed {
		label += "\n[" + string(n.Type) + "]"
	}
	return label
}

func fmtAttrs(n graph.Node, opts Options) []string {
	attrs := []string{
		fmt.Sprintf("label=%q", fmtLabel(n, opts.Detailed)),
		fmt.Sprintf("tooltip=%q", n.Title),
	}
	if fill, ok := fills[n.Type]; ok {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", fill))
	}
	if opts.Focus != nil && *opts.Focus == n.ID {
		attrs = append(attrs, fmt.Sprintf("color=%q", focusColor), "penwidth=3")
	}
	if !opts.Free {
		attrs = append(attrs, fmt.Sprintf("pos=\"%s,%s!\"", fmtFloat(n.X), fmtFloat(-n.Y)))
	}
	return attrs
}

func fmtFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// RenderSVG renders DOT source to SVG with Graphviz. Pinned sources (the
// default output of [ToDOT]) use the neato engine; free ones use dot.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	if strings.Contains(dot, "inputscale=") {
		gv.SetLayout(graphviz.NEATO)
	}

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with a plain
// pixel-sized one so the SVG scales in browsers.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
