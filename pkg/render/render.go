package render

import (
	"context"
	"fmt"
	"slices"
	"strings"

	dagerrors "github.com/matzehuels/taskdag/pkg/errors"
	"github.com/matzehuels/taskdag/pkg/graph"
	"github.com/matzehuels/taskdag/pkg/render/nodelink"
	"github.com/matzehuels/taskdag/pkg/render/sink"
)

// Format is an output document format.
type Format string

// Supported formats.
const (
	FormatSVG      Format = "svg"
	FormatDOT      Format = "dot"
	FormatGraphviz Format = "graphviz"
)

// Formats lists every supported format.
var Formats = []Format{FormatSVG, FormatDOT, FormatGraphviz}

// ParseFormat validates a format name. Matching is case-insensitive.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(Formats, f) {
		return "", dagerrors.New(dagerrors.ErrCodeInvalidFormat,
			"unknown format %q (want one of %s)", s, formatList())
	}
	return f, nil
}

func formatList() string {
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

// ContentType returns the MIME type of documents in format f.
func (f Format) ContentType() string {
	switch f {
	case FormatDOT:
		return "text/vnd.graphviz; charset=utf-8"
	default:
		return "image/svg+xml"
	}
}

// Extension returns the file extension for f, including the dot.
func (f Format) Extension() string {
	if f == FormatDOT {
		return ".dot"
	}
	return ".svg"
}

// Options configures [Render].
type Options struct {
	// Focus, when non-nil, is the id of a task to highlight.
	Focus *int

	// Detailed adds node types to Graphviz labels.
	Detailed bool
}

// Render draws m in format f.
func Render(ctx context.Context, m graph.Model, f Format, opts Options) ([]byte, error) {
	switch f {
	case FormatSVG:
		var svgOpts []sink.SVGOption
		if opts.Focus != nil {
			svgOpts = append(svgOpts, sink.WithFocus(*opts.Focus))
		}
		return sink.RenderSVG(m, svgOpts...), nil
	case FormatDOT:
		return []byte(nodelink.ToDOT(m, nodelink.Options{Detailed: opts.Detailed, Focus: opts.Focus})), nil
	case FormatGraphviz:
		out, err := nodelink.RenderSVG(ctx, nodelink.ToDOT(m, nodelink.Options{Detailed: opts.Detailed, Focus: opts.Focus}))
		if err != nil {
			return nil, fmt.Errorf("graphviz: %w", err)
		}
		return out, nil
	default:
		return nil, dagerrors.New(dagerrors.ErrCodeInvalidFormat, "unknown format %q", f)
	}
}
