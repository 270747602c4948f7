package sink

import (
	"bytes"
	"fmt"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"

	"github.com/matzehuels/taskdag/pkg/graph"
)

// Node box geometry, centred on the node's coordinates.
const (
	NodeWidth  = 160
	NodeHeight = 64
	lineHeight = 18
	arrowLen   = 10
	arrowHalf  = 5
)

// Colors per node type.
var fills = map[graph.NodeType]string{
	graph.NodeTypeDone:       "#d9e8d4",
	graph.NodeTypeActionable: "#cfe3f7",
	graph.NodeTypeBlocked:    "#f6dcc7",
}

const (
	colorStroke     = "#4a4a4a"
	colorEdge       = "#8a8a8a"
	colorText       = "#1f1f1f"
	colorBackground = "#ffffff"
	colorFocus      = "#1f6fd1"
)

type svgConfig struct {
	background string
	focus      int
	focused    bool
}

// SVGOption configures [RenderSVG].
type SVGOption func(*svgConfig)

// WithBackground fills the canvas with color.
func WithBackground(color string) SVGOption {
	return func(c *svgConfig) { c.background = color }
}

// WithFocus outlines the task with the given id.
func WithFocus(id int) SVGOption {
	return func(c *svgConfig) { c.focus, c.focused = id, true }
}

// RenderSVG draws the model as an SVG document. Nodes are rounded boxes
// coloured by type with their label lines centred inside; edges are straight
// arrows between box borders.
func RenderSVG(m graph.Model, opts ...SVGOption) []byte {
	var buf bytes.Buffer
	WriteSVG(&buf, m, opts...)
	return buf.Bytes()
}

// WriteSVG is [RenderSVG] writing to w.
func WriteSVG(w io.Writer, m graph.Model, opts ...SVGOption) {
	var cfg svgConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	width, height := m.Bounds()
	canvas := svg.New(w)
	canvas.Start(int(width), int(height))
	if cfg.background != "" {
		canvas.Rect(0, 0, int(width), int(height), "fill:"+cfg.background)
	}

	canvas.Gid("edges")
	for _, e := range m.Edges {
		from, ok1 := m.Node(e.Source)
		to, ok2 := m.Node(e.Target)
		if !ok1 || !ok2 {
			continue
		}
		drawEdge(canvas, from, to)
	}
	canvas.Gend()

	canvas.Gid("nodes")
	for _, n := range m.Nodes {
		drawNode(canvas, n, cfg.focused && n.ID == cfg.focus)
	}
	canvas.Gend()

	canvas.End()
}

func drawNode(canvas *svg.SVG, n graph.Node, focused bool) {
	x := int(n.X) - NodeWidth/2
	y := int(n.Y) - NodeHeight/2
	fill, ok := fills[n.Type]
	if !ok {
		fill = colorBackground
	}

	canvas.Group(fmt.Sprintf(`id="task-%d" class="task %s"`, n.ID, n.Type))
	canvas.Title(n.Title)
	stroke, strokeWidth := colorStroke, 1.2
	if focused {
		stroke, strokeWidth = colorFocus, 3
	}
	canvas.Roundrect(x, y, NodeWidth, NodeHeight, 8, 8,
		fmt.Sprintf("fill:%s;stroke:%s;stroke-width:%.1f", fill, stroke, strokeWidth))

	lines := n.Lines
	if len(lines) == 0 {
		lines = []string{n.Title}
	}
	// First baseline so the block of lines is vertically centred.
	baseline := int(n.Y) - (len(lines)-1)*lineHeight/2 + 5
	for i, line := range lines {
		canvas.Text(int(n.X), baseline+i*lineHeight, line,
			fmt.Sprintf("fill:%s;font-size:14px;font-family:monospace;text-anchor:middle", colorText))
	}
	canvas.Gend()
}

func drawEdge(canvas *svg.SVG, from, to *graph.Node) {
	x1, y1 := borderPoint(from, to.X, to.Y)
	x2, y2 := borderPoint(to, from.X, from.Y)
	canvas.Line(int(x1), int(y1), int(x2), int(y2),
		fmt.Sprintf("stroke:%s;stroke-width:2", colorEdge),
		fmt.Sprintf(`data-source="%d" data-target="%d"`, from.ID, to.ID))

	dx, dy := x2-x1, y2-y1
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	ux, uy := dx/length, dy/length
	bx, by := x2-ux*arrowLen, y2-uy*arrowLen
	canvas.Polygon(
		[]int{int(x2), int(bx - uy*arrowHalf), int(bx + uy*arrowHalf)},
		[]int{int(y2), int(by + ux*arrowHalf), int(by - ux*arrowHalf)},
		"fill:"+colorEdge,
	)
}

// borderPoint returns where the segment from n's centre towards (tx, ty)
// leaves n's box.
func borderPoint(n *graph.Node, tx, ty float64) (float64, float64) {
	dx, dy := tx-n.X, ty-n.Y
	if dx == 0 && dy == 0 {
		return n.X, n.Y
	}
	hw, hh := float64(NodeWidth)/2, float64(NodeHeight)/2
	scale := math.Inf(1)
	if dx != 0 {
		scale = hw / math.Abs(dx)
	}
	if dy != 0 {
		scale = min(scale, hh/math.Abs(dy))
	}
	return n.X + dx*scale, n.Y + dy*scale
}
