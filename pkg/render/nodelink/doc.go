// Package nodelink renders task graphs through Graphviz.
//
// [ToDOT] emits DOT source for a [graph.Model]. By default every node is
// pinned to its layered position, so Graphviz only routes edges and draws
// boxes; with Options.Free the positions are dropped and Graphviz ranks the
// graph itself.
//
//	dot := nodelink.ToDOT(model, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// Rendering uses the WebAssembly build of Graphviz bundled with go-graphviz;
// no system Graphviz install is needed.
package nodelink
