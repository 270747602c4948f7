// Package render turns a laid-out task graph into documents.
//
// # Formats
//
//   - [FormatSVG]: native SVG drawn at the projected coordinates ([sink])
//   - [FormatDOT]: Graphviz DOT source with pinned positions ([nodelink])
//   - [FormatGraphviz]: that DOT source rendered to SVG by Graphviz
//
// [Render] dispatches on the format:
//
//	data, err := render.Render(ctx, model, render.FormatSVG, render.Options{})
//
// Rendering is a pure function of the model and options, which is what lets
// the pipeline cache artifacts by model hash.
//
// [sink]: github.com/matzehuels/taskdag/pkg/render/sink
// [nodelink]: github.com/matzehuels/taskdag/pkg/render/nodelink
package render
