// Package graph provides the render model for laid-out task graphs.
//
// This package defines the wire format that leaves the layout engine: the
// JSON served by the HTTP API, the input of the SVG and DOT renderers, and
// the value the artifact cache hashes.
//
// # Architecture
//
//   - pkg/dag.Graph: internal node store with layers, columns and statuses
//   - pkg/view: projects a laid-out dag.Graph into a [Model]
//   - [Model], [Node], [Edge]: serialization types (this package)
//
// # Format
//
//	{
//	  "nodes": [
//	    {"id": 1, "title": "plan", "x": 200, "y": 300, "type": "ACTIONABLE", "lines": ["plan"]},
//	    {"id": 2, "title": "ship", "x": 200, "y": 500, "type": "BLOCKED", "lines": ["ship"]}
//	  ],
//	  "edges": [
//	    {"source": 1, "target": 2, "type": "NORMAL"}
//	  ]
//	}
//
// Ids are task ids. Coordinates follow fixed spacing constants
// ([ColumnSpacing], [LayerSpacing] and their origins).
//
// # Concurrency
//
// A Model is a plain value. Share it freely once built; do not mutate a
// model another goroutine may be reading.
package graph
