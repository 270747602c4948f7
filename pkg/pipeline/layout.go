package pipeline

import (
	"time"

	"github.com/matzehuels/taskdag/pkg/dag"
	"github.com/matzehuels/taskdag/pkg/dag/transform"
	"github.com/matzehuels/taskdag/pkg/task"
	"github.com/matzehuels/taskdag/pkg/view"
)

// Layout runs the filter, build, layout and project stages without caching
// or logging. opts must already be validated.
//
// On error no partial result is returned: an unresolved successor id fails
// with DATA_INTEGRITY and a cyclic batch with GRAPH_CYCLE.
func Layout(records []task.Record, opts Options) (*Result, error) {
	stats := Stats{TaskCount: len(records)}
	visible := opts.Filter.Apply(records)

	start := time.Now()
	g, err := dag.Build(visible)
	if err != nil {
		return nil, err
	}
	stats.BuildTime = time.Since(start)

	start = time.Now()
	if err := transform.Layout(g); err != nil {
		return nil, err
	}
	stats.LayoutTime = time.Since(start)

	start = time.Now()
	model := view.ProjectWidth(g, opts.LineWidth)
	stats.ProjectTime = time.Since(start)

	stats.NodeCount = g.Len()
	stats.EdgeCount = g.EdgeCount()
	stats.LayerCount = g.MaxLayer() + 1
	stats.Crossings = dag.CountCrossings(g)

	return &Result{Graph: g, Model: model, Stats: stats}, nil
}
