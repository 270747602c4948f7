// Package pipeline runs the task layout pipeline for the CLI, the HTTP server
// and the TUI.
//
// # Stages
//
//  1. Filter: apply the visibility filter to the task list
//  2. Build: resolve successor ids into a graph ([dag.Build])
//  3. Layout: assign layers, columns and statuses ([transform.Layout])
//  4. Project: place nodes on the render grid ([view.ProjectWidth])
//
// Rendering a model to SVG or DOT is a separate step ([Runner.Render]) whose
// output is cached by model hash. The layout itself is always recomputed in
// full; there is no incremental update.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Build(ctx, records, pipeline.Options{Filter: task.FilterActive})
//	if err != nil {
//	    return err
//	}
//	svg, hit, err := runner.Render(ctx, result.Model, render.FormatSVG, render.Options{})
//
// [dag.Build]: github.com/matzehuels/taskdag/pkg/dag.Build
// [transform.Layout]: github.com/matzehuels/taskdag/pkg/dag/transform.Layout
// [view.ProjectWidth]: github.com/matzehuels/taskdag/pkg/view.ProjectWidth
package pipeline

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/taskdag/pkg/dag"
	"github.com/matzehuels/taskdag/pkg/graph"
	"github.com/matzehuels/taskdag/pkg/render"
	"github.com/matzehuels/taskdag/pkg/task"
	"github.com/matzehuels/taskdag/pkg/view"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultFilter shows every task.
	DefaultFilter = task.FilterAll

	// DefaultLineWidth is the label line budget in display cells.
	DefaultLineWidth = view.DefaultLineWidth

	// MaxLineWidth bounds label lines; wider lines overflow the node box.
	MaxLineWidth = 64
)

// ValidateFormat checks that format names a supported render format.
func ValidateFormat(format string) error {
	_, err := render.ParseFormat(format)
	return err
}

// ValidateFormats checks every entry of formats.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options
// =============================================================================

// Options configures one pipeline run. It supports JSON for API requests.
type Options struct {
	Filter    task.Filter `json:"filter,omitempty"`
	LineWidth int         `json:"line_width,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	validated bool
}

// SetDefaults fills zero fields.
func (o *Options) SetDefaults() {
	if o.Filter == "" {
		o.Filter = DefaultFilter
	}
	if o.LineWidth == 0 {
		o.LineWidth = DefaultLineWidth
	}
}

// Validate checks the options. Call SetDefaults first.
func (o *Options) Validate() error {
	if _, err := task.ParseFilter(string(o.Filter)); err != nil {
		return err
	}
	if o.LineWidth < 1 || o.LineWidth > MaxLineWidth {
		return fmt.Errorf("line width %d out of range [1, %d]", o.LineWidth, MaxLineWidth)
	}
	return nil
}

// ValidateAndSetDefaults applies defaults and validates. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	o.SetDefaults()
	if err := o.Validate(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// =============================================================================
// Result
// =============================================================================

// Result is the output of one pipeline run.
type Result struct {
	// Graph is the laid-out task graph.
	Graph *dag.Graph

	// Model is the render model projected from Graph.
	Model graph.Model

	// ModelHash is the content hash of Model, the artifact cache key.
	ModelHash string

	// Stats contains timing and size information.
	Stats Stats
}

// Stats describes a pipeline run.
type Stats struct {
	TaskCount   int // before filtering
	NodeCount   int
	EdgeCount   int
	LayerCount  int
	Crossings   int
	BuildTime   time.Duration
	LayoutTime  time.Duration
	ProjectTime time.Duration
}

// Total returns the summed stage durations.
func (s Stats) Total() time.Duration {
	return s.BuildTime + s.LayoutTime + s.ProjectTime
}
