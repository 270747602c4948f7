package command

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/taskdag/pkg/dag"
	dagerrors "github.com/matzehuels/taskdag/pkg/errors"
	"github.com/matzehuels/taskdag/pkg/guard"
	"github.com/matzehuels/taskdag/pkg/observability"
)

// Sink receives emitted commands.
type Sink interface {
	Apply(ctx context.Context, cmd Command) error
}

// SinkFunc adapts a function to [Sink].
type SinkFunc func(ctx context.Context, cmd Command) error

// Apply calls f.
func (f SinkFunc) Apply(ctx context.Context, cmd Command) error { return f(ctx, cmd) }

// Controller relays user interactions on a laid-out graph into commands.
//
// Payload ids arrive untyped from renderers and HTTP clients. They are
// validated strictly (see errors.TaskID); a malformed payload fails with
// MALFORMED_PAYLOAD before anything is emitted.
type Controller struct {
	Sink   Sink
	Logger *log.Logger
}

// NewController creates a controller that forwards commands to sink.
// If logger is nil, log.Default() is used.
func NewController(sink Sink, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.Default()
	}
	return &Controller{Sink: sink, Logger: logger}
}

// SelectNode handles a click on a node and emits FocusTask.
func (c *Controller) SelectNode(ctx context.Context, g *dag.Graph, id any) (Command, error) {
	taskID, err := dagerrors.TaskID("id", id)
	if err != nil {
		return Command{}, err
	}
	if _, ok := g.IndexOf(taskID); !ok {
		return Command{}, dagerrors.New(dagerrors.ErrCodeNotFound, "task %d not in graph", taskID)
	}
	return c.emit(ctx, FocusTask(taskID))
}

// SelectEdge handles a click on an edge and emits RemoveDependency.
func (c *Controller) SelectEdge(ctx context.Context, g *dag.Graph, source, target any) (Command, error) {
	from, to, err := endpoints(source, target)
	if err != nil {
		return Command{}, err
	}
	si, okS := g.IndexOf(from)
	ti, okT := g.IndexOf(to)
	if !okS || !okT || !g.HasEdge(si, ti) {
		return Command{}, dagerrors.New(dagerrors.ErrCodeNotFound, "no dependency %d -> %d", from, to)
	}
	return c.emit(ctx, RemoveDependency(from, to))
}

// ProposeEdge handles a request to connect source to target. The edge is
// checked by the cycle guard; only an accepted edge emits AddDependency.
// A rejection returns the guard's decision together with an EDGE_REJECTED
// error. Duplicate proposals are logged at debug level only.
func (c *Controller) ProposeEdge(ctx context.Context, g *dag.Graph, source, target any) (Command, guard.Decision, error) {
	from, to, err := endpoints(source, target)
	if err != nil {
		return Command{}, guard.Decision{}, err
	}

	d := guard.Validate(g, from, to)
	observability.Guard().OnEdgeProposed(ctx, from, to, d.Accepted, string(d.Reason))
	if !d.Accepted {
		msg := guard.Explain(d, from, to)
		if d.Silent() {
			c.Logger.Debug(msg)
		} else {
			c.Logger.Info(msg)
		}
		return Command{}, d, d.Err(from, to)
	}

	cmd, err := c.emit(ctx, AddDependency(from, to))
	return cmd, d, err
}

func (c *Controller) emit(ctx context.Context, cmd Command) (Command, error) {
	c.Logger.Debug("emit command", "command", cmd.String(), "id", cmd.ID)
	if c.Sink == nil {
		return cmd, nil
	}
	if err := c.Sink.Apply(ctx, cmd); err != nil {
		return Command{}, err
	}
	return cmd, nil
}

func endpoints(source, target any) (int, int, error) {
	from, err := dagerrors.TaskID("source", source)
	if err != nil {
		return 0, 0, err
	}
	to, err := dagerrors.TaskID("target", target)
	if err != nil {
		return 0, 0, err
	}
	return from, to, nil
}
