package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/taskdag/pkg/command"
	"github.com/matzehuels/taskdag/pkg/dag"
	dagerrors "github.com/matzehuels/taskdag/pkg/errors"
	"github.com/matzehuels/taskdag/pkg/guard"
	"github.com/matzehuels/taskdag/pkg/pipeline"
	"github.com/matzehuels/taskdag/pkg/store"
	"github.com/matzehuels/taskdag/pkg/task"
)

// applyCommand groups the commands that change the task list.
func (c *CLI) applyCommand() *cobra.Command {
	var tasksFile string

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Focus a task or add and remove dependencies",
		Long: `Change the task list the same way the interactive views do.

New dependencies are checked first: a dependency that would create a cycle,
connect a task to itself or name an unknown task is rejected and nothing is
written.`,
	}
	cmd.PersistentFlags().StringVarP(&tasksFile, "tasks", "t", "", "task file or SQLite database (default: configured store)")

	cmd.AddCommand(&cobra.Command{
		Use:   "focus <id>",
		Short: "Focus a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withController(cmd.Context(), tasksFile, func(ctl *command.Controller, g *dag.Graph) error {
				if _, err := ctl.SelectNode(cmd.Context(), g, args[0]); err != nil {
					return err
				}
				printSuccess("Focused task %s", args[0])
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <from> <to>",
		Short: "Make <to> depend on <from>",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withController(cmd.Context(), tasksFile, func(ctl *command.Controller, g *dag.Graph) error {
				_, d, err := ctl.ProposeEdge(cmd.Context(), g, args[0], args[1])
				switch {
				case err == nil:
					printSuccess("Added dependency %s %s %s", args[0], iconArrow, args[1])
					return nil
				case d.Silent():
					printInfo("Dependency %s %s %s already exists", args[0], iconArrow, args[1])
					return nil
				case dagerrors.Is(err, dagerrors.ErrCodeEdgeRejected):
					printError("Rejected (%s)", d.Reason)
					printDetail("%s", explain(d, args))
					return err
				default:
					return err
				}
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <from> <to>",
		Short: "Remove the dependency of <to> on <from>",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withController(cmd.Context(), tasksFile, func(ctl *command.Controller, g *dag.Graph) error {
				if _, err := ctl.SelectEdge(cmd.Context(), g, args[0], args[1]); err != nil {
					return err
				}
				printSuccess("Removed dependency %s %s %s", args[0], iconArrow, args[1])
				return nil
			})
		},
	})

	return cmd
}

// withController lays out the whole task list (no filter, so the guard sees
// every task) and runs fn with a controller that writes to the store.
func (c *CLI) withController(ctx context.Context, input string, fn func(*command.Controller, *dag.Graph) error) error {
	st, err := c.openStore(ctx, input)
	if err != nil {
		return err
	}
	defer st.Close()

	g, err := c.fullGraph(ctx, st)
	if err != nil {
		reportBuildError(err)
		return err
	}
	return fn(command.NewController(st, c.Logger), g)
}

func (c *CLI) fullGraph(ctx context.Context, st store.Store) (*dag.Graph, error) {
	records, err := st.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	opts := pipeline.Options{Filter: task.FilterAll}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	res, err := pipeline.Layout(records, opts)
	if err != nil {
		return nil, err
	}
	return res.Graph, nil
}

// explain renders a guard decision for ids given on the command line.
func explain(d guard.Decision, args []string) string {
	from, errFrom := dagerrors.TaskID("from", args[0])
	to, errTo := dagerrors.TaskID("to", args[1])
	if errFrom != nil || errTo != nil {
		return string(d.Reason)
	}
	return guard.Explain(d, from, to)
}
