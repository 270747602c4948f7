package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/taskdag/pkg/dag"
	"github.com/matzehuels/taskdag/pkg/dag/transform"
	dagerrors "github.com/matzehuels/taskdag/pkg/errors"
)

// checkCommand creates the check command, which verifies that a task list
// lays out and summarizes what can be worked on next.
func (c *CLI) checkCommand() *cobra.Command {
	var flags layoutFlags

	cmd := &cobra.Command{
		Use:   "check [tasks-file]",
		Short: "Verify a task list and list actionable tasks",
		Long: `Verify a task list.

check fails when a successor id names no task, when two tasks share an id, or
when the dependencies form a cycle (each cycle is listed). Otherwise it prints
how many tasks are done, actionable and blocked, followed by the actionable
tasks.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCheck(cmd.Context(), argOrEmpty(args), flags)
		},
	}
	flags.register(cmd)
	return cmd
}

func (c *CLI) runCheck(ctx context.Context, input string, flags layoutFlags) error {
	res, err := c.buildLayout(ctx, input, flags)
	if err != nil {
		reportBuildError(err)
		return err
	}

	counts := map[dag.Status]int{}
	var actionable []string
	for _, n := range res.Graph.Nodes() {
		counts[n.Status]++
		if n.Status == dag.StatusActionable {
			actionable = append(actionable, fmt.Sprintf("%d  %s", n.ID(), n.Task.Text))
		}
	}

	printSuccess("Task list is valid")
	printKeyValue("done", fmt.Sprint(counts[dag.StatusDone]))
	printKeyValue("actionable", fmt.Sprint(counts[dag.StatusActionable]))
	printKeyValue("blocked", fmt.Sprint(counts[dag.StatusBlocked]))
	printStats(res.Stats, nil)
	if len(actionable) > 0 {
		printNewline()
		printInfo("Actionable")
		for _, line := range actionable {
			printDetail("%s", line)
		}
	}
	return nil
}

// reportBuildError explains a failed build in user terms.
func reportBuildError(err error) {
	var cycle *transform.CycleError
	switch {
	case errors.As(err, &cycle):
		printError("Dependencies form %d cycle(s)", len(cycle.Cycles))
		for _, ids := range cycle.Cycles {
			parts := make([]string, len(ids))
			for i, id := range ids {
				parts[i] = fmt.Sprint(id)
			}
			printDetail("tasks %s", strings.Join(parts, ", "))
		}
	case dagerrors.Is(err, dagerrors.ErrCodeDataIntegrity):
		printError("Task list is inconsistent")
		printDetail("%s", dagerrors.UserMessage(err))
	}
}
