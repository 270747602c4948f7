package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/taskdag/pkg/graph"
	"github.com/matzehuels/taskdag/pkg/pipeline"
)

// layoutFlags are shared by every command that builds a layout.
type layoutFlags struct {
	filter    string
	lineWidth int
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.filter, "filter", "", "tasks to lay out: all, active, completed (default from config)")
	cmd.Flags().IntVar(&f.lineWidth, "line-width", 0, "label line width in terminal cells (default from config)")
}

// layoutCommand creates the layout command, which writes the render model.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		flags  layoutFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "layout [tasks-file]",
		Short: "Compute the render model of a task list",
		Long: `Compute the render model of a task list.

The task list comes from the given file (JSON, YAML or a SQLite database) or,
without an argument, from the store named in the config file. The output is
the render model as JSON: positioned nodes with their status and the
dependency edges between them.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), argOrEmpty(args), flags, output)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	return cmd
}

func (c *CLI) runLayout(ctx context.Context, input string, flags layoutFlags, output string) error {
	res, err := c.buildLayout(ctx, input, flags)
	if err != nil {
		return err
	}

	if output == "" {
		output = outputBase(input, "tasks") + ".layout.json"
	}
	if err := graph.WriteFile(res.Model, output); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}

	printSuccess("Layout complete")
	printFile(output)
	printStats(res.Stats, nil)
	printNewline()
	printNextStep("Render", appName+" render "+input)
	return nil
}

// buildLayout loads the task list and lays it out.
func (c *CLI) buildLayout(ctx context.Context, input string, flags layoutFlags) (*pipeline.Result, error) {
	opts, err := c.layoutOptions(flags.filter, flags.lineWidth)
	if err != nil {
		return nil, err
	}
	st, err := c.openStore(ctx, input)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	records, err := st.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	return pipeline.NewRunner(nil, nil, c.Logger).Build(ctx, records, opts)
}

func argOrEmpty(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
