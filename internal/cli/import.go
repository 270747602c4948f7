package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/taskdag/pkg/pipeline"
	"github.com/matzehuels/taskdag/pkg/task"
)

// importCommand copies a task file into a store, replacing its contents.
func (c *CLI) importCommand() *cobra.Command {
	var (
		into  string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "import <tasks-file>",
		Short: "Replace the stored task list with a task file",
		Long: `Replace the stored task list with the contents of a JSON or YAML task file.

The target is the configured store, or --into (a task file or SQLite
database). The file is checked first; a task list with unknown successors or
cycles is refused unless --force is given. Importing clears the focus.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runImport(cmd.Context(), args[0], into, force)
		},
	}
	cmd.Flags().StringVar(&into, "into", "", "target task file or SQLite database (default: configured store)")
	cmd.Flags().BoolVar(&force, "force", false, "import even if the task list does not lay out")
	return cmd
}

func (c *CLI) runImport(ctx context.Context, input, into string, force bool) error {
	records, err := task.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read %s: %w", input, err)
	}
	if !force {
		if _, err := pipeline.Layout(records, pipeline.Options{Filter: task.FilterAll}); err != nil {
			reportBuildError(err)
			return err
		}
	}

	st, err := c.openStore(ctx, into)
	if err != nil {
		return err
	}
	defer st.Close()
	if err := st.Replace(ctx, records); err != nil {
		return err
	}

	printSuccess("Imported %d tasks", len(records))
	if into != "" {
		printFile(into)
	}
	return nil
}
