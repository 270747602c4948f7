package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/taskdag/pkg/render"
)

type renderFlags struct {
	layoutFlags
	output   string
	formats  string
	detailed bool
	noCache  bool
	noFocus  bool
}

// renderCommand creates the render command for drawing the task graph.
func (c *CLI) renderCommand() *cobra.Command {
	var flags renderFlags

	cmd := &cobra.Command{
		Use:   "render [tasks-file]",
		Short: "Render the task graph to SVG or Graphviz DOT",
		Long: `Render the task graph.

Formats:
  svg       positioned SVG drawn from the layout (default)
  dot       Graphviz source with every node pinned to its layout position
  graphviz  SVG produced by Graphviz from the pinned DOT source

Rendered artifacts are cached by the content of the layout, so re-rendering an
unchanged task list is served from the cache.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), argOrEmpty(args), flags)
		},
	}

	flags.layoutFlags.register(cmd)
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output base path (default: <input>)")
	cmd.Flags().StringVarP(&flags.formats, "format", "f", "svg", "comma-separated formats: svg, dot, graphviz")
	cmd.Flags().BoolVar(&flags.detailed, "detailed", false, "add task status to Graphviz labels")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable the artifact cache")
	cmd.Flags().BoolVar(&flags.noFocus, "no-focus", false, "do not highlight the focused task")
	return cmd
}

func (c *CLI) runRender(ctx context.Context, input string, flags renderFlags) error {
	formats, err := parseFormats(flags.formats)
	if err != nil {
		return err
	}
	opts, err := c.layoutOptions(flags.filter, flags.lineWidth)
	if err != nil {
		return err
	}

	st, err := c.openStore(ctx, input)
	if err != nil {
		return err
	}
	defer st.Close()
	records, err := st.Load(ctx)
	if err != nil {
		return fmt.Errorf("load tasks: %w", err)
	}

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	res, err := runner.Build(ctx, records, opts)
	if err != nil {
		return err
	}

	ropts := render.Options{Detailed: flags.detailed}
	if !flags.noFocus {
		if id, ok, err := st.Focus(ctx); err == nil && ok {
			ropts.Focus = &id
		}
	}

	base := flags.output
	if base == "" {
		base = outputBase(input, "tasks")
	}
	base = strings.TrimSuffix(base, ".svg")

	var written []string
	allCached := true
	for _, f := range formats {
		sp := newSpinner(ctx, fmt.Sprintf("Rendering %s...", f))
		sp.Start()
		data, cached, err := runner.Render(ctx, res.Model, f, ropts)
		if err != nil {
			sp.StopWithError(fmt.Sprintf("Rendering %s failed", f))
			return err
		}
		sp.Stop()
		allCached = allCached && cached

		path := artifactPath(base, f)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}
	prog.done(fmt.Sprintf("Rendered %d artifact(s)", len(written)))

	printSuccess("Render complete")
	for _, p := range written {
		printFile(p)
	}
	printStats(res.Stats, &allCached)
	return nil
}

// artifactPath names the output file for format f. Graphviz output gets its
// own infix so it does not overwrite the native SVG.
func artifactPath(base string, f render.Format) string {
	if f == render.FormatGraphviz {
		return base + ".graphviz" + f.Extension()
	}
	return base + f.Extension()
}
