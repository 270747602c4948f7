package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/taskdag/internal/server"
)

type serveFlags struct {
	layoutFlags
	addr      string
	noWatch   bool
	forcePoll bool
	noCache   bool
}

// serveCommand starts the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var flags serveFlags

	cmd := &cobra.Command{
		Use:   "serve [tasks-file]",
		Short: "Serve the task graph over HTTP",
		Long: `Serve the task graph over HTTP.

Clients read the render model from GET /graph and rendered artifacts from
GET /graph.svg and GET /graph.dot. Interactions are posted back:
POST /nodes/select focuses a task, POST /edges/select removes a dependency and
POST /edges proposes a new one, which is refused with 409 if it would create
a cycle.

A file-backed task list is watched; external edits rebuild the graph.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), argOrEmpty(args), flags)
		},
	}

	flags.layoutFlags.register(cmd)
	cmd.Flags().StringVar(&flags.addr, "addr", "", "listen address (default from config)")
	cmd.Flags().BoolVar(&flags.noWatch, "no-watch", false, "do not watch the task file")
	cmd.Flags().BoolVar(&flags.forcePoll, "poll", false, "poll the task file instead of using file system events")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable the artifact cache")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, input string, flags serveFlags) error {
	cfg, err := c.config()
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

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	sopts := server.Options{
		Layout:    opts,
		Debounce:  cfg.Watch.Debounce.Duration,
		ForcePoll: flags.forcePoll,
		Logger:    c.Logger,
	}
	if !flags.noWatch {
		sopts.WatchPath = c.watchPath(input)
	}

	addr := flags.addr
	if addr == "" {
		addr = cfg.Server.Addr
	}

	srv := server.New(ctx, st, runner, sopts)
	printSuccess("Serving task graph")
	printKeyValue("address", "http://"+addr)
	if sopts.WatchPath != "" {
		printKeyValue("watching", sopts.WatchPath)
	}
	return srv.Run(ctx, addr)
}
