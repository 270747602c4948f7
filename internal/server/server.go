// Package server exposes a task graph over HTTP.
//
// The server keeps one snapshot: the layout built from the store's current
// task list. Reads are served from the snapshot. Interactions go through a
// [command.Controller], are applied to the store and trigger a rebuild. A
// rebuild that fails keeps the previous snapshot, so clients keep seeing the
// last good graph while the task list is broken.
//
// A filter hides tasks from the snapshot but not from the cycle guard:
// interactions are checked against a graph of every stored task, so a
// dependency through a hidden task is still seen.
//
// # Routes
//
//	GET  /healthz
//	GET  /graph          render model as JSON
//	GET  /graph.svg      rendered artifacts (also .dot and .graphviz)
//	GET  /focus          focused task record
//	POST /nodes/select   {"id": n}                 focus a task
//	POST /edges/select   {"source": n, "target": m} remove a dependency
//	POST /edges          {"source": n, "target": m} add a dependency
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/taskdag/pkg/command"
	"github.com/matzehuels/taskdag/pkg/dag"
	"github.com/matzehuels/taskdag/pkg/pipeline"
	"github.com/matzehuels/taskdag/pkg/render"
	"github.com/matzehuels/taskdag/pkg/store"
	"github.com/matzehuels/taskdag/pkg/task"
	"github.com/matzehuels/taskdag/pkg/watcher"
)

const shutdownTimeout = 5 * time.Second

// Options configures a [Server].
type Options struct {
	// Layout is passed to every rebuild.
	Layout pipeline.Options

	// WatchPath, when set, is a task file watched for external edits.
	WatchPath string

	// Debounce is the watch debounce window; zero uses the watcher default.
	Debounce time.Duration

	// ForcePoll makes the watcher poll instead of using fsnotify.
	ForcePoll bool

	Logger *log.Logger
}

// Server serves one task store.
type Server struct {
	store      store.Store
	runner     *pipeline.Runner
	controller *command.Controller
	opts       Options
	logger     *log.Logger
	router     chi.Router

	mu       sync.RWMutex
	snapshot *pipeline.Result
	full     *dag.Graph // every stored task, for interactions
	buildErr error

	// cmdMu serializes interactions so each one is validated against the
	// snapshot its predecessor produced.
	cmdMu sync.Mutex

	// reloadMu is held from Load through the swap, so a slow reload cannot
	// publish a snapshot older than one already published.
	reloadMu sync.Mutex
}

// New creates a server and builds the first snapshot. A task list that does
// not lay out is not fatal: the server starts without a graph and reports
// the build error until the list is fixed.
func New(ctx context.Context, st store.Store, runner *pipeline.Runner, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, opts.Logger)
	}
	s := &Server{
		store:  st,
		runner: runner,
		opts:   opts,
		logger: opts.Logger,
	}
	s.controller = command.NewController(command.SinkFunc(s.apply), opts.Logger)
	s.router = s.routes()
	_ = s.Reload(ctx)
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(securityHeaders)

	r.Get("/healthz", s.handleHealth)
	r.Get("/graph", s.handleGraph)
	r.Get("/graph.svg", s.handleArtifact(render.FormatSVG))
	r.Get("/graph.dot", s.handleArtifact(render.FormatDOT))
	r.Get("/graph.graphviz", s.handleArtifact(render.FormatGraphviz))
	r.Get("/focus", s.handleFocus)
	r.Post("/nodes/select", s.handleSelectNode)
	r.Post("/edges/select", s.handleSelectEdge)
	r.Post("/edges", s.handleProposeEdge)
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Snapshot returns the current layout, or nil if none was ever built.
func (s *Server) Snapshot() *pipeline.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Reload rebuilds the snapshot from the store. On failure the previous
// snapshot is kept and the error is returned and remembered for /healthz.
// Reloads run one at a time.
func (s *Server) Reload(ctx context.Context) error {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	res, full, err := s.build(ctx)
	if err == nil {
		s.mu.Lock()
		s.snapshot, s.full, s.buildErr = res, full, nil
		s.mu.Unlock()
		return nil
	}

	s.mu.Lock()
	s.buildErr = err
	kept := s.snapshot != nil
	s.mu.Unlock()
	s.logger.Error("rebuild failed", "err", err, "kept_previous", kept)
	return err
}

// build lays out the stored list with the configured options and returns it
// along with the unfiltered graph. When no filter applies the two share one
// graph.
func (s *Server) build(ctx context.Context) (*pipeline.Result, *dag.Graph, error) {
	records, err := s.store.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	res, err := s.runner.Build(ctx, records, s.opts.Layout)
	if err != nil {
		return nil, nil, err
	}
	if f := s.opts.Layout.Filter; f == "" || f == task.FilterAll {
		return res, res.Graph, nil
	}

	opts := pipeline.Options{Filter: task.FilterAll, LineWidth: s.opts.Layout.LineWidth}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, nil, err
	}
	full, err := pipeline.Layout(records, opts)
	if err != nil {
		return nil, nil, err
	}
	return res, full.Graph, nil
}

// apply is the controller's sink: commands go to the store, then the
// snapshot is rebuilt. A failed rebuild does not fail the command.
func (s *Server) apply(ctx context.Context, cmd command.Command) error {
	if err := s.store.Apply(ctx, cmd); err != nil {
		return err
	}
	s.logger.Info("applied command", "command", cmd.String(), "id", cmd.ID)
	_ = s.Reload(ctx)
	return nil
}

// Run listens on addr and serves until ctx is done.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done. When a watch path is configured the
// file watcher runs alongside the HTTP server; the first of them to fail
// stops both.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	g, ctx := errgroup.WithContext(ctx)

	var w *watcher.Watcher
	if s.opts.WatchPath != "" {
		var err error
		if w, err = s.newWatcher(ctx); err != nil {
			_ = ln.Close()
			return err
		}
	}

	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	g.Go(func() error {
		s.logger.Info("listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if w != nil {
		g.Go(func() error { return w.Run(ctx) })
	}
	return g.Wait()
}

func (s *Server) newWatcher(ctx context.Context) (*watcher.Watcher, error) {
	opts := []watcher.Option{
		watcher.WithForcePoll(s.opts.ForcePoll),
		watcher.WithOnChange(func() {
			s.logger.Info("task file changed", "path", s.opts.WatchPath)
			_ = s.Reload(ctx)
		}),
		watcher.WithOnError(func(err error) {
			s.logger.Warn("watch error", "path", s.opts.WatchPath, "err", err)
		}),
	}
	if s.opts.Debounce > 0 {
		opts = append(opts, watcher.WithDebounceDuration(s.opts.Debounce))
	}
	return watcher.New(s.opts.WatchPath, opts...)
}
