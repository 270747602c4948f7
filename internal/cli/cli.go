// Package cli implements the taskdag command-line interface.
package cli

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/taskdag/internal/config"
	"github.com/matzehuels/taskdag/pkg/buildinfo"
	"github.com/matzehuels/taskdag/pkg/cache"
	dagerrors "github.com/matzehuels/taskdag/pkg/errors"
	"github.com/matzehuels/taskdag/pkg/pipeline"
	"github.com/matzehuels/taskdag/pkg/render"
	"github.com/matzehuels/taskdag/pkg/store"
	"github.com/matzehuels/taskdag/pkg/task"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = "taskdag"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// SetConfigPath selects the config file. An empty path uses the XDG default.
func (c *CLI) SetConfigPath(path string) {
	c.configPath = path
	c.cfg = nil
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "taskdag lays out task dependency graphs",
		Long: `taskdag turns a list of tasks with successor ids into a layered
dependency graph, classifies every task as done, actionable or blocked, and
guards interactive edits so the graph never gains a cycle.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: "+config.Path()+")")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.applyCommand())
	root.AddCommand(c.importCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.tuiCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Config
// =============================================================================

// config loads the configuration once per CLI.
func (c *CLI) config() (config.Config, error) {
	if c.cfg != nil {
		return *c.cfg, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return cfg, err
	}
	c.Logger.Debug("loaded config", "path", c.configPath, "store", cfg.Store.Backend, "cache", cfg.Cache.Backend)
	c.cfg = &cfg
	return cfg, nil
}

// =============================================================================
// Store Factory
// =============================================================================

// openStore opens the task store. A non-empty path overrides the configured
// store: .db/.sqlite files open as SQLite, anything else as a task file.
func (c *CLI) openStore(ctx context.Context, path string) (store.Store, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	sc := cfg.Store
	if path != "" {
		sc.Path = path
		sc.Backend = config.StoreFile
		if isSQLitePath(path) {
			sc.Backend = config.StoreSQLite
		}
	}

	switch sc.Backend {
	case config.StoreSQLite:
		return store.OpenSQLite(ctx, sc.Path, c.Logger)
	case config.StoreMongo:
		return store.OpenMongo(ctx, store.MongoOptions{
			URI:        sc.URI,
			Database:   sc.Database,
			Collection: sc.Collection,
		}, c.Logger)
	case config.StoreFile:
		return store.NewFileStore(sc.Path, c.Logger), nil
	default:
		return nil, dagerrors.New(dagerrors.ErrCodeInvalidConfig, "unknown store backend %q", sc.Backend)
	}
}

func isSQLitePath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return true
	}
	return false
}

// watchPath returns the task file to watch, or "" when the store is not
// file-backed.
func (c *CLI) watchPath(path string) string {
	if path != "" {
		if isSQLitePath(path) {
			return ""
		}
		return path
	}
	cfg, err := c.config()
	if err != nil || cfg.Store.Backend != config.StoreFile {
		return ""
	}
	return cfg.Store.Path
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	ch, err := c.newCache(ctx, cfg.Cache, noCache)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if cfg.Cache.Prefix != "" {
		keyer = cache.NewScopedKeyer(nil, cfg.Cache.Prefix)
	}
	runner := pipeline.NewRunner(ch, keyer, c.Logger)
	runner.TTL = cfg.Cache.TTL.Duration
	return runner, nil
}

// newCache opens the artifact cache. An unreachable Redis degrades to no
// cache; rendering never depends on it.
func (c *CLI) newCache(ctx context.Context, cc config.CacheConfig, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cc.Backend {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     cc.RedisAddr,
			Password: cc.RedisPassword,
			DB:       cc.RedisDB,
		})
		if errors.Is(err, cache.ErrUnavailable) {
			c.Logger.Warn("redis cache unavailable, continuing without cache", "addr", cc.RedisAddr, "err", err)
			return cache.NewNullCache(), nil
		}
		return rc, err
	default:
		if cc.Dir == "" {
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(cc.Dir)
	}
}

// layoutOptions merges config defaults with command flags. Flags win when
// set.
func (c *CLI) layoutOptions(filter string, lineWidth int) (pipeline.Options, error) {
	cfg, err := c.config()
	if err != nil {
		return pipeline.Options{}, err
	}
	if filter == "" {
		filter = cfg.Layout.Filter
	}
	if lineWidth == 0 {
		lineWidth = cfg.Layout.LineWidth
	}
	f, err := task.ParseFilter(filter)
	if err != nil {
		return pipeline.Options{}, err
	}
	opts := pipeline.Options{Filter: f, LineWidth: lineWidth, Logger: c.Logger}
	return opts, opts.ValidateAndSetDefaults()
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string.
func parseFormats(s string) ([]render.Format, error) {
	if s == "" {
		return []render.Format{render.FormatSVG}, nil
	}
	var out []render.Format
	for _, name := range strings.Split(s, ",") {
		f, err := render.ParseFormat(name)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// outputBase strips the extension from input, falling back to def.
func outputBase(input, def string) string {
	if input == "" {
		return def
	}
	return strings.TrimSuffix(input, filepath.Ext(input))
}
