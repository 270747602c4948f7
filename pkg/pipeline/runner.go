package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/taskdag/pkg/cache"
	"github.com/matzehuels/taskdag/pkg/graph"
	"github.com/matzehuels/taskdag/pkg/observability"
	"github.com/matzehuels/taskdag/pkg/render"
	"github.com/matzehuels/taskdag/pkg/task"
)

// Runner runs the pipeline with artifact caching.
//
// The Runner holds no pipeline results; only the cache and logger. Multiple
// goroutines can share one Runner.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	TTL    time.Duration // artifact lifetime; zero means cache.TTLArtifact
}

// NewRunner creates a runner. A nil keyer becomes a DefaultKeyer, a nil
// cache a NullCache and a nil logger log.Default().
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Build lays out records. The graph is always rebuilt from scratch.
func (r *Runner) Build(ctx context.Context, records []task.Record, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	logger := r.logger(opts)

	observability.Pipeline().OnBuildStart(ctx, len(records))
	res, err := Layout(records, opts)
	if err != nil {
		observability.Pipeline().OnBuildComplete(ctx, 0, 0, 0, err)
		return nil, err
	}
	observability.Pipeline().OnBuildComplete(ctx, res.Stats.NodeCount, res.Stats.EdgeCount, res.Stats.Total(), nil)

	if data, err := graph.Marshal(res.Model); err == nil {
		res.ModelHash = cache.Hash(data)
	}

	logger.Info("computed layout",
		"tasks", res.Stats.TaskCount,
		"nodes", res.Stats.NodeCount,
		"edges", res.Stats.EdgeCount,
		"layers", res.Stats.LayerCount,
		"duration", res.Stats.Total())
	logger.Debug("layout detail",
		"filter", opts.Filter,
		"crossings", res.Stats.Crossings,
		"build", res.Stats.BuildTime,
		"layout", res.Stats.LayoutTime,
		"project", res.Stats.ProjectTime)
	return res, nil
}

// Render renders m in format through the cache and reports whether the
// artifact came from the cache. Cache errors are logged and never fail the
// render.
func (r *Runner) Render(ctx context.Context, m graph.Model, format render.Format, opts render.Options) ([]byte, bool, error) {
	data, err := graph.Marshal(m)
	if err != nil {
		return nil, false, fmt.Errorf("serialize model for cache key: %w", err)
	}
	key := r.Keyer.ArtifactKey(cache.Hash(data), cache.ArtifactKeyOpts{
		Format:   string(format),
		Focus:    opts.Focus,
		Detailed: opts.Detailed,
	})

	if out, err := cache.Fetch(ctx, r.Cache, key); err == nil {
		observability.Cache().OnCacheHit(ctx, "artifact")
		return out, true, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		r.Logger.Warn("artifact cache read failed", "err", err)
	}
	observability.Cache().OnCacheMiss(ctx, "artifact")

	observability.Pipeline().OnRenderStart(ctx, string(format))
	start := time.Now()
	out, err := render.Render(ctx, m, format, opts)
	observability.Pipeline().OnRenderComplete(ctx, string(format), len(out), time.Since(start), err)
	if err != nil {
		return nil, false, err
	}
	r.Logger.Debug("rendered artifact", "format", format, "bytes", len(out), "duration", time.Since(start))

	ttl := r.TTL
	if ttl <= 0 {
		ttl = cache.TTLArtifact
	}
	if err := r.Cache.Set(ctx, key, out, ttl); err != nil {
		r.Logger.Warn("artifact cache write failed", "err", err)
	} else {
		observability.Cache().OnCacheSet(ctx, "artifact", len(out))
	}
	return out, false, nil
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) logger(opts Options) *log.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return r.Logger
}
