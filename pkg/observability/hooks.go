// Package observability provides hooks for metrics, tracing and audit logs.
//
// Libraries call the registered hooks at well-defined points; nothing is
// recorded unless a consumer registers an implementation at startup. The
// defaults are no-ops, so the engine carries no observability dependency.
//
// # Usage
//
// Register hooks before building anything:
//
//	func main() {
//	    observability.SetPipelineHooks(&myPipelineHooks{})
//	    observability.SetGuardHooks(&auditLog{})
//	    // ... run application
//	}
//
// Libraries emit events:
//
//	observability.Pipeline().OnBuildStart(ctx, len(records))
//	// ... build and lay out ...
//	observability.Pipeline().OnBuildComplete(ctx, nodes, edges, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the layout pipeline.
type PipelineHooks interface {
	// Build events cover graph construction, layout and projection.
	OnBuildStart(ctx context.Context, taskCount int)
	OnBuildComplete(ctx context.Context, nodeCount, edgeCount int, duration time.Duration, err error)

	// Render events cover one artifact.
	OnRenderStart(ctx context.Context, format string)
	OnRenderComplete(ctx context.Context, format string, size int, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from artifact cache lookups.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// Guard Hooks
// =============================================================================

// GuardHooks receives every edge proposal and its verdict. Reason is empty
// for accepted edges.
type GuardHooks interface {
	OnEdgeProposed(ctx context.Context, sourceID, targetID int, accepted bool, reason string)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnBuildStart(context.Context, int)                               {}
func (NoopPipelineHooks) OnBuildComplete(context.Context, int, int, time.Duration, error) {}
func (NoopPipelineHooks) OnRenderStart(context.Context, string)                           {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, string, int, time.Duration, error) {
}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopGuardHooks is a no-op implementation of GuardHooks.
type NoopGuardHooks struct{}

func (NoopGuardHooks) OnEdgeProposed(context.Context, int, int, bool, string) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	guardHooks    GuardHooks    = NoopGuardHooks{}
	hooksMu       sync.RWMutex
)

// SetPipelineHooks registers pipeline hooks. Nil is ignored.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetCacheHooks registers cache hooks. Nil is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetGuardHooks registers guard hooks. Nil is ignored.
func SetGuardHooks(h GuardHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		guardHooks = h
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Guard returns the registered guard hooks.
func Guard() GuardHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return guardHooks
}

// Reset restores the no-op defaults.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
	cacheHooks = NoopCacheHooks{}
	guardHooks = NoopGuardHooks{}
}
