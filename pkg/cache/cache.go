// Package cache stores rendered artifacts keyed by the content they were
// rendered from.
//
// The layout itself is never cached: every task-list change triggers a full
// rebuild. What is cached is the expensive tail of the pipeline, turning a
// render model into SVG or DOT bytes, keyed by a hash of the model.
//
// # Backends
//
//   - [NullCache]: never stores anything (caching disabled)
//   - [FileCache]: one JSON envelope per entry under a directory
//   - [RedisCache]: a shared Redis instance for multi-process servers
//
// Cache failures are never fatal to callers; a failed Get is a miss and a
// failed Set is dropped.
package cache

import (
	"context"
	"time"
)

// Default time-to-live values per entry kind.
const (
	// TTLArtifact applies to rendered SVG and DOT documents. Artifacts are
	// keyed by content hash, so a long TTL never serves stale data.
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is a byte-oriented key/value store with expiry.
type Cache interface {
	// Get returns the value for key. A missing or expired entry returns
	// (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// ArtifactKeyOpts are the render settings that change an artifact's bytes.
type ArtifactKeyOpts struct {
	Format   string `json:"format"`
	Focus    *int   `json:"focus,omitempty"`
	Detailed bool   `json:"detailed,omitempty"`
}

// Keyer builds cache keys.
type Keyer interface {
	// ArtifactKey returns the key of a rendered artifact for the model with
	// the given content hash.
	ArtifactKey(modelHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer produces unprefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates a DefaultKeyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ArtifactKey returns "artifact:<sha256(modelHash, opts)>".
func (DefaultKeyer) ArtifactKey(modelHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", modelHash, opts)
}
