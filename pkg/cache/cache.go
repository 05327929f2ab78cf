// Package cache provides pluggable byte caching for external graph fetches.
//
// Three backends are provided:
//   - [FileCache]: per-user on-disk cache for CLI usage
//   - [RedisCache]: shared cache for repeated builds on CI runners
//   - [NullCache]: no-op cache for tests or --no-cache runs
//
// Keys are generated through a [Keyer] so different data sources never
// collide; [ScopedKeyer] adds a prefix for multi-project isolation.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values with optional expiry.
// Implementations must treat a missing key as (nil, false, nil), not an error.
type Cache interface {
	// Get retrieves a value. The bool reports whether the key was present
	// and fresh.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of 0 means the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Keyer generates cache keys for the different cached data kinds.
type Keyer interface {
	// HTTPKey generates a key for a raw HTTP response.
	HTTPKey(namespace, url string) string

	// GraphKey generates a key for an external project's exported graph.
	GraphKey(project, base string) string
}

// DefaultKeyer hashes key components into collision-free keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer { return &DefaultKeyer{} }

// HTTPKey generates a key for a raw HTTP response.
func (k *DefaultKeyer) HTTPKey(namespace, url string) string {
	return hashKey("http", namespace, url)
}

// GraphKey generates a key for an external project's exported graph.
func (k *DefaultKeyer) GraphKey(project, base string) string {
	return hashKey("graph", project, base)
}

// ScopedKeyer wraps a Keyer with a prefix for multi-project isolation.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer that prepends prefix to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// HTTPKey generates a prefixed key for a raw HTTP response.
func (k *ScopedKeyer) HTTPKey(namespace, url string) string {
	return k.prefix + k.inner.HTTPKey(namespace, url)
}

// GraphKey generates a prefixed key for an external project's graph.
func (k *ScopedKeyer) GraphKey(project, base string) string {
	return k.prefix + k.inner.GraphKey(project, base)
}
