// Package cache provides caching for layout and export artifacts.
//
// Laying out a diagram through the external engine is the slowest step of the
// pipeline, so the CLI and API cache its SVG output keyed by a hash of the
// graph description. Two backends are provided:
//   - FileCache: directory-backed, for CLI usage
//   - RedisCache: shared, for multi-instance API deployments
//
// NullCache disables caching without changing call sites.
package cache

import (
	"context"
	"time"
)

// Default TTLs per artifact kind.
const (
	// LayoutTTL bounds how long laid-out SVG markup is kept. Layout output
	// is deterministic for a given description and engine, so this is
	// generous.
	LayoutTTL = 7 * 24 * time.Hour

	// ExportTTL bounds how long rasterized PNG artifacts are kept.
	ExportTTL = 24 * time.Hour
)

// Cache is the interface for cache backends.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key
	// was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL. A zero TTL means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Keyer derives cache keys for the artifact kinds Graphscope produces.
type Keyer interface {
	// LayoutKey identifies laid-out SVG markup for a graph description.
	LayoutKey(dot, engine string) string

	// ExportKey identifies a rasterized artifact of serialized markup.
	ExportKey(svgHash, format string, scale float64) string
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey implements Keyer.
func (DefaultKeyer) LayoutKey(dot, engine string) string {
	return hashKey("layout", dot, engine)
}

// ExportKey implements Keyer.
func (DefaultKeyer) ExportKey(svgHash, format string, scale float64) string {
	return hashKey("export", svgHash, format, scale)
}
