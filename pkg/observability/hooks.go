// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about viewer operations and cache activity.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the core library dependency-free from observability frameworks
//   - Allows different backends (OpenTelemetry, Prometheus, DataDog, etc.)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetViewerHooks(&myViewerHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Viewer Hooks
// =============================================================================

// ViewerHooks receives events from the interactive viewer engine.
type ViewerHooks interface {
	// Layout events
	OnLayoutStart(ctx context.Context, engine string)
	OnLayoutComplete(ctx context.Context, engine string, duration time.Duration, err error)

	// Parse events
	OnParseComplete(ctx context.Context, nodeCount, edgeCount int, err error)

	// Interaction events
	OnModeSwitch(ctx context.Context, fancy bool)
	OnExportComplete(ctx context.Context, size int, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopViewerHooks is a no-op implementation of ViewerHooks.
type NoopViewerHooks struct{}

func (NoopViewerHooks) OnLayoutStart(context.Context, string)                          {}
func (NoopViewerHooks) OnLayoutComplete(context.Context, string, time.Duration, error) {}
func (NoopViewerHooks) OnParseComplete(context.Context, int, int, error)               {}
func (NoopViewerHooks) OnModeSwitch(context.Context, bool)                             {}
func (NoopViewerHooks) OnExportComplete(context.Context, int, time.Duration, error)    {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	viewerHooks ViewerHooks = NoopViewerHooks{}
	cacheHooks  CacheHooks  = NoopCacheHooks{}
	hooksMu     sync.RWMutex
)

// SetViewerHooks registers custom viewer hooks.
// This should be called once at application startup before any engine operations.
func SetViewerHooks(h ViewerHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		viewerHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Viewer returns the registered viewer hooks.
func Viewer() ViewerHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return viewerHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	viewerHooks = NoopViewerHooks{}
	cacheHooks = NoopCacheHooks{}
}
