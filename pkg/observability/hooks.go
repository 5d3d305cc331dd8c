// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific observability backends. Consumers register hooks
// at startup to receive events about canvas builds, store operations, and
// cache operations.
//
// The package uses a simple hooks pattern: hook interfaces per event
// category, no-op default implementations, and a global registry populated
// by main. This avoids import cycles and keeps the core library free of
// observability frameworks.
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Canvas Hooks
// =============================================================================

// CanvasHooks receives events from the build/layout/fit pipeline.
type CanvasHooks interface {
	// OnBuild records a graph rebuild for a journey.
	OnBuild(journeyID string, nodeCount, edgeCount int)

	// OnLayout records a layout pass.
	OnLayout(nodeCount int, duration time.Duration)

	// OnFitScheduled records that a measurement poll started for a node.
	OnFitScheduled(nodeID string)

	// OnFitComplete records a camera fit. measured is false when the poll
	// budget ran out and the fit used provisional sizes.
	OnFitComplete(nodeID string, attempt int, measured bool)
}

// =============================================================================
// Store Hooks
// =============================================================================

// StoreHooks receives events from journey store operations.
type StoreHooks interface {
	// OnFetch records a journey fetch.
	OnFetch(ctx context.Context, journeyID string, duration time.Duration, err error)

	// OnReorder records a sibling reorder commit.
	OnReorder(ctx context.Context, count int, duration time.Duration, err error)
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

// NoopCanvasHooks is a no-op implementation of CanvasHooks.
type NoopCanvasHooks struct{}

func (NoopCanvasHooks) OnBuild(string, int, int)        {}
func (NoopCanvasHooks) OnLayout(int, time.Duration)     {}
func (NoopCanvasHooks) OnFitScheduled(string)           {}
func (NoopCanvasHooks) OnFitComplete(string, int, bool) {}

// NoopStoreHooks is a no-op implementation of StoreHooks.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnFetch(context.Context, string, time.Duration, error) {}
func (NoopStoreHooks) OnReorder(context.Context, int, time.Duration, error)  {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	canvasHooks CanvasHooks = NoopCanvasHooks{}
	storeHooks  StoreHooks  = NoopStoreHooks{}
	cacheHooks  CacheHooks  = NoopCacheHooks{}
	hooksMu     sync.RWMutex
)

// SetCanvasHooks registers custom canvas hooks.
// This should be called once at application startup.
func SetCanvasHooks(h CanvasHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		canvasHooks = h
	}
}

// SetStoreHooks registers custom store hooks.
// This should be called once at application startup.
func SetStoreHooks(h StoreHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storeHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Canvas returns the registered canvas hooks.
func Canvas() CanvasHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return canvasHooks
}

// Store returns the registered store hooks.
func Store() StoreHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storeHooks
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
	canvasHooks = NoopCanvasHooks{}
	storeHooks = NoopStoreHooks{}
	cacheHooks = NoopCacheHooks{}
}
