// Package observability provides hooks for metrics, tracing, and logging.
//
// Libraries call the registered hooks; main registers concrete
// implementations at startup. Every hook has a no-op default so nothing
// needs to be wired for tests or the CLI.
//
//	observability.Render().OnRenderStart(ctx, column, rows)
//	// ... layout, reconcile, sinks ...
//	observability.Render().OnRenderComplete(ctx, column, elements, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// RenderHooks receives events from the chart pipeline.
type RenderHooks interface {
	OnLoadComplete(ctx context.Context, source string, rows int, duration time.Duration, err error)
	OnRenderStart(ctx context.Context, column string, rows int)
	OnRenderComplete(ctx context.Context, column string, elements int, duration time.Duration, err error)
	// OnRenderSkipped fires when the first row lacks the value column.
	OnRenderSkipped(ctx context.Context, column string)
}

// SearchHooks receives events from the navigation search.
type SearchHooks interface {
	OnQuery(ctx context.Context, terms string, generation uint64)
	OnResults(ctx context.Context, terms string, generation uint64, count int, duration time.Duration, err error)
	// OnStale fires when a response arrives after a newer search superseded it.
	OnStale(ctx context.Context, terms string, generation uint64)
}

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives events from HTTP client and server operations.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, host, path string)
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)
	OnError(ctx context.Context, method, host, path string, err error)
}

// NoopRenderHooks is a no-op implementation of RenderHooks.
type NoopRenderHooks struct{}

func (NoopRenderHooks) OnLoadComplete(context.Context, string, int, time.Duration, error)   {}
func (NoopRenderHooks) OnRenderStart(context.Context, string, int)                          {}
func (NoopRenderHooks) OnRenderComplete(context.Context, string, int, time.Duration, error) {}
func (NoopRenderHooks) OnRenderSkipped(context.Context, string)                             {}

// NoopSearchHooks is a no-op implementation of SearchHooks.
type NoopSearchHooks struct{}

func (NoopSearchHooks) OnQuery(context.Context, string, uint64) {}
func (NoopSearchHooks) OnResults(context.Context, string, uint64, int, time.Duration, error) {
}
func (NoopSearchHooks) OnStale(context.Context, string, uint64) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

var (
	renderHooks RenderHooks = NoopRenderHooks{}
	searchHooks SearchHooks = NoopSearchHooks{}
	cacheHooks  CacheHooks  = NoopCacheHooks{}
	httpHooks   HTTPHooks   = NoopHTTPHooks{}
	hooksMu     sync.RWMutex
)

// SetRenderHooks registers custom render hooks. Nil is ignored.
func SetRenderHooks(h RenderHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		renderHooks = h
	}
}

// SetSearchHooks registers custom search hooks. Nil is ignored.
func SetSearchHooks(h SearchHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		searchHooks = h
	}
}

// SetCacheHooks registers custom cache hooks. Nil is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks. Nil is ignored.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Render returns the registered render hooks.
func Render() RenderHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return renderHooks
}

// Search returns the registered search hooks.
func Search() SearchHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return searchHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	renderHooks = NoopRenderHooks{}
	searchHooks = NoopSearchHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
