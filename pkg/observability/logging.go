package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks implements every hook interface by writing debug lines to a
// charm logger. The CLI registers it under --verbose.
type LogHooks struct {
	Logger *log.Logger
}

func (h LogHooks) OnLoadComplete(_ context.Context, source string, rows int, d time.Duration, err error) {
	h.Logger.Debug("dataset loaded", "source", source, "rows", rows, "duration", d, "err", err)
}

func (h LogHooks) OnRenderStart(_ context.Context, column string, rows int) {
	h.Logger.Debug("render start", "column", column, "rows", rows)
}

func (h LogHooks) OnRenderComplete(_ context.Context, column string, elements int, d time.Duration, err error) {
	h.Logger.Debug("render complete", "column", column, "elements", elements, "duration", d, "err", err)
}

func (h LogHooks) OnRenderSkipped(_ context.Context, column string) {
	h.Logger.Debug("render skipped: first row has no value", "column", column)
}

func (h LogHooks) OnQuery(_ context.Context, terms string, gen uint64) {
	h.Logger.Debug("address query", "terms", terms, "generation", gen)
}

func (h LogHooks) OnResults(_ context.Context, terms string, gen uint64, count int, d time.Duration, err error) {
	h.Logger.Debug("address results", "terms", terms, "generation", gen, "count", count, "duration", d, "err", err)
}

func (h LogHooks) OnStale(_ context.Context, terms string, gen uint64) {
	h.Logger.Debug("discarded stale results", "terms", terms, "generation", gen)
}

func (h LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.Logger.Debug("cache hit", "type", keyType)
}

func (h LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.Logger.Debug("cache miss", "type", keyType)
}

func (h LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.Logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h LogHooks) OnRequest(_ context.Context, method, host, path string) {
	h.Logger.Debug("http request", "method", method, "host", host, "path", path)
}

func (h LogHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.Logger.Debug("http response", "method", method, "host", host, "path", path, "status", status, "duration", d)
}

func (h LogHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.Logger.Warn("http error", "method", method, "host", host, "path", path, "err", err)
}

// Register installs h for every hook category.
func (h LogHooks) Register() {
	SetRenderHooks(h)
	SetSearchHooks(h)
	SetCacheHooks(h)
	SetHTTPHooks(h)
}
