package observability

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	r := NoopRenderHooks{}
	r.OnLoadComplete(ctx, "file", 59, time.Millisecond, nil)
	r.OnRenderStart(ctx, "poverty_rate", 59)
	r.OnRenderComplete(ctx, "poverty_rate", 236, time.Millisecond, nil)
	r.OnRenderSkipped(ctx, "poverty_rate")

	s := NoopSearchHooks{}
	s.OnQuery(ctx, "broadway", 1)
	s.OnResults(ctx, "broadway", 1, 3, time.Millisecond, nil)
	s.OnStale(ctx, "broad", 0)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "artifact")
	c.OnCacheMiss(ctx, "dataset")
	c.OnCacheSet(ctx, "address", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "geosearch.example", "/v1/search")
	h.OnResponse(ctx, "GET", "geosearch.example", "/v1/search", 200, time.Second)
	h.OnError(ctx, "GET", "geosearch.example", "/v1/search", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	defer Reset()

	if _, ok := Render().(NoopRenderHooks); !ok {
		t.Error("Render() should return NoopRenderHooks by default")
	}
	if _, ok := Search().(NoopSearchHooks); !ok {
		t.Error("Search() should return NoopSearchHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	custom := &countingHooks{}
	SetCacheHooks(custom)
	if Cache() != custom {
		t.Error("SetCacheHooks should set custom hooks")
	}

	Reset()
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Reset() should restore NoopCacheHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &countingHooks{}
	SetCacheHooks(custom)
	SetCacheHooks(nil)
	if Cache() != custom {
		t.Error("SetCacheHooks(nil) should not replace existing hooks")
	}
}

func TestLogHooksRegister(t *testing.T) {
	Reset()
	defer Reset()

	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	LogHooks{Logger: logger}.Register()

	Render().OnRenderSkipped(context.Background(), "poverty_rate")
	Search().OnStale(context.Background(), "broad", 3)

	out := buf.String()
	if !strings.Contains(out, "render skipped") {
		t.Errorf("missing render log line: %q", out)
	}
	if !strings.Contains(out, "discarded stale results") {
		t.Errorf("missing search log line: %q", out)
	}
}

type countingHooks struct {
	hits, misses, sets int
}

func (c *countingHooks) OnCacheHit(context.Context, string)      { c.hits++ }
func (c *countingHooks) OnCacheMiss(context.Context, string)     { c.misses++ }
func (c *countingHooks) OnCacheSet(context.Context, string, int) { c.sets++ }
