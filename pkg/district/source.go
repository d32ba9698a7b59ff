package district

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/matzehuels/districtviz/pkg/errors"
	"github.com/matzehuels/districtviz/pkg/observability"
)

// Source produces a dataset. Implementations may block on I/O and must
// honor ctx cancellation.
type Source interface {
	Load(ctx context.Context) (Dataset, error)
}

// SourceFunc adapts a function to [Source].
type SourceFunc func(ctx context.Context) (Dataset, error)

func (f SourceFunc) Load(ctx context.Context) (Dataset, error) { return f(ctx) }

// StaticSource serves an in-memory dataset. Each load returns a deep copy.
type StaticSource Dataset

func (s StaticSource) Load(ctx context.Context) (Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Dataset(s).Clone(), nil
}

// FileSource reads a JSON or CSV file, chosen by extension.
type FileSource struct {
	Path string
}

func (s FileSource) Load(ctx context.Context) (Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var decode func(io.Reader) (Dataset, error)
	switch strings.ToLower(filepath.Ext(s.Path)) {
	case ".csv":
		decode = DecodeCSV
	case ".json", "":
		decode = DecodeJSON
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported dataset extension %q (want .json or .csv)", filepath.Ext(s.Path))
	}

	f, err := os.Open(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeNotFound, err, "dataset %s", s.Path)
		}
		return nil, err
	}
	defer f.Close()
	return decode(f)
}

// String names the source for logs and cache keys.
func (s FileSource) String() string { return "file:" + s.Path }

// State is the lifecycle of a [Future].
type State int

const (
	StatePending State = iota
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Future lazily loads a Source once. Concurrent awaiters share the load.
// A load cancelled by its caller's ctx does not poison the future; the next
// Await starts a fresh load.
type Future struct {
	src  Source
	name string

	mu      sync.Mutex
	state   State
	data    Dataset
	err     error
	loading chan struct{}
}

// NewFuture wraps src. name labels the source in hooks and errors.
func NewFuture(src Source, name string) *Future {
	return &Future{src: src, name: name}
}

// Resolved returns a future that is already ready.
func Resolved(ds Dataset) *Future {
	return &Future{state: StateReady, data: ds, name: "static"}
}

// Rejected returns a future that has already failed.
func Rejected(err error) *Future {
	return &Future{state: StateFailed, err: loadFailed("static", err), name: "static"}
}

// State reports the current lifecycle state without blocking.
func (f *Future) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Err returns the load error once the future has failed.
func (f *Future) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Await blocks until the dataset is loaded, the load fails, or ctx is done.
// The returned dataset is shared; callers that mutate rows must Clone.
func (f *Future) Await(ctx context.Context) (Dataset, error) {
	for {
		f.mu.Lock()
		switch f.state {
		case StateReady:
			ds := f.data
			f.mu.Unlock()
			return ds, nil
		case StateFailed:
			err := f.err
			f.mu.Unlock()
			return nil, err
		}

		if f.loading == nil {
			f.loading = make(chan struct{})
			done := f.loading
			f.mu.Unlock()
			f.load(ctx, done)
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			continue
		}
		wait := f.loading
		f.mu.Unlock()

		select {
		case <-wait:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (f *Future) load(ctx context.Context, done chan struct{}) {
	start := time.Now()
	ds, err := f.src.Load(ctx)
	observability.Render().OnLoadComplete(ctx, f.name, len(ds), time.Since(start), err)

	f.mu.Lock()
	defer f.mu.Unlock()
	defer close(done)
	f.loading = nil

	switch {
	case err == nil:
		f.state, f.data = StateReady, ds
	case ctx.Err() != nil:
		// Cancelled by this caller; stay pending so another caller can retry.
	default:
		f.state, f.err = StateFailed, loadFailed(f.name, err)
	}
}

// Reset discards the cached result so the next Await reloads.
func (f *Future) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.src == nil {
		return
	}
	f.state, f.data, f.err = StatePending, nil, nil
}

func loadFailed(name string, err error) error {
	if errors.Is(err, errors.ErrCodeDataLoadFailed) {
		return err
	}
	return errors.Wrap(errors.ErrCodeDataLoadFailed, err, "load %s", name)
}
