package district

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/districtviz/pkg/errors"
)

func TestFutureResolves(t *testing.T) {
	var loads atomic.Int32
	src := SourceFunc(func(ctx context.Context) (Dataset, error) {
		loads.Add(1)
		return Dataset{{ID: "101"}}, nil
	})
	f := NewFuture(src, "test")

	if f.State() != StatePending {
		t.Fatalf("initial state = %v", f.State())
	}
	for i := 0; i < 3; i++ {
		ds, err := f.Await(context.Background())
		if err != nil || len(ds) != 1 {
			t.Fatalf("Await = %v, %v", ds, err)
		}
	}
	if f.State() != StateReady {
		t.Errorf("state = %v, want ready", f.State())
	}
	if loads.Load() != 1 {
		t.Errorf("loads = %d, want 1", loads.Load())
	}
}

func TestFutureSharesConcurrentLoad(t *testing.T) {
	var loads atomic.Int32
	release := make(chan struct{})
	src := SourceFunc(func(ctx context.Context) (Dataset, error) {
		loads.Add(1)
		<-release
		return Dataset{{ID: "101"}}, nil
	})
	f := NewFuture(src, "test")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.Await(context.Background()); err != nil {
				t.Errorf("Await: %v", err)
			}
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if loads.Load() != 1 {
		t.Errorf("loads = %d, want 1", loads.Load())
	}
}

func TestFutureRejectionIsSurfaced(t *testing.T) {
	cause := stderrors.New("upstream 503")
	f := NewFuture(SourceFunc(func(ctx context.Context) (Dataset, error) {
		return nil, cause
	}), "districts")

	_, err := f.Await(context.Background())
	if err == nil {
		t.Fatal("Await should fail")
	}
	if !errors.Is(err, errors.ErrCodeDataLoadFailed) {
		t.Errorf("code = %v, want DATA_LOAD_FAILED", errors.GetCode(err))
	}
	if !stderrors.Is(err, cause) {
		t.Error("cause should be preserved")
	}
	if f.State() != StateFailed {
		t.Errorf("state = %v, want failed", f.State())
	}
	if f.Err() == nil {
		t.Error("Err() should be set")
	}

	f.Reset()
	if f.State() != StatePending {
		t.Errorf("after Reset state = %v", f.State())
	}
}

func TestFutureCancelledLoadStaysPending(t *testing.T) {
	f := NewFuture(SourceFunc(func(ctx context.Context) (Dataset, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}), "slow")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := f.Await(ctx); !stderrors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Await err = %v, want deadline", err)
	}
	if f.State() != StatePending {
		t.Errorf("state = %v, want pending", f.State())
	}
}

func TestResolvedAndRejected(t *testing.T) {
	ds, err := Resolved(Dataset{{ID: "1"}}).Await(context.Background())
	if err != nil || len(ds) != 1 {
		t.Errorf("Resolved = %v, %v", ds, err)
	}
	if _, err := Rejected(stderrors.New("boom")).Await(context.Background()); !errors.Is(err, errors.ErrCodeDataLoadFailed) {
		t.Errorf("Rejected err = %v", err)
	}
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "rows.json")
	csvPath := filepath.Join(dir, "rows.csv")
	if err := os.WriteFile(jsonPath, []byte(`[{"borocd": 101, "v": 1}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(csvPath, []byte("borocd,v\n101,1\n102,2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	if ds, err := (FileSource{Path: jsonPath}).Load(ctx); err != nil || len(ds) != 1 {
		t.Errorf("json load = %v, %v", ds, err)
	}
	if ds, err := (FileSource{Path: csvPath}).Load(ctx); err != nil || len(ds) != 2 {
		t.Errorf("csv load = %v, %v", ds, err)
	}
	if _, err := (FileSource{Path: filepath.Join(dir, "nope.json")}).Load(ctx); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("missing file err = %v", err)
	}
	if _, err := (FileSource{Path: filepath.Join(dir, "rows.xml")}).Load(ctx); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("bad extension err = %v", err)
	}
}

func TestStaticSourceClones(t *testing.T) {
	src := StaticSource{{ID: "1", Values: map[string]float64{"v": 1}}}
	ds, _ := src.Load(context.Background())
	ds[0].Values["v"] = 99
	again, _ := src.Load(context.Background())
	if again[0].Values["v"] != 1 {
		t.Error("StaticSource should return independent copies")
	}
}
