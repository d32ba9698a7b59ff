package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
)

// lockedBuffer is a bytes.Buffer safe for the spinner goroutine to write
// while the test reads.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func waitForFrames(t *testing.T, s *progressSpinner, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for s.drawn() < n {
		if time.Now().After(deadline) {
			t.Fatalf("spinner drew %d frames, want %d", s.drawn(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestSpinnerDrawsAndClears(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	var out lockedBuffer
	s := newSpinner(context.Background(), &out, "Rendering poverty_rate...")
	s.Start()
	waitForFrames(t, s, 2)
	s.Stop()

	got := out.String()
	if !strings.Contains(got, "Rendering poverty_rate...") {
		t.Errorf("output %q missing message", got)
	}
	if !strings.HasSuffix(got, "\r") {
		t.Errorf("output %q should end by clearing the line", got)
	}
	if s.Cancelled() {
		t.Error("Stop alone should not report cancellation")
	}
}

func TestSpinnerParentCancel(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ctx, cancel := context.WithCancel(context.Background())
	s := newSpinner(ctx, &lockedBuffer{}, "Loading districts...")
	s.Start()
	cancel()
	s.Stop()

	if !s.Cancelled() {
		t.Error("spinner should report cancellation after its context ends")
	}
}

func TestSpinnerTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	s := newSpinner(ctx, &lockedBuffer{}, "Fetching https://example.org/districts.json...")
	s.Start()
	<-ctx.Done()
	s.Stop()

	if !s.Cancelled() {
		t.Error("spinner should report cancellation after its deadline")
	}
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	var out lockedBuffer
	s := newSpinner(context.Background(), &out, "Rendering lep_rate...")
	s.Start()
	s.Stop()
	s.Stop()

	never := newSpinner(context.Background(), &out, "unused")
	never.Stop()
	if never.drawn() != 0 {
		t.Errorf("unstarted spinner drew %d frames", never.drawn())
	}
}

func TestSpinnerSilentWhenStoppedEarly(t *testing.T) {
	var out lockedBuffer
	s := newSpinner(context.Background(), &out, "Rendering poverty_rate...")
	s.Stop()
	s.Start()
	s.Stop()
	if got := out.String(); got != "" {
		t.Errorf("spinner stopped before its first tick wrote %q", got)
	}
}
