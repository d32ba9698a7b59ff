package schedule

import (
	"sync"
	"time"
)

// DefaultFrame approximates one animation frame at 60Hz.
const DefaultFrame = 16 * time.Millisecond

// Coalescer collapses bursts of notifications into at most one callback per
// frame, delivered on the trailing edge with the most recent value.
type Coalescer[T any] struct {
	clock Clock
	frame time.Duration
	fn    func(v T)

	mu        sync.Mutex
	latest    T
	scheduled bool
	stopped   bool
	timer     Timer
}

// NewCoalescer creates a coalescer. A nil clock uses RealClock and a
// non-positive frame uses DefaultFrame.
func NewCoalescer[T any](clock Clock, frame time.Duration, fn func(v T)) *Coalescer[T] {
	if clock == nil {
		clock = RealClock{}
	}
	if frame <= 0 {
		frame = DefaultFrame
	}
	return &Coalescer[T]{clock: clock, frame: frame, fn: fn}
}

// Notify records v and ensures a flush is scheduled for the end of the
// current frame.
func (c *Coalescer[T]) Notify(v T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return
	}
	c.latest = v
	if c.scheduled {
		return
	}
	c.scheduled = true
	c.timer = c.clock.AfterFunc(c.frame, c.flush)
}

func (c *Coalescer[T]) flush() {
	c.mu.Lock()
	if c.stopped || !c.scheduled {
		c.mu.Unlock()
		return
	}
	v := c.latest
	c.scheduled = false
	c.timer = nil
	c.mu.Unlock()
	c.fn(v)
}

// Stop cancels any pending flush; later notifications are ignored.
func (c *Coalescer[T]) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopped = true
	c.scheduled = false
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}
