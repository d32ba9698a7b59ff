package schedule

import (
	"sync"
	"time"
)

// DefaultSearchDebounce is the keystroke settle window for address search.
const DefaultSearchDebounce = 200 * time.Millisecond

// Debouncer delays a call until input has been quiet for the wait window.
// Every Trigger restarts the window, so only the final settled value fires.
// At most one timer is pending at any time.
//
// Each Trigger bumps a generation counter. The callback receives the
// generation it was scheduled under; work started from it can call
// [Debouncer.Current] later to find out whether a newer Trigger has
// superseded it.
type Debouncer[T any] struct {
	clock Clock
	wait  time.Duration
	fn    func(gen uint64, v T)

	mu    sync.Mutex
	timer Timer
	gen   uint64
}

// NewDebouncer creates a debouncer. A nil clock uses RealClock.
func NewDebouncer[T any](clock Clock, wait time.Duration, fn func(gen uint64, v T)) *Debouncer[T] {
	if clock == nil {
		clock = RealClock{}
	}
	return &Debouncer[T]{clock: clock, wait: wait, fn: fn}
}

// Trigger cancels any pending call and schedules fn(v) after the wait window.
// It returns the generation assigned to v.
func (d *Debouncer[T]) Trigger(v T) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.gen++
	gen := d.gen
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = d.clock.AfterFunc(d.wait, func() { d.fire(gen, v) })
	return gen
}

func (d *Debouncer[T]) fire(gen uint64, v T) {
	d.mu.Lock()
	if gen != d.gen {
		// A Trigger or Cancel raced with this timer.
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.mu.Unlock()
	d.fn(gen, v)
}

// Cancel drops the pending call, if any, and invalidates the current
// generation so in-flight work started from it is treated as stale.
func (d *Debouncer[T]) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Current reports whether gen is still the latest generation.
func (d *Debouncer[T]) Current(gen uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return gen == d.gen
}

// Pending reports whether a call is scheduled.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}
