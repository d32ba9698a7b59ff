package chart

import (
	"context"
	"sync"
	"time"

	"github.com/matzehuels/districtviz/pkg/chart/reconcile"
	"github.com/matzehuels/districtviz/pkg/district"
	"github.com/matzehuels/districtviz/pkg/indicator"
	"github.com/matzehuels/districtviz/pkg/memo"
	"github.com/matzehuels/districtviz/pkg/schedule"
)

// ComponentOption configures a Component.
type ComponentOption func(*Component)

// WithClock sets the clock used for resize coalescing.
func WithClock(c schedule.Clock) ComponentOption {
	return func(comp *Component) { comp.clock = c }
}

// WithFrame sets the resize coalescing window.
func WithFrame(d time.Duration) ComponentOption {
	return func(comp *Component) { comp.frame = d }
}

// WithSelected sets the initially selected district.
func WithSelected(id string) ComponentOption {
	return func(comp *Component) { comp.selected = id }
}

// Component renders a Chart from an asynchronous dataset. Rendering waits for
// the data to resolve; a failed load moves the component to the Failed state
// instead of leaving it pending.
type Component struct {
	chart  *Chart
	data   *district.Future
	clock  schedule.Clock
	frame  time.Duration
	sorted memo.Cell[district.Dataset]
	resize *schedule.Coalescer[float64]

	mu       sync.Mutex
	selected string
	width    float64
	state    district.State
	err      error
}

// NewComponent wires a chart to its data.
func NewComponent(c *Chart, data *district.Future, width float64, opts ...ComponentOption) *Component {
	comp := &Component{chart: c, data: data, width: width}
	for _, opt := range opts {
		opt(comp)
	}
	comp.resize = schedule.NewCoalescer(comp.clock, comp.frame, comp.onResize)
	return comp
}

// Chart returns the underlying chart.
func (c *Component) Chart() *Chart { return c.chart }

// Select changes the focused district. Call Refresh to redraw.
func (c *Component) Select(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = id
}

// Selected returns the focused district.
func (c *Component) Selected() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected
}

// State reports the data lifecycle state.
func (c *Component) State() district.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Err returns the load error in the Failed state.
func (c *Component) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Refresh waits for the data and redraws at the current width. The boolean
// is false when the render was skipped.
func (c *Component) Refresh(ctx context.Context) (reconcile.Diff, bool, error) {
	ds, err := c.data.Await(ctx)
	if err != nil {
		if ctx.Err() == nil {
			c.setState(district.StateFailed, err)
		}
		return reconcile.Diff{}, false, err
	}
	c.setState(district.StateReady, nil)

	c.mu.Lock()
	selected, width := c.selected, c.width
	c.mu.Unlock()

	column := c.chart.opts.Column
	sorted, err := c.sorted.Get(func() (district.Dataset, error) {
		return indicator.Sort(ds, column, selected), nil
	}, ds, column, selected)
	if err != nil {
		return reconcile.Diff{}, false, err
	}

	diff, ok := c.chart.Render(ctx, width, sorted)
	return diff, ok, nil
}

// NotifyResize records a new container width. Bursts inside one frame
// collapse into a single redraw with the last width.
func (c *Component) NotifyResize(width float64) {
	c.resize.Notify(width)
}

// SortRuns reports how many times the dataset has been re-sorted.
func (c *Component) SortRuns() int { return c.sorted.Runs() }

// Close stops pending resize redraws.
func (c *Component) Close() {
	c.resize.Stop()
}

func (c *Component) onResize(width float64) {
	c.mu.Lock()
	c.width = width
	c.mu.Unlock()
	c.chart.Resize(context.Background(), width)
}

func (c *Component) setState(s district.State, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state, c.err = s, err
}
