package chart

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/matzehuels/districtviz/pkg/chart/numfmt"
	"github.com/matzehuels/districtviz/pkg/chart/reconcile"
	"github.com/matzehuels/districtviz/pkg/chart/scale"
	"github.com/matzehuels/districtviz/pkg/district"
	"github.com/matzehuels/districtviz/pkg/observability"
)

// barGap is the horizontal gap between adjacent bars.
const barGap = 2

// RenderContext is the state of one render pass. It is built by Render and
// handed from layout to reconcile to attach; hover handlers keep a pointer to
// the context of the pass that bound them.
type RenderContext struct {
	Layout   scale.Layout
	Width    float64 // total width including margins
	Height   float64 // total height including margins
	Rows     district.Dataset
	Selected *district.Row
	Format   numfmt.Formatter
}

func (rc *RenderContext) bandX(id string) float64 {
	x, _ := rc.Layout.X.At(id)
	return x
}

func (rc *RenderContext) y(v float64) float64 { return rc.Layout.Y.At(v) }

// Handlers are the pointer callbacks bound to one mask.
type Handlers struct {
	Enter func()
	Leave func()
}

// Chart is a ranking chart with a persistent element set. Safe for
// concurrent use.
type Chart struct {
	opts   Options
	format numfmt.Formatter

	mu       sync.Mutex
	bars     reconcile.Store[Rect]
	curr     reconcile.Store[Rect]
	moes     reconcile.Store[Rect]
	masks    reconcile.Store[Rect]
	handlers map[string]Handlers
	rc       *RenderContext
	tooltip  Tooltip
	hovered  string
	renders  int
}

// New validates opts and creates an empty chart.
func New(opts Options) (*Chart, error) {
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	f, err := numfmt.Pattern(opts.NumeralFormat)
	if err != nil {
		return nil, err
	}
	return &Chart{opts: opts, format: f}, nil
}

// Options returns the effective options.
func (c *Chart) Options() Options { return c.opts }

// Render draws ds at the given total width. It returns the diff of the bar
// layer, which every other layer shares keys with, and false when the render
// was skipped because the data is not ready.
func (c *Chart) Render(ctx context.Context, width float64, ds district.Dataset) (reconcile.Diff, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.render(ctx, width, ds)
}

// Resize re-renders the last dataset at a new width. It reports false if
// nothing has been rendered yet or the render was skipped.
func (c *Chart) Resize(ctx context.Context, width float64) (reconcile.Diff, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rc == nil {
		return reconcile.Diff{}, false
	}
	return c.render(ctx, width, c.rc.Rows)
}

func (c *Chart) render(ctx context.Context, width float64, ds district.Dataset) (reconcile.Diff, bool) {
	hooks := observability.Render()
	hooks.OnRenderStart(ctx, c.opts.Column, len(ds))
	start := time.Now()

	l, ok := scale.Compute(width, c.opts.Height, c.opts.Margin, ds, c.opts.columns())
	if !ok {
		hooks.OnRenderSkipped(ctx, c.opts.Column)
		return reconcile.Diff{}, false
	}

	rc := &RenderContext{
		Layout: l,
		Width:  width,
		Height: c.opts.Height,
		Rows:   ds,
		Format: c.format,
	}
	if sel, ok := ds.Selected(); ok {
		rc.Selected = &sel
	}

	diff := c.reconcile(rc)
	c.attach(rc)
	c.rc = rc
	c.renders++

	hooks.OnRenderComplete(ctx, c.opts.Column, c.elementCount(), time.Since(start), nil)
	return diff, true
}

func (c *Chart) reconcile(rc *RenderContext) reconcile.Diff {
	ids := rc.Rows.IDs()
	rows := make(map[string]district.Row, len(rc.Rows))
	for _, r := range rc.Rows {
		if _, dup := rows[r.ID]; !dup {
			rows[r.ID] = r
		}
	}
	bw := rc.Layout.X.Bandwidth()
	barW := math.Max(0, bw-barGap)
	h := rc.Layout.Height
	pal := c.opts.Palette

	diff := reconcile.Join(&c.bars, ids,
		func(i int, id string) Rect { return Rect{Key: id} },
		func(i int, id string, e Rect) Rect {
			r := rows[id]
			v := value(r, c.opts.Column)
			e.Index = i
			e.Class = fmt.Sprintf("bar bar-%s bar-index-%d", id, i)
			e.X, e.Width = rc.bandX(id), barW
			e.Y, e.Height = h-rc.y(v), rc.y(v)
			e.RestFill = restingFill(r, pal.Emphasis, pal.Neutral)
			e.Fill = e.RestFill
			e.Opacity = 1
			e.Transition = 0
			return e
		})

	if col := c.opts.OverlayColumn; col != "" {
		reconcile.Join(&c.curr, ids,
			func(i int, id string) Rect { return Rect{Key: id, Passive: true} },
			func(i int, id string, e Rect) Rect {
				r := rows[id]
				v := value(r, col)
				e.Index = i
				e.Class = fmt.Sprintf("bar curr bar-curr-%s bar-index-%d", id, i)
				e.X, e.Width = rc.bandX(id), barW
				e.Y, e.Height = h-rc.y(v), rc.y(v)
				e.Fill = restingFill(r, pal.Emphasis, pal.Overlay)
				e.Opacity = 1
				return e
			})
	} else {
		c.curr.Clear()
	}

	if col := c.opts.MoEColumn; col != "" {
		reconcile.Join(&c.moes, ids,
			func(i int, id string) Rect { return Rect{Key: id, Passive: true} },
			func(i int, id string, e Rect) Rect {
				r := rows[id]
				v, m := value(r, c.opts.Column), value(r, col)
				e.Index = i
				e.Class = fmt.Sprintf("bar moe bar-moe-%s bar-index-%d", id, i)
				e.X, e.Width = rc.bandX(id), barW
				e.Y, e.Height = h-(rc.y(v)+rc.y(m)), rc.y(m)*2
				e.Fill = c.opts.MoEColor
				e.Opacity = c.opts.MoEOpacity
				return e
			})
	} else {
		c.moes.Clear()
	}

	reconcile.Join(&c.masks, ids,
		func(i int, id string) Rect { return Rect{Key: id, Class: "mask"} },
		func(i int, id string, e Rect) Rect {
			e.Index = i
			e.X, e.Width = rc.bandX(id), bw
			e.Y, e.Height = 0, h
			e.Opacity = 0
			return e
		})

	return diff
}

// attach binds hover handlers to every mask and resets interaction state to
// rest: nothing hovered, tooltip describing the selected district.
func (c *Chart) attach(rc *RenderContext) {
	c.handlers = make(map[string]Handlers, c.masks.Len())
	c.hovered = ""

	c.masks.Each(func(_ int, id string, m Rect) {
		row, _ := rc.Rows.Find(id)
		tip := c.tooltipFor(rc, row)
		m.Tooltip, m.TooltipLeft = tip.HTML, tip.Left
		c.masks.Set(id, m)

		c.handlers[id] = Handlers{
			Enter: func() { c.enter(rc, row) },
			Leave: func() { c.leave(row) },
		}
	})

	c.tooltip = c.restingTooltip(rc)
}

func (c *Chart) enter(rc *RenderContext, row district.Row) {
	if bar, ok := c.bars.Get(row.ID); ok {
		bar.Fill = c.opts.Palette.Accent
		bar.Transition = c.opts.HoverTransition
		c.bars.Set(row.ID, bar)
	}
	if cur, ok := c.curr.Get(row.ID); ok {
		cur.Opacity = 0
		c.curr.Set(row.ID, cur)
	}
	c.hovered = row.ID
	c.tooltip = c.tooltipFor(rc, row)
}

func (c *Chart) leave(row district.Row) {
	if bar, ok := c.bars.Get(row.ID); ok {
		bar.Fill = bar.RestFill
		bar.Transition = c.opts.HoverTransition
		c.bars.Set(row.ID, bar)
	}
	if cur, ok := c.curr.Get(row.ID); ok {
		cur.Opacity = 1
		c.curr.Set(row.ID, cur)
	}
	if c.hovered == row.ID {
		c.hovered = ""
	}
}

// PointerEnter replays the pointer entering id's mask. It reports false if
// no mask is bound to id.
func (c *Chart) PointerEnter(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	h, ok := c.handlers[id]
	if ok {
		h.Enter()
	}
	return ok
}

// PointerLeave replays the pointer leaving id's mask.
func (c *Chart) PointerLeave(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	h, ok := c.handlers[id]
	if ok {
		h.Leave()
	}
	return ok
}

// ChartLeave replays the pointer leaving the whole chart: the tooltip goes
// back to the selected district.
func (c *Chart) ChartLeave() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rc == nil {
		return
	}
	c.tooltip = c.restingTooltip(c.rc)
}

// Tooltip returns the current tooltip state.
func (c *Chart) Tooltip() Tooltip {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tooltip
}

// Renders counts completed (not skipped) render passes.
func (c *Chart) Renders() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.renders
}

// Scene snapshots the current element set.
func (c *Chart) Scene() Scene {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Scene{
		Height:          c.opts.Height,
		Margin:          c.opts.Margin,
		Column:          c.opts.Column,
		Hovered:         c.hovered,
		Palette:         c.opts.Palette,
		HoverTransition: c.opts.HoverTransition,
		Bars:            c.bars.Elements(),
		Curr:            c.curr.Elements(),
		MoEs:            c.moes.Elements(),
		Masks:           c.masks.Elements(),
		Tooltip:         c.tooltip,
	}
	if c.rc != nil {
		s.Width = c.rc.Width
		if c.rc.Selected != nil {
			s.Selected = c.rc.Selected.ID
		}
	}
	return s
}

func (c *Chart) restingTooltip(rc *RenderContext) Tooltip {
	if rc.Selected == nil {
		return Tooltip{}
	}
	return c.tooltipFor(rc, *rc.Selected)
}

// tooltipFor renders the tooltip for row and centers it over row's band,
// clamped so it stays inside the chart.
func (c *Chart) tooltipFor(rc *RenderContext, row district.Row) Tooltip {
	markup := c.opts.Tooltip(TooltipData{
		Row:       row,
		Selected:  rc.Selected,
		Column:    c.opts.Column,
		MoEColumn: c.opts.MoEColumn,
		Unit:      c.opts.Unit,
		Format:    rc.Format,
	})
	w := c.opts.Measurer.Measure(markup)
	mid := w/2 - math.Floor(rc.Layout.X.Bandwidth()/2)
	left := c.opts.Margin.Left + rc.bandX(row.ID) - mid
	left = math.Max(0, math.Min(left, rc.Width-w))
	return Tooltip{HTML: markup, Left: left, Width: w, Key: row.ID, Visible: markup != ""}
}

func (c *Chart) elementCount() int {
	return c.bars.Len() + c.curr.Len() + c.moes.Len() + c.masks.Len()
}

func restingFill(r district.Row, emphasis, neutral string) string {
	if r.Selected {
		return emphasis
	}
	return neutral
}

// value reads col for drawing; missing and non-finite values draw as zero.
func value(r district.Row, col string) float64 {
	v, _ := district.Finite(r.ValueOr(col))
	return v
}
