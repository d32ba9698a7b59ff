// Package chart renders the district ranking chart: one bar per district in
// ranked order, with an optional overlay bar, an optional margin-of-error
// band, and an invisible hover mask per district that drives the tooltip.
//
// # Render pipeline
//
// Every call to [Chart.Render] runs three stages against a fresh
// [RenderContext]:
//
//  1. Layout: [scale.Compute] builds band and linear scales for the dataset.
//     If the first row has no value for the configured column, the render is
//     skipped entirely and the previous scene is left untouched.
//  2. Reconcile: the four element layers (bars, curr, moes, masks) are joined
//     against the dataset by district ID with [reconcile.Join]. Existing
//     elements are updated in place, new ones are entered, and elements for
//     districts that disappeared are removed.
//  3. Attach: hover handlers are bound to each mask, and the tooltip is reset
//     to describe the selected district.
//
// # Interaction
//
// [Chart.PointerEnter], [Chart.PointerLeave] and [Chart.ChartLeave] replay
// pointer events against the scene. The same behavior ships to browsers as an
// inline script in the SVG and HTML sinks (see package sink).
//
// # Component
//
// [Component] adds the data lifecycle around a Chart: it waits for a
// [district.Future], memoizes the sorted dataset, and coalesces resize
// notifications so rapid resizes cause at most one redraw per frame.
package chart
