// Package pkg provides the core libraries for districtviz community district
// rankings.
//
// # Overview
//
// districtviz ranks community districts by an indicator column (poverty
// rate, median income, commute time) and draws the ranking as a horizontal
// bar chart in which the selected district is emphasized, margins of error
// are drawn as bands and hovering a bar shows a tooltip. The pkg directory is
// organized into four main areas:
//
//  1. [district], [indicator] - Domain data (rows, sources, sorting)
//  2. [chart] - The ranking chart (scales, keyed reconciliation, sinks)
//  3. [search] - Navigation search over districts and addresses
//  4. [pipeline], [server] - Orchestration (load → sort → render) and HTTP
//
// # Architecture
//
// The typical data flow:
//
//	Dataset (JSON, CSV, URL, MongoDB)
//	         ↓
//	    [district] package (load rows)
//	         ↓
//	    [indicator] package (sort by column, mark selection)
//	         ↓
//	    [chart] package (scales + reconciled scene)
//	         ↓
//	    [chart/sink] (SVG, HTML, JSON, PNG)
//
// # Quick Start
//
//	import (
//	    "context"
//	    "github.com/matzehuels/districtviz/pkg/chart"
//	    "github.com/matzehuels/districtviz/pkg/chart/sink"
//	    "github.com/matzehuels/districtviz/pkg/district"
//	    "github.com/matzehuels/districtviz/pkg/indicator"
//	)
//
//	// 1. Load the dataset
//	ds, _ := district.FileSource{Path: "districts.json"}.Load(ctx)
//
//	// 2. Rank by a column
//	ranked := indicator.Sort(ds, "poverty_rate", "301")
//
//	// 3. Draw the chart
//	c, _ := chart.New(chart.Options{Column: "poverty_rate", Unit: "%"})
//	c.Render(ctx, 600, ranked)
//
//	// 4. Render to SVG
//	svg := sink.RenderSVG(c.Scene())
//
// # Main Packages
//
// ## Domain
//
// [district] - Rows keyed by borocd with a display name and numeric columns.
// Sources load datasets from files, URLs and MongoDB; a Future shares one
// load between concurrent callers.
//
// [indicator] - Stable descending sort with missing values last, and ranks.
//
// ## Chart
//
// [chart] - Ranking bar chart. Every render recomputes the scales and
// reconciles bars, overlays and margin of error bands by district key.
//
//   - [chart/scale]: Linear and band scales, chart layout
//   - [chart/reconcile]: Keyed enter/update/exit reconciliation
//   - [chart/numfmt]: Numeral-style value formatting
//   - [chart/sink]: Output formats (SVG, HTML, JSON, PNG)
//
// ## Search
//
// [search] - Navigator with a restartable 200ms debounce that discards stale
// address lookups, plus the matcher that always keeps addresses.
//
// [schedule] - Clocks, debouncer and frame coalescer.
//
// ## Infrastructure
//
// [pipeline] - Complete load → sort → render pipeline used by the CLI and the
// server. Ensures consistent behavior across both entry points.
//
// [cache] - Cache backends (file, memory, Redis, null) with typed keys and
// TTLs.
//
// [httputil] - Cached, retrying HTTP client.
//
// [store/mongo] - MongoDB district and address collections.
//
// [server] - chi HTTP API for districts, rankings, charts and search.
//
// [observability] - Hooks for loads, renders, searches, cache and HTTP.
//
// [errors] - Coded errors and input validation.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                 # All tests
//	go test ./pkg/chart/...           # Specific package
//	go test -run Example ./pkg/...    # Examples only
//
// Set DISTRICTVIZ_MONGO_URI to run the MongoDB integration test.
//
// [district]: https://pkg.go.dev/github.com/matzehuels/districtviz/pkg/district
// [indicator]: https://pkg.go.dev/github.com/matzehuels/districtviz/pkg/indicator
// [chart]: https://pkg.go.dev/github.com/matzehuels/districtviz/pkg/chart
// [chart/scale]: https://pkg.go.dev/github.com/matzehuels/districtviz/pkg/chart/scale
// [chart/reconcile]: https://pkg.go.dev/github.com/matzehuels/districtviz/pkg/chart/reconcile
// [chart/numfmt]: https://pkg.go.dev/github.com/matzehuels/districtviz/pkg/chart/numfmt
// [chart/sink]: https://pkg.go.dev/github.com/matzehuels/districtviz/pkg/chart/sink
// [search]: https://pkg.go.dev/github.com/matzehuels/districtviz/pkg/search
// [schedule]: https://pkg.go.dev/github.com/matzehuels/districtviz/pkg/schedule
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/districtviz/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/districtviz/pkg/cache
// [httputil]: https://pkg.go.dev/github.com/matzehuels/districtviz/pkg/httputil
// [store/mongo]: https://pkg.go.dev/github.com/matzehuels/districtviz/pkg/store/mongo
// [server]: https://pkg.go.dev/github.com/matzehuels/districtviz/pkg/server
// [observability]: https://pkg.go.dev/github.com/matzehuels/districtviz/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/districtviz/pkg/errors
package pkg
