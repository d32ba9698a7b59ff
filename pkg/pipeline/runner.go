package pipeline

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/districtviz/pkg/cache"
	"github.com/matzehuels/districtviz/pkg/chart"
	"github.com/matzehuels/districtviz/pkg/chart/sink"
	"github.com/matzehuels/districtviz/pkg/district"
	"github.com/matzehuels/districtviz/pkg/errors"
	"github.com/matzehuels/districtviz/pkg/indicator"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and server use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → sort → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{}

	// Stage 1: Load
	loadStart := time.Now()
	ds, loadHit, err := r.LoadWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.Rows = len(ds)
	result.CacheInfo.LoadHit = loadHit

	var buf bytes.Buffer
	if err := district.EncodeJSON(&buf, ds); err == nil {
		result.DatasetHash = cache.Hash(buf.Bytes())
	}

	opts.Logger.Info("loaded districts",
		"source", opts.SourceName,
		"rows", len(ds),
		"cached", loadHit,
		"duration", result.Stats.LoadTime)

	// Stage 2: Sort
	sorted, err := Rank(ds, opts)
	if err != nil {
		return nil, err
	}
	result.Dataset = sorted
	if opts.Selected != "" {
		result.Rank, _ = indicator.Rank(sorted, opts.Selected)
	}

	// Stage 3: Render
	renderStart := time.Now()
	scene, artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, sorted, result.DatasetHash, opts)
	if err != nil {
		return nil, err
	}
	result.Scene = scene
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	if scene != nil {
		result.Stats.Elements = scene.ElementCount()
	}
	result.CacheInfo.RenderHit = renderHit

	opts.Logger.Info("rendered chart",
		"column", opts.Column,
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// LoadWithCacheInfo loads the dataset with caching and returns cache hit info.
func (r *Runner) LoadWithCacheInfo(ctx context.Context, opts Options) (district.Dataset, bool, error) {
	if opts.Source == nil {
		return nil, false, errors.New(errors.ErrCodeInvalidConfig, "data source is required")
	}
	r.applyLogger(&opts)

	cacheable := opts.SourceName != ""
	key := r.Keyer.DatasetKey(opts.SourceName)

	if cacheable && !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if ds, err := district.DecodeJSON(bytes.NewReader(data)); err == nil {
				return ds, true, nil
			}
			opts.Logger.Debug("discarding unreadable cached dataset", "source", opts.SourceName)
		}
	}

	ds, err := opts.Source.Load(ctx)
	if err != nil {
		if errors.Is(err, errors.ErrCodeDataLoadFailed) || ctx.Err() != nil {
			return nil, false, err
		}
		return nil, false, errors.Wrap(errors.ErrCodeDataLoadFailed, err, "load %s", opts.SourceName)
	}

	if cacheable {
		var buf bytes.Buffer
		if err := district.EncodeJSON(&buf, ds); err == nil {
			_ = r.Cache.Set(ctx, key, buf.Bytes(), cache.TTLDataset)
		}
	}
	return ds, false, nil
}

// Load is a convenience wrapper that calls LoadWithCacheInfo and discards the cache hit info.
func (r *Runner) Load(ctx context.Context, opts Options) (district.Dataset, error) {
	ds, _, err := r.LoadWithCacheInfo(ctx, opts)
	return ds, err
}

// Rank sorts ds by the chart column and marks the selected district. A
// selection that is not in the dataset is NOT_FOUND.
func Rank(ds district.Dataset, opts Options) (district.Dataset, error) {
	if opts.Selected != "" && ds.Index(opts.Selected) < 0 {
		return nil, errors.New(errors.ErrCodeNotFound, "district %q not in dataset", opts.Selected)
	}
	return indicator.Sort(ds, opts.Column, opts.Selected), nil
}

// RenderWithCacheInfo draws the chart for a ranked dataset and writes every
// requested format, serving them from cache when all are present.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, ds district.Dataset, datasetHash string, opts Options) (*chart.Scene, map[string][]byte, bool, error) {
	opts.SetDefaults()
	if err := opts.ValidateForRender(); err != nil {
		return nil, nil, false, err
	}

	// Try to get all formats from cache
	if datasetHash != "" && !opts.Refresh {
		artifacts := make(map[string][]byte, len(opts.Formats))
		for _, format := range opts.Formats {
			key := r.Keyer.ArtifactKey(datasetHash, opts.ArtifactKeyOpts(format))
			data, hit, err := r.Cache.Get(ctx, key)
			if err != nil || !hit {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			return nil, artifacts, true, nil
		}
	}

	scene, err := Draw(ctx, ds, opts)
	if err != nil {
		return nil, nil, false, err
	}
	artifacts, err := Write(ctx, scene, opts)
	if err != nil {
		return nil, nil, false, err
	}

	if datasetHash != "" {
		for format, data := range artifacts {
			key := r.Keyer.ArtifactKey(datasetHash, opts.ArtifactKeyOpts(format))
			_ = r.Cache.Set(ctx, key, data, cache.TTLArtifact)
		}
	}
	return &scene, artifacts, false, nil
}

// Draw renders a ranked dataset into a chart scene, applying the hover
// state if one is requested.
func Draw(ctx context.Context, ds district.Dataset, opts Options) (chart.Scene, error) {
	c, err := chart.New(opts.ChartOptions())
	if err != nil {
		return chart.Scene{}, err
	}
	if _, ok := c.Render(ctx, opts.Width, ds); !ok {
		return chart.Scene{}, errors.New(errors.ErrCodeInvalidColumn, "column %q has no value for the top-ranked district", opts.Column)
	}
	if opts.Hover != "" && !c.PointerEnter(opts.Hover) {
		return chart.Scene{}, errors.New(errors.ErrCodeNotFound, "district %q not in chart", opts.Hover)
	}
	return c.Scene(), nil
}

// Write renders scene in every format of opts concurrently.
func Write(ctx context.Context, scene chart.Scene, opts Options) (map[string][]byte, error) {
	var (
		mu        sync.Mutex
		artifacts = make(map[string][]byte, len(opts.Formats))
	)
	if err := ValidateFormats(opts.Formats); err != nil {
		return nil, err
	}
	g, gctx := errgroup.WithContext(ctx)
	for _, name := range opts.Formats {
		name := name
		format, _ := sink.ParseFormat(name)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := writeFormat(scene, format, opts)
			if err != nil {
				return errors.Wrap(errors.ErrCodeInternal, err, "render %s", format)
			}
			mu.Lock()
			artifacts[name] = data
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return artifacts, nil
}

func writeFormat(scene chart.Scene, format sink.Format, opts Options) ([]byte, error) {
	switch format {
	case sink.FormatSVG:
		return sink.RenderSVG(scene, svgOptions(opts)...), nil
	case sink.FormatHTML:
		htmlOpts := []sink.HTMLOption{sink.WithHTMLSVGOptions(svgOptions(opts)...)}
		if opts.Page {
			htmlOpts = append(htmlOpts, sink.WithPage(opts.Title))
		}
		return sink.RenderHTML(scene, htmlOpts...), nil
	case sink.FormatPNG:
		pngOpts := []sink.PNGOption{sink.WithScale(opts.Scale)}
		if opts.Caption {
			pngOpts = append(pngOpts, sink.WithCaption())
		}
		return sink.RenderPNG(scene, pngOpts...)
	default:
		return sink.Render(scene, format)
	}
}

func svgOptions(opts Options) []sink.SVGOption {
	if opts.Title == "" {
		return nil
	}
	return []sink.SVGOption{sink.WithTitle(opts.Title)}
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
