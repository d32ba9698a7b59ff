// Package pipeline provides the load → sort → render pipeline shared by the
// CLI and the HTTP server.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: read the district dataset from its source (file, URL, MongoDB)
//  2. Sort: rank the districts by the chart column and mark the selection
//  3. Render: draw the ranking chart and write it in every requested format
//
// Loaded datasets and rendered artifacts are cached; artifacts are keyed by
// the dataset's content hash plus every option that changes their bytes.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Source:     district.FileSource{Path: "districts.json"},
//	    SourceName: "districts.json",
//	    Column:     "poverty_rate",
//	    Selected:   "101",
//	    Formats:    []string{"svg", "png"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/districtviz/pkg/cache"
	"github.com/matzehuels/districtviz/pkg/chart"
	"github.com/matzehuels/districtviz/pkg/chart/scale"
	"github.com/matzehuels/districtviz/pkg/chart/sink"
	"github.com/matzehuels/districtviz/pkg/district"
	"github.com/matzehuels/districtviz/pkg/errors"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultWidth is the default total chart width in pixels.
	DefaultWidth = 600.0

	// DefaultHeight is the default total chart height in pixels.
	DefaultHeight = chart.DefaultHeight

	// DefaultScale is the PNG pixel density.
	DefaultScale = 2.0

	// MaxWidth bounds the width requested through the server.
	MaxWidth = 4096.0

	// MaxHeight bounds the height requested through the server.
	MaxHeight = 2048.0

	// MaxScale bounds the PNG pixel density. At the maximum size the
	// raster is MaxWidth*MaxScale by MaxHeight*MaxScale pixels.
	MaxScale = 4.0
)

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if _, ok := sink.ParseFormat(format); !ok {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, html, json, png)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run.
type Options struct {
	// Load options
	Source     district.Source `json:"-"`
	SourceName string          `json:"source"` // cache key for the loaded dataset; empty disables dataset caching
	Refresh    bool            `json:"refresh,omitempty"`

	// Chart options
	Column        string        `json:"column"`
	OverlayColumn string        `json:"overlay,omitempty"`
	MoEColumn     string        `json:"moe,omitempty"`
	Unit          string        `json:"unit,omitempty"`
	NumeralFormat string        `json:"numeral_format,omitempty"`
	Selected      string        `json:"borocd,omitempty"`
	Hover         string        `json:"hover,omitempty"` // district drawn in its hovered state
	Width         float64       `json:"width,omitempty"`
	Height        float64       `json:"height,omitempty"`
	Margin        scale.Margin  `json:"margin"`
	Palette       chart.Palette `json:"palette"`

	// Render options
	Formats []string `json:"formats,omitempty"`
	Title   string   `json:"title,omitempty"`
	Page    bool     `json:"page,omitempty"`    // HTML as a standalone page
	Scale   float64  `json:"scale,omitempty"`   // PNG pixel density
	Caption bool     `json:"caption,omitempty"` // PNG tooltip caption

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Dataset is the ranked dataset the chart was drawn from.
	Dataset district.Dataset

	// DatasetHash is the content hash of the loaded dataset.
	DatasetHash string

	// Rank is the 1-based rank of the selected district, or 0.
	Rank int

	// Scene is the drawn chart. It is nil when every artifact came from cache.
	Scene *chart.Scene

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Rows       int
	Elements   int
	LoadTime   time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LoadHit   bool // Whether the dataset came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults.
// Calling it more than once has no further effect.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Source == nil {
		return errors.New(errors.ErrCodeInvalidConfig, "data source is required")
	}
	o.SetDefaults()
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetDefaults fills in zero-valued fields.
func (o *Options) SetDefaults() {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{string(sink.FormatSVG)}
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates the chart and render options.
func (o *Options) ValidateForRender() error {
	if err := errors.ValidateDimension("width", o.Width, 1, MaxWidth); err != nil {
		return err
	}
	if err := errors.ValidateDimension("height", o.Height, 1, MaxHeight); err != nil {
		return err
	}
	if err := errors.ValidateDimension("scale", o.Scale, 0, MaxScale); err != nil {
		return err
	}
	if o.Width <= o.Margin.Left+o.Margin.Right {
		return errors.New(errors.ErrCodeInvalidInput, "width must exceed horizontal margins")
	}
	if o.Selected != "" {
		if err := errors.ValidateIdentifier(o.Selected); err != nil {
			return err
		}
	}
	if o.Hover != "" {
		if err := errors.ValidateIdentifier(o.Hover); err != nil {
			return err
		}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	opts := o.ChartOptions()
	opts.SetDefaults()
	return opts.Validate()
}

// ChartOptions returns the chart configuration.
func (o *Options) ChartOptions() chart.Options {
	return chart.Options{
		Column:        o.Column,
		OverlayColumn: o.OverlayColumn,
		MoEColumn:     o.MoEColumn,
		Unit:          o.Unit,
		NumeralFormat: o.NumeralFormat,
		Height:        o.Height,
		Margin:        o.Margin,
		Palette:       o.Palette,
	}
}

// ArtifactKeyOpts returns cache key options for one rendered format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	p := o.Palette
	return cache.ArtifactKeyOpts{
		Format:        format,
		Column:        o.Column,
		OverlayColumn: o.OverlayColumn,
		MoEColumn:     o.MoEColumn,
		Unit:          o.Unit,
		NumeralFormat: o.NumeralFormat,
		Selected:      o.Selected,
		Hover:         o.Hover,
		Width:         o.Width,
		Height:        o.Height,
		Margin:        [4]float64{o.Margin.Top, o.Margin.Right, o.Margin.Bottom, o.Margin.Left},
		Palette:       strings.Join([]string{p.Neutral, p.Emphasis, p.Overlay, p.Accent}, ","),
		Title:         o.Title,
		Scale:         o.Scale,
		Page:          o.Page,
		Caption:       o.Caption,
	}
}
