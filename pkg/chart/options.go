package chart

import (
	"math"
	"time"

	"github.com/matzehuels/districtviz/pkg/chart/numfmt"
	"github.com/matzehuels/districtviz/pkg/chart/scale"
	"github.com/matzehuels/districtviz/pkg/errors"
)

const (
	DefaultHeight          = 50
	DefaultMoEColor        = "#6eceff"
	DefaultMoEOpacity      = 0.5
	DefaultHoverTransition = 10 * time.Millisecond
)

// Palette holds the four named bar colors.
type Palette struct {
	Neutral  string `json:"neutral" toml:"neutral"`   // resting bar
	Emphasis string `json:"emphasis" toml:"emphasis"` // selected district
	Overlay  string `json:"overlay" toml:"overlay"`   // resting overlay bar
	Accent   string `json:"accent" toml:"accent"`     // hovered bar
}

// DefaultPalette returns the standard gray/orange/teal palette.
func DefaultPalette() Palette {
	return Palette{
		Neutral:  "#a8a8a8",
		Emphasis: "#a24c0e",
		Overlay:  "#60acbf",
		Accent:   "#de7d2c",
	}
}

func (p Palette) withDefaults() Palette {
	d := DefaultPalette()
	if p.Neutral == "" {
		p.Neutral = d.Neutral
	}
	if p.Emphasis == "" {
		p.Emphasis = d.Emphasis
	}
	if p.Overlay == "" {
		p.Overlay = d.Overlay
	}
	if p.Accent == "" {
		p.Accent = d.Accent
	}
	return p
}

// Options configures a Chart. Only Column is required.
type Options struct {
	Column        string // metric drawn as the primary bar
	OverlayColumn string // optional second metric drawn over the primary bar
	MoEColumn     string // optional margin of error for Column
	Unit          string // suffix appended to formatted values, e.g. "%"
	NumeralFormat string // numfmt pattern, default "0.0"

	Height float64 // total chart height including margins
	Margin scale.Margin

	Palette         Palette
	MoEColor        string
	MoEOpacity      float64
	HoverTransition time.Duration

	Tooltip  TooltipFunc // nil uses DefaultTooltip
	Measurer Measurer    // nil uses DefaultMeasurer
}

// SetDefaults fills in zero-valued fields.
func (o *Options) SetDefaults() {
	if o.NumeralFormat == "" {
		o.NumeralFormat = numfmt.Default
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	o.Palette = o.Palette.withDefaults()
	if o.MoEColor == "" {
		o.MoEColor = DefaultMoEColor
	}
	if o.MoEOpacity == 0 {
		o.MoEOpacity = DefaultMoEOpacity
	}
	if o.HoverTransition == 0 {
		o.HoverTransition = DefaultHoverTransition
	}
	if o.Tooltip == nil {
		o.Tooltip = DefaultTooltip
	}
	if o.Measurer == nil {
		o.Measurer = DefaultMeasurer()
	}
}

// Validate checks the options after SetDefaults.
func (o Options) Validate() error {
	if err := errors.ValidateColumn(o.Column); err != nil {
		return err
	}
	if err := errors.ValidateOptionalColumn(o.OverlayColumn); err != nil {
		return err
	}
	if err := errors.ValidateOptionalColumn(o.MoEColumn); err != nil {
		return err
	}
	if err := numfmt.Validate(o.NumeralFormat); err != nil {
		return err
	}
	for _, m := range []float64{o.Margin.Top, o.Margin.Right, o.Margin.Bottom, o.Margin.Left} {
		if err := errors.ValidateDimension("margin", m, 0, math.MaxFloat64); err != nil {
			return err
		}
	}
	if err := errors.ValidateDimension("height", o.Height, 1, math.MaxFloat64); err != nil {
		return err
	}
	if o.Height <= o.Margin.Top+o.Margin.Bottom {
		return errors.New(errors.ErrCodeInvalidInput, "height must exceed vertical margins")
	}
	if err := errors.ValidateDimension("moe opacity", o.MoEOpacity, 0, 1); err != nil {
		return err
	}
	if o.HoverTransition < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "hover transition must not be negative")
	}
	return nil
}

func (o Options) columns() scale.Columns {
	return scale.Columns{Value: o.Column, Overlay: o.OverlayColumn, MoE: o.MoEColumn}
}
