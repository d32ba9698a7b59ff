package scale

import (
	"math"

	"github.com/matzehuels/districtviz/pkg/district"
)

// Margin is the space around the drawable area, in pixels.
type Margin struct {
	Top    float64 `json:"top" toml:"top"`
	Right  float64 `json:"right" toml:"right"`
	Bottom float64 `json:"bottom" toml:"bottom"`
	Left   float64 `json:"left" toml:"left"`
}

// Columns names the dataset fields a layout reads.
type Columns struct {
	Value   string
	Overlay string
	MoE     string
}

// Layout is the result of one scale computation.
type Layout struct {
	Width  float64 // drawable width
	Height float64 // drawable height
	X      Band
	Y      Linear
	Max    float64 // upper bound of the value domain
}

// Compute derives the drawable area and both scales for ds.
//
// ok is false when there is nothing to draw: an empty dataset, or a first row
// whose value column is missing or zero. That is the not-yet-loaded case and
// callers should skip rendering rather than report an error.
//
// The value domain is [0, max(value + moe)] where moe is added only when the
// MoE column is configured. The overlay column does not widen the domain.
func Compute(width, height float64, m Margin, ds district.Dataset, cols Columns) (Layout, bool) {
	if len(ds) == 0 || !ds[0].Truthy(cols.Value) {
		return Layout{}, false
	}

	w := math.Max(0, width-m.Left-m.Right)
	h := math.Max(0, height-m.Top-m.Bottom)

	var hi float64
	for _, r := range ds {
		v, _ := district.Finite(r.ValueOr(cols.Value))
		if cols.MoE != "" {
			moe, _ := district.Finite(r.ValueOr(cols.MoE))
			v += moe
		}
		if v > hi {
			hi = v
		}
	}

	return Layout{
		Width:  w,
		Height: h,
		X:      NewBand(ds.IDs(), 0, w),
		Y:      NewLinear(0, hi, 0, h),
		Max:    hi,
	}, true
}
