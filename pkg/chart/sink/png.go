package sink

import (
	"bytes"
	"image/color"
	"image/png"
	"math"
	"strconv"
	"strings"

	"git.sr.ht/~sbinet/gg"
	"golang.org/x/image/font/basicfont"

	"github.com/matzehuels/districtviz/pkg/chart"
	"github.com/matzehuels/districtviz/pkg/errors"
)

const captionHeight = 18

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	scale      float64
	caption    bool
	background color.Color
}

// WithScale sets the pixel density (default 2.0).
func WithScale(s float64) PNGOption {
	return func(r *pngRenderer) { r.scale = s }
}

// WithCaption draws the resting tooltip text above the bars.
func WithCaption() PNGOption {
	return func(r *pngRenderer) { r.caption = true }
}

// WithBackground fills the canvas before drawing. Default is transparent.
func WithBackground(c color.Color) PNGOption {
	return func(r *pngRenderer) { r.background = c }
}

// RenderPNG rasterizes the scene. Masks are invisible and skipped.
func RenderPNG(s chart.Scene, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{scale: 2.0}
	for _, opt := range opts {
		opt(&r)
	}
	if r.scale <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "png scale must be positive")
	}
	if s.Width <= 0 || s.Height <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "scene has no size")
	}

	top := 0.0
	if r.caption && s.Tooltip.Visible {
		top = captionHeight
	}
	w := int(math.Ceil(s.Width * r.scale))
	h := int(math.Ceil((s.Height + top) * r.scale))

	dc := gg.NewContext(w, h)
	if r.background != nil {
		dc.SetColor(r.background)
		dc.Clear()
	}
	dc.Scale(r.scale, r.scale)

	if top > 0 {
		dc.SetFontFace(basicfont.Face7x13)
		dc.SetColor(color.Black)
		x := s.Tooltip.Left + 6
		dc.DrawStringAnchored(chart.PlainText(s.Tooltip.HTML), x, top/2, 0, 0.5)
	}

	for _, l := range []chart.Layer{chart.LayerBars, chart.LayerCurr, chart.LayerMoEs} {
		for _, e := range s.Layer(l) {
			c, err := parseHex(e.Fill, e.Opacity)
			if err != nil {
				return nil, err
			}
			dc.SetColor(c)
			dc.DrawRectangle(s.Margin.Left+e.X, top+s.Margin.Top+e.Y, e.Width, e.Height)
			dc.Fill()
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, dc.Image()); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode png")
	}
	return buf.Bytes(), nil
}

// parseHex reads #rgb or #rrggbb with the given opacity.
func parseHex(s string, opacity float64) (color.NRGBA, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.NRGBA{}, errors.New(errors.ErrCodeInvalidInput, "invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, errors.New(errors.ErrCodeInvalidInput, "invalid color %q", s)
	}
	a := math.Max(0, math.Min(1, opacity))
	return color.NRGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: uint8(math.Round(a * 255)),
	}, nil
}

func unsupported(f Format) error {
	return errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q", f)
}
