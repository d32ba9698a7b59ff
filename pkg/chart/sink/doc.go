// Package sink writes a [chart.Scene] in the supported output formats.
//
//   - SVG: the chart alone, with hover behavior as inline CSS and script
//   - HTML: the SVG plus the floating tooltip, ready to drop into a page
//   - JSON: the scene itself, for clients that draw their own bars
//   - PNG: a static raster, with the resting tooltip text as a caption
//
// Every renderer is a pure function of the scene, so the same scene always
// produces the same bytes.
package sink

import "github.com/matzehuels/districtviz/pkg/chart"

// Format names an output format.
type Format string

const (
	FormatSVG  Format = "svg"
	FormatHTML Format = "html"
	FormatJSON Format = "json"
	FormatPNG  Format = "png"
)

// Formats lists every supported format.
var Formats = []Format{FormatSVG, FormatHTML, FormatJSON, FormatPNG}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	switch f {
	case FormatSVG:
		return "image/svg+xml"
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatJSON:
		return "application/json"
	case FormatPNG:
		return "image/png"
	}
	return "application/octet-stream"
}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, bool) {
	for _, f := range Formats {
		if string(f) == s {
			return f, true
		}
	}
	return "", false
}

// Render dispatches to the renderer for f with default options.
func Render(s chart.Scene, f Format) ([]byte, error) {
	switch f {
	case FormatSVG:
		return RenderSVG(s), nil
	case FormatHTML:
		return RenderHTML(s), nil
	case FormatJSON:
		return RenderJSON(s)
	case FormatPNG:
		return RenderPNG(s)
	}
	return nil, unsupported(f)
}
