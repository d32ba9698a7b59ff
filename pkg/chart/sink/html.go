package sink

import (
	"bytes"
	"fmt"

	"golang.org/x/net/html"

	"github.com/matzehuels/districtviz/pkg/chart"
)

const pageCSS = `
    .ranking-chart { position: relative; font-family: sans-serif; font-size: 12px; padding-top: 24px; }
    .ranking-chart .tooltip { position: absolute; top: 0; white-space: nowrap; padding: 0 6px; pointer-events: none; }
    .ranking-chart .moe-text { color: #888; margin-left: 4px; }`

// HTMLOption configures HTML rendering.
type HTMLOption func(*htmlRenderer)

type htmlRenderer struct {
	page    bool
	title   string
	svgOpts []SVGOption
}

// WithPage wraps the chart in a standalone HTML document.
func WithPage(title string) HTMLOption {
	return func(r *htmlRenderer) { r.page = true; r.title = title }
}

// WithHTMLSVGOptions passes options through to the embedded SVG.
func WithHTMLSVGOptions(opts ...SVGOption) HTMLOption {
	return func(r *htmlRenderer) { r.svgOpts = opts }
}

// RenderHTML renders the chart container: the SVG followed by the tooltip
// div, positioned over the selected district.
func RenderHTML(s chart.Scene, opts ...HTMLOption) []byte {
	var r htmlRenderer
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	if r.page {
		fmt.Fprintf(&buf, "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n<style>%s\n</style>\n</head>\n<body>\n",
			html.EscapeString(r.title), pageCSS)
	}

	buf.WriteString(`<div class="ranking-chart">` + "\n")
	buf.Write(stripXMLDecl(RenderSVG(s, r.svgOpts...)))

	opacity := 1
	if !s.Tooltip.Visible {
		opacity = 0
	}
	fmt.Fprintf(&buf, `<div class="tooltip" style="left: %spx; opacity: %d;">%s</div>`+"\n",
		num(s.Tooltip.Left), opacity, s.Tooltip.HTML)
	buf.WriteString("</div>\n")

	if r.page {
		buf.WriteString("</body>\n</html>\n")
	}
	return buf.Bytes()
}

func stripXMLDecl(b []byte) []byte {
	if i := bytes.Index(b, []byte("<svg")); i > 0 {
		return b[i:]
	}
	return b
}
