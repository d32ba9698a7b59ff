package sink

import (
	"bytes"
	"fmt"
	"math"
	"strconv"

	svg "github.com/ajstarks/svgo"
	"golang.org/x/net/html"

	"github.com/matzehuels/districtviz/pkg/chart"
)

const barInteractionCSS = `
    .bar { transition: fill %dms; }
    .mask { cursor: pointer; }`

const barInteractionJS = `
    (function() {
      var root = document.currentScript ? document.currentScript.closest('svg') : document.querySelector('svg.chart');
      if (!root) return;
      var wrap = root.closest('.ranking-chart');
      var tip = wrap ? wrap.querySelector('.tooltip') : null;
      var rest = tip ? { html: tip.innerHTML, left: tip.style.left } : null;
      function bar(key) { return root.querySelector('.bars .bar-' + key); }
      function curr(key) { return root.querySelector('.curr .bar-curr-' + key); }
      root.querySelectorAll('.mask').forEach(function(m) {
        var key = m.getAttribute('data-key');
        m.addEventListener('mouseenter', function() {
          var b = bar(key), c = curr(key);
          if (b) b.setAttribute('fill', %q);
          if (c) c.setAttribute('opacity', 0);
          if (tip) { tip.innerHTML = m.getAttribute('data-tooltip'); tip.style.left = m.getAttribute('data-left') + 'px'; }
        });
        m.addEventListener('mouseleave', function() {
          var b = bar(key), c = curr(key);
          if (b) b.setAttribute('fill', b.getAttribute('data-rest'));
          if (c) c.setAttribute('opacity', 1);
        });
      });
      root.addEventListener('mouseleave', function() {
        if (tip && rest) { tip.innerHTML = rest.html; tip.style.left = rest.left; }
      });
    })();`

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	static bool
	title  string
}

// WithStatic omits the hover stylesheet and script.
func WithStatic() SVGOption { return func(r *svgRenderer) { r.static = true } }

// WithTitle adds an accessible <title>.
func WithTitle(t string) SVGOption { return func(r *svgRenderer) { r.title = t } }

// RenderSVG draws the scene. Element classes and group names match the
// scene layers so the inline script can find bars by district key.
func RenderSVG(s chart.Scene, opts ...SVGOption) []byte {
	r := svgRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Start(int(math.Ceil(s.Width)), int(math.Ceil(s.Height)), `class="chart"`)
	if r.title != "" {
		canvas.Title(r.title)
	}
	if !r.static {
		canvas.Style("text/css", fmt.Sprintf(barInteractionCSS, s.HoverTransition.Milliseconds()))
	}

	canvas.Gtransform(fmt.Sprintf("translate(%s,%s)", num(s.Margin.Left), num(s.Margin.Top)))
	for _, l := range chart.Layers {
		canvas.Group(fmt.Sprintf(`class="%s"`, l))
		for _, e := range s.Layer(l) {
			writeRect(&buf, l, e)
		}
		canvas.Gend()
	}
	canvas.Gend()

	if !r.static {
		canvas.Script("application/javascript", fmt.Sprintf(barInteractionJS, s.Palette.Accent))
	}
	canvas.End()
	return buf.Bytes()
}

func writeRect(buf *bytes.Buffer, l chart.Layer, e chart.Rect) {
	fmt.Fprintf(buf, `<rect class="%s" x="%s" y="%s" width="%s" height="%s"`,
		html.EscapeString(e.Class), num(e.X), num(e.Y), num(e.Width), num(e.Height))
	if e.Fill != "" {
		fmt.Fprintf(buf, ` fill="%s"`, html.EscapeString(e.Fill))
	}
	fmt.Fprintf(buf, ` opacity="%s"`, num(e.Opacity))
	if e.Passive {
		buf.WriteString(` style="pointer-events: none;"`)
	}
	switch l {
	case chart.LayerBars:
		fmt.Fprintf(buf, ` data-key="%s" data-rest="%s"`, html.EscapeString(e.Key), html.EscapeString(e.RestFill))
	case chart.LayerMasks:
		fmt.Fprintf(buf, ` data-key="%s" data-tooltip="%s" data-left="%s"`,
			html.EscapeString(e.Key), html.EscapeString(e.Tooltip), num(e.TooltipLeft))
	}
	buf.WriteString("/>\n")
}

func num(f float64) string {
	return strconv.FormatFloat(math.Round(f*100)/100, 'f', -1, 64)
}
