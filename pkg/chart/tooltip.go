package chart

import (
	"fmt"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/net/html"

	"github.com/matzehuels/districtviz/pkg/chart/numfmt"
	"github.com/matzehuels/districtviz/pkg/district"
)

// TooltipData is what a tooltip template sees.
type TooltipData struct {
	// Row is the district to describe: the hovered one, or the selected one
	// when nothing is hovered.
	Row district.Row
	// Selected is the focused district, nil if none is in the dataset.
	Selected *district.Row

	Column    string
	MoEColumn string
	Unit      string
	Format    numfmt.Formatter
}

// TooltipFunc renders tooltip markup.
type TooltipFunc func(TooltipData) string

// DefaultTooltip renders "Label: <strong>12.3%</strong>" followed by a
// margin-of-error span when a MoE column is configured.
func DefaultTooltip(d TooltipData) string {
	unit := html.EscapeString(d.Unit)
	var b strings.Builder
	fmt.Fprintf(&b, "%s: <strong>%s%s</strong>",
		html.EscapeString(d.Row.DisplayName()), d.Format(d.Row.ValueOr(d.Column)), unit)
	if d.MoEColumn != "" {
		fmt.Fprintf(&b, "<span class='moe-text'>(± %s%s)</span>", d.Format(d.Row.ValueOr(d.MoEColumn)), unit)
	}
	return b.String()
}

// Measurer reports the rendered pixel width of tooltip markup.
type Measurer interface {
	Measure(markup string) float64
}

// MeasurerFunc adapts a function to Measurer.
type MeasurerFunc func(string) float64

func (f MeasurerFunc) Measure(markup string) float64 { return f(markup) }

// FaceMeasurer measures the text content of markup in a font face, plus a
// fixed horizontal padding.
type FaceMeasurer struct {
	Face    font.Face
	Padding float64
}

// DefaultMeasurer approximates the tooltip's CSS box with the 7x13 bitmap
// face and 6px padding either side.
func DefaultMeasurer() FaceMeasurer {
	return FaceMeasurer{Face: basicfont.Face7x13, Padding: 12}
}

func (m FaceMeasurer) Measure(markup string) float64 {
	text := PlainText(markup)
	if text == "" {
		return 0
	}
	adv := font.MeasureString(m.Face, text)
	return float64(adv)/64 + m.Padding
}

// PlainText strips tags from markup and unescapes entities.
func PlainText(markup string) string {
	z := html.NewTokenizer(strings.NewReader(markup))
	var b strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			return b.String()
		case html.TextToken:
			b.Write(z.Text())
		}
	}
}
