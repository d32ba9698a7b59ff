// Package numfmt formats chart values from numeral-style patterns such as
// "0.0", "0,0" or "0.0%".
//
// Supported pattern elements:
//
//	0        integer digits
//	.00      fixed number of fraction digits
//	,        thousands grouping (0,0 / 0,0.0)
//	%        multiply by 100 and append a percent sign
//	+        always show the sign
//	a        abbreviate with k, m, b, t (optionally preceded by a space)
package numfmt

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/matzehuels/districtviz/pkg/errors"
)

// Default is the pattern used when none is configured.
const Default = "0.0"

// Formatter turns a value into display text.
type Formatter func(float64) string

type layout struct {
	decimals int
	group    bool
	percent  bool
	sign     bool
	abbr     bool
	abbrSep  string
}

var abbreviations = []struct {
	limit  float64
	suffix string
}{
	{1e12, "t"},
	{1e9, "b"},
	{1e6, "m"},
	{1e3, "k"},
}

// Pattern compiles p into a Formatter. An empty pattern means Default.
func Pattern(p string) (Formatter, error) {
	if p == "" {
		p = Default
	}
	s, err := parse(p)
	if err != nil {
		return nil, err
	}
	printer := message.NewPrinter(language.English)
	return func(v float64) string { return s.format(printer, v) }, nil
}

// MustPattern is Pattern for compile-time constants.
func MustPattern(p string) Formatter {
	f, err := Pattern(p)
	if err != nil {
		panic(err)
	}
	return f
}

// Validate reports whether p is a supported pattern.
func Validate(p string) error {
	if p == "" {
		return nil
	}
	_, err := parse(p)
	return err
}

func parse(p string) (layout, error) {
	var s layout
	rest := p

	if strings.HasPrefix(rest, "+") {
		s.sign = true
		rest = rest[1:]
	}
	if strings.HasSuffix(rest, "%") {
		s.percent = true
		rest = strings.TrimSuffix(rest, "%")
	}
	if strings.HasSuffix(rest, "a") {
		s.abbr = true
		rest = strings.TrimSuffix(rest, "a")
		if strings.HasSuffix(rest, " ") {
			s.abbrSep = " "
			rest = strings.TrimSuffix(rest, " ")
		}
	}
	if s.percent && s.abbr {
		return layout{}, invalid(p, "cannot combine % and a")
	}

	intPart, frac, hasFrac := strings.Cut(rest, ".")
	switch intPart {
	case "0":
	case "0,0":
		s.group = true
	default:
		return layout{}, invalid(p, "integer part must be 0 or 0,0")
	}
	if hasFrac {
		if frac == "" || strings.Trim(frac, "0") != "" {
			return layout{}, invalid(p, "fraction part must be zeros")
		}
		s.decimals = len(frac)
	}
	return s, nil
}

func invalid(p, reason string) error {
	return errors.New(errors.ErrCodeInvalidPattern, "numeral format %q: %s", p, reason)
}

func (s layout) format(p *message.Printer, v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}

	suffix := ""
	if s.percent {
		v *= 100
		suffix = "%"
	}
	if s.abbr {
		abs := math.Abs(v)
		for _, a := range abbreviations {
			if abs >= a.limit {
				v /= a.limit
				suffix = s.abbrSep + a.suffix
				break
			}
		}
	}

	// Values that round to zero print unsigned, never as "-0.0".
	if math.Round(v*math.Pow10(s.decimals)) == 0 {
		v = 0
	}

	var body string
	if s.group {
		body = p.Sprint(number.Decimal(v,
			number.MinFractionDigits(s.decimals),
			number.MaxFractionDigits(s.decimals)))
	} else {
		body = strconv.FormatFloat(v, 'f', s.decimals, 64)
	}

	if s.sign && !strings.HasPrefix(body, "-") {
		body = "+" + body
	}
	return body + suffix
}
