package search

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Matcher reports whether o should be shown for term. Addresses always match.
func Matcher(o Option, term string) bool {
	if o.Kind == KindAddress {
		return true
	}
	return DefaultMatcher(o.Name, term)
}

// DefaultMatcher is a substring match ignoring case and diacritics, so
// "bronx" matches "The Bronx" and "pena" matches "Peña". An empty term
// matches everything.
func DefaultMatcher(value, term string) bool {
	return strings.Contains(fold(value), fold(term))
}

// Filter keeps the options Matcher accepts, preserving order.
func Filter(opts []Option, term string) []Option {
	out := make([]Option, 0, len(opts))
	for _, o := range opts {
		if Matcher(o, term) {
			out = append(out, o)
		}
	}
	return out
}

func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToUpper(out)
}
