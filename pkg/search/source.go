package search

import (
	"context"
	"strings"
)

// AddressSource looks up addresses matching free-text terms.
type AddressSource interface {
	Query(ctx context.Context, terms string) ([]Option, error)
}

// AddressSourceFunc adapts a function to AddressSource.
type AddressSourceFunc func(ctx context.Context, terms string) ([]Option, error)

func (f AddressSourceFunc) Query(ctx context.Context, terms string) ([]Option, error) {
	return f(ctx, terms)
}

// StaticAddressSource answers queries from a fixed list, matching each
// whitespace-separated term against the address name.
type StaticAddressSource []Option

func (s StaticAddressSource) Query(ctx context.Context, terms string) ([]Option, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	words := strings.Fields(terms)
	var out []Option
	for _, o := range s {
		if matchesAll(o.Name, words) {
			o.Kind = KindAddress
			out = append(out, o)
		}
	}
	return out, nil
}

func matchesAll(name string, words []string) bool {
	for _, w := range words {
		if !DefaultMatcher(name, w) {
			return false
		}
	}
	return true
}
