// Package memo provides dependency-tracked memoization: a value is
// recomputed only when one of its declared inputs changes.
//
//	var sorted memo.Cell[district.Dataset]
//	ds, err := sorted.Get(func() (district.Dataset, error) {
//	    return indicator.Sort(rows, column, borocd), nil
//	}, rowsHash, column, borocd)
//
// Inputs are compared by the hash of their JSON encoding, so they should be
// plain values (strings, numbers, structs of those) or content hashes.
package memo

import (
	"sync"

	"github.com/matzehuels/districtviz/pkg/cache"
)

// Cell memoizes one value. The zero value is ready to use and safe for
// concurrent use.
type Cell[T any] struct {
	mu    sync.Mutex
	key   string
	valid bool
	value T
	runs  int
}

// Get returns the cached value when deps hash to the same key as the last
// successful computation; otherwise it calls fn. Errors are returned and
// not cached.
func (c *Cell[T]) Get(fn func() (T, error), deps ...any) (T, error) {
	key, err := cache.HashJSON(deps)
	if err != nil {
		var zero T
		return zero, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.valid && c.key == key {
		return c.value, nil
	}

	c.runs++
	v, err := fn()
	if err != nil {
		var zero T
		return zero, err
	}
	c.key, c.value, c.valid = key, v, true
	return v, nil
}

// Invalidate forces the next Get to recompute.
func (c *Cell[T]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.valid = false
}

// Runs reports how many times the compute function has been called.
func (c *Cell[T]) Runs() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.runs
}
