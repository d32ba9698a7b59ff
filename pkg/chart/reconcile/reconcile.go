// Package reconcile binds an ordered list of keys to persistent elements.
//
// A [Join] is a three-way diff: keys present before and after are updated in
// place, new keys are entered, and keys that disappeared are exited. Exited
// elements are removed from the store immediately.
package reconcile

// Store holds elements by key in binding order. The zero value is empty and
// ready to use. Not safe for concurrent use.
type Store[E any] struct {
	order []string
	elems map[string]E
}

// Get returns the element bound to key.
func (s *Store[E]) Get(key string) (E, bool) {
	e, ok := s.elems[key]
	return e, ok
}

// Set replaces the element bound to an existing key. It reports false if the
// key is not bound.
func (s *Store[E]) Set(key string, e E) bool {
	if _, ok := s.elems[key]; !ok {
		return false
	}
	s.elems[key] = e
	return true
}

// Keys returns the bound keys in order.
func (s *Store[E]) Keys() []string { return append([]string(nil), s.order...) }

// Len is the number of bound elements.
func (s *Store[E]) Len() int { return len(s.order) }

// Each visits elements in order.
func (s *Store[E]) Each(fn func(i int, key string, e E)) {
	for i, k := range s.order {
		fn(i, k, s.elems[k])
	}
}

// Elements returns the elements in order.
func (s *Store[E]) Elements() []E {
	out := make([]E, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, s.elems[k])
	}
	return out
}

// Clear removes every element.
func (s *Store[E]) Clear() {
	s.order = nil
	s.elems = nil
}

// Diff records what a Join did, each list in dataset order except Exited,
// which keeps the previous binding order.
type Diff struct {
	Entered []string
	Updated []string
	Exited  []string
}

// Empty reports whether the join changed nothing.
func (d Diff) Empty() bool {
	return len(d.Entered) == 0 && len(d.Updated) == 0 && len(d.Exited) == 0
}

// Join rebinds s to keys. enter creates the element for a new key and update
// refreshes an existing one; both receive the key's index in keys. A nil
// update keeps existing elements unchanged. Duplicate keys bind once, at
// their first position.
//
// Entered elements are passed through update as well, so callers can put all
// geometry in update and only the identity in enter.
func Join[E any](s *Store[E], keys []string, enter func(i int, key string) E, update func(i int, key string, e E) E) Diff {
	var d Diff
	seen := make(map[string]bool, len(keys))
	next := make(map[string]E, len(keys))
	order := make([]string, 0, len(keys))

	for _, k := range keys {
		if seen[k] {
			continue
		}
		seen[k] = true
		i := len(order)
		e, ok := s.elems[k]
		if ok {
			d.Updated = append(d.Updated, k)
		} else {
			e = enter(i, k)
			d.Entered = append(d.Entered, k)
		}
		if update != nil {
			e = update(i, k, e)
		}
		next[k] = e
		order = append(order, k)
	}

	for _, k := range s.order {
		if !seen[k] {
			d.Exited = append(d.Exited, k)
		}
	}

	s.order = order
	s.elems = next
	return d
}
