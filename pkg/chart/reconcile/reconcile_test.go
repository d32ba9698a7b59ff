package reconcile

import (
	"reflect"
	"slices"
	"testing"

	"pgregory.net/rapid"
)

type elem struct {
	key     string
	index   int
	created int
	updates int
}

type harness struct {
	store Store[elem]
	gen   int
}

func (h *harness) join(keys ...string) Diff {
	h.gen++
	gen := h.gen
	return Join(&h.store, keys,
		func(i int, k string) elem { return elem{key: k, created: gen} },
		func(i int, k string, e elem) elem {
			e.index = i
			e.updates++
			return e
		})
}

func TestJoinEnterUpdateExit(t *testing.T) {
	var h harness

	d := h.join("a", "b", "c")
	if !reflect.DeepEqual(d.Entered, []string{"a", "b", "c"}) || len(d.Updated) != 0 || len(d.Exited) != 0 {
		t.Fatalf("first join diff = %+v", d)
	}

	d = h.join("c", "a", "d")
	want := Diff{Entered: []string{"d"}, Updated: []string{"c", "a"}, Exited: []string{"b"}}
	if !reflect.DeepEqual(d, want) {
		t.Fatalf("second join diff = %+v, want %+v", d, want)
	}

	if got := h.store.Keys(); !reflect.DeepEqual(got, []string{"c", "a", "d"}) {
		t.Errorf("Keys() = %v, want dataset order", got)
	}
	if _, ok := h.store.Get("b"); ok {
		t.Error("exited element still bound")
	}

	a, _ := h.store.Get("a")
	if a.created != 1 || a.updates != 2 || a.index != 1 {
		t.Errorf("a = %+v, want created in join 1, updated twice, index 1", a)
	}
	d2, _ := h.store.Get("d")
	if d2.created != 2 || d2.updates != 1 {
		t.Errorf("d = %+v, want entered and updated once in join 2", d2)
	}
}

func TestJoinDuplicatesAndEmpty(t *testing.T) {
	var h harness
	h.join("a", "a", "b")
	if h.store.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", h.store.Len())
	}
	d := h.join()
	if !reflect.DeepEqual(d.Exited, []string{"a", "b"}) || h.store.Len() != 0 {
		t.Errorf("empty join: diff %+v, len %d", d, h.store.Len())
	}
	if !h.join().Empty() {
		t.Error("empty-to-empty join should be Empty")
	}
}

func TestJoinNilUpdate(t *testing.T) {
	var s Store[int]
	n := 0
	enter := func(int, string) int { n++; return n }
	Join(&s, []string{"x"}, enter, nil)
	Join(&s, []string{"x", "y"}, enter, nil)
	if x, _ := s.Get("x"); x != 1 {
		t.Errorf("x = %d, want 1 (kept)", x)
	}
	if y, _ := s.Get("y"); y != 2 {
		t.Errorf("y = %d, want 2", y)
	}
}

func TestStoreSet(t *testing.T) {
	var s Store[int]
	Join(&s, []string{"x"}, func(int, string) int { return 1 }, nil)
	if !s.Set("x", 5) {
		t.Fatal("Set on bound key returned false")
	}
	if s.Set("nope", 1) {
		t.Error("Set on unbound key returned true")
	}
	if got := s.Elements(); !reflect.DeepEqual(got, []int{5}) {
		t.Errorf("Elements() = %v", got)
	}
}

func TestJoinProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var h harness
		prev := map[string]bool{}
		for step := 0; step < 5; step++ {
			keys := rapid.SliceOfDistinct(rapid.SampledFrom([]string{"a", "b", "c", "d", "e", "f", "g"}), rapid.ID[string]).Draw(t, "keys")
			d := h.join(keys...)

			if !slices.Equal(h.store.Keys(), keys) {
				t.Fatalf("store order %v != keys %v", h.store.Keys(), keys)
			}
			cur := map[string]bool{}
			for _, k := range keys {
				cur[k] = true
			}
			if len(d.Entered)+len(d.Updated) != len(keys) {
				t.Fatalf("entered+updated = %d, want %d", len(d.Entered)+len(d.Updated), len(keys))
			}
			for _, k := range d.Entered {
				if prev[k] {
					t.Fatalf("%q entered but was already bound", k)
				}
			}
			for _, k := range d.Updated {
				if !prev[k] {
					t.Fatalf("%q updated but was not bound", k)
				}
			}
			for _, k := range d.Exited {
				if cur[k] || !prev[k] {
					t.Fatalf("%q exited incorrectly", k)
				}
			}
			prev = cur
		}
	})
}
