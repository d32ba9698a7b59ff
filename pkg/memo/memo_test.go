package memo

import (
	"errors"
	"testing"
)

func TestCellRecomputesOnlyOnChange(t *testing.T) {
	var c Cell[string]
	compute := func(s string) func() (string, error) {
		return func() (string, error) { return s + "!", nil }
	}

	v, _ := c.Get(compute("a"), "a", 1)
	if v != "a!" {
		t.Fatalf("Get = %q", v)
	}
	v, _ = c.Get(compute("ignored"), "a", 1)
	if v != "a!" {
		t.Errorf("unchanged deps should return memoized value, got %q", v)
	}
	if c.Runs() != 1 {
		t.Errorf("Runs = %d, want 1", c.Runs())
	}

	v, _ = c.Get(compute("b"), "a", 2)
	if v != "b!" || c.Runs() != 2 {
		t.Errorf("changed deps: v=%q runs=%d", v, c.Runs())
	}
}

func TestCellDoesNotCacheErrors(t *testing.T) {
	var c Cell[int]
	boom := errors.New("boom")
	if _, err := c.Get(func() (int, error) { return 0, boom }, "x"); err != boom {
		t.Fatalf("err = %v", err)
	}
	v, err := c.Get(func() (int, error) { return 7, nil }, "x")
	if err != nil || v != 7 {
		t.Errorf("retry after error = %d, %v", v, err)
	}
}

func TestCellInvalidate(t *testing.T) {
	var c Cell[int]
	n := 0
	fn := func() (int, error) { n++; return n, nil }
	c.Get(fn, "k")
	c.Invalidate()
	if v, _ := c.Get(fn, "k"); v != 2 {
		t.Errorf("after Invalidate = %d, want 2", v)
	}
}

func TestCellUnencodableDeps(t *testing.T) {
	var c Cell[int]
	if _, err := c.Get(func() (int, error) { return 1, nil }, make(chan int)); err == nil {
		t.Error("unencodable deps should fail")
	}
}
