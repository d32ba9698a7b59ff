package numfmt

import (
	"math"
	"testing"

	"github.com/matzehuels/districtviz/pkg/errors"
)

func TestPattern(t *testing.T) {
	tests := []struct {
		pattern string
		in      float64
		want    string
	}{
		{"", 12.34, "12.3"},
		{"0.0", 12.34, "12.3"},
		{"0.0", 7, "7.0"},
		{"0", 12.7, "13"},
		{"0.00", 3.14159, "3.14"},
		{"0,0", 1234567, "1,234,567"},
		{"0,0.0", 1234.56, "1,234.6"},
		{"0,0", 999, "999"},
		{"0.0%", 0.256, "25.6%"},
		{"0%", 0.5, "50%"},
		{"+0.0", 2.5, "+2.5"},
		{"+0.0", -2.5, "-2.5"},
		{"0.0a", 1500, "1.5k"},
		{"0.0a", 2300000, "2.3m"},
		{"0.0a", 42, "42.0"},
		{"0.0 a", 4200000000, "4.2 b"},
		{"0a", -3000, "-3k"},
		{"0.0", -0.04, "0.0"},
		{"0.0", math.Copysign(0, -1), "0.0"},
		{"0", -0.4, "0"},
		{"0,0.0", -0.01, "0.0"},
		{"0.0%", -0.0004, "0.0%"},
		{"+0.0", -0.04, "+0.0"},
		{"0.0", -0.06, "-0.1"},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			f, err := Pattern(tt.pattern)
			if err != nil {
				t.Fatalf("Pattern(%q) error: %v", tt.pattern, err)
			}
			if got := f(tt.in); got != tt.want {
				t.Errorf("Pattern(%q)(%v) = %q, want %q", tt.pattern, tt.in, got, tt.want)
			}
		})
	}
}

func TestPatternInvalid(t *testing.T) {
	for _, p := range []string{"#.#", "00", "0.", "0.0x", "0.0a%", "0,00"} {
		t.Run(p, func(t *testing.T) {
			_, err := Pattern(p)
			if err == nil {
				t.Fatalf("Pattern(%q) succeeded", p)
			}
			if errors.GetCode(err) != errors.ErrCodeInvalidPattern {
				t.Errorf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidPattern)
			}
			if Validate(p) == nil {
				t.Errorf("Validate(%q) = nil", p)
			}
		})
	}
}

func TestMustPatternPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustPattern did not panic")
		}
	}()
	MustPattern("bogus")
}
