package scale

import (
	"math"
	"testing"

	"pgregory.net/rapid"

	"github.com/matzehuels/districtviz/pkg/district"
)

func row(id string, vals map[string]float64) district.Row {
	return district.Row{ID: id, Values: vals}
}

func TestBand(t *testing.T) {
	b := NewBand([]string{"101", "102", "103", "102"}, 0, 300)

	if b.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", b.Len())
	}
	if b.Bandwidth() != 100 {
		t.Errorf("Bandwidth() = %v, want 100", b.Bandwidth())
	}
	tests := []struct {
		key  string
		want float64
		ok   bool
	}{
		{"101", 0, true},
		{"102", 100, true},
		{"103", 200, true},
		{"999", 0, false},
	}
	for _, tt := range tests {
		got, ok := b.At(tt.key)
		if got != tt.want || ok != tt.ok {
			t.Errorf("At(%q) = %v, %v; want %v, %v", tt.key, got, ok, tt.want, tt.ok)
		}
	}
}

func TestBandEmpty(t *testing.T) {
	b := NewBand(nil, 0, 100)
	if b.Bandwidth() != 0 || b.Len() != 0 {
		t.Errorf("empty band = %v/%d", b.Bandwidth(), b.Len())
	}
}

func TestLinear(t *testing.T) {
	tests := []struct {
		name string
		l    Linear
		in   float64
		want float64
	}{
		{"identity", NewLinear(0, 10, 0, 10), 5, 5},
		{"scaled", NewLinear(0, 25, 0, 50), 20, 40},
		{"extrapolate", NewLinear(0, 10, 0, 100), 15, 150},
		{"degenerate", NewLinear(3, 3, 7, 50), 99, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.l.At(tt.in); got != tt.want {
				t.Errorf("At(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestLinearInvert(t *testing.T) {
	l := NewLinear(0, 25, 0, 50)
	if got := l.Invert(40); got != 20 {
		t.Errorf("Invert(40) = %v, want 20", got)
	}
}

func TestComputeSkipsUnready(t *testing.T) {
	tests := []struct {
		name string
		ds   district.Dataset
	}{
		{"empty", nil},
		{"missing column", district.Dataset{row("101", map[string]float64{"other": 1})}},
		{"zero first row", district.Dataset{row("101", map[string]float64{"v": 0}), row("102", map[string]float64{"v": 4})}},
		{"nan first row", district.Dataset{row("101", map[string]float64{"v": math.NaN()})}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := Compute(300, 50, Margin{}, tt.ds, Columns{Value: "v"}); ok {
				t.Error("Compute() ok = true, want false")
			}
		})
	}
}

func TestComputeDomain(t *testing.T) {
	ds := district.Dataset{
		row("101", map[string]float64{"v": 20, "moe": 5, "over": 100}),
		row("102", map[string]float64{"v": 10, "moe": 2}),
	}

	l, ok := Compute(200, 60, Margin{Top: 5, Bottom: 5, Left: 10, Right: 10}, ds, Columns{Value: "v", MoE: "moe", Overlay: "over"})
	if !ok {
		t.Fatal("Compute() ok = false")
	}
	if l.Width != 180 || l.Height != 50 {
		t.Errorf("drawable = %vx%v, want 180x50", l.Width, l.Height)
	}
	if l.Max != 25 {
		t.Errorf("Max = %v, want 25 (value + moe, overlay ignored)", l.Max)
	}
	if l.X.Bandwidth() != 90 {
		t.Errorf("Bandwidth = %v, want 90", l.X.Bandwidth())
	}

	// Without a moe column the domain is just the max value.
	l, _ = Compute(200, 60, Margin{}, ds, Columns{Value: "v"})
	if l.Max != 20 {
		t.Errorf("Max without moe = %v, want 20", l.Max)
	}
}

// Two pixels per unit: value 20 with moe 5 gives a 20px band whose top sits
// at height - (y(20) + y(5)).
func TestComputeMoEGeometry(t *testing.T) {
	ds := district.Dataset{row("101", map[string]float64{"v": 20, "moe": 5})}
	l, ok := Compute(100, 50, Margin{}, ds, Columns{Value: "v", MoE: "moe"})
	if !ok {
		t.Fatal("Compute() ok = false")
	}
	if got := l.Y.At(1); got != 2 {
		t.Fatalf("y(1) = %v, want 2", got)
	}
	if h := l.Y.At(5) * 2; h != 20 {
		t.Errorf("band height = %v, want 20", h)
	}
	if top := l.Height - (l.Y.At(20) + l.Y.At(5)); top != 0 {
		t.Errorf("band top = %v, want 0", top)
	}
}

func TestBandProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		keys := rapid.SliceOfNDistinct(rapid.StringMatching(`[0-9]{3}`), 1, 60, rapid.ID[string]).Draw(t, "keys")
		width := rapid.Float64Range(1, 4000).Draw(t, "width")
		b := NewBand(keys, 0, width)

		want := width / float64(len(keys))
		if math.Abs(b.Bandwidth()-want) > 1e-9 {
			t.Fatalf("Bandwidth = %v, want %v", b.Bandwidth(), want)
		}
		for i, k := range keys {
			x, ok := b.At(k)
			if !ok {
				t.Fatalf("key %q missing", k)
			}
			if math.Abs(x-float64(i)*want) > 1e-6 {
				t.Fatalf("At(%q) = %v, want %v", k, x, float64(i)*want)
			}
		}
	})
}
