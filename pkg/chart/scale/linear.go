package scale

// Linear maps [d0, d1] onto [r0, r1] by linear interpolation. Values outside
// the domain extrapolate. A degenerate domain maps everything to r0.
type Linear struct {
	d0, d1 float64
	r0, r1 float64
}

func NewLinear(d0, d1, r0, r1 float64) Linear {
	return Linear{d0: d0, d1: d1, r0: r0, r1: r1}
}

// At maps v into the range.
func (l Linear) At(v float64) float64 {
	if l.d1 == l.d0 {
		return l.r0
	}
	return l.r0 + (v-l.d0)*(l.r1-l.r0)/(l.d1-l.d0)
}

// Invert maps a range value back into the domain.
func (l Linear) Invert(px float64) float64 {
	if l.r1 == l.r0 {
		return l.d0
	}
	return l.d0 + (px-l.r0)*(l.d1-l.d0)/(l.r1-l.r0)
}

func (l Linear) Domain() (float64, float64) { return l.d0, l.d1 }
func (l Linear) Range() (float64, float64)  { return l.r0, l.r1 }
