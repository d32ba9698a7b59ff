package scale

// Band partitions the range [r0, r1] into equal slots, one per key, with
// zero inner and outer padding. Duplicate keys keep their first position.
type Band struct {
	keys  []string
	index map[string]int
	r0    float64
	step  float64
}

// NewBand builds a band scale over keys in the given order.
func NewBand(keys []string, r0, r1 float64) Band {
	b := Band{index: make(map[string]int, len(keys)), r0: r0}
	for _, k := range keys {
		if _, dup := b.index[k]; dup {
			continue
		}
		b.index[k] = len(b.keys)
		b.keys = append(b.keys, k)
	}
	if n := len(b.keys); n > 0 {
		b.step = (r1 - r0) / float64(n)
	}
	return b
}

// At returns the start offset of key's slot.
func (b Band) At(key string) (float64, bool) {
	i, ok := b.index[key]
	if !ok {
		return 0, false
	}
	return b.r0 + float64(i)*b.step, true
}

// Bandwidth is the width of every slot.
func (b Band) Bandwidth() float64 { return b.step }

// Domain returns the keys in slot order.
func (b Band) Domain() []string { return append([]string(nil), b.keys...) }

// Len is the number of distinct keys.
func (b Band) Len() int { return len(b.keys) }
