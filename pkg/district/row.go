package district

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
)

// Reserved JSON/CSV fields. Every other numeric field becomes a column.
const (
	FieldID    = "borocd"
	FieldLabel = "boro_district"
)

// Row is one district's statistics.
type Row struct {
	ID       string             // borocd, unique within a dataset
	Label    string             // display name, e.g. "Manhattan 1"
	Values   map[string]float64 // column -> value; absent columns are missing
	Selected bool               // set per render for the focused district
}

// Value returns the value of col and whether the row has it.
func (r Row) Value(col string) (float64, bool) {
	if col == "" {
		return 0, false
	}
	v, ok := r.Values[col]
	return v, ok
}

// ValueOr returns the value of col, or 0 if missing.
func (r Row) ValueOr(col string) float64 {
	v, _ := r.Value(col)
	return v
}

// Truthy reports whether col holds a present, finite, non-zero value.
// A row that fails this for the chart column means data is not ready yet.
func (r Row) Truthy(col string) bool {
	v, ok := r.Value(col)
	if !ok {
		return false
	}
	v, ok = Finite(v)
	return ok && v != 0
}

// DisplayName returns the label, falling back to the ID.
func (r Row) DisplayName() string {
	if r.Label != "" {
		return r.Label
	}
	return r.ID
}

// Clone returns a copy that does not share the Values map.
func (r Row) Clone() Row {
	c := r
	if r.Values != nil {
		c.Values = make(map[string]float64, len(r.Values))
		for k, v := range r.Values {
			c.Values[k] = v
		}
	}
	return c
}

// MarshalJSON flattens the row back to the source object shape.
func (r Row) MarshalJSON() ([]byte, error) {
	obj := make(map[string]any, len(r.Values)+3)
	for k, v := range r.Values {
		if _, ok := Finite(v); ok {
			obj[k] = v
		}
	}
	obj[FieldID] = r.ID
	if r.Label != "" {
		obj[FieldLabel] = r.Label
	}
	if r.Selected {
		obj["is_selected"] = true
	}
	return json.Marshal(obj)
}

// UnmarshalJSON accepts a flat object. borocd may be a string or number;
// numeric fields become columns; non-numeric fields are ignored.
func (r *Row) UnmarshalJSON(data []byte) error {
	var obj map[string]json.RawMessage
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&obj); err != nil {
		return err
	}

	idRaw, ok := obj[FieldID]
	if !ok {
		return fmt.Errorf("row missing %q", FieldID)
	}
	id, err := scalarString(idRaw)
	if err != nil {
		return fmt.Errorf("row %s: %w", FieldID, err)
	}

	*r = Row{ID: id, Values: make(map[string]float64, len(obj))}
	if raw, ok := obj[FieldLabel]; ok {
		r.Label, _ = scalarString(raw)
	}
	if raw, ok := obj["is_selected"]; ok {
		_ = json.Unmarshal(raw, &r.Selected)
	}

	for k, raw := range obj {
		if k == FieldID || k == FieldLabel || k == "is_selected" {
			continue
		}
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			continue
		}
		if f, err := n.Float64(); err == nil {
			r.Values[k] = f
		}
	}
	return nil
}

func scalarString(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), nil
	}
	return "", fmt.Errorf("expected string or number, got %s", raw)
}

// Dataset is an ordered sequence of rows.
type Dataset []Row

// Index returns the position of id, or -1.
func (d Dataset) Index(id string) int {
	for i, r := range d {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// Find returns the row with id.
func (d Dataset) Find(id string) (Row, bool) {
	if i := d.Index(id); i >= 0 {
		return d[i], true
	}
	return Row{}, false
}

// Selected returns the first row flagged Selected.
func (d Dataset) Selected() (Row, bool) {
	for _, r := range d {
		if r.Selected {
			return r, true
		}
	}
	return Row{}, false
}

// IDs returns the row identifiers in order.
func (d Dataset) IDs() []string {
	ids := make([]string, len(d))
	for i, r := range d {
		ids[i] = r.ID
	}
	return ids
}

// Columns returns the sorted union of column names.
func (d Dataset) Columns() []string {
	seen := make(map[string]struct{})
	for _, r := range d {
		for k := range r.Values {
			seen[k] = struct{}{}
		}
	}
	cols := make([]string, 0, len(seen))
	for k := range seen {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

// Clone deep-copies the dataset.
func (d Dataset) Clone() Dataset {
	if d == nil {
		return nil
	}
	out := make(Dataset, len(d))
	for i, r := range d {
		out[i] = r.Clone()
	}
	return out
}

// Validate checks that IDs are non-empty and unique.
func (d Dataset) Validate() error {
	seen := make(map[string]int, len(d))
	for i, r := range d {
		if r.ID == "" {
			return fmt.Errorf("row %d: empty %s", i, FieldID)
		}
		if j, dup := seen[r.ID]; dup {
			return fmt.Errorf("rows %d and %d share %s %q", j, i, FieldID, r.ID)
		}
		seen[r.ID] = i
	}
	return nil
}

// parseFloat parses a CSV cell; empty and non-finite cells are missing.
func parseFloat(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return Finite(f)
}

// Finite reports f and whether it is usable as a column value. NaN and
// infinities are treated as missing.
func Finite(f float64) (float64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
