package district

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// DecodeJSON reads a dataset from a JSON array of row objects, or from an
// object with a "rows" array.
func DecodeJSON(r io.Reader) (Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)

	var ds Dataset
	if len(data) > 0 && data[0] == '{' {
		var wrapped struct {
			Rows Dataset `json:"rows"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return nil, fmt.Errorf("decode rows: %w", err)
		}
		ds = wrapped.Rows
	} else if err := json.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("decode rows: %w", err)
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return ds, nil
}

// DecodeCSV reads a dataset from CSV with a header row. The header must
// contain borocd; boro_district is optional; every other column is parsed
// as a float and empty cells are treated as missing.
func DecodeCSV(r io.Reader) (Dataset, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	idCol, labelCol := -1, -1
	for i, h := range header {
		header[i] = strings.TrimSpace(h)
		switch header[i] {
		case FieldID:
			idCol = i
		case FieldLabel:
			labelCol = i
		}
	}
	if idCol < 0 {
		return nil, fmt.Errorf("csv header missing %q", FieldID)
	}

	var ds Dataset
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}
		row := Row{ID: strings.TrimSpace(rec[idCol]), Values: make(map[string]float64, len(rec))}
		if labelCol >= 0 {
			row.Label = strings.TrimSpace(rec[labelCol])
		}
		for i, cell := range rec {
			if i == idCol || i == labelCol {
				continue
			}
			if v, ok := parseFloat(strings.TrimSpace(cell)); ok {
				row.Values[header[i]] = v
			}
		}
		ds = append(ds, row)
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return ds, nil
}

// EncodeJSON writes ds as an indented JSON array.
func EncodeJSON(w io.Writer, ds Dataset) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if ds == nil {
		ds = Dataset{}
	}
	return enc.Encode(ds)
}
