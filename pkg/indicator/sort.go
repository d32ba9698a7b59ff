// Package indicator ranks districts by a single column, the way the key
// indicator list and the ranking chart present them: highest value first,
// with the focused district flagged.
package indicator

import (
	"context"
	"sort"

	"github.com/matzehuels/districtviz/pkg/district"
)

// Sort returns a copy of ds ordered by column descending and annotates
// Selected by comparing each ID with selectedID. Ties keep their original
// relative order. Rows missing column, or holding a non-finite value, sort
// as 0.
func Sort(ds district.Dataset, column, selectedID string) district.Dataset {
	out := ds.Clone()
	sort.SliceStable(out, func(i, j int) bool {
		return sortKey(out[i], column) > sortKey(out[j], column)
	})
	Annotate(out, selectedID)
	return out
}

func sortKey(r district.Row, column string) float64 {
	v, _ := district.Finite(r.ValueOr(column))
	return v
}

// Annotate sets Selected in place. At most one row is selected because IDs
// are unique within a dataset.
func Annotate(ds district.Dataset, selectedID string) {
	for i := range ds {
		ds[i].Selected = selectedID != "" && ds[i].ID == selectedID
	}
}

// SortFuture waits for f to resolve, then sorts.
func SortFuture(ctx context.Context, f *district.Future, column, selectedID string) (district.Dataset, error) {
	ds, err := f.Await(ctx)
	if err != nil {
		return nil, err
	}
	return Sort(ds, column, selectedID), nil
}

// Rank returns the 1-based position of id in a sorted dataset.
func Rank(sorted district.Dataset, id string) (int, bool) {
	i := sorted.Index(id)
	if i < 0 {
		return 0, false
	}
	return i + 1, true
}
