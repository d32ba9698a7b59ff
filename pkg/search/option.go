package search

import "github.com/matzehuels/districtviz/pkg/district"

// Kind distinguishes option record types.
type Kind string

const (
	KindDistrict Kind = "district"
	KindAddress  Kind = "address"
)

// Option is one entry in the navigation list.
type Option struct {
	Kind   Kind   `json:"kind" bson:"kind"`
	ID     string `json:"id" bson:"id"`
	Name   string `json:"name" bson:"name"`
	Borocd string `json:"borocd,omitempty" bson:"borocd,omitempty"` // district containing an address
}

// DistrictOptions lists a dataset's districts as options, in dataset order.
func DistrictOptions(ds district.Dataset) []Option {
	out := make([]Option, 0, len(ds))
	for _, r := range ds {
		out = append(out, Option{Kind: KindDistrict, ID: r.ID, Name: r.DisplayName(), Borocd: r.ID})
	}
	return out
}

// Combine returns districts followed by addresses in a new slice.
func Combine(districts, addresses []Option) []Option {
	out := make([]Option, 0, len(districts)+len(addresses))
	out = append(out, districts...)
	return append(out, addresses...)
}
