// Package mongo persists district statistics and address lookups in MongoDB.
//
// Districts are stored one document per district, keyed by borocd:
//
//	{"borocd": "101", "boro_district": "Manhattan 1", "poverty_rate": 0.12, ...}
//
// Every numeric field other than the reserved ones becomes a dataset column.
// Addresses are stored as {"id", "name", "borocd"} and matched with a
// case-insensitive regular expression per search word.
package mongo
