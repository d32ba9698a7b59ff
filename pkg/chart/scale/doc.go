// Package scale computes the two mappings the ranking chart lays bars out
// with: a [Band] scale from district identifier to horizontal offset, and a
// [Linear] scale from metric value to vertical pixel length.
//
// Scales are immutable and rebuilt from scratch for every render by [Compute].
// A width change means a new [Layout], never a rescale of an existing one.
package scale
