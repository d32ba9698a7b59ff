// Package district defines the row model shared by every chart and list:
// one community district's statistics keyed by its borough/district code
// (borocd), plus the asynchronous sources that produce them.
//
// A [Dataset] is immutable once loaded, except for [Row.Selected], which is
// annotated per render by comparing each row's ID to the focused district
// (see the indicator package).
//
// Sources are lazy: a [Future] wraps a [Source] and loads it once, the first
// time someone awaits it. A rejected load leaves the future in the
// [StateFailed] state with an error coded DATA_LOAD_FAILED, so callers can
// render a "data load failed" surface instead of waiting forever.
package district
