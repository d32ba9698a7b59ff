// Package search implements the district navigation search: a fixed list
// of districts merged with addresses looked up from a remote source as the
// user types.
//
// [Navigator] debounces keystrokes with a restartable 200ms window, runs at
// most one address query per settled input, cancels the in-flight query when
// a new keystroke arrives, and discards any response that a newer search has
// superseded. The combined option list is always the districts first,
// followed by the matched addresses.
//
// [Matcher] decides which options stay visible for the typed text: address
// options always match because the remote source already filtered them, and
// district options use a case- and diacritic-insensitive substring match.
package search
