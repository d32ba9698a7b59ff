package errors

import (
	"math"
	"regexp"
	"strings"
	"unicode"
)

// columnRegex matches column names as they appear in district datasets
// (e.g. "poverty_rate", "lep_rate_moe", "pct_served_parks").
var columnRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidateColumn validates a dataset column name.
func ValidateColumn(name string) error {
	if name == "" {
		return New(ErrCodeInvalidColumn, "column name cannot be empty")
	}
	if len(name) > 128 {
		return New(ErrCodeInvalidColumn, "column name too long (max 128 characters)")
	}
	if !columnRegex.MatchString(name) {
		return New(ErrCodeInvalidColumn, "invalid column name: %q", name)
	}
	return nil
}

// ValidateOptionalColumn is ValidateColumn but accepts the empty string.
func ValidateOptionalColumn(name string) error {
	if name == "" {
		return nil
	}
	return ValidateColumn(name)
}

// ValidateIdentifier validates a district identifier (borocd).
// Identifiers are short tokens used in CSS class names, so whitespace,
// quotes and control characters are rejected.
func ValidateIdentifier(id string) error {
	if id == "" {
		return New(ErrCodeInvalidIdentifier, "identifier cannot be empty")
	}
	if len(id) > 64 {
		return New(ErrCodeInvalidIdentifier, "identifier too long (max 64 characters)")
	}
	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidIdentifier, "identifier contains invalid characters")
		}
	}
	if strings.ContainsAny(id, `"'<>&.#`) {
		return New(ErrCodeInvalidIdentifier, "identifier contains invalid characters: %q", id)
	}
	return nil
}

// ValidateDimension checks that a size value is finite and within
// [lo, hi]. NaN fails every comparison, so it is rejected explicitly.
func ValidateDimension(name string, v, lo, hi float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidInput, "%s must be a finite number", name)
	}
	if v < lo || v > hi {
		return New(ErrCodeInvalidInput, "%s must be between %g and %g, got %g", name, lo, hi, v)
	}
	return nil
}

// ValidateSearchTerms validates free-text search input.
func ValidateSearchTerms(terms string) error {
	if len(terms) > 256 {
		return New(ErrCodeInvalidInput, "search terms too long (max 256 characters)")
	}
	for _, r := range terms {
		if r == '\x00' || (unicode.IsControl(r) && r != '\t') {
			return New(ErrCodeInvalidInput, "search terms contain invalid characters")
		}
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}
	return nil
}
