package catalog

import (
	"errors"
	"fmt"
)

// Catalog parsing errors.
// They are returned when a fetched page does not carry the markup the
// parser expects, which usually means the KB is unknown to the catalog or
// the catalog layout changed.
var (
	// ErrRedirectNotFound is returned when the search page lists no product
	// anchor with a goToDetails handler.
	ErrRedirectNotFound = errors.New("no product detail link found on catalog search page")

	// ErrNoCumulativeUpdate is returned when the detail page lists no
	// cumulative update in its package details.
	ErrNoCumulativeUpdate = errors.New("no cumulative update found in catalog package details")

	// ErrMalformedEntry is returned when a package details entry names a
	// cumulative update but carries no KB number.
	ErrMalformedEntry = errors.New("cumulative update entry without KB number")
)

// StatusError is returned when the catalog answers with a status other
// than 200 OK.
type StatusError struct {
	// StatusCode is the HTTP status code received.
	StatusCode int

	// URL is the page that was requested.
	URL string
}

// Error implements error.
func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP Error: %d (URL: %s)", e.StatusCode, e.URL)
}

// MalformedEntryError describes a package details entry that names a
// cumulative update without a KB number. It matches ErrMalformedEntry
// with errors.Is.
type MalformedEntryError struct {
	// Text is the trimmed text of the entry.
	Text string
}

// Error implements error.
func (e *MalformedEntryError) Error() string {
	return fmt.Sprintf("%s: %q", ErrMalformedEntry, e.Text)
}

// Is reports whether target is ErrMalformedEntry.
func (e *MalformedEntryError) Is(target error) bool {
	return target == ErrMalformedEntry
}
