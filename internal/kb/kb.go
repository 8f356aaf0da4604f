package kb

import (
	"errors"
	"regexp"
)

// Prefix is the marker that precedes the seven digit update number.
const Prefix = "KB"

// NumberLength is the number of digits in a KB number.
const NumberLength = 7

// ErrInvalidFormat is returned when a string carries no KB identifier.
var ErrInvalidFormat = errors.New("must be in format KB#######")

// pattern matches a KB marker anywhere on the first line of a string.
// The greedy prefix means the last marker on that line wins, and "."
// never crosses a newline.
var pattern = regexp.MustCompile(`^.*` + Prefix + `(\d{7})`)

// MatchesFormat reports whether s contains a KB identifier.
func MatchesFormat(s string) bool {
	return pattern.MatchString(s)
}

// ExtractNumber returns the seven digit number of the KB identifier in s.
// The second return value is false when s carries no identifier.
func ExtractNumber(s string) (string, bool) {
	m := pattern.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Validate returns s unchanged when it contains a KB identifier and
// ErrInvalidFormat otherwise.
func Validate(s string) (string, error) {
	if !MatchesFormat(s) {
		return "", ErrInvalidFormat
	}
	return s, nil
}

// Format restores the KB prefix on a bare update number.
func Format(number string) string {
	return Prefix + number
}
