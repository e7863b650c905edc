// Package sanitize holds the character-class rules applied at the
// boundary of every public operation. Each rule is a named function so
// its exact behavior is auditable per call site.
package sanitize

import "strings"

// Name strips every non-letter and lowercases the remainder. Used to
// normalize team names before hashing them into a token.
func Name(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		}
	}
	return b.String()
}

// Flag strips every character outside letters, digits, and {}_ from a
// submitted flag.
func Flag(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '{' || r == '}' || r == '_':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NameLength reports whether a team or member name length is within
// [min, max] after trimming surrounding whitespace.
func NameLength(s string, min, max int) bool {
	n := len(strings.TrimSpace(s))
	return n >= min && n <= max
}
