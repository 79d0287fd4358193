package validation

import (
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
)

// strictPolicy strips all HTML. Chart comments are stored and rendered
// as plain text.
var strictPolicy = bluemonday.StrictPolicy()

// SanitizeComment removes any HTML markup and unprintable characters
// from user-entered comment text.
func SanitizeComment(input string) string {
	cleaned := strictPolicy.Sanitize(input)
	return strings.TrimSpace(StripUnprintable(cleaned))
}

// StripUnprintable drops control characters while keeping newlines and
// tabs, which comments legitimately contain.
func StripUnprintable(input string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, input)
}
