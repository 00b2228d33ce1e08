package validation

import (
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
)

// strictHTMLPolicy strips every HTML tag and attribute.
var strictHTMLPolicy = bluemonday.StrictPolicy()

// SanitizeText cleans a free-text field before it is stored: HTML is
// stripped entirely, control characters are dropped and surrounding
// whitespace is trimmed.
func SanitizeText(s string) string {
	return strings.TrimSpace(stripUnprintable(strictHTMLPolicy.Sanitize(s)))
}

// stripUnprintable removes non-printable runes, keeping tab, newline and
// carriage return.
func stripUnprintable(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) || r == '\t' || r == '\n' || r == '\r' {
			return r
		}
		return -1
	}, s)
}
