package utils

import (
	"strings"
	"unicode"
)

// Slugify lowercases name and joins its alphanumeric runs with hyphens.
func Slugify(name string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			pendingDash = false
			continue
		}
		pendingDash = true
	}
	if b.Len() == 0 {
		return "organization"
	}
	return b.String()
}
