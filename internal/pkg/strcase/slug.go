package strcase

import (
	"strings"
	"unicode"
)

// ToSlug lowercases s and joins its letter/digit runs with single hyphens.
// Non-Latin letters are kept as is.
func ToSlug(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	pending := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r) {
			if pending && b.Len() > 0 {
				b.WriteByte('-')
			}
			pending = false
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		pending = true
	}

	return b.String()
}
