// Package slug provides the slugification algorithm shared by tag lookups,
// tag derivation, and rendered heading anchors. All three must agree
// byte-for-byte or tag filters and in-page anchor links break.
package slug

import (
	"strings"
	"unicode"
)

// Make converts s to its canonical slug: lower-case, runs of whitespace,
// hyphens, and underscores collapsed to a single hyphen, all other
// non-alphanumeric characters dropped, leading and trailing hyphens
// trimmed. Make is idempotent: Make(Make(s)) == Make(s).
//
// Dropping punctuation instead of hyphenating it keeps "Next.js" as
// "nextjs" rather than "next-js".
func Make(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pending := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pending {
				b.WriteByte('-')
				pending = false
			}
			b.WriteRune(r)
		case unicode.IsSpace(r), r == '-', r == '_':
			if b.Len() > 0 {
				pending = true
			}
		}
	}
	return b.String()
}
