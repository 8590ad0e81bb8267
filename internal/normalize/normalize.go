// Package normalize canonicalizes free-text names so that the same customer
// spelled differently across exports compares equal.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// fold decomposes accented characters and strips the combining marks, so
// "José" folds to "Jose" before the ASCII filter below.
var fold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Name returns the canonical form of a customer name: accent-folded,
// lowercased, with everything outside [a-z0-9 ] removed and whitespace runs
// collapsed to single spaces. Name is idempotent.
func Name(s string) string {
	if s == "" {
		return ""
	}
	folded, _, err := transform.String(fold, s)
	if err != nil {
		folded = s
	}
	folded = strings.ToLower(folded)

	var b strings.Builder
	b.Grow(len(folded))
	pendingSpace := false
	for _, r := range folded {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
		case unicode.IsSpace(r):
			pendingSpace = true
		default:
			// punctuation is dropped without acting as a separator,
			// so "Wal-Mart" and "walmart" canonicalize identically
		}
	}
	return b.String()
}
