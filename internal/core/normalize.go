package core

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalize canonicalizes text for matching: Unicode accents are
// decomposed and dropped, remaining non-ASCII runes are stripped, the
// result is lowercased and trimmed. Every comparison between a question
// and a category name must go through Normalize on both sides.
//
// Normalize is idempotent and never fails; empty input yields "".
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range norm.NFKD.String(s) {
		if unicode.Is(unicode.Mn, r) {
			// Combining mark left over from decomposition.
			continue
		}
		if r > unicode.MaxASCII {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return strings.TrimSpace(b.String())
}
