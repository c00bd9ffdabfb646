package analyzer

import (
	"strings"

	"despesas/internal/core"
)

// MatchCategory finds the best category mentioned in the normalized
// question. A category is a candidate when every whitespace token of its
// normalized name appears somewhere in the question as a substring
// (order-independent). Among candidates the longest normalized name wins;
// on equal length the earlier catalog entry is kept, so results are stable
// for a given catalog order. Returns nil when nothing matches.
//
// Token matching is substring matching, not whole-word matching: the
// catalog entry "LUZ" matches a question containing "luzes". That mirrors
// how the ledger's own search behaves and is pinned by tests.
func MatchCategory(normalized string, catalog []core.Category) *core.Category {
	var best *core.Category
	bestLen := 0
	for i := range catalog {
		name := core.Normalize(catalog[i].Name)
		if name == "" || !allTokensPresent(normalized, name) {
			continue
		}
		if len(name) > bestLen {
			c := catalog[i]
			best = &c
			bestLen = len(name)
		}
	}
	return best
}

func allTokensPresent(question, name string) bool {
	for _, tok := range strings.Fields(name) {
		if !strings.Contains(question, tok) {
			return false
		}
	}
	return true
}
