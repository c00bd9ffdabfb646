// Package analyzer translates a free-text expense question into a concrete
// date range, an optional category match and a free-text residual. It is
// pure: no I/O, no clock access, no mutation of its inputs.
package analyzer

import (
	"strings"
	"time"

	"despesas/internal/core"
)

// Lead-in boilerplate stripped from questions when computing the residual
// description filter.
var leadInPhrases = []string{
	"quanto gastei de",
	"quanto gastei com",
	"gastos com",
	"custo de",
	"despesas com",
}

// Analyze runs the full translation for one question: period
// interpretation, category matching against the catalog, and residual
// extraction. The catalog may be empty; now must be injected by the caller.
func Analyze(question string, catalog []core.Category, now time.Time) core.Analysis {
	q := core.Normalize(question)
	a := core.Analysis{
		Period:   InterpretPeriod(q, now),
		Category: MatchCategory(q, catalog),
	}
	a.Residual = residual(q, a.Category)
	return a
}

// residual removes, in a fixed order, the matched category name, the
// lead-in phrases, the recognized period phrases and any question marks
// from the normalized question. Removal happens on normalized text so it
// is accent- and case-insensitive; what remains is the free-text search
// filter. An empty remainder stays empty rather than becoming a filter.
func residual(normalized string, matched *core.Category) string {
	rest := normalized
	if matched != nil {
		rest = strings.ReplaceAll(rest, core.Normalize(matched.Name), "")
	}
	for _, p := range leadInPhrases {
		rest = strings.ReplaceAll(rest, p, "")
	}
	for _, p := range periodPhrases {
		rest = strings.ReplaceAll(rest, p, "")
	}
	rest = strings.ReplaceAll(rest, "?", "")
	return strings.Join(strings.Fields(rest), " ")
}
