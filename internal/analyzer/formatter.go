package analyzer

import (
	"fmt"
	"strings"

	"despesas/internal/core"
)

// previewLimit caps how many line items the summary lists.
const previewLimit = 10

// EmptyResultMessage is returned when the search matched nothing.
const EmptyResultMessage = "❌ Nenhum gasto encontrado para os filtros informados."

// Summarize turns a page of ledger line items into a markdown summary and
// the numeric total. Items are listed in the order received, at most
// previewLimit of them. The function is pure: identical inputs produce
// identical output and the slice is never mutated.
func Summarize(items []core.LineItem, a core.Analysis) (string, core.Money) {
	if len(items) == 0 {
		return EmptyResultMessage, core.Money{}
	}

	var total core.Money
	for _, item := range items {
		total.Cents += item.Amount.Cents
	}

	var b strings.Builder
	fmt.Fprintf(&b, "💸 **Total de gastos: %s**\n", total.FormatBRL())
	if a.Category != nil {
		fmt.Fprintf(&b, "Categoria: **%s**\n", a.Category.Name)
	}
	if a.Residual != "" {
		fmt.Fprintf(&b, "Descrição: **%s**\n", a.Residual)
	}
	fmt.Fprintf(&b, "📝 **%d** lançamentos encontrados.\n\n", len(items))

	for i, item := range items {
		if i == previewLimit {
			break
		}
		desc := item.Description
		if desc == "" {
			desc = "Sem descrição"
		}
		when := ""
		if d := item.EffectiveDate(); !d.IsZero() {
			when = d.String()
		}
		fmt.Fprintf(&b, "- *%s*: %s (%s)\n", when, desc, item.Amount.FormatBRL())
	}
	return b.String(), total
}
