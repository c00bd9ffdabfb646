package analyzer

import (
	"strings"
	"testing"

	"despesas/internal/core"
)

func catalogOf(names ...string) []core.Category {
	cats := make([]core.Category, len(names))
	for i, n := range names {
		cats[i] = core.Category{Name: n}
	}
	return cats
}

func TestMatchCategoryAllTokensRequired(t *testing.T) {
	q := core.Normalize("quanto gastei com manutenção veículos este ano")
	got := MatchCategory(q, catalogOf("MANUTENCAO VEICULOS", "MANUTENCAO PREDIAL"))
	if got == nil || got.Name != "MANUTENCAO VEICULOS" {
		t.Fatalf("expected MANUTENCAO VEICULOS, got %+v", got)
	}
}

func TestMatchCategoryLongestWins(t *testing.T) {
	q := core.Normalize("gastos com manutencao veiculos")
	got := MatchCategory(q, catalogOf("MANUTENCAO", "MANUTENCAO VEICULOS"))
	if got == nil || got.Name != "MANUTENCAO VEICULOS" {
		t.Fatalf("longest candidate should win, got %+v", got)
	}
}

func TestMatchCategoryTieKeepsCatalogOrder(t *testing.T) {
	// Both names normalize to the same length; the first catalog entry wins.
	q := core.Normalize("pagamento de agua e de taxa")
	got := MatchCategory(q, catalogOf("AGUA", "TAXA"))
	if got == nil || got.Name != "AGUA" {
		t.Fatalf("tie should keep catalog order, got %+v", got)
	}
}

func TestMatchCategorySingularDoesNotMatchPlural(t *testing.T) {
	// "frete" is not a superstring of the token "fretes", so the category
	// must not match. Pins the strict token-substring semantics.
	q := core.Normalize("gastos com frete no mes passado")
	if got := MatchCategory(q, catalogOf("FRETES ENCOMENDAS")); got != nil {
		t.Fatalf("expected no match, got %+v", got)
	}
}

func TestMatchCategoryShortTokenSubstring(t *testing.T) {
	// Substring semantics: the token "luz" appears inside "luzes".
	q := core.Normalize("troquei as luzes do galpão")
	if got := MatchCategory(q, catalogOf("LUZ")); got == nil {
		t.Fatalf("substring token should match")
	}
}

func TestMatchCategoryEmptyCatalog(t *testing.T) {
	if got := MatchCategory("qualquer pergunta", nil); got != nil {
		t.Fatalf("expected nil for empty catalog, got %+v", got)
	}
}

func TestMatchCategoryTokensAreSubstringsOfQuestion(t *testing.T) {
	q := core.Normalize("quanto gastei com combustível da Hilux este ano?")
	got := MatchCategory(q, catalogOf("FRETES", "COMBUSTIVEL", "SEGUROS"))
	if got == nil {
		t.Fatal("expected a match")
	}
	for _, tok := range strings.Fields(core.Normalize(got.Name)) {
		if !strings.Contains(q, tok) {
			t.Fatalf("matched category token %q missing from question", tok)
		}
	}
}
