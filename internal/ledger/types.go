package ledger

import (
	"time"

	"despesas/internal/core"
)

type searchResponse struct {
	Itens []payableItem `json:"itens"`
}

type payableItem struct {
	Descricao       string  `json:"descricao"`
	Total           float64 `json:"total"`
	DataCompetencia string  `json:"data_competencia"`
	DataVencimento  string  `json:"data_vencimento"`
}

type categoriesResponse struct {
	Itens []categoryItem `json:"itens"`
}

type categoryItem struct {
	ID   string `json:"id"`
	Nome string `json:"nome"`
}

func (it payableItem) toLineItem() core.LineItem {
	return core.LineItem{
		CompetenceDate: parseDate(it.DataCompetencia),
		DueDate:        parseDate(it.DataVencimento),
		Description:    it.Descricao,
		Amount:         core.Money{Cents: core.CentsFromDecimal(it.Total)},
	}
}

// parseDate reads an ISO calendar date, tolerating a trailing time
// component. Anything unparseable becomes the zero date.
func parseDate(s string) core.Date {
	if len(s) > 10 {
		s = s[:10]
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return core.Date{}
	}
	return core.DateOf(t)
}
