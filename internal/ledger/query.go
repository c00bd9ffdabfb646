package ledger

import (
	"net/url"
	"strconv"

	"despesas/internal/core"
)

// Page sizes the ledger accepts on its listing endpoints.
const (
	SearchPageSize   = 200
	CategoryPageSize = 500
)

// The search endpoint rejects requests without a due-date window. This
// range is wide enough to never exclude an item, so competência dates
// remain the only effective date filter.
var (
	dueDateFloor = core.NewDate(2010, 1, 1)
	dueDateCeil  = core.NewDate(2035, 12, 31)
)

// SearchQuery holds the filters for one payables search.
type SearchQuery struct {
	Period      core.Period
	CategoryIDs []string
	Description string
	Page        int
	PageSize    int
}

// QueryFromAnalysis maps an analysis onto search filters. A resolved
// category filters by ID; an unresolved one falls back to its name as a
// description filter, and with no category at all the residual text
// becomes the description filter.
func QueryFromAnalysis(a core.Analysis) SearchQuery {
	q := SearchQuery{Period: a.Period, Page: 1, PageSize: SearchPageSize}
	switch {
	case a.Category != nil && a.Category.ID != "":
		q.CategoryIDs = []string{a.Category.ID}
	case a.Category != nil:
		q.Description = a.Category.Name
	case a.Residual != "":
		q.Description = a.Residual
	}
	return q
}

func (q SearchQuery) params() url.Values {
	v := url.Values{}
	v.Set("data_vencimento_de", dueDateFloor.String())
	v.Set("data_vencimento_ate", dueDateCeil.String())
	v.Set("data_competencia_de", q.Period.From.String())
	v.Set("data_competencia_ate", q.Period.To.String())
	v.Set("pagina", strconv.Itoa(q.Page))
	v.Set("tamanho_pagina", strconv.Itoa(q.PageSize))
	for _, id := range q.CategoryIDs {
		v.Add("ids_categorias", id)
	}
	if q.Description != "" {
		v.Set("descricao", q.Description)
	}
	return v
}
