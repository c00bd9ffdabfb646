package catalog

import (
	"context"
	"fmt"

	"despesas/internal/core"
)

// CategoryLister pages through the ledger's expense-type categories.
// Implemented by ledger.Client.
type CategoryLister interface {
	ListExpenseCategories(ctx context.Context, page, pageSize int) (items []core.Category, more bool, err error)
}

// APISource loads the catalog from the remote ledger listing, following
// pagination until exhausted.
type APISource struct {
	lister   CategoryLister
	pageSize int
}

func NewAPISource(lister CategoryLister, pageSize int) *APISource {
	return &APISource{lister: lister, pageSize: pageSize}
}

func (s *APISource) Load(ctx context.Context) ([]core.Category, error) {
	var all []core.Category
	for page := 1; ; page++ {
		items, more, err := s.lister.ListExpenseCategories(ctx, page, s.pageSize)
		if err != nil {
			return nil, fmt.Errorf("%w: list categories page %d: %v", ErrUnavailable, page, err)
		}
		all = append(all, items...)
		if !more {
			break
		}
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("%w: ledger returned no expense categories", ErrUnavailable)
	}
	return all, nil
}
