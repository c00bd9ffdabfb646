// Package catalog loads the expense category catalog the matcher works
// against. Sources either read a local line-delimited listing or page
// through the ledger's remote category listing; a caching wrapper bounds
// how often the remote source is hit.
package catalog

import (
	"context"
	"errors"

	"despesas/internal/core"
)

// ErrUnavailable marks any failure to produce a catalog. Callers must
// treat it as fatal for the analysis at hand: proceeding with an empty
// catalog would silently disable category matching.
var ErrUnavailable = errors.New("category catalog unavailable")

// Source yields the known expense categories for one analysis session.
type Source interface {
	Load(ctx context.Context) ([]core.Category, error)
}
