// Package ledger is the HTTP client for the accounting API's payables
// and category endpoints. Requests carry a bearer token from an oauth2
// token source and are paced by a shared rate limiter.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"despesas/internal/core"
)

const (
	payablesPath   = "/financeiro/eventos-financeiros/contas-a-pagar/buscar"
	categoriesPath = "/categorias"

	requestTimeout    = 30 * time.Second
	requestsPerSecond = 5
	requestBurst      = 5

	errorBodyLimit = 4096
)

// ErrCategoryNotFound reports a category name with no match in the
// ledger's listing.
var ErrCategoryNotFound = errors.New("category not found")

// APIError is a non-2xx response from the ledger.
type APIError struct {
	Endpoint string
	Status   int
	Body     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ledger %s returned status %d: %s", e.Endpoint, e.Status, e.Body)
}

// Client talks to the ledger API.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	tokens  oauth2.TokenSource
}

func NewClient(baseURL string, tokens oauth2.TokenSource) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: requestTimeout},
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), requestBurst),
		tokens:  tokens,
	}
}

// SearchPayables returns one page of payables matching the query.
func (c *Client) SearchPayables(ctx context.Context, q SearchQuery) ([]core.LineItem, error) {
	var resp searchResponse
	if err := c.get(ctx, payablesPath, q.params(), &resp); err != nil {
		return nil, err
	}
	items := make([]core.LineItem, 0, len(resp.Itens))
	for _, it := range resp.Itens {
		items = append(items, it.toLineItem())
	}
	return items, nil
}

// ListExpenseCategories returns one page of expense-type categories and
// whether another page may follow.
func (c *Client) ListExpenseCategories(ctx context.Context, page, pageSize int) ([]core.Category, bool, error) {
	params := url.Values{}
	params.Set("tipo", "DESPESA")
	params.Set("permite_apenas_filhos", "true")
	params.Set("pagina", fmt.Sprint(page))
	params.Set("tamanho_pagina", fmt.Sprint(pageSize))

	var resp categoriesResponse
	if err := c.get(ctx, categoriesPath, params, &resp); err != nil {
		return nil, false, err
	}
	cats := make([]core.Category, 0, len(resp.Itens))
	for _, it := range resp.Itens {
		cats = append(cats, core.Category{ID: it.ID, Name: it.Nome})
	}
	return cats, len(resp.Itens) == pageSize, nil
}

// ResolveCategoryID looks up the ledger ID for a category name. Matching
// is by normalized name so accents and case never break the lookup.
func (c *Client) ResolveCategoryID(ctx context.Context, name string) (string, error) {
	params := url.Values{}
	params.Set("tipo", "DESPESA")
	params.Set("nome", name)
	params.Set("pagina", "1")
	params.Set("tamanho_pagina", fmt.Sprint(CategoryPageSize))

	var resp categoriesResponse
	if err := c.get(ctx, categoriesPath, params, &resp); err != nil {
		return "", err
	}
	want := core.Normalize(name)
	for _, it := range resp.Itens {
		if core.Normalize(it.Nome) == want {
			return it.ID, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrCategoryNotFound, name)
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("wait for rate limiter: %w", err)
	}
	tok, err := c.tokens.Token()
	if err != nil {
		return fmt.Errorf("fetch access token: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build request for %s: %w", path, err)
	}
	tok.SetAuthHeader(req)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return &APIError{Endpoint: path, Status: resp.StatusCode, Body: string(body)}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
