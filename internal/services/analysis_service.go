// Package services orchestrates the question-to-answer flow across the
// catalog, the ledger API, the planner and the audit trail.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"despesas/internal/analyzer"
	"despesas/internal/catalog"
	"despesas/internal/core"
	"despesas/internal/ledger"
	"despesas/internal/planner"
	"despesas/internal/storage"
)

// LedgerSearcher is the slice of the ledger client the service needs.
type LedgerSearcher interface {
	SearchPayables(ctx context.Context, q ledger.SearchQuery) ([]core.LineItem, error)
	ResolveCategoryID(ctx context.Context, name string) (string, error)
}

// QueryPlanner plans a search with a language model. Optional; the
// deterministic analyzer always runs as fallback.
type QueryPlanner interface {
	Plan(ctx context.Context, question string, today core.Date, cats []core.Category) (planner.Plan, error)
}

// AuditStore persists answered questions.
type AuditStore interface {
	Record(ctx context.Context, rec storage.AnalysisRecord) (int64, error)
	ListRecent(ctx context.Context, limit int) ([]storage.AnalysisRecord, error)
}

// AuditPublisher announces answered questions to the audit worker.
type AuditPublisher interface {
	PublishAnalysisRecorded(ctx context.Context, id int64, question string, totalCents int64, itemCount int) error
}

// Answer is the result of one question.
type Answer struct {
	Summary  string
	Total    core.Money
	Count    int
	Analysis core.Analysis
}

// AnalysisService answers natural-language questions about expenses.
// The audit store, publisher and planner may be nil; the service then
// degrades gracefully and only logs what it skipped.
type AnalysisService struct {
	catalog   catalog.Source
	ledger    LedgerSearcher
	planner   QueryPlanner
	store     AuditStore
	publisher AuditPublisher
	now       func() time.Time
}

func NewAnalysisService(cat catalog.Source, led LedgerSearcher, plan QueryPlanner, store AuditStore, pub AuditPublisher) *AnalysisService {
	return &AnalysisService{
		catalog:   cat,
		ledger:    led,
		planner:   plan,
		store:     store,
		publisher: pub,
		now:       time.Now,
	}
}

// Ask answers one question: interpret it, search the ledger, summarize
// the findings and record the exchange.
func (s *AnalysisService) Ask(ctx context.Context, question string) (Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Answer{}, core.ErrEmptyQuestion
	}

	cats, err := s.catalog.Load(ctx)
	if err != nil {
		return Answer{}, fmt.Errorf("load catalog: %w", err)
	}

	a := analyzer.Analyze(question, cats, s.now())
	s.resolveCategory(ctx, &a)

	q := s.planQuery(ctx, question, cats, &a)

	items, err := s.ledger.SearchPayables(ctx, q)
	if err != nil {
		return Answer{}, fmt.Errorf("search payables: %w", err)
	}

	summary, total := analyzer.Summarize(items, a)
	answer := Answer{Summary: summary, Total: total, Count: len(items), Analysis: a}

	s.record(ctx, question, a, answer)

	return answer, nil
}

// Categories returns the catalog backing the matcher.
func (s *AnalysisService) Categories(ctx context.Context) ([]core.Category, error) {
	return s.catalog.Load(ctx)
}

// History returns the most recent answered questions.
func (s *AnalysisService) History(ctx context.Context, limit int) ([]storage.AnalysisRecord, error) {
	if s.store == nil {
		slog.WarnContext(ctx, "Audit store not available, history is empty")
		return nil, nil
	}
	return s.store.ListRecent(ctx, limit)
}

// resolveCategory fills in the ledger ID for a matched category. A
// failed lookup keeps the match; the query builder then falls back to a
// description filter.
func (s *AnalysisService) resolveCategory(ctx context.Context, a *core.Analysis) {
	if a.Category == nil || a.Category.ID != "" {
		return
	}
	id, err := s.ledger.ResolveCategoryID(ctx, a.Category.Name)
	if err != nil {
		slog.WarnContext(ctx, "Failed to resolve category ID, falling back to description filter",
			"category", a.Category.Name,
			"error", err)
		return
	}
	a.Category.ID = id
}

// planQuery asks the model for a search plan and falls back to the
// deterministic analysis on any planner trouble.
func (s *AnalysisService) planQuery(ctx context.Context, question string, cats []core.Category, a *core.Analysis) ledger.SearchQuery {
	if s.planner == nil {
		return ledger.QueryFromAnalysis(*a)
	}

	plan, err := s.planner.Plan(ctx, question, core.DateOf(s.now()), cats)
	if err != nil {
		slog.WarnContext(ctx, "Planner failed, using deterministic analysis",
			"error", err)
		return ledger.QueryFromAnalysis(*a)
	}
	q, err := planner.QueryFromPlan(plan)
	if err != nil {
		slog.WarnContext(ctx, "Planner produced unusable plan, using deterministic analysis",
			"error", err)
		return ledger.QueryFromAnalysis(*a)
	}

	// The answer reports the period that was actually searched.
	a.Period = q.Period

	// A resolved category still beats the planner's free-text filter.
	if a.Category != nil && a.Category.ID != "" {
		q.CategoryIDs = []string{a.Category.ID}
		q.Description = ""
	}
	return q
}

// record persists and publishes the answered question. Best effort:
// the answer already exists, so failures here only get logged.
func (s *AnalysisService) record(ctx context.Context, question string, a core.Analysis, answer Answer) {
	if s.store == nil {
		slog.WarnContext(ctx, "Audit store not available, skipping record")
		return
	}

	rec := storage.AnalysisRecord{
		Question:   question,
		PeriodFrom: a.Period.From,
		PeriodTo:   a.Period.To,
		Residual:   a.Residual,
		TotalCents: answer.Total.Cents,
		ItemCount:  answer.Count,
	}
	if a.Category != nil {
		rec.CategoryName = a.Category.Name
	}

	id, err := s.store.Record(ctx, rec)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to record analysis", "error", err)
		return
	}

	if s.publisher == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping audit message")
		return
	}
	if err := s.publisher.PublishAnalysisRecorded(ctx, id, question, answer.Total.Cents, answer.Count); err != nil {
		slog.ErrorContext(ctx, "Failed to publish audit message",
			"id", id, "error", err)
	}
}
