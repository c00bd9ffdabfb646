package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"despesas/internal/core"
	"despesas/internal/ledger"
	"despesas/internal/planner"
	"despesas/internal/storage"
)

type fakeCatalog struct {
	cats []core.Category
	err  error
}

func (f *fakeCatalog) Load(context.Context) ([]core.Category, error) {
	return f.cats, f.err
}

type fakeLedger struct {
	items      []core.LineItem
	searchErr  error
	resolveID  string
	resolveErr error
	gotQuery   ledger.SearchQuery
}

func (f *fakeLedger) SearchPayables(_ context.Context, q ledger.SearchQuery) ([]core.LineItem, error) {
	f.gotQuery = q
	return f.items, f.searchErr
}

func (f *fakeLedger) ResolveCategoryID(_ context.Context, name string) (string, error) {
	if f.resolveErr != nil {
		return "", f.resolveErr
	}
	return f.resolveID, nil
}

type fakeStore struct {
	recorded []storage.AnalysisRecord
	nextID   int64
	err      error
}

func (f *fakeStore) Record(_ context.Context, rec storage.AnalysisRecord) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.recorded = append(f.recorded, rec)
	f.nextID++
	return f.nextID, nil
}

func (f *fakeStore) ListRecent(_ context.Context, limit int) ([]storage.AnalysisRecord, error) {
	if limit > len(f.recorded) {
		limit = len(f.recorded)
	}
	return f.recorded[:limit], nil
}

type fakePublisher struct {
	published []int64
	err       error
}

func (f *fakePublisher) PublishAnalysisRecorded(_ context.Context, id int64, _ string, _ int64, _ int) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, id)
	return nil
}

type fakePlanner struct {
	plan planner.Plan
	err  error
}

func (f *fakePlanner) Plan(context.Context, string, core.Date, []core.Category) (planner.Plan, error) {
	return f.plan, f.err
}

func fixedNow() time.Time {
	return time.Date(2025, 7, 25, 10, 0, 0, 0, time.UTC)
}

func newService(cat *fakeCatalog, led *fakeLedger, plan QueryPlanner, store *fakeStore, pub *fakePublisher) *AnalysisService {
	var s AuditStore
	if store != nil {
		s = store
	}
	var p AuditPublisher
	if pub != nil {
		p = pub
	}
	svc := NewAnalysisService(cat, led, plan, s, p)
	svc.now = fixedNow
	return svc
}

func TestAskMatchedCategory(t *testing.T) {
	cat := &fakeCatalog{cats: []core.Category{{Name: "COMBUSTIVEL"}, {Name: "FRETES ENCOMENDAS"}}}
	led := &fakeLedger{
		resolveID: "cat-1",
		items: []core.LineItem{
			{CompetenceDate: core.NewDate(2025, 6, 1), Description: "Diesel", Amount: core.Money{Cents: 12050}},
		},
	}
	store := &fakeStore{}
	pub := &fakePublisher{}
	svc := newService(cat, led, nil, store, pub)

	answer, err := svc.Ask(context.Background(), "quanto gastei de combustível este ano?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if led.gotQuery.CategoryIDs == nil || led.gotQuery.CategoryIDs[0] != "cat-1" {
		t.Fatalf("expected search by resolved category ID, got %+v", led.gotQuery)
	}
	if led.gotQuery.Period.From.String() != "2025-01-01" || led.gotQuery.Period.To.String() != "2025-07-25" {
		t.Fatalf("expected year-to-date period, got %+v", led.gotQuery.Period)
	}
	if answer.Total.Cents != 12050 || answer.Count != 1 {
		t.Fatalf("unexpected answer: %+v", answer)
	}
	if !strings.Contains(answer.Summary, "R$ 120,50") {
		t.Fatalf("summary missing total: %s", answer.Summary)
	}

	if len(store.recorded) != 1 {
		t.Fatalf("expected one audit record, got %d", len(store.recorded))
	}
	rec := store.recorded[0]
	if rec.CategoryName != "COMBUSTIVEL" || rec.TotalCents != 12050 || rec.ItemCount != 1 {
		t.Fatalf("audit record mismatch: %+v", rec)
	}
	if len(pub.published) != 1 || pub.published[0] != 1 {
		t.Fatalf("expected one published event, got %v", pub.published)
	}
}

func TestAskEmptyQuestion(t *testing.T) {
	svc := newService(&fakeCatalog{}, &fakeLedger{}, nil, nil, nil)
	if _, err := svc.Ask(context.Background(), "   "); !errors.Is(err, core.ErrEmptyQuestion) {
		t.Fatalf("expected ErrEmptyQuestion, got %v", err)
	}
}

func TestAskCatalogErrorIsFatal(t *testing.T) {
	boom := errors.New("catalog down")
	svc := newService(&fakeCatalog{err: boom}, &fakeLedger{}, nil, nil, nil)
	if _, err := svc.Ask(context.Background(), "quanto gastei?"); !errors.Is(err, boom) {
		t.Fatalf("expected catalog error, got %v", err)
	}
}

func TestAskUnresolvedCategoryFallsBackToDescription(t *testing.T) {
	cat := &fakeCatalog{cats: []core.Category{{Name: "COMBUSTIVEL"}}}
	led := &fakeLedger{resolveErr: errors.New("lookup failed")}
	svc := newService(cat, led, nil, nil, nil)

	if _, err := svc.Ask(context.Background(), "quanto gastei de combustivel?"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if led.gotQuery.Description != "COMBUSTIVEL" {
		t.Fatalf("expected description fallback, got %+v", led.gotQuery)
	}
	if len(led.gotQuery.CategoryIDs) != 0 {
		t.Fatalf("no category IDs expected, got %v", led.gotQuery.CategoryIDs)
	}
}

func TestAskSearchErrorPropagates(t *testing.T) {
	boom := errors.New("ledger down")
	cat := &fakeCatalog{cats: []core.Category{{Name: "COMBUSTIVEL"}}}
	svc := newService(cat, &fakeLedger{searchErr: boom}, nil, nil, nil)

	if _, err := svc.Ask(context.Background(), "quanto gastei de combustivel?"); !errors.Is(err, boom) {
		t.Fatalf("expected search error, got %v", err)
	}
}

func TestAskPlannerOverridesPeriod(t *testing.T) {
	cat := &fakeCatalog{cats: []core.Category{{Name: "COMBUSTIVEL"}}}
	led := &fakeLedger{resolveID: "cat-1"}
	plan := &fakePlanner{plan: planner.Plan{
		Tool: planner.ToolSearchExpenses,
		Args: planner.SearchExpensesArgs{DataDe: "2025-03-01", DataAte: "2025-03-31", Descricao: "diesel"},
	}}
	svc := newService(cat, led, plan, nil, nil)

	answer, err := svc.Ask(context.Background(), "quanto gastei de combustivel em março?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if led.gotQuery.Period.From.String() != "2025-03-01" || led.gotQuery.Period.To.String() != "2025-03-31" {
		t.Fatalf("expected planner period, got %+v", led.gotQuery.Period)
	}
	if answer.Analysis.Period != led.gotQuery.Period {
		t.Fatalf("answer must report the searched period")
	}
	if len(led.gotQuery.CategoryIDs) != 1 || led.gotQuery.CategoryIDs[0] != "cat-1" {
		t.Fatalf("resolved category must win over free text, got %+v", led.gotQuery)
	}
	if led.gotQuery.Description != "" {
		t.Fatalf("description must be cleared when filtering by ID, got %q", led.gotQuery.Description)
	}
}

func TestAskPlannerFailureFallsBack(t *testing.T) {
	cat := &fakeCatalog{cats: []core.Category{{Name: "COMBUSTIVEL"}}}
	led := &fakeLedger{resolveID: "cat-1"}
	plan := &fakePlanner{err: planner.ErrBadPlannerOutput}
	svc := newService(cat, led, plan, nil, nil)

	if _, err := svc.Ask(context.Background(), "quanto gastei de combustivel este ano?"); err != nil {
		t.Fatalf("planner failure must not fail the question: %v", err)
	}
	if led.gotQuery.Period.From.String() != "2025-01-01" {
		t.Fatalf("expected deterministic period fallback, got %+v", led.gotQuery.Period)
	}
}

func TestAskRecordFailureDoesNotFailAnswer(t *testing.T) {
	cat := &fakeCatalog{cats: []core.Category{{Name: "COMBUSTIVEL"}}}
	store := &fakeStore{err: errors.New("disk full")}
	pub := &fakePublisher{}
	svc := newService(cat, &fakeLedger{}, nil, store, pub)

	if _, err := svc.Ask(context.Background(), "quanto gastei de combustivel?"); err != nil {
		t.Fatalf("audit failure must not fail the answer: %v", err)
	}
	if len(pub.published) != 0 {
		t.Fatalf("nothing should be published without a record")
	}
}

func TestHistoryWithoutStore(t *testing.T) {
	svc := newService(&fakeCatalog{}, &fakeLedger{}, nil, nil, nil)
	recs, err := svc.History(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if recs != nil {
		t.Fatalf("expected empty history, got %v", recs)
	}
}
