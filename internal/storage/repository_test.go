package storage

import (
	"context"
	"path/filepath"
	"testing"

	"despesas/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "despesas.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestRecordAndListRecent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first := AnalysisRecord{
		Question:     "quanto gastei de combustivel este ano?",
		PeriodFrom:   core.NewDate(2025, 1, 1),
		PeriodTo:     core.NewDate(2025, 7, 25),
		CategoryName: "COMBUSTIVEL",
		TotalCents:   12050,
		ItemCount:    3,
	}
	second := AnalysisRecord{
		Question:   "gastos com frete mes passado",
		PeriodFrom: core.NewDate(2025, 6, 1),
		PeriodTo:   core.NewDate(2025, 6, 30),
		Residual:   "frete",
		TotalCents: 990,
		ItemCount:  1,
	}

	id1, err := repo.Record(ctx, first)
	if err != nil {
		t.Fatalf("record first: %v", err)
	}
	id2, err := repo.Record(ctx, second)
	if err != nil {
		t.Fatalf("record second: %v", err)
	}
	if id2 <= id1 {
		t.Fatalf("ids must increase: %d then %d", id1, id2)
	}

	recs, err := repo.ListRecent(ctx, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if recs[0].Question != second.Question {
		t.Fatalf("newest record must come first, got %q", recs[0].Question)
	}
	if recs[1].CategoryName != "COMBUSTIVEL" || recs[1].TotalCents != 12050 {
		t.Fatalf("record roundtrip mismatch: %+v", recs[1])
	}
	if recs[1].PeriodFrom.String() != "2025-01-01" || recs[1].PeriodTo.String() != "2025-07-25" {
		t.Fatalf("period roundtrip mismatch: %+v", recs[1])
	}
	if recs[0].CreatedAt.IsZero() {
		t.Fatalf("created_at must be set by the database")
	}
}

func TestGetRecord(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.Record(ctx, AnalysisRecord{
		Question:     "quanto gastei de agua?",
		PeriodFrom:   core.NewDate(2025, 5, 1),
		PeriodTo:     core.NewDate(2025, 5, 31),
		CategoryName: "AGUA",
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	rec, err := repo.GetRecord(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.ID != id || rec.CategoryName != "AGUA" {
		t.Fatalf("unexpected record: %+v", rec)
	}

	if _, err := repo.GetRecord(ctx, id+100); err == nil {
		t.Fatal("missing record must return an error")
	}
}

func TestListRecentHonorsLimit(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		rec := AnalysisRecord{
			Question:   "pergunta",
			PeriodFrom: core.NewDate(2025, 1, 1),
			PeriodTo:   core.NewDate(2025, 1, 31),
		}
		if _, err := repo.Record(ctx, rec); err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
	}

	recs, err := repo.ListRecent(ctx, 3)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("expected 3 records, got %d", len(recs))
	}
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "despesas.db")
	repo, err := NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	repo.Close()

	repo, err = NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	repo.Close()
}
