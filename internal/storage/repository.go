// Package storage keeps the audit trail of answered questions in a
// local sqlite database. Schema changes go through embedded migrations.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"despesas/internal/core"

	_ "modernc.org/sqlite"
)

// AnalysisRecord is one answered question as persisted.
type AnalysisRecord struct {
	ID           int64
	Question     string
	PeriodFrom   core.Date
	PeriodTo     core.Date
	CategoryName string
	Residual     string
	TotalCents   int64
	ItemCount    int
	CreatedAt    time.Time
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Record persists one answered question and returns its ID.
func (r *SQLiteRepository) Record(ctx context.Context, rec AnalysisRecord) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO analyses (question, period_from, period_to, category_name, residual, total_cents, item_count)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.Question,
		rec.PeriodFrom.String(),
		rec.PeriodTo.String(),
		rec.CategoryName,
		rec.Residual,
		rec.TotalCents,
		rec.ItemCount,
	)
	if err != nil {
		return 0, fmt.Errorf("insert analysis: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}

	slog.InfoContext(ctx, "Analysis saved to SQLite",
		"id", id,
		"question", rec.Question,
		"total_cents", rec.TotalCents,
		"item_count", rec.ItemCount)

	return id, nil
}

// GetRecord returns one record by ID, sql.ErrNoRows when absent.
func (r *SQLiteRepository) GetRecord(ctx context.Context, id int64) (AnalysisRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, question, period_from, period_to, category_name, residual, total_cents, item_count, created_at
		FROM analyses
		WHERE id = ?`, id)

	var rec AnalysisRecord
	var from, to string
	if err := row.Scan(&rec.ID, &rec.Question, &from, &to, &rec.CategoryName, &rec.Residual, &rec.TotalCents, &rec.ItemCount, &rec.CreatedAt); err != nil {
		return AnalysisRecord{}, fmt.Errorf("get analysis %d: %w", id, err)
	}
	rec.PeriodFrom = parseStoredDate(from)
	rec.PeriodTo = parseStoredDate(to)
	return rec, nil
}

// ListRecent returns the newest records first, at most limit of them.
func (r *SQLiteRepository) ListRecent(ctx context.Context, limit int) ([]AnalysisRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, question, period_from, period_to, category_name, residual, total_cents, item_count, created_at
		FROM analyses
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	defer rows.Close()

	var recs []AnalysisRecord
	for rows.Next() {
		var rec AnalysisRecord
		var from, to string
		if err := rows.Scan(&rec.ID, &rec.Question, &from, &to, &rec.CategoryName, &rec.Residual, &rec.TotalCents, &rec.ItemCount, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan analysis: %w", err)
		}
		rec.PeriodFrom = parseStoredDate(from)
		rec.PeriodTo = parseStoredDate(to)
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate analyses: %w", err)
	}
	return recs, nil
}

func parseStoredDate(s string) core.Date {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return core.Date{}
	}
	return core.DateOf(t)
}
