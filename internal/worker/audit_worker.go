// Package worker processes audit events published by the API server.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"despesas/internal/amqp"
	"despesas/internal/core"
	"despesas/internal/storage"
)

// RecordReader is the slice of the audit store the worker reads from.
type RecordReader interface {
	GetRecord(ctx context.Context, id int64) (storage.AnalysisRecord, error)
}

// AuditWorker cross-checks audit events against the database and writes
// the consolidated audit log line. Events whose record is missing are
// requeued; the publishing side commits the record before publishing.
type AuditWorker struct {
	storage RecordReader
}

func NewAuditWorker(storage RecordReader) *AuditWorker {
	return &AuditWorker{storage: storage}
}

// HandleAnalysisRecorded processes one audit event from AMQP.
func (w *AuditWorker) HandleAnalysisRecorded(ctx context.Context, msg *amqp.AnalysisRecordedMessage) error {
	rec, err := w.storage.GetRecord(ctx, msg.ID)
	if err != nil {
		return fmt.Errorf("get analysis record %d: %w", msg.ID, err)
	}

	if rec.TotalCents != msg.TotalCents || rec.ItemCount != msg.ItemCount {
		slog.WarnContext(ctx, "Audit event disagrees with stored record",
			"id", msg.ID,
			"stored_total_cents", rec.TotalCents,
			"event_total_cents", msg.TotalCents,
			"stored_item_count", rec.ItemCount,
			"event_item_count", msg.ItemCount)
	}

	slog.InfoContext(ctx, "Audit entry confirmed",
		"id", rec.ID,
		"question", rec.Question,
		"period_from", rec.PeriodFrom.String(),
		"period_to", rec.PeriodTo.String(),
		"category", rec.CategoryName,
		"total", core.Money{Cents: rec.TotalCents}.FormatBRL(),
		"item_count", rec.ItemCount)

	return nil
}
