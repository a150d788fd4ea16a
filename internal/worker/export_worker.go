// Package worker moves approved expenses to the finance export sink. It
// serves two paths: queue-driven exports from AMQP messages and a periodic
// scan over pending rows that catches anything the queue missed.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"claimdesk/internal/amqp"
	"claimdesk/internal/core"
	"claimdesk/internal/export"
)

// ExportStore is the storage surface the worker needs.
type ExportStore interface {
	GetByID(ctx context.Context, orgID, id string) (core.ExpenseRecord, error)
	GetPendingExportExpenses(ctx context.Context, limit int) ([]core.ExpenseRecord, error)
	MarkExported(ctx context.Context, id string) error
	MarkExportError(ctx context.Context, id string) error
}

// ExportWorker appends approved expenses to a RowAppender and tracks the
// export state of each row.
type ExportWorker struct {
	store     ExportStore
	sink      export.RowAppender
	batchSize int
}

func NewExportWorker(store ExportStore, sink export.RowAppender, batchSize int) *ExportWorker {
	if batchSize <= 0 {
		batchSize = 50
	}
	return &ExportWorker{
		store:     store,
		sink:      sink,
		batchSize: batchSize,
	}
}

// HandleExportMessage exports the expense referenced by a queue message.
// Returning an error makes the consumer requeue the message.
func (w *ExportWorker) HandleExportMessage(ctx context.Context, msg *amqp.ExpenseExportMessage) error {
	expense, err := w.store.GetByID(ctx, msg.OrgID, msg.ID)
	if err != nil {
		return fmt.Errorf("load expense %s: %w", msg.ID, err)
	}
	return w.exportExpense(ctx, expense)
}

// ProcessPendingExpenses exports up to one batch of approved expenses that
// are still waiting. Per-expense failures are recorded and do not stop the
// batch.
func (w *ExportWorker) ProcessPendingExpenses(ctx context.Context) error {
	pending, err := w.store.GetPendingExportExpenses(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("list pending exports: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending exports", "count", len(pending))

	for _, expense := range pending {
		if err := w.exportExpense(ctx, expense); err != nil {
			slog.ErrorContext(ctx, "Failed to export pending expense",
				"id", expense.ID, "error", err)
		}
	}
	return nil
}

// StartupExportCheck drains the pending backlog once at boot, covering
// messages lost while the worker was down.
func (w *ExportWorker) StartupExportCheck(ctx context.Context) {
	if err := w.ProcessPendingExpenses(ctx); err != nil {
		slog.ErrorContext(ctx, "Startup export check failed", "error", err)
	}
}

func (w *ExportWorker) exportExpense(ctx context.Context, e core.ExpenseRecord) error {
	if e.Status != core.StatusApproved {
		slog.WarnContext(ctx, "Skipping export of non-approved expense",
			"id", e.ID, "status", e.Status)
		return nil
	}

	ref, err := w.sink.Append(ctx, export.RowFromExpense(e))
	if err != nil {
		if markErr := w.store.MarkExportError(ctx, e.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to record export error",
				"id", e.ID, "error", markErr)
		}
		return fmt.Errorf("append expense %s: %w", e.ID, err)
	}

	if err := w.store.MarkExported(ctx, e.ID); err != nil {
		return fmt.Errorf("mark expense %s exported: %w", e.ID, err)
	}

	slog.InfoContext(ctx, "Expense exported", "id", e.ID, "org_id", e.OrgID, "ref", ref)
	return nil
}
