package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"budgetsip/internal/amqp"
	"budgetsip/internal/sheets"
	"budgetsip/internal/storage"
)

// SyncWorker mirrors expenses from SQLite into an external sheet
type SyncWorker struct {
	storage   *storage.SQLiteRepository
	mirror    sheets.ExpenseMirror
	batchSize int
}

const defaultBatchSize = 50

func NewSyncWorker(storage *storage.SQLiteRepository, mirror sheets.ExpenseMirror, batchSize int) *SyncWorker {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &SyncWorker{
		storage:   storage,
		mirror:    mirror,
		batchSize: batchSize,
	}
}

// HandleExpenseEvent applies a single change event from AMQP. The current row
// is always read back from SQLite, so replays and reordering converge on the
// stored state.
func (w *SyncWorker) HandleExpenseEvent(ctx context.Context, msg *amqp.ExpenseEvent) error {
	slog.InfoContext(ctx, "Processing expense event",
		"id", msg.ID,
		"action", msg.Action)

	switch msg.Action {
	case amqp.ExpenseDeleted:
		return w.remove(ctx, msg.ID)
	case amqp.ExpenseCreated, amqp.ExpenseUpdated:
	default:
		slog.WarnContext(ctx, "Ignoring expense event with unknown action",
			"id", msg.ID,
			"action", msg.Action)
		return nil
	}

	expense, err := w.storage.GetExpense(ctx, msg.ID)
	if errors.Is(err, storage.ErrNotFound) {
		// Deleted after the event was published.
		return w.remove(ctx, msg.ID)
	}
	if err != nil {
		return fmt.Errorf("get expense from storage: %w", err)
	}

	if err := w.mirror.UpsertExpense(ctx, expense); err != nil {
		return fmt.Errorf("mirror expense %d: %w", msg.ID, err)
	}

	slog.InfoContext(ctx, "Successfully synced expense",
		"id", expense.ID,
		"date", expense.Date.String(),
		"amount", expense.Amount.String())

	return nil
}

// StartupSync re-mirrors the most recent expenses, recovering from events
// lost while the worker was down.
func (w *SyncWorker) StartupSync(ctx context.Context) error {
	expenses, err := w.storage.ListRecentExpenses(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("list expenses for startup sync: %w", err)
	}

	if len(expenses) == 0 {
		slog.InfoContext(ctx, "No expenses found on startup")
		return nil
	}

	successCount := 0
	errorCount := 0

	for _, e := range expenses {
		if err := w.mirror.UpsertExpense(ctx, e); err != nil {
			slog.ErrorContext(ctx, "Failed to sync expense during startup",
				"id", e.ID, "error", err)
			errorCount++
			continue
		}
		successCount++
	}

	slog.InfoContext(ctx, "Startup sync completed",
		"total", len(expenses),
		"synced", successCount,
		"errors", errorCount)

	return nil
}

func (w *SyncWorker) remove(ctx context.Context, id int64) error {
	if err := w.mirror.DeleteExpense(ctx, id); err != nil {
		return fmt.Errorf("delete mirrored expense %d: %w", id, err)
	}
	slog.InfoContext(ctx, "Successfully deleted mirrored expense", "id", id)
	return nil
}
