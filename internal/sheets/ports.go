package sheets

import (
	"context"

	"budgetsip/internal/core"
)

// Ports for outbound adapters.
type (
	// ExpenseMirror keeps a copy of each expense keyed by its database id.
	ExpenseMirror interface {
		// UpsertExpense writes the expense, replacing any existing row with the same id.
		UpsertExpense(ctx context.Context, e core.Expense) error
		// DeleteExpense removes the row for id. Missing rows are not an error.
		DeleteExpense(ctx context.Context, id int64) error
	}
)
