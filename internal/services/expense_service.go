package services

import (
	"context"
	"fmt"
	"log/slog"

	"budgetsip/internal/amqp"
	"budgetsip/internal/core"
	"budgetsip/internal/storage"
)

// ExpensePublisher announces committed expense mutations.
type ExpensePublisher interface {
	PublishExpenseEvent(ctx context.Context, id int64, action amqp.ExpenseAction) error
}

// ExpenseService orchestrates expense operations across SQLite and AMQP
type ExpenseService struct {
	storage   *storage.SQLiteRepository
	publisher ExpensePublisher
}

// NewExpenseService creates the service. publisher may be nil, in which case
// no change events are sent.
func NewExpenseService(storage *storage.SQLiteRepository, publisher ExpensePublisher) *ExpenseService {
	return &ExpenseService{
		storage:   storage,
		publisher: publisher,
	}
}

// CreateExpense saves an expense locally and publishes a created event
func (s *ExpenseService) CreateExpense(ctx context.Context, e core.Expense) (int64, error) {
	if err := e.Validate(); err != nil {
		return 0, err
	}

	id, err := s.storage.CreateExpense(ctx, e)
	if err != nil {
		return 0, fmt.Errorf("save expense: %w", err)
	}

	s.publish(ctx, id, amqp.ExpenseCreated)
	return id, nil
}

func (s *ExpenseService) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	return s.storage.GetExpense(ctx, id)
}

// ListExpenses returns the most recent expenses, capped at storage.DefaultExpenseLimit.
func (s *ExpenseService) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	return s.storage.ListRecentExpenses(ctx, storage.DefaultExpenseLimit)
}

// ListExpensesBetween returns every expense dated within [from, to].
func (s *ExpenseService) ListExpensesBetween(ctx context.Context, from, to core.Date) ([]core.Expense, error) {
	return s.storage.ListExpensesBetween(ctx, from, to)
}

func (s *ExpenseService) UpdateExpense(ctx context.Context, id int64, e core.Expense) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if err := s.storage.UpdateExpense(ctx, id, e); err != nil {
		return err
	}

	s.publish(ctx, id, amqp.ExpenseUpdated)
	return nil
}

func (s *ExpenseService) DeleteExpense(ctx context.Context, id int64) error {
	if err := s.storage.DeleteExpense(ctx, id); err != nil {
		return err
	}

	s.publish(ctx, id, amqp.ExpenseDeleted)
	return nil
}

// publish never fails the caller: the expense is already committed locally.
func (s *ExpenseService) publish(ctx context.Context, id int64, action amqp.ExpenseAction) {
	if s.publisher == nil {
		slog.DebugContext(ctx, "AMQP publisher not available, skipping expense event",
			"id", id, "action", action)
		return
	}

	if err := s.publisher.PublishExpenseEvent(ctx, id, action); err != nil {
		slog.ErrorContext(ctx, "Failed to publish expense event",
			"id", id,
			"action", action,
			"error", err)
	}
}
