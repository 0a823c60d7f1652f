package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"budgetsip/internal/amqp"
	"budgetsip/internal/storage"
)

func newTestStorage(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "services.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

type expenseEvent struct {
	id     int64
	action amqp.ExpenseAction
}

type fakePublisher struct {
	mu        sync.Mutex
	events    []expenseEvent
	reminders []*amqp.SIPReminder
	err       error
}

func (f *fakePublisher) PublishExpenseEvent(_ context.Context, id int64, action amqp.ExpenseAction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, expenseEvent{id: id, action: action})
	return nil
}

func (f *fakePublisher) PublishSIPReminder(_ context.Context, msg *amqp.SIPReminder) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.reminders = append(f.reminders, msg)
	return nil
}

var errBrokerDown = errors.New("broker down")
