package memory

import (
	"context"
	"sort"
	"sync"

	"budgetsip/internal/core"
	"budgetsip/internal/sheets"
)

var _ sheets.ExpenseMirror = (*Store)(nil)

// Store is an in-process expense mirror used when no spreadsheet is configured.
type Store struct {
	mu    sync.Mutex
	items map[int64]core.Expense
}

func New() *Store {
	return &Store{items: make(map[int64]core.Expense)}
}

func (s *Store) UpsertExpense(_ context.Context, e core.Expense) error {
	if err := e.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[e.ID] = e
	return nil
}

func (s *Store) DeleteExpense(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	return nil
}

// Get returns the mirrored expense for id.
func (s *Store) Get(id int64) (core.Expense, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.items[id]
	return e, ok
}

// List returns the mirrored expenses ordered by id.
func (s *Store) List() []core.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Expense, 0, len(s.items))
	for _, e := range s.items {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
