// Package memory is an in-process record store used by tests and as a
// zero-dependency backend for local development.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/khanburhan/tokritrack/internal/core"
	"github.com/khanburhan/tokritrack/internal/store"
)

type Store struct {
	mu       sync.Mutex
	seq      int64
	expenses []core.Expense
	items    []core.WishlistItem
	budgets  []core.MonthlyBudget
	now      func() time.Time
}

func New() *Store {
	return &Store{now: time.Now}
}

// NewWithClock fixes the store's clock; creation timestamps become
// deterministic in tests.
func NewWithClock(now func() time.Time) *Store {
	return &Store{now: now}
}

func (s *Store) nextID() string {
	s.seq++
	return fmt.Sprintf("mem:%d", s.seq)
}

func (s *Store) CreateExpense(_ context.Context, e core.Expense) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = s.nextID()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}
	s.expenses = append(s.expenses, e)
	return e.ID, nil
}

func (s *Store) ListExpenses(_ context.Context, userID string) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Expense
	for _, e := range s.expenses {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *Store) DeleteExpense(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.expenses {
		if e.ID == id && e.UserID == userID {
			s.expenses = append(s.expenses[:i], s.expenses[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) CreateItem(_ context.Context, item core.WishlistItem) (string, error) {
	if err := item.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	item.ID = s.nextID()
	s.items = append(s.items, item)
	return item.ID, nil
}

func (s *Store) ListItems(_ context.Context, userID string) ([]core.WishlistItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.WishlistItem
	for _, it := range s.items {
		if it.UserID == userID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (s *Store) UpdateItem(_ context.Context, item core.WishlistItem) error {
	if err := item.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, it := range s.items {
		if it.ID == item.ID && it.UserID == item.UserID {
			s.items[i] = item
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) DeleteItem(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, it := range s.items {
		if it.ID == id && it.UserID == userID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) ListReviewReady(_ context.Context, now time.Time) ([]core.WishlistItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.WishlistItem
	for _, it := range s.items {
		if core.IsReviewReady(it, now) {
			out = append(out, it)
		}
	}
	return out, nil
}

func (s *Store) CreateBudget(_ context.Context, b core.MonthlyBudget) (string, error) {
	if err := b.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.budgets {
		if existing.UserID == b.UserID && existing.MonthKey == b.MonthKey {
			return "", store.ErrDuplicateBudget
		}
	}
	b.ID = s.nextID()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = s.now()
	}
	// Copy the category slice so callers cannot mutate stored state.
	b.Categories = append([]core.BudgetCategory(nil), b.Categories...)
	s.budgets = append(s.budgets, b)
	return b.ID, nil
}

func (s *Store) FindBudget(_ context.Context, userID, monthKey string) (core.MonthlyBudget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.budgets {
		if b.UserID == userID && b.MonthKey == monthKey {
			b.Categories = append([]core.BudgetCategory(nil), b.Categories...)
			return b, nil
		}
	}
	return core.MonthlyBudget{}, store.ErrNotFound
}
