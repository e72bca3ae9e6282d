// Package services holds the application logic between HTTP handlers and
// the record stores.
package services

import (
	"context"
	"fmt"

	"github.com/khanburhan/tokritrack/internal/core"
	"github.com/khanburhan/tokritrack/internal/store"
)

// ExpenseService records and removes expenses for a user
type ExpenseService struct {
	store store.ExpenseStore
}

func NewExpenseService(store store.ExpenseStore) *ExpenseService {
	return &ExpenseService{store: store}
}

// Create parses the submitted amount and records the expense
func (s *ExpenseService) Create(ctx context.Context, userID, amount, category, tag string) (core.Expense, error) {
	money, err := core.ParseAmount(amount)
	if err != nil {
		return core.Expense{}, err
	}

	expense := core.Expense{
		UserID:   userID,
		Amount:   money,
		Category: category,
		Tag:      core.Tag(tag),
	}
	if err := expense.Validate(); err != nil {
		return core.Expense{}, err
	}

	id, err := s.store.CreateExpense(ctx, expense)
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}
	expense.ID = id
	return expense, nil
}

// List returns all expenses owned by the user
func (s *ExpenseService) List(ctx context.Context, userID string) ([]core.Expense, error) {
	return s.store.ListExpenses(ctx, userID)
}

// Delete removes the user's expense by ID
func (s *ExpenseService) Delete(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteExpense(ctx, userID, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return nil
}
