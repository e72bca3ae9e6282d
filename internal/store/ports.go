// Package store defines the ports to the record store. Every operation is
// scoped by the owning user; there is no cross-user access path.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/khanburhan/tokritrack/internal/core"
)

var (
	// ErrNotFound is returned when no record matches the given filters.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateBudget is returned when a create would produce a second
	// budget record for the same (user, month) pair.
	ErrDuplicateBudget = errors.New("duplicate monthly budget")
)

type (
	// ExpenseStore persists expense records. Expenses are immutable after
	// creation; there is intentionally no update operation.
	ExpenseStore interface {
		CreateExpense(ctx context.Context, e core.Expense) (id string, err error)
		ListExpenses(ctx context.Context, userID string) ([]core.Expense, error)
		DeleteExpense(ctx context.Context, userID, id string) error
	}

	// WishlistStore persists wishlist items.
	WishlistStore interface {
		CreateItem(ctx context.Context, item core.WishlistItem) (id string, err error)
		ListItems(ctx context.Context, userID string) ([]core.WishlistItem, error)
		UpdateItem(ctx context.Context, item core.WishlistItem) error
		DeleteItem(ctx context.Context, userID, id string) error

		// ListReviewReady returns, across all users, items whose
		// review-after timestamp is set and has passed. Used by the
		// reminder worker.
		ListReviewReady(ctx context.Context, now time.Time) ([]core.WishlistItem, error)
	}

	// BudgetStore persists monthly budget records. CreateBudget must refuse
	// a second record for the same (user, month key) with
	// ErrDuplicateBudget where the backend can enforce it.
	BudgetStore interface {
		CreateBudget(ctx context.Context, b core.MonthlyBudget) (id string, err error)
		FindBudget(ctx context.Context, userID, monthKey string) (core.MonthlyBudget, error)
	}
)
