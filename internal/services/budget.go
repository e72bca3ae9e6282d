package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/khanburhan/tokritrack/internal/core"
	"github.com/khanburhan/tokritrack/internal/store"
)

// Default budget handed to a user the first time a month is opened
var defaultBudget = core.MonthlyBudget{
	Total: core.Money{Cents: 100000},
	Categories: []core.BudgetCategory{
		{Name: "Food", Limit: core.Money{Cents: 30000}},
		{Name: "Transport", Limit: core.Money{Cents: 20000}},
		{Name: "Shopping", Limit: core.Money{Cents: 50000}},
	},
}

// BudgetResolver returns the budget for a user's month, creating the default
// one on first access. A per-(user, month) lock plus the store's unique index
// keep concurrent first accesses down to a single created budget.
type BudgetResolver struct {
	store store.BudgetStore

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewBudgetResolver(store store.BudgetStore) *BudgetResolver {
	return &BudgetResolver{
		store: store,
		locks: make(map[string]*sync.Mutex),
	}
}

// Resolve finds or creates the budget for the month. The second return value
// reports whether this call created it.
func (r *BudgetResolver) Resolve(ctx context.Context, userID string, year int, month time.Month) (core.MonthlyBudget, bool, error) {
	monthKey := core.MonthKey(year, month)

	budget, err := r.store.FindBudget(ctx, userID, monthKey)
	if err == nil {
		return budget, false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return core.MonthlyBudget{}, false, fmt.Errorf("find budget: %w", err)
	}

	lock := r.lockFor(userID + "/" + monthKey)
	lock.Lock()
	defer lock.Unlock()

	// Another request may have created it while we waited for the lock
	budget, err = r.store.FindBudget(ctx, userID, monthKey)
	if err == nil {
		return budget, false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return core.MonthlyBudget{}, false, fmt.Errorf("find budget: %w", err)
	}

	created := defaultBudget
	created.UserID = userID
	created.MonthKey = monthKey
	created.Categories = append([]core.BudgetCategory(nil), defaultBudget.Categories...)

	id, err := r.store.CreateBudget(ctx, created)
	if errors.Is(err, store.ErrDuplicateBudget) {
		// Lost the race against another process; the winner's budget stands
		budget, err = r.store.FindBudget(ctx, userID, monthKey)
		if err != nil {
			return core.MonthlyBudget{}, false, fmt.Errorf("reread budget after conflict: %w", err)
		}
		return budget, false, nil
	}
	if err != nil {
		return core.MonthlyBudget{}, false, fmt.Errorf("create budget: %w", err)
	}

	created.ID = id
	return created, true, nil
}

func (r *BudgetResolver) lockFor(key string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	if lock, ok := r.locks[key]; ok {
		return lock
	}
	lock := &sync.Mutex{}
	r.locks[key] = lock
	return lock
}
