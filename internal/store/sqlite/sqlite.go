// Package sqlite implements the record store ports on a local SQLite file,
// the no-server alternative to the hosted document store backend.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/khanburhan/tokritrack/internal/core"
	"github.com/khanburhan/tokritrack/internal/store"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

type budgetCategoryRow struct {
	Name       string `json:"name"`
	LimitCents int64  `json:"limitCents"`
}

func (s *Store) CreateExpense(ctx context.Context, e core.Expense) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO expenses (user_id, amount_cents, category, tag, created_at) VALUES (?, ?, ?, ?, ?)`,
		e.UserID, e.Amount.Cents, e.Category, string(e.Tag), createdAt.UTC())
	if err != nil {
		return "", fmt.Errorf("insert expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("expense insert id: %w", err)
	}
	return strconv.FormatInt(id, 10), nil
}

func (s *Store) ListExpenses(ctx context.Context, userID string) ([]core.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, amount_cents, category, tag, created_at FROM expenses WHERE user_id = ? ORDER BY id`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		var (
			id    int64
			e     core.Expense
			cents int64
			tag   string
		)
		if err := rows.Scan(&id, &e.UserID, &cents, &e.Category, &tag, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		e.ID = strconv.FormatInt(id, 10)
		e.Amount = core.Money{Cents: cents}
		e.Tag = core.Tag(tag)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) DeleteExpense(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM expenses WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) CreateItem(ctx context.Context, item core.WishlistItem) (string, error) {
	if err := item.Validate(); err != nil {
		return "", err
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO wishlist_items (user_id, title, price_cents, urgency, review_after) VALUES (?, ?, ?, ?, ?)`,
		item.UserID, item.Title, item.Price.Cents, string(item.Urgency), item.ReviewAfter.UTC())
	if err != nil {
		return "", fmt.Errorf("insert wishlist item: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("wishlist insert id: %w", err)
	}
	return strconv.FormatInt(id, 10), nil
}

func (s *Store) ListItems(ctx context.Context, userID string) ([]core.WishlistItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, title, price_cents, urgency, review_after FROM wishlist_items WHERE user_id = ? ORDER BY id`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("query wishlist items: %w", err)
	}
	defer rows.Close()
	return scanItems(rows)
}

func (s *Store) UpdateItem(ctx context.Context, item core.WishlistItem) error {
	if err := item.Validate(); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE wishlist_items SET title = ?, price_cents = ?, urgency = ?, review_after = ? WHERE id = ? AND user_id = ?`,
		item.Title, item.Price.Cents, string(item.Urgency), item.ReviewAfter.UTC(), item.ID, item.UserID)
	if err != nil {
		return fmt.Errorf("update wishlist item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteItem(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM wishlist_items WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete wishlist item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) ListReviewReady(ctx context.Context, now time.Time) ([]core.WishlistItem, error) {
	// Items saved without a review date carry the zero time and never
	// become review-ready.
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, title, price_cents, urgency, review_after FROM wishlist_items WHERE review_after > ? AND review_after <= ? ORDER BY review_after`,
		time.Time{}.UTC(), now.UTC())
	if err != nil {
		return nil, fmt.Errorf("query review-ready items: %w", err)
	}
	defer rows.Close()
	return scanItems(rows)
}

func scanItems(rows *sql.Rows) ([]core.WishlistItem, error) {
	var out []core.WishlistItem
	for rows.Next() {
		var (
			id      int64
			it      core.WishlistItem
			cents   int64
			urgency string
		)
		if err := rows.Scan(&id, &it.UserID, &it.Title, &cents, &urgency, &it.ReviewAfter); err != nil {
			return nil, fmt.Errorf("scan wishlist item: %w", err)
		}
		it.ID = strconv.FormatInt(id, 10)
		it.Price = core.Money{Cents: cents}
		it.Urgency = core.Urgency(urgency)
		out = append(out, it)
	}
	return out, rows.Err()
}

func (s *Store) CreateBudget(ctx context.Context, b core.MonthlyBudget) (string, error) {
	if err := b.Validate(); err != nil {
		return "", err
	}
	cats := make([]budgetCategoryRow, 0, len(b.Categories))
	for _, c := range b.Categories {
		cats = append(cats, budgetCategoryRow{Name: c.Name, LimitCents: c.Limit.Cents})
	}
	encoded, err := json.Marshal(cats)
	if err != nil {
		return "", fmt.Errorf("encode budget categories: %w", err)
	}

	createdAt := b.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO monthly_budgets (user_id, month, total_cents, categories, created_at) VALUES (?, ?, ?, ?, ?)`,
		b.UserID, b.MonthKey, b.Total.Cents, string(encoded), createdAt.UTC())
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return "", store.ErrDuplicateBudget
		}
		return "", fmt.Errorf("insert monthly budget: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("budget insert id: %w", err)
	}
	return strconv.FormatInt(id, 10), nil
}

func (s *Store) FindBudget(ctx context.Context, userID, monthKey string) (core.MonthlyBudget, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, month, total_cents, categories, created_at FROM monthly_budgets WHERE user_id = ? AND month = ?`,
		userID, monthKey)

	var (
		id      int64
		b       core.MonthlyBudget
		cents   int64
		encoded string
	)
	if err := row.Scan(&id, &b.UserID, &b.MonthKey, &cents, &encoded, &b.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return core.MonthlyBudget{}, store.ErrNotFound
		}
		return core.MonthlyBudget{}, fmt.Errorf("scan monthly budget: %w", err)
	}
	b.ID = strconv.FormatInt(id, 10)
	b.Total = core.Money{Cents: cents}

	var cats []budgetCategoryRow
	if err := json.Unmarshal([]byte(encoded), &cats); err != nil {
		return core.MonthlyBudget{}, fmt.Errorf("decode budget categories: %w", err)
	}
	for _, c := range cats {
		b.Categories = append(b.Categories, core.BudgetCategory{
			Name:  c.Name,
			Limit: core.Money{Cents: c.LimitCents},
		})
	}
	return b, nil
}
