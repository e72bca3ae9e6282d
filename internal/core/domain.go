package core

import (
	"errors"
	"strings"
	"time"
)

const (
	TagPlanned Tag = "planned"
	TagImpulse Tag = "impulse"
)

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// ReviewDelay is how long a wishlist item rests before it is flagged as
// ready for reconsideration. Recomputed from "now" on every create and update.
const ReviewDelay = 7 * 24 * time.Hour

type (
	// Tag classifies an expense as planned or impulse.
	Tag string

	// Urgency classifies how soon a wishlist item matters to the user.
	Urgency string

	// Expense is a single spend record. Immutable after creation except
	// deletion; there is no update path.
	Expense struct {
		ID        string
		UserID    string
		Amount    Money
		Category  string
		Tag       Tag
		CreatedAt time.Time // store-assigned on create
	}

	// WishlistItem is a deferred purchase under consideration. Title, Price
	// and Urgency are replaceable in place; ReviewAfter is recomputed to
	// now+ReviewDelay on every write, never preserved from the original.
	WishlistItem struct {
		ID          string
		UserID      string
		Title       string
		Price       Money
		Urgency     Urgency
		ReviewAfter time.Time
	}

	// BudgetCategory is one named spending limit inside a monthly budget.
	BudgetCategory struct {
		Name  string
		Limit Money
	}

	// MonthlyBudget holds the per-month envelope for a user. At most one
	// record may exist per (UserID, MonthKey) pair.
	MonthlyBudget struct {
		ID         string
		UserID     string
		MonthKey   string // YYYY-MM, zero-padded
		Total      Money
		Categories []BudgetCategory
		CreatedAt  time.Time
	}
)

var (
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrEmptyUser      = errors.New("empty user id")
	ErrEmptyCategory  = errors.New("empty category")
	ErrEmptyTitle     = errors.New("empty title")
	ErrInvalidTag     = errors.New("invalid tag")
	ErrInvalidUrgency = errors.New("invalid urgency")
)

// IsValid reports whether the tag is one of the two known literals.
func (t Tag) IsValid() bool {
	return t == TagPlanned || t == TagImpulse
}

func (u Urgency) IsValid() bool {
	switch u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh:
		return true
	default:
		return false
	}
}

// MonthKey formats a year and calendar month as the zero-padded YYYY-MM key
// used to address monthly budget records.
func MonthKey(year int, month time.Month) string {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
}

func (e Expense) Validate() error {
	if strings.TrimSpace(e.UserID) == "" {
		return ErrEmptyUser
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	if len(e.Category) > 100 {
		return errors.New("category too long (max 100 characters)")
	}
	if !e.Tag.IsValid() {
		return ErrInvalidTag
	}
	return nil
}

func (w WishlistItem) Validate() error {
	if strings.TrimSpace(w.UserID) == "" {
		return ErrEmptyUser
	}
	if strings.TrimSpace(w.Title) == "" {
		return ErrEmptyTitle
	}
	if len(w.Title) > 200 {
		return errors.New("title too long (max 200 characters)")
	}
	if err := w.Price.Validate(); err != nil {
		return err
	}
	if !w.Urgency.IsValid() {
		return ErrInvalidUrgency
	}
	return nil
}

func (b MonthlyBudget) Validate() error {
	if strings.TrimSpace(b.UserID) == "" {
		return ErrEmptyUser
	}
	if _, err := time.Parse("2006-01", b.MonthKey); err != nil {
		return errors.New("invalid month key: " + b.MonthKey)
	}
	if err := b.Total.Validate(); err != nil {
		return err
	}
	for _, c := range b.Categories {
		if strings.TrimSpace(c.Name) == "" {
			return ErrEmptyCategory
		}
		if err := c.Limit.Validate(); err != nil {
			return err
		}
	}
	return nil
}
