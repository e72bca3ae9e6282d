package core

import (
	"strings"
	"time"
)

// Aggregation over record lists. Every function here is pure: no I/O, no
// mutation of inputs, identical output for identical input. Date bucketing
// takes the timezone as an explicit parameter so tests are deterministic
// across environments.

// SelectInMonth returns the subsequence of expenses whose creation timestamp,
// viewed in loc, falls in the given calendar month and year. Records with a
// zero creation timestamp are excluded. Input order is preserved.
func SelectInMonth(expenses []Expense, month time.Month, year int, loc *time.Location) []Expense {
	var out []Expense
	for _, e := range expenses {
		if e.CreatedAt.IsZero() {
			continue
		}
		t := e.CreatedAt.In(loc)
		if t.Month() == month && t.Year() == year {
			out = append(out, e)
		}
	}
	return out
}

// SumByCategory maps each category label to the sum of its amounts.
// Categories absent from the input never appear in the output.
func SumByCategory(expenses []Expense) map[string]Money {
	totals := make(map[string]Money)
	for _, e := range expenses {
		totals[e.Category] = totals[e.Category].Add(e.Amount)
	}
	return totals
}

// SumByWeekday maps short weekday names ("Mon".."Sun", derived from each
// record's creation timestamp in loc) to summed amounts. Only weekdays with
// at least one expense appear; records without a timestamp are skipped.
func SumByWeekday(expenses []Expense, loc *time.Location) map[string]Money {
	totals := make(map[string]Money)
	for _, e := range expenses {
		if e.CreatedAt.IsZero() {
			continue
		}
		day := e.CreatedAt.In(loc).Format("Mon")
		totals[day] = totals[day].Add(e.Amount)
	}
	return totals
}

// Total sums all expense amounts.
func Total(expenses []Expense) Money {
	var sum Money
	for _, e := range expenses {
		sum = sum.Add(e.Amount)
	}
	return sum
}

// CountByTag counts expenses tagged planned and impulse. Records carrying
// neither literal fall in neither bucket, so planned+impulse may be less
// than len(expenses).
func CountByTag(expenses []Expense) (planned, impulse int) {
	for _, e := range expenses {
		switch e.Tag {
		case TagPlanned:
			planned++
		case TagImpulse:
			impulse++
		}
	}
	return planned, impulse
}

// IsReviewReady reports whether the item's review-after timestamp is set and
// has passed (ReviewAfter <= now).
func IsReviewReady(item WishlistItem, now time.Time) bool {
	return !item.ReviewAfter.IsZero() && !item.ReviewAfter.After(now)
}

// FilterWishlist returns items whose title contains searchTerm
// (case-insensitive) and whose urgency matches the filter. An empty
// searchTerm matches every title; an empty urgency matches every item.
// Order is preserved.
func FilterWishlist(items []WishlistItem, searchTerm string, urgency Urgency) []WishlistItem {
	needle := strings.ToLower(searchTerm)
	out := make([]WishlistItem, 0, len(items))
	for _, it := range items {
		if !strings.Contains(strings.ToLower(it.Title), needle) {
			continue
		}
		if urgency != "" && it.Urgency != urgency {
			continue
		}
		out = append(out, it)
	}
	return out
}
