package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func expenseOn(t *testing.T, amount int64, category string, tag Tag, day string) Expense {
	t.Helper()
	created, err := time.ParseInLocation("2006-01-02", day, time.UTC)
	require.NoError(t, err)
	return Expense{
		UserID:    "u1",
		Amount:    Money{Cents: amount},
		Category:  category,
		Tag:       tag,
		CreatedAt: created,
	}
}

func TestSelectInMonth(t *testing.T) {
	expenses := []Expense{
		expenseOn(t, 5000, "Food", TagPlanned, "2024-03-05"),
		expenseOn(t, 2000, "Food", TagImpulse, "2024-03-10"),
		expenseOn(t, 3000, "Transport", TagPlanned, "2024-04-01"),
	}

	march := SelectInMonth(expenses, time.March, 2024, time.UTC)
	require.Len(t, march, 2)
	for _, e := range march {
		assert.Equal(t, time.March, e.CreatedAt.Month())
		assert.Equal(t, 2024, e.CreatedAt.Year())
	}
	// input order preserved
	assert.Equal(t, int64(5000), march[0].Amount.Cents)
	assert.Equal(t, int64(2000), march[1].Amount.Cents)

	assert.Empty(t, SelectInMonth(expenses, time.May, 2024, time.UTC))
}

func TestSelectInMonthSkipsZeroTimestamps(t *testing.T) {
	expenses := []Expense{
		{UserID: "u1", Amount: Money{Cents: 100}, Category: "Food", Tag: TagPlanned},
		expenseOn(t, 200, "Food", TagPlanned, "2024-03-05"),
	}
	got := SelectInMonth(expenses, time.March, 2024, time.UTC)
	require.Len(t, got, 1)
	assert.Equal(t, int64(200), got[0].Amount.Cents)
}

func TestSelectInMonthRespectsLocation(t *testing.T) {
	// 2024-03-31 23:30 UTC is already April in UTC+2.
	e := Expense{
		UserID:    "u1",
		Amount:    Money{Cents: 100},
		Category:  "Food",
		Tag:       TagPlanned,
		CreatedAt: time.Date(2024, time.March, 31, 23, 30, 0, 0, time.UTC),
	}
	plusTwo := time.FixedZone("UTC+2", 2*3600)
	assert.Len(t, SelectInMonth([]Expense{e}, time.March, 2024, time.UTC), 1)
	assert.Len(t, SelectInMonth([]Expense{e}, time.April, 2024, plusTwo), 1)
	assert.Empty(t, SelectInMonth([]Expense{e}, time.March, 2024, plusTwo))
}

func TestSumByCategory(t *testing.T) {
	expenses := []Expense{
		expenseOn(t, 5000, "Food", TagPlanned, "2024-03-05"),
		expenseOn(t, 2000, "Food", TagImpulse, "2024-03-10"),
		expenseOn(t, 3000, "Transport", TagPlanned, "2024-04-01"),
	}

	march := SelectInMonth(expenses, time.March, 2024, time.UTC)
	totals := SumByCategory(march)
	assert.Equal(t, map[string]Money{"Food": {Cents: 7000}}, totals)

	// idempotent: same input, same output, input untouched
	again := SumByCategory(march)
	assert.Equal(t, totals, again)
	assert.Equal(t, int64(5000), march[0].Amount.Cents)

	assert.Empty(t, SumByCategory(nil))
}

func TestSumByWeekday(t *testing.T) {
	expenses := []Expense{
		expenseOn(t, 1000, "Food", TagPlanned, "2024-03-04"), // Monday
		expenseOn(t, 2500, "Food", TagPlanned, "2024-03-11"), // Monday
		expenseOn(t, 500, "Transport", TagImpulse, "2024-03-05"), // Tuesday
		{UserID: "u1", Amount: Money{Cents: 999}, Category: "Food", Tag: TagPlanned}, // no timestamp
	}

	totals := SumByWeekday(expenses, time.UTC)
	assert.Equal(t, map[string]Money{
		"Mon": {Cents: 3500},
		"Tue": {Cents: 500},
	}, totals)
}

func TestCountByTag(t *testing.T) {
	expenses := []Expense{
		expenseOn(t, 1000, "Food", TagPlanned, "2024-03-04"),
		expenseOn(t, 2000, "Food", TagImpulse, "2024-03-05"),
		expenseOn(t, 3000, "Food", "", "2024-03-06"), // unknown tag
	}

	planned, impulse := CountByTag(expenses)
	assert.Equal(t, 1, planned)
	assert.Equal(t, 1, impulse)
	assert.LessOrEqual(t, planned+impulse, len(expenses))

	// equality holds when every tag is a known literal
	planned, impulse = CountByTag(expenses[:2])
	assert.Equal(t, len(expenses[:2]), planned+impulse)
}

func TestIsReviewReady(t *testing.T) {
	created := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	item := WishlistItem{
		UserID:      "u1",
		Title:       "Camera",
		Price:       Money{Cents: 49999},
		Urgency:     UrgencyMedium,
		ReviewAfter: created.Add(ReviewDelay),
	}

	assert.False(t, IsReviewReady(item, created.Add(6*24*time.Hour)))
	assert.True(t, IsReviewReady(item, created.Add(7*24*time.Hour)))
	assert.True(t, IsReviewReady(item, created.Add(8*24*time.Hour)))

	// unset review-after never flags
	item.ReviewAfter = time.Time{}
	assert.False(t, IsReviewReady(item, created))
}

func TestFilterWishlist(t *testing.T) {
	items := []WishlistItem{
		{Title: "Mechanical Keyboard", Urgency: UrgencyHigh},
		{Title: "Espresso machine", Urgency: UrgencyLow},
		{Title: "Keyboard stand", Urgency: UrgencyLow},
	}

	t.Run("empty filters return everything in order", func(t *testing.T) {
		got := FilterWishlist(items, "", "")
		assert.Equal(t, items, got)
	})

	t.Run("case-insensitive substring on title", func(t *testing.T) {
		got := FilterWishlist(items, "KEYBOARD", "")
		require.Len(t, got, 2)
		assert.Equal(t, "Mechanical Keyboard", got[0].Title)
		assert.Equal(t, "Keyboard stand", got[1].Title)
	})

	t.Run("urgency filter is conjunctive", func(t *testing.T) {
		got := FilterWishlist(items, "keyboard", UrgencyLow)
		require.Len(t, got, 1)
		assert.Equal(t, "Keyboard stand", got[0].Title)
	})

	t.Run("no match", func(t *testing.T) {
		assert.Empty(t, FilterWishlist(items, "bicycle", ""))
	})
}

func TestTotal(t *testing.T) {
	expenses := []Expense{
		expenseOn(t, 1050, "Food", TagPlanned, "2024-03-04"),
		expenseOn(t, 950, "Food", TagImpulse, "2024-03-05"),
	}
	assert.Equal(t, Money{Cents: 2000}, Total(expenses))
	assert.Equal(t, Money{}, Total(nil))
}
