package http

import (
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/khanburhan/tokritrack/internal/core"
)

type weekdayBar struct {
	Day    string
	Amount float64
}

type dashboardData struct {
	Theme string
	User  string

	Total         string
	WishlistCount int
	ImpulseCount  int

	PlannedCount int
	WeekdayBars  []weekdayBar
	HasExpenses  bool
}

// weekdayOrder fixes the chart order; map iteration would shuffle it
var weekdayOrder = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// handleDashboard renders the overview: lifetime total, wishlist size,
// impulse flags and the two charts. The two store reads run concurrently.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	user := currentUser(r)

	var (
		expenses []core.Expense
		items    []core.WishlistItem
	)

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		expenses, err = s.expenses.List(ctx, user.ID)
		return err
	})
	g.Go(func() error {
		var err error
		items, err = s.wishlist.List(ctx, user.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		slog.ErrorContext(r.Context(), "Dashboard load failed", "error", err, "user_id", user.ID)
		http.Error(w, "failed to load dashboard", http.StatusInternalServerError)
		return
	}

	planned, impulse := core.CountByTag(expenses)
	byWeekday := core.SumByWeekday(expenses, s.loc)

	bars := make([]weekdayBar, 0, len(weekdayOrder))
	for _, day := range weekdayOrder {
		if amount, ok := byWeekday[day]; ok {
			bars = append(bars, weekdayBar{Day: day, Amount: amount.Float64()})
		}
	}

	s.render(w, r, "dashboard.html", dashboardData{
		Theme:         theme(r),
		User:          user.Name,
		Total:         formatAmount(core.Total(expenses)),
		WishlistCount: len(items),
		ImpulseCount:  impulse,
		PlannedCount:  planned,
		WeekdayBars:   bars,
		HasExpenses:   len(expenses) > 0,
	})
}
