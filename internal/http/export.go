package http

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/khanburhan/tokritrack/internal/core"
)

// handleExportExpenses streams the selected month's expenses as CSV.
func (s *Server) handleExportExpenses(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	user := currentUser(r)
	year, month := parseYearMonth(r, s.loc)

	all, err := s.expenses.List(r.Context(), user.ID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Expense export failed", "error", err, "user_id", user.ID)
		http.Error(w, "failed to export expenses", http.StatusInternalServerError)
		return
	}
	monthExpenses := core.SelectInMonth(all, month, year, s.loc)

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="expenses-%s.csv"`, core.MonthKey(year, month)))

	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"Amount", "Category", "Tag"}); err != nil {
		slog.ErrorContext(r.Context(), "CSV write failed", "error", err)
		return
	}
	for _, e := range monthExpenses {
		if err := writer.Write([]string{e.Amount.String(), e.Category, string(e.Tag)}); err != nil {
			slog.ErrorContext(r.Context(), "CSV write failed", "error", err)
			return
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		slog.ErrorContext(r.Context(), "CSV flush failed", "error", err)
	}
}

// handleExportWishlist streams the wishlist as CSV, honoring the same
// search and urgency filters as the screen.
func (s *Server) handleExportWishlist(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	user := currentUser(r)
	search := sanitizeInput(r.URL.Query().Get("search"))
	urgency := strings.TrimSpace(r.URL.Query().Get("urgency"))

	items, err := s.wishlist.List(r.Context(), user.ID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Wishlist export failed", "error", err, "user_id", user.ID)
		http.Error(w, "failed to export wishlist", http.StatusInternalServerError)
		return
	}
	items = core.FilterWishlist(items, search, core.Urgency(urgency))

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="wishlist.csv"`)

	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"Title", "Price", "Urgency"}); err != nil {
		slog.ErrorContext(r.Context(), "CSV write failed", "error", err)
		return
	}
	for _, item := range items {
		if err := writer.Write([]string{item.Title, item.Price.String(), string(item.Urgency)}); err != nil {
			slog.ErrorContext(r.Context(), "CSV write failed", "error", err)
			return
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		slog.ErrorContext(r.Context(), "CSV flush failed", "error", err)
	}
}
