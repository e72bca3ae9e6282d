package http

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/khanburhan/tokritrack/internal/core"
	"github.com/khanburhan/tokritrack/internal/log"
)

type budgetCategoryRow struct {
	Name  string
	Limit string
	Spent string
	Width int
	Over  bool
}

type categorySlice struct {
	Name   string
	Amount float64
}

type expenseRow struct {
	ID       string
	Amount   string
	Category string
	Tag      string
	Date     string
}

type budgetPageData struct {
	Theme string
	User  string

	Year      int
	Month     int
	MonthName string
	Months    []int

	Created     bool
	Error       string
	TotalLimit  string
	MonthTotal  string
	Categories  []budgetCategoryRow
	CategoryPie []categorySlice
	Expenses    []expenseRow
}

// handleBudget renders the monthly budget screen: the resolved budget with
// per-category spending and the month's expenses.
func (s *Server) handleBudget(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	user := currentUser(r)
	year, month := parseYearMonth(r, s.loc)

	budget, created, err := s.budgets.Resolve(r.Context(), user.ID, year, month)
	if err != nil {
		s.logs.LogError(r.Context(), "Budget resolve failed", err, log.ComponentBudget, log.OpResolve,
			log.NewFields().WithUser(user.ID).WithMonthKey(core.MonthKey(year, month)))
		http.Error(w, "failed to load budget", http.StatusInternalServerError)
		return
	}

	all, err := s.expenses.List(r.Context(), user.ID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Expense list failed", "error", err, "user_id", user.ID)
		http.Error(w, "failed to load expenses", http.StatusInternalServerError)
		return
	}

	monthExpenses := core.SelectInMonth(all, month, year, s.loc)
	spentByCategory := core.SumByCategory(monthExpenses)

	categories := make([]budgetCategoryRow, 0, len(budget.Categories))
	for _, cat := range budget.Categories {
		spent := spentByCategory[cat.Name]
		width := 0
		if cat.Limit.Cents > 0 {
			width = int((spent.Cents*100 + cat.Limit.Cents/2) / cat.Limit.Cents)
			if width > 100 {
				width = 100
			}
		}
		categories = append(categories, budgetCategoryRow{
			Name:  cat.Name,
			Limit: formatAmount(cat.Limit),
			Spent: formatAmount(spent),
			Width: width,
			Over:  spent.Cents > cat.Limit.Cents,
		})
	}

	// Pie slices in first-appearance order; map iteration would shuffle them
	pie := make([]categorySlice, 0, len(spentByCategory))
	seen := make(map[string]bool, len(spentByCategory))
	for _, e := range monthExpenses {
		if seen[e.Category] {
			continue
		}
		seen[e.Category] = true
		pie = append(pie, categorySlice{Name: e.Category, Amount: spentByCategory[e.Category].Float64()})
	}

	rows := make([]expenseRow, 0, len(monthExpenses))
	for _, e := range monthExpenses {
		rows = append(rows, expenseRow{
			ID:       e.ID,
			Amount:   formatAmount(e.Amount),
			Category: e.Category,
			Tag:      string(e.Tag),
			Date:     e.CreatedAt.In(s.loc).Format("Jan 2"),
		})
	}

	s.render(w, r, "budget.html", budgetPageData{
		Theme:       theme(r),
		User:        user.Name,
		Year:        year,
		Month:       int(month),
		MonthName:   month.String(),
		Months:      []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12},
		Created:     created,
		Error:       sanitizeInput(r.URL.Query().Get("error")),
		TotalLimit:  formatAmount(budget.Total),
		MonthTotal:  formatAmount(core.Total(monthExpenses)),
		Categories:  categories,
		CategoryPie: pie,
		Expenses:    rows,
	})
}

// handleCreateExpense records a submitted expense and reloads the screen.
func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/budget?error=Invalid+request", http.StatusSeeOther)
		return
	}

	user := currentUser(r)
	amount := strings.TrimSpace(r.Form.Get("amount"))
	category := sanitizeInput(r.Form.Get("category"))
	tag := strings.TrimSpace(r.Form.Get("tag"))

	expense, err := s.expenses.Create(r.Context(), user.ID, amount, category, tag)
	if err != nil {
		slog.WarnContext(r.Context(), "Expense rejected", "error", err, "user_id", user.ID)
		http.Redirect(w, r, s.budgetURL(r, url.Values{"error": {"Invalid expense: " + err.Error()}}), http.StatusSeeOther)
		return
	}

	s.logs.LogExpenseRecorded(r.Context(), user.ID, expense.Amount.Cents, expense.Category, string(expense.Tag), expense.ID)
	http.Redirect(w, r, s.budgetURL(r, nil), http.StatusSeeOther)
}

// handleDeleteExpense removes an expense and reloads the screen.
func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/budget?error=Invalid+request", http.StatusSeeOther)
		return
	}

	user := currentUser(r)
	id := strings.TrimSpace(r.Form.Get("id"))

	if err := s.expenses.Delete(r.Context(), user.ID, id); err != nil {
		slog.WarnContext(r.Context(), "Expense delete failed", "error", err, "user_id", user.ID, "record_id", id)
		http.Redirect(w, r, s.budgetURL(r, url.Values{"error": {"Could not delete expense"}}), http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, s.budgetURL(r, nil), http.StatusSeeOther)
}

// budgetURL rebuilds the budget screen URL, keeping the submitted month.
func (s *Server) budgetURL(r *http.Request, extra url.Values) string {
	now := time.Now().In(s.loc)
	year := now.Year()
	month := int(now.Month())

	if v := strings.TrimSpace(r.Form.Get("year")); v != "" {
		if y, err := strconv.Atoi(v); err == nil {
			year = y
		}
	}
	if v := strings.TrimSpace(r.Form.Get("month")); v != "" {
		if m, err := strconv.Atoi(v); err == nil && m >= 1 && m <= 12 {
			month = m
		}
	}

	values := url.Values{
		"year":  {strconv.Itoa(year)},
		"month": {strconv.Itoa(month)},
	}
	for key, vals := range extra {
		values[key] = vals
	}
	return "/budget?" + values.Encode()
}
