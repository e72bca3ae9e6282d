package http

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/khanburhan/tokritrack/internal/core"
	"github.com/khanburhan/tokritrack/internal/log"
)

type wishlistRow struct {
	ID          string
	Title       string
	Price       string
	RawPrice    string
	Urgency     string
	ReviewAfter string
	ReviewReady bool
}

type wishlistPageData struct {
	Theme string
	User  string

	Search     string
	Urgency    string
	Error      string
	Items      []wishlistRow
	ReadyCount int
	TotalCount int
}

// handleWishlist renders the wishlist screen (GET) and adds items (POST).
// The list honors the search box and urgency filter together.
func (s *Server) handleWishlist(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.renderWishlist(w, r)
	case http.MethodPost:
		s.createWishlistItem(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) renderWishlist(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	search := sanitizeInput(r.URL.Query().Get("search"))
	urgency := strings.TrimSpace(r.URL.Query().Get("urgency"))

	all, err := s.wishlist.List(r.Context(), user.ID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Wishlist load failed", "error", err, "user_id", user.ID)
		http.Error(w, "failed to load wishlist", http.StatusInternalServerError)
		return
	}

	filtered := core.FilterWishlist(all, search, core.Urgency(urgency))
	now := time.Now()

	rows := make([]wishlistRow, 0, len(filtered))
	ready := 0
	for _, item := range filtered {
		isReady := core.IsReviewReady(item, now)
		if isReady {
			ready++
		}
		rows = append(rows, wishlistRow{
			ID:          item.ID,
			Title:       item.Title,
			Price:       formatAmount(item.Price),
			RawPrice:    item.Price.String(),
			Urgency:     string(item.Urgency),
			ReviewAfter: item.ReviewAfter.In(s.loc).Format("Jan 2, 2006"),
			ReviewReady: isReady,
		})
	}

	s.render(w, r, "wishlist.html", wishlistPageData{
		Theme:      theme(r),
		User:       user.Name,
		Search:     search,
		Urgency:    urgency,
		Error:      sanitizeInput(r.URL.Query().Get("error")),
		Items:      rows,
		ReadyCount: ready,
		TotalCount: len(all),
	})
}

func (s *Server) createWishlistItem(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/wishlist?error=Invalid+request", http.StatusSeeOther)
		return
	}

	user := currentUser(r)
	title := sanitizeInput(r.Form.Get("title"))
	price := strings.TrimSpace(r.Form.Get("price"))
	urgency := strings.TrimSpace(r.Form.Get("urgency"))

	item, err := s.wishlist.Create(r.Context(), user.ID, title, price, urgency)
	if err != nil {
		slog.WarnContext(r.Context(), "Wishlist item rejected", "error", err, "user_id", user.ID)
		http.Redirect(w, r, "/wishlist?"+url.Values{"error": {"Invalid item: " + err.Error()}}.Encode(), http.StatusSeeOther)
		return
	}

	s.logs.LogWishlistSaved(r.Context(), user.ID, item.Title, item.Price.Cents, string(item.Urgency), log.OpCreate)
	http.Redirect(w, r, "/wishlist", http.StatusSeeOther)
}

// handleUpdateWishlistItem rewrites an item, restarting its cooling-off period.
func (s *Server) handleUpdateWishlistItem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/wishlist?error=Invalid+request", http.StatusSeeOther)
		return
	}

	user := currentUser(r)
	id := strings.TrimSpace(r.Form.Get("id"))
	title := sanitizeInput(r.Form.Get("title"))
	price := strings.TrimSpace(r.Form.Get("price"))
	urgency := strings.TrimSpace(r.Form.Get("urgency"))

	item, err := s.wishlist.Update(r.Context(), user.ID, id, title, price, urgency)
	if err != nil {
		slog.WarnContext(r.Context(), "Wishlist update failed", "error", err, "user_id", user.ID, "record_id", id)
		http.Redirect(w, r, "/wishlist?"+url.Values{"error": {"Could not update item"}}.Encode(), http.StatusSeeOther)
		return
	}

	s.logs.LogWishlistSaved(r.Context(), user.ID, item.Title, item.Price.Cents, string(item.Urgency), log.OpUpdate)
	http.Redirect(w, r, "/wishlist", http.StatusSeeOther)
}

// handleDeleteWishlistItem removes an item.
func (s *Server) handleDeleteWishlistItem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/wishlist?error=Invalid+request", http.StatusSeeOther)
		return
	}

	user := currentUser(r)
	id := strings.TrimSpace(r.Form.Get("id"))

	if err := s.wishlist.Delete(r.Context(), user.ID, id); err != nil {
		slog.WarnContext(r.Context(), "Wishlist delete failed", "error", err, "user_id", user.ID, "record_id", id)
		http.Redirect(w, r, "/wishlist?"+url.Values{"error": {"Could not delete item"}}.Encode(), http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, "/wishlist", http.StatusSeeOther)
}
