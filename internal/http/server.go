// Package http serves the Tokritrack web UI: dashboard, monthly budget,
// wishlist and CSV exports, behind Google sign-in.
package http

import (
	"context"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/khanburhan/tokritrack/internal/auth"
	"github.com/khanburhan/tokritrack/internal/log"
	"github.com/khanburhan/tokritrack/internal/services"
	appweb "github.com/khanburhan/tokritrack/web"
)

const (
	sessionCookieName = "tt_session"
	themeCookieName   = "theme"
)

type contextKey string

const userContextKey contextKey = "user"

type Server struct {
	http.Server
	templates *template.Template

	expenses *services.ExpenseService
	wishlist *services.WishlistService
	budgets  *services.BudgetResolver

	sessions       *auth.SessionManager
	verifier       auth.Verifier
	googleClientID string
	loc            *time.Location

	rateLimiter  *rateLimiter
	metrics      *securityMetrics
	logs         *log.StructuredLogger
	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, expenses *services.ExpenseService, wishlist *services.WishlistService, budgets *services.BudgetResolver, sessions *auth.SessionManager, verifier auth.Verifier, googleClientID string, loc *time.Location) *Server {
	mux := http.NewServeMux()

	if loc == nil {
		loc = time.Local
	}

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		expenses:       expenses,
		wishlist:       wishlist,
		budgets:        budgets,
		sessions:       sessions,
		verifier:       verifier,
		googleClientID: googleClientID,
		loc:            loc,
		rateLimiter: newRateLimiter(),
		metrics:     &securityMetrics{},
		logs:        log.NewStructuredLogger(log.New(log.DefaultConfig())),
	}

	// Parse embedded templates at startup.
	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		slog.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600, immutable")
			static.ServeHTTP(w, r)
		}))
	} else {
		slog.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	mux.HandleFunc("/login", s.withSecurityHeaders(s.handleLoginPage))
	mux.HandleFunc("/auth/google", s.withSecurityHeaders(s.handleGoogleSignIn))
	mux.HandleFunc("/logout", s.withSecurityHeaders(s.handleLogout))
	mux.HandleFunc("/theme", s.withSecurityHeaders(s.handleThemeToggle))

	mux.HandleFunc("/", s.withSecurityHeaders(s.requireUser(s.handleDashboard)))
	mux.HandleFunc("/budget", s.withSecurityHeaders(s.requireUser(s.handleBudget)))
	mux.HandleFunc("/expenses", s.withSecurityHeaders(s.requireUser(s.handleCreateExpense)))
	mux.HandleFunc("/expenses/delete", s.withSecurityHeaders(s.requireUser(s.handleDeleteExpense)))
	mux.HandleFunc("/wishlist", s.withSecurityHeaders(s.requireUser(s.handleWishlist)))
	mux.HandleFunc("/wishlist/update", s.withSecurityHeaders(s.requireUser(s.handleUpdateWishlistItem)))
	mux.HandleFunc("/wishlist/delete", s.withSecurityHeaders(s.requireUser(s.handleDeleteWishlistItem)))
	mux.HandleFunc("/export/expenses.csv", s.withSecurityHeaders(s.requireUser(s.handleExportExpenses)))
	mux.HandleFunc("/export/wishlist.csv", s.withSecurityHeaders(s.requireUser(s.handleExportWishlist)))

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// withSecurityHeaders adds security headers, rate limiting, and request logging to responses
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := extractClientIP(r)
		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), contextKey("request_id"), requestID)
		r = r.WithContext(ctx)

		s.logs.LogHTTPStart(ctx, r, requestID, clientIP)

		if detectSuspiciousRequest(r, s.metrics) {
			slog.WarnContext(ctx, "Suspicious request pattern", "client_ip", clientIP, "url", r.URL.Path)
		}

		// Rate limit writes only; screen loads stay cheap
		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP, s.metrics) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self' https://cdn.jsdelivr.net https://accounts.google.com; style-src 'self' 'unsafe-inline'; img-src 'self' data: https://*.googleusercontent.com; connect-src 'self' https://accounts.google.com; frame-src https://accounts.google.com")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		s.logs.LogHTTPEnd(ctx, r, requestID, rw.statusCode, duration.Milliseconds(), clientIP)
	}
}

// requireUser resolves the session cookie and rejects signed-out requests.
func (s *Server) requireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookieName)
		if err != nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		user, ok := s.sessions.Get(cookie.Value)
		if !ok {
			s.clearSessionCookie(w)
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next(w, r.WithContext(ctx))
	}
}

// currentUser returns the signed-in user stored by requireUser
func currentUser(r *http.Request) auth.User {
	user, _ := r.Context().Value(userContextKey).(auth.User)
	return user
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// theme reads the theme cookie, defaulting to light
func theme(r *http.Request) string {
	if cookie, err := r.Cookie(themeCookieName); err == nil && cookie.Value == "dark" {
		return "dark"
	}
	return "light"
}

// handleThemeToggle flips the theme cookie and sends the user back.
func (s *Server) handleThemeToggle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	next := "light"
	if theme(r) == "light" {
		next = "dark"
	}
	http.SetCookie(w, &http.Cookie{
		Name:     themeCookieName,
		Value:    next,
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		SameSite: http.SameSiteLaxMode,
	})

	target := r.Header.Get("Referer")
	if target == "" {
		target = "/"
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded",
			"template", name,
			log.FieldPath, r.URL.Path,
			log.FieldComponent, log.ComponentTemplate,
			"error_type", log.ErrorTypeConfiguration)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		slog.ErrorContext(r.Context(), "Template execution failed",
			"error", err,
			"template", name,
			log.FieldComponent, log.ComponentTemplate)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
