package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"
)

type loginPageData struct {
	Theme          string
	Error          string
	GoogleClientID string
}

// handleLoginPage shows the Google sign-in screen. Signed-in users go
// straight to the dashboard.
func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		if _, ok := s.sessions.Get(cookie.Value); ok {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
	}

	s.render(w, r, "login.html", loginPageData{
		Theme:          theme(r),
		Error:          sanitizeInput(r.URL.Query().Get("error")),
		GoogleClientID: s.googleClientID,
	})
}

// handleGoogleSignIn verifies the posted ID token and starts a session.
func (s *Server) handleGoogleSignIn(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/login?error=Invalid+request", http.StatusSeeOther)
		return
	}

	credential := strings.TrimSpace(r.Form.Get("credential"))
	if credential == "" {
		http.Redirect(w, r, "/login?error=Missing+credential", http.StatusSeeOther)
		return
	}
	rememberMe := r.Form.Get("remember_me") == "on" || r.Form.Get("remember_me") == "true"

	user, err := s.verifier.Verify(r.Context(), credential)
	if err != nil {
		slog.WarnContext(r.Context(), "Sign-in rejected", "error", err)
		http.Redirect(w, r, "/login?error=Sign-in+failed", http.StatusSeeOther)
		return
	}

	token, err := s.sessions.Create(user, rememberMe)
	if err != nil {
		slog.ErrorContext(r.Context(), "Session creation failed", "error", err, "user_id", user.ID)
		http.Error(w, "sign-in failed", http.StatusInternalServerError)
		return
	}

	cookie := &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	// Remembered sessions survive the browser closing
	if rememberMe {
		cookie.MaxAge = int(s.sessions.TTL(true) / time.Second)
	}
	http.SetCookie(w, cookie)

	slog.InfoContext(r.Context(), "User signed in", "user_id", user.ID, "remember_me", rememberMe)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleLogout destroys the session and clears the cookie.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		s.sessions.Destroy(cookie.Value)
	}
	s.clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
