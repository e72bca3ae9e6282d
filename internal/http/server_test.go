package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/khanburhan/tokritrack/internal/auth"
	"github.com/khanburhan/tokritrack/internal/services"
	"github.com/khanburhan/tokritrack/internal/store/memory"
)

type fakeVerifier struct {
	user auth.User
	err  error
}

func (f fakeVerifier) Verify(_ context.Context, _ string) (auth.User, error) {
	return f.user, f.err
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	st := memory.New()
	expenses := services.NewExpenseService(st)
	wishlist := services.NewWishlistService(st, nil)
	budgets := services.NewBudgetResolver(st)
	sessions := auth.NewSessionManager(time.Hour, 24*time.Hour)
	verifier := fakeVerifier{user: auth.User{ID: "g-123", Email: "ada@example.com", Name: "Ada"}}
	return NewServer(":0", expenses, wishlist, budgets, sessions, verifier, "client-id-test", time.UTC)
}

// signIn posts a fake credential and returns the session cookie.
func signIn(t *testing.T, srv *Server, rememberMe bool) *http.Cookie {
	t.Helper()
	form := url.Values{"credential": {"fake-token"}}
	if rememberMe {
		form.Set("remember_me", "on")
	}
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/google", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("sign-in status=%d", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "/" {
		t.Fatalf("sign-in redirected to %q", loc)
	}
	for _, c := range rr.Result().Cookies() {
		if c.Name == sessionCookieName {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func do(srv *Server, method, target string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		rr := do(srv, http.MethodGet, path, nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
	}
}

func TestLoginPage(t *testing.T) {
	srv := newTestServer(t)
	rr := do(srv, http.MethodGet, "/login", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("login status=%d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "client-id-test") {
		t.Fatal("login page missing Google client ID")
	}
}

func TestRequireUserRedirectsToLogin(t *testing.T) {
	srv := newTestServer(t)
	for _, path := range []string{"/", "/budget", "/wishlist", "/export/expenses.csv"} {
		rr := do(srv, http.MethodGet, path, nil)
		if rr.Code != http.StatusSeeOther {
			t.Fatalf("%s status=%d, want redirect", path, rr.Code)
		}
		if loc := rr.Header().Get("Location"); loc != "/login" {
			t.Fatalf("%s redirected to %q", path, loc)
		}
	}
}

func TestSignInSetsSessionCookie(t *testing.T) {
	srv := newTestServer(t)

	cookie := signIn(t, srv, false)
	if cookie.MaxAge != 0 {
		t.Fatalf("session cookie MaxAge=%d, want browser-session cookie", cookie.MaxAge)
	}
	if !cookie.HttpOnly {
		t.Fatal("session cookie not HttpOnly")
	}

	remembered := signIn(t, srv, true)
	if remembered.MaxAge != int((24 * time.Hour).Seconds()) {
		t.Fatalf("remembered cookie MaxAge=%d", remembered.MaxAge)
	}
}

func TestSignInRejected(t *testing.T) {
	srv := newTestServer(t)
	srv.verifier = fakeVerifier{err: errors.New("bad token")}

	form := url.Values{"credential": {"bogus"}}
	rr := do(srv, http.MethodPost, "/auth/google", form)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status=%d", rr.Code)
	}
	if loc := rr.Header().Get("Location"); !strings.HasPrefix(loc, "/login?error=") {
		t.Fatalf("redirected to %q", loc)
	}
}

func TestDashboardRenders(t *testing.T) {
	srv := newTestServer(t)
	cookie := signIn(t, srv, false)

	rr := do(srv, http.MethodGet, "/", nil, cookie)
	if rr.Code != http.StatusOK {
		t.Fatalf("dashboard status=%d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "Ada") {
		t.Fatal("dashboard missing user name")
	}
	if !strings.Contains(body, "chart-data") {
		t.Fatal("dashboard missing chart payload")
	}
}

func TestExpenseCreateListDelete(t *testing.T) {
	srv := newTestServer(t)
	cookie := signIn(t, srv, false)

	form := url.Values{
		"amount":   {"12.50"},
		"category": {"Food"},
		"tag":      {"planned"},
	}
	rr := do(srv, http.MethodPost, "/expenses", form, cookie)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("create status=%d body=%s", rr.Code, rr.Body.String())
	}

	rr = do(srv, http.MethodGet, "/budget", nil, cookie)
	if rr.Code != http.StatusOK {
		t.Fatalf("budget status=%d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "$12.50") {
		t.Fatal("budget page missing created expense")
	}

	// Pull the generated ID out of the delete form
	body := rr.Body.String()
	idx := strings.Index(body, `name="id" value="`)
	if idx < 0 {
		t.Fatal("budget page missing delete form")
	}
	rest := body[idx+len(`name="id" value="`):]
	id := rest[:strings.Index(rest, `"`)]

	rr = do(srv, http.MethodPost, "/expenses/delete", url.Values{"id": {id}}, cookie)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("delete status=%d", rr.Code)
	}

	rr = do(srv, http.MethodGet, "/budget", nil, cookie)
	if strings.Contains(rr.Body.String(), "$12.50") {
		t.Fatal("deleted expense still rendered")
	}
}

func TestBudgetDefaultCreated(t *testing.T) {
	srv := newTestServer(t)
	cookie := signIn(t, srv, false)

	rr := do(srv, http.MethodGet, "/budget", nil, cookie)
	if rr.Code != http.StatusOK {
		t.Fatalf("budget status=%d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "$1000.00") {
		t.Fatal("budget page missing default total")
	}
	for _, cat := range []string{"Food", "Transport", "Shopping"} {
		if !strings.Contains(body, cat) {
			t.Fatalf("budget page missing category %s", cat)
		}
	}
}

func TestBudgetCategoryChart(t *testing.T) {
	srv := newTestServer(t)
	cookie := signIn(t, srv, false)

	for _, form := range []url.Values{
		{"amount": {"12.50"}, "category": {"Food"}, "tag": {"planned"}},
		{"amount": {"30.00"}, "category": {"Transport"}, "tag": {"impulse"}},
	} {
		if rr := do(srv, http.MethodPost, "/expenses", form, cookie); rr.Code != http.StatusSeeOther {
			t.Fatalf("create status=%d", rr.Code)
		}
	}

	rr := do(srv, http.MethodGet, "/budget", nil, cookie)
	if rr.Code != http.StatusOK {
		t.Fatalf("budget status=%d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, `id="category-chart"`) {
		t.Fatal("budget page missing category pie canvas")
	}
	for _, want := range []string{`"name":"Food"`, `"name":"Transport"`, "12.5", "30"} {
		if !strings.Contains(body, want) {
			t.Fatalf("chart payload missing %s: %s", want, body)
		}
	}
}

func TestWishlistCreateAndFilter(t *testing.T) {
	srv := newTestServer(t)
	cookie := signIn(t, srv, false)

	form := url.Values{
		"title":   {"Espresso machine"},
		"price":   {"320.00"},
		"urgency": {"medium"},
	}
	rr := do(srv, http.MethodPost, "/wishlist", form, cookie)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("create status=%d", rr.Code)
	}

	rr = do(srv, http.MethodGet, "/wishlist", nil, cookie)
	if !strings.Contains(rr.Body.String(), "Espresso machine") {
		t.Fatal("wishlist missing created item")
	}

	// Non-matching urgency filter hides the item
	rr = do(srv, http.MethodGet, "/wishlist?urgency=high", nil, cookie)
	if strings.Contains(rr.Body.String(), "Espresso machine") {
		t.Fatal("urgency filter did not apply")
	}

	rr = do(srv, http.MethodGet, "/wishlist?search=espresso", nil, cookie)
	if !strings.Contains(rr.Body.String(), "Espresso machine") {
		t.Fatal("search filter dropped a matching item")
	}
}

func TestExportExpensesCSV(t *testing.T) {
	srv := newTestServer(t)
	cookie := signIn(t, srv, false)

	form := url.Values{
		"amount":   {"9.99"},
		"category": {"Transport"},
		"tag":      {"impulse"},
	}
	if rr := do(srv, http.MethodPost, "/expenses", form, cookie); rr.Code != http.StatusSeeOther {
		t.Fatalf("create status=%d", rr.Code)
	}

	rr := do(srv, http.MethodGet, "/export/expenses.csv", nil, cookie)
	if rr.Code != http.StatusOK {
		t.Fatalf("export status=%d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("content type %q", ct)
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, "expenses-") {
		t.Fatalf("content disposition %q", cd)
	}
	body := rr.Body.String()
	if !strings.HasPrefix(body, "Amount,Category,Tag") {
		t.Fatalf("csv header wrong: %q", body)
	}
	if !strings.Contains(body, "9.99,Transport,impulse") {
		t.Fatalf("csv missing row: %q", body)
	}
}

func TestExportWishlistCSV(t *testing.T) {
	srv := newTestServer(t)
	cookie := signIn(t, srv, false)

	form := url.Values{
		"title":   {"Desk"},
		"price":   {"450"},
		"urgency": {"low"},
	}
	if rr := do(srv, http.MethodPost, "/wishlist", form, cookie); rr.Code != http.StatusSeeOther {
		t.Fatalf("create status=%d", rr.Code)
	}

	rr := do(srv, http.MethodGet, "/export/wishlist.csv", nil, cookie)
	if rr.Code != http.StatusOK {
		t.Fatalf("export status=%d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.HasPrefix(body, "Title,Price,Urgency") {
		t.Fatalf("csv header wrong: %q", body)
	}
	if !strings.Contains(body, "Desk,450.00,low") {
		t.Fatalf("csv missing row: %q", body)
	}
}

func TestLogoutDestroysSession(t *testing.T) {
	srv := newTestServer(t)
	cookie := signIn(t, srv, false)

	rr := do(srv, http.MethodPost, "/logout", nil, cookie)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("logout status=%d", rr.Code)
	}

	rr = do(srv, http.MethodGet, "/", nil, cookie)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status=%d, want redirect after logout", rr.Code)
	}
}

func TestThemeToggle(t *testing.T) {
	srv := newTestServer(t)

	rr := do(srv, http.MethodPost, "/theme", nil)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("toggle status=%d", rr.Code)
	}
	var theme *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == themeCookieName {
			theme = c
		}
	}
	if theme == nil || theme.Value != "dark" {
		t.Fatalf("theme cookie = %+v", theme)
	}

	// Toggling again flips back
	rr = do(srv, http.MethodPost, "/theme", nil, theme)
	for _, c := range rr.Result().Cookies() {
		if c.Name == themeCookieName && c.Value != "light" {
			t.Fatalf("second toggle value %q", c.Value)
		}
	}
}

func TestSecurityHeaders(t *testing.T) {
	srv := newTestServer(t)
	rr := do(srv, http.MethodGet, "/login", nil)

	checks := map[string]string{
		"X-Content-Type-Options":  "nosniff",
		"X-Frame-Options":         "DENY",
		"Content-Security-Policy": "cdn.jsdelivr.net",
	}
	for header, want := range checks {
		if got := rr.Header().Get(header); !strings.Contains(got, want) {
			t.Fatalf("%s = %q, want it to contain %q", header, got, want)
		}
	}
}
