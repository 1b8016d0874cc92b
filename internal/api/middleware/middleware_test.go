package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/fintree/backoffice/internal/core/domain"
	"github.com/fintree/backoffice/internal/core/session"
)

type stubResolver struct {
	resolveFn func(ctx context.Context, id string) (domain.Session, error)
}

func (s *stubResolver) Resolve(ctx context.Context, id string) (domain.Session, error) {
	return s.resolveFn(ctx, id)
}

// sessionCookie issues a session cookie through Cookies and returns it.
func sessionCookie(t *testing.T, k *Cookies, sid string) *http.Cookie {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/login/fintree", nil), rec)
	if err := k.IssueSession(c, sid); err != nil {
		t.Fatalf("issue session: %v", err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected one cookie, got %d", len(cookies))
	}
	return cookies[0]
}

func TestCookies_SessionRoundTrip(t *testing.T) {
	k := NewCookies("secret", true, time.Hour)
	ck := sessionCookie(t, k, "s1")

	if ck.Name != SessionCookieName || !ck.HttpOnly || !ck.Secure || ck.SameSite != http.SameSiteLaxMode || ck.MaxAge != 0 {
		t.Fatalf("unexpected cookie attributes %+v", ck)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(ck)
	c := e.NewContext(req, httptest.NewRecorder())

	sid, err := k.SessionID(c)
	if err != nil || sid != "s1" {
		t.Fatalf("session id: %q %v", sid, err)
	}
}

func TestCookies_RejectsTamperedAndExpired(t *testing.T) {
	k := NewCookies("secret", false, time.Hour)
	other := NewCookies("other-secret", false, time.Hour)

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid": "s1",
		"exp": time.Now().Add(-time.Minute).Unix(),
	}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	noSID, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"iat": time.Now().Unix()}).SignedString([]byte("secret"))

	for name, value := range map[string]string{
		"foreign secret": sessionCookie(t, other, "s1").Value,
		"expired":        expired,
		"no sid":         noSID,
		"garbage":        "not-a-token",
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: value})
			c := echo.New().NewContext(req, httptest.NewRecorder())
			if _, err := k.SessionID(c); err == nil {
				t.Fatalf("expected rejection")
			}
		})
	}
}

func TestCookies_Theme(t *testing.T) {
	k := NewCookies("secret", false, 0)
	e := echo.New()

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/login/credwise", nil), rec)
	k.SetTheme(c, "credwise")
	ck := rec.Result().Cookies()[0]
	if ck.Name != ThemeCookieName || ck.Value != "credwise" || ck.MaxAge != 365*24*60*60 {
		t.Fatalf("unexpected theme cookie %+v", ck)
	}

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.AddCookie(ck)
	if got := k.Theme(e.NewContext(req, httptest.NewRecorder())); got != "credwise" {
		t.Fatalf("theme: %q", got)
	}
	if got := k.Theme(e.NewContext(httptest.NewRequest(http.MethodGet, "/login", nil), httptest.NewRecorder())); got != "" {
		t.Fatalf("theme without cookie: %q", got)
	}
}

func TestSessionGuard_NoCookieRedirects(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/dashboard", nil), rec)

	mw := SessionGuard(NewCookies("secret", false, 0), &stubResolver{resolveFn: func(context.Context, string) (domain.Session, error) {
		t.Fatalf("resolver should not be called")
		return domain.Session{}, nil
	}})
	handler := mw(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != LoginPath {
		t.Fatalf("expected redirect to login, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestSessionGuard_UnknownSessionClearsCookie(t *testing.T) {
	k := NewCookies("secret", false, 0)
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(sessionCookie(t, k, "gone"))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	mw := SessionGuard(k, &stubResolver{resolveFn: func(context.Context, string) (domain.Session, error) {
		return domain.Session{}, domain.ErrSessionMissing
	}})
	if err := mw(func(echo.Context) error { return nil })(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusFound {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}
	if set := rec.Header().Get("Set-Cookie"); !strings.Contains(set, SessionCookieName+"=;") || !strings.Contains(set, "Max-Age=0") {
		t.Fatalf("cookie not cleared: %q", set)
	}
}

func TestSessionGuard_StoreErrorPropagates(t *testing.T) {
	k := NewCookies("secret", false, 0)
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(sessionCookie(t, k, "s1"))
	c := echo.New().NewContext(req, httptest.NewRecorder())

	boom := errors.New("redis down")
	mw := SessionGuard(k, &stubResolver{resolveFn: func(context.Context, string) (domain.Session, error) {
		return domain.Session{}, boom
	}})
	if err := mw(func(echo.Context) error { return nil })(c); !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestSessionGuard_AttachesSession(t *testing.T) {
	k := NewCookies("secret", false, 0)
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(sessionCookie(t, k, "s1"))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	mw := SessionGuard(k, &stubResolver{resolveFn: func(_ context.Context, id string) (domain.Session, error) {
		return domain.Session{ID: id, AccessToken: "tok", Role: "fi"}, nil
	}})
	called := false
	handler := mw(func(c echo.Context) error {
		called = true
		sess, ok := SessionFrom(c)
		if !ok || sess.AccessToken != "tok" {
			t.Fatalf("session not on request context: %+v", sess)
		}
		if _, ok := session.FromContext(c.Request().Context()); !ok {
			t.Fatalf("session not reachable from context")
		}
		if c.Get("session_id") != "s1" || c.Get("role") != "fi" {
			t.Fatalf("context values not set")
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called || rec.Code != http.StatusOK {
		t.Fatalf("next not called")
	}
}

func TestSessionGuard_RefreshesAgingCookie(t *testing.T) {
	k := NewCookies("secret", false, time.Hour)
	aging, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid": "s1",
		"exp": time.Now().Add(10 * time.Minute).Unix(),
	}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	mw := SessionGuard(k, &stubResolver{resolveFn: func(_ context.Context, id string) (domain.Session, error) {
		return domain.Session{ID: id, AccessToken: "tok"}, nil
	}})
	handler := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	tests := []struct {
		name    string
		value   string
		refresh bool
	}{
		{name: "aging cookie", value: aging, refresh: true},
		{name: "fresh cookie", value: sessionCookie(t, k, "s1").Value, refresh: false},
	}
	for _, tt := range tests {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: tt.value})
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		if err := handler(c); err != nil {
			t.Fatalf("%s: handler error: %v", tt.name, err)
		}

		issued := rec.Result().Cookies()
		if !tt.refresh {
			if len(issued) != 0 {
				t.Fatalf("%s: cookie re-issued too early", tt.name)
			}
			continue
		}
		if len(issued) != 1 || issued[0].Name != SessionCookieName {
			t.Fatalf("%s: expected a re-issued session cookie, got %v", tt.name, issued)
		}

		next := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		next.AddCookie(issued[0])
		sid, expires, err := k.readSession(e.NewContext(next, httptest.NewRecorder()))
		if err != nil || sid != "s1" || time.Until(expires) < 50*time.Minute {
			t.Fatalf("%s: re-issued cookie %q %v %v", tt.name, sid, expires, err)
		}
	}
}

func TestAllowed(t *testing.T) {
	tests := []struct {
		role, path string
		want       bool
	}{
		{"admin", "/dashboard/company", true},
		{"fi", "/dashboard", true},
		{"fi", "/dashboard/department&role/department", true},
		{"fi", "/dashboard/department&role/department/parents", true},
		{"fi", "/dashboard/department&role/users", false},
		{"fi", "/dashboard/company", false},
		{"verification", "/dashboard/applicationid/APP-1/decision", true},
		{"credit", "/dashboard/creditx", false},
		{"", "/dashboard", false},
		{"unknown", "/dashboard", false},
	}
	for _, tt := range tests {
		if got := Allowed(RolePermissions, tt.role, tt.path); got != tt.want {
			t.Fatalf("Allowed(%q, %q) = %v, want %v", tt.role, tt.path, got, tt.want)
		}
	}
}

func TestAllowlist(t *testing.T) {
	e := echo.New()
	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/dashboard/pages", nil), httptest.NewRecorder())
	c.Set("role", "credit")
	if err := Allowlist(RolePermissions, true)(next)(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	rec := httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/dashboard/pages", nil), rec)
	c.Set("role", "credit")
	if err := Allowlist(RolePermissions, false)(next)(c); err != nil || rec.Code != http.StatusOK {
		t.Fatalf("disabled allowlist should pass: %v %d", err, rec.Code)
	}
}
