package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const (
	SessionCookieName = "bo_session"
	ThemeCookieName   = "themecode"

	themeCookieMaxAge = 365 * 24 * 60 * 60
)

var errInvalidSessionCookie = errors.New("invalid session cookie")

// Cookies signs and reads the dashboard's cookies. The session cookie holds
// an HS256 token whose "sid" claim names the server-side session; it has no
// Max-Age, so it ends with the browser session.
type Cookies struct {
	secret []byte
	secure bool
	ttl    time.Duration
}

func NewCookies(secret string, secure bool, ttl time.Duration) *Cookies {
	return &Cookies{secret: []byte(secret), secure: secure, ttl: ttl}
}

// IssueSession sets the session cookie for sessionID.
func (k *Cookies) IssueSession(c echo.Context, sessionID string) error {
	now := time.Now()
	claims := jwt.MapClaims{
		"sid": sessionID,
		"iat": now.Unix(),
	}
	if k.ttl > 0 {
		claims["exp"] = now.Add(k.ttl).Unix()
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(k.secret)
	if err != nil {
		return err
	}
	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    signed,
		Path:     "/",
		HttpOnly: true,
		Secure:   k.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// SessionID returns the session id carried by the request's session cookie.
func (k *Cookies) SessionID(c echo.Context) (string, error) {
	sid, _, err := k.readSession(c)
	return sid, err
}

// RefreshSession re-issues the session cookie once less than half of its
// lifetime is left.
func (k *Cookies) RefreshSession(c echo.Context, sessionID string, expires time.Time) error {
	if k.ttl <= 0 || expires.IsZero() || time.Until(expires) > k.ttl/2 {
		return nil
	}
	return k.IssueSession(c, sessionID)
}

// readSession returns the sid claim and the expiry of the session cookie.
// The expiry is zero when the cookie carries none.
func (k *Cookies) readSession(c echo.Context) (string, time.Time, error) {
	ck, err := c.Cookie(SessionCookieName)
	if err != nil || ck.Value == "" {
		return "", time.Time{}, errInvalidSessionCookie
	}

	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(ck.Value, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return k.secret, nil
	})
	if err != nil || !tkn.Valid {
		return "", time.Time{}, errInvalidSessionCookie
	}

	sid, _ := claims["sid"].(string)
	if sid == "" {
		return "", time.Time{}, errInvalidSessionCookie
	}
	var expires time.Time
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		expires = exp.Time
	}
	return sid, expires, nil
}

// ClearSession expires the session cookie.
func (k *Cookies) ClearSession(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   k.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// SetTheme remembers the tenant code for a year.
func (k *Cookies) SetTheme(c echo.Context, code string) {
	c.SetCookie(&http.Cookie{
		Name:     ThemeCookieName,
		Value:    code,
		Path:     "/",
		MaxAge:   themeCookieMaxAge,
		Secure:   k.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Theme returns the remembered tenant code, or "".
func (k *Cookies) Theme(c echo.Context) string {
	ck, err := c.Cookie(ThemeCookieName)
	if err != nil {
		return ""
	}
	return ck.Value
}
