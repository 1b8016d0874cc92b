package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fintree/backoffice/internal/core/domain"
	"github.com/fintree/backoffice/internal/core/session"
)

const (
	LoginPath = "/login"

	ctxSessionID = "session_id"
	ctxRole      = "role"
)

// SessionResolver loads the session a cookie points at.
type SessionResolver interface {
	Resolve(ctx context.Context, id string) (domain.Session, error)
}

// SessionGuard lets a request through only when it carries a valid session
// cookie whose session still exists; otherwise it redirects to the login
// page. The session is put on the request context for the layers below, and
// a cookie past half its lifetime is re-issued.
func SessionGuard(cookies *Cookies, sessions SessionResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sid, expires, err := cookies.readSession(c)
			if err != nil {
				return c.Redirect(http.StatusFound, LoginPath)
			}

			req := c.Request()
			sess, err := sessions.Resolve(req.Context(), sid)
			switch {
			case errors.Is(err, domain.ErrSessionMissing):
				cookies.ClearSession(c)
				return c.Redirect(http.StatusFound, LoginPath)
			case err != nil:
				return err
			}

			if err := cookies.RefreshSession(c, sid, expires); err != nil {
				return err
			}

			c.SetRequest(req.WithContext(session.NewContext(req.Context(), sess)))
			c.Set(ctxSessionID, sess.ID)
			c.Set(ctxRole, sess.Role)
			return next(c)
		}
	}
}

// SessionFrom returns the session SessionGuard attached to c.
func SessionFrom(c echo.Context) (domain.Session, bool) {
	return session.FromContext(c.Request().Context())
}
