package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/fintree/backoffice/internal/api/middleware"
	"github.com/fintree/backoffice/internal/core/domain"
	"github.com/fintree/backoffice/internal/core/service"
)

// Workspaces hands out the per-session dashboard state.
type Workspaces interface {
	For(sessionID string) *service.Workspace
}

// ctxSession returns the session the guard attached. Handlers behind the
// guard always have one; a missing session is reported as expired so the
// error handler sends the client to the login page.
func ctxSession(c echo.Context) (domain.Session, error) {
	sess, ok := middleware.SessionFrom(c)
	if !ok || sess.ID == "" {
		return domain.Session{}, domain.ErrSessionMissing
	}
	return sess, nil
}

func ctxWorkspace(c echo.Context, spaces Workspaces) (*service.Workspace, error) {
	sess, err := ctxSession(c)
	if err != nil {
		return nil, err
	}
	return spaces.For(sess.ID), nil
}
