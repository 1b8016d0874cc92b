package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fintree/backoffice/internal/core/domain"
	"github.com/fintree/backoffice/internal/core/service"
)

// UserHandler serves the user table. Loading it also reloads the department
// and role lists its rows and pickers use.
type UserHandler struct {
	*TableHandler[domain.UserDraft]
}

func NewUserHandler(spaces Workspaces) *UserHandler {
	th := NewTableHandler("user", spaces, func(w *service.Workspace) Table[domain.UserDraft] {
		return w.Users
	}).WithRefresh(func(ctx context.Context, w *service.Workspace) error {
		return w.Users.Refresh(ctx)
	})
	return &UserHandler{TableHandler: th}
}

func (h *UserHandler) Register(g *echo.Group, base string) {
	g.GET(base+"/options", h.Options)
	h.TableHandler.Register(g, base)
}

// Options returns the department and role pickers of the user dialog.
//
// @Summary      User dialog options
// @Tags         users
// @Produce      json
// @Success      200  {object}  service.UserOptions
// @Router       /dashboard/department&role/users/options [get]
func (h *UserHandler) Options(c echo.Context) error {
	w, err := ctxWorkspace(c, h.spaces)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, w.Users.Options())
}
