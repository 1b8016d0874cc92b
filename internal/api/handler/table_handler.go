package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/fintree/backoffice/internal/api/metrics"
	"github.com/fintree/backoffice/internal/core/domain"
	"github.com/fintree/backoffice/internal/core/service"
	"github.com/fintree/backoffice/internal/core/table"
)

// Table is the part of a table engine the HTTP surface drives.
type Table[D any] interface {
	List(ctx context.Context) error
	Create(ctx context.Context, draft D) (domain.Alert, error)
	Update(ctx context.Context, id int64, draft D) (domain.Alert, error)
	RequestDelete(id int64) (table.Confirmation, error)
	CancelDelete()
	Delete(ctx context.Context, id int64) (domain.Alert, error)
	Search(query string) table.View
	Sort(key string) (table.View, error)
	Paginate(p int) table.View
	View() table.View
	Loaded() bool
}

type mutationResponse struct {
	Alert domain.Alert `json:"alert"`
	View  table.View   `json:"view"`
}

type confirmationResponse struct {
	Confirmation table.Confirmation `json:"confirmation"`
}

// TableHandler serves one entity table of the session's workspace.
type TableHandler[D any] struct {
	entity  string
	spaces  Workspaces
	pick    func(*service.Workspace) Table[D]
	refresh func(context.Context, *service.Workspace) error
}

// NewTableHandler serves the table pick selects. Refreshing calls the
// table's List.
func NewTableHandler[D any](entity string, spaces Workspaces, pick func(*service.Workspace) Table[D]) *TableHandler[D] {
	return &TableHandler[D]{
		entity: entity,
		spaces: spaces,
		pick:   pick,
		refresh: func(ctx context.Context, w *service.Workspace) error {
			return pick(w).List(ctx)
		},
	}
}

// WithRefresh replaces how the table is reloaded.
func (h *TableHandler[D]) WithRefresh(fn func(context.Context, *service.Workspace) error) *TableHandler[D] {
	h.refresh = fn
	return h
}

// Register mounts the table routes under base.
func (h *TableHandler[D]) Register(g *echo.Group, base string) {
	g.GET(base, h.Load)
	g.GET(base+"/view", h.Show)
	g.POST(base+"/sort/:key", h.Sort)
	g.POST(base, h.Create)
	g.PUT(base+"/:id", h.Update)
	g.POST(base+"/:id/delete-request", h.RequestDelete)
	g.DELETE(base+"/delete-request", h.CancelDelete)
	g.DELETE(base+"/:id", h.Delete)
}

func (h *TableHandler[D]) table(c echo.Context) (*service.Workspace, Table[D], error) {
	w, err := ctxWorkspace(c, h.spaces)
	if err != nil {
		return nil, nil, err
	}
	return w, h.pick(w), nil
}

// Load fetches the collection and returns the current view.
//
// @Summary      Load a table
// @Tags         tables
// @Produce      json
// @Param        table  path      string  true  "Table base, e.g. company"
// @Success      200    {object}  table.View
// @Failure      401    {object}  errorDoc
// @Failure      502    {object}  errorDoc
// @Router       /dashboard/{table} [get]
func (h *TableHandler[D]) Load(c echo.Context) error {
	w, t, err := h.table(c)
	if err != nil {
		return err
	}
	if err := h.refresh(c.Request().Context(), w); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, t.View())
}

// Show re-renders the loaded records without calling the lending API, except
// for a table that has never loaded, e.g. after the workspace was evicted.
// q sets the search box, page moves the pager.
//
// @Summary      Search and page a table
// @Tags         tables
// @Produce      json
// @Param        table  path      string  true   "Table base"
// @Param        q      query     string  false  "Search text"
// @Param        page   query     int     false  "Page number"
// @Success      200    {object}  table.View
// @Router       /dashboard/{table}/view [get]
func (h *TableHandler[D]) Show(c echo.Context) error {
	w, t, err := h.table(c)
	if err != nil {
		return err
	}
	if !t.Loaded() {
		if err := h.refresh(c.Request().Context(), w); err != nil {
			return err
		}
	}

	params := c.QueryParams()
	view := t.View()
	if params.Has("q") {
		view = t.Search(params.Get("q"))
	}
	if raw := params.Get("page"); raw != "" {
		p, err := strconv.Atoi(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "page must be a number")
		}
		view = t.Paginate(p)
	}
	return c.JSON(http.StatusOK, view)
}

// Sort cycles the sort state of a column header.
//
// @Summary      Sort a table
// @Tags         tables
// @Produce      json
// @Param        table  path      string  true  "Table base"
// @Param        key    path      string  true  "Column key"
// @Success      200    {object}  table.View
// @Failure      400    {object}  errorDoc
// @Router       /dashboard/{table}/sort/{key} [post]
func (h *TableHandler[D]) Sort(c echo.Context) error {
	_, t, err := h.table(c)
	if err != nil {
		return err
	}
	view, err := t.Sort(c.Param("key"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

// Create submits the add dialog.
//
// @Summary      Add a record
// @Tags         tables
// @Accept       json
// @Produce      json
// @Param        table  path      string  true  "Table base"
// @Success      201    {object}  mutationResponse
// @Failure      409    {object}  errorDoc
// @Failure      422    {object}  errorDoc
// @Failure      502    {object}  errorDoc
// @Router       /dashboard/{table} [post]
func (h *TableHandler[D]) Create(c echo.Context) error {
	_, t, err := h.table(c)
	if err != nil {
		return err
	}
	var draft D
	if err := c.Bind(&draft); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	alert, err := t.Create(c.Request().Context(), draft)
	h.count("create", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, mutationResponse{Alert: alert, View: t.View()})
}

// Update submits the edit dialog.
//
// @Summary      Edit a record
// @Tags         tables
// @Accept       json
// @Produce      json
// @Param        table  path      string  true  "Table base"
// @Param        id     path      int     true  "Record id"
// @Success      200    {object}  mutationResponse
// @Failure      405    {object}  errorDoc
// @Failure      422    {object}  errorDoc
// @Router       /dashboard/{table}/{id} [put]
func (h *TableHandler[D]) Update(c echo.Context) error {
	_, t, err := h.table(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var draft D
	if err := c.Bind(&draft); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	alert, err := t.Update(c.Request().Context(), id, draft)
	h.count("update", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, mutationResponse{Alert: alert, View: t.View()})
}

// RequestDelete opens the delete confirmation.
//
// @Summary      Ask to delete a record
// @Tags         tables
// @Produce      json
// @Param        table  path      string  true  "Table base"
// @Param        id     path      int     true  "Record id"
// @Success      200    {object}  confirmationResponse
// @Failure      404    {object}  errorDoc
// @Router       /dashboard/{table}/{id}/delete-request [post]
func (h *TableHandler[D]) RequestDelete(c echo.Context) error {
	_, t, err := h.table(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	conf, err := t.RequestDelete(id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, confirmationResponse{Confirmation: conf})
}

// CancelDelete closes the delete confirmation.
//
// @Summary      Cancel a delete
// @Tags         tables
// @Param        table  path  string  true  "Table base"
// @Success      204
// @Router       /dashboard/{table}/delete-request [delete]
func (h *TableHandler[D]) CancelDelete(c echo.Context) error {
	_, t, err := h.table(c)
	if err != nil {
		return err
	}
	t.CancelDelete()
	return c.NoContent(http.StatusNoContent)
}

// Delete removes the confirmed record.
//
// @Summary      Delete a record
// @Tags         tables
// @Produce      json
// @Param        table  path      string  true  "Table base"
// @Param        id     path      int     true  "Record id"
// @Success      200    {object}  mutationResponse
// @Failure      409    {object}  errorDoc
// @Failure      502    {object}  errorDoc
// @Router       /dashboard/{table}/{id} [delete]
func (h *TableHandler[D]) Delete(c echo.Context) error {
	_, t, err := h.table(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}

	alert, err := t.Delete(c.Request().Context(), id)
	h.count("delete", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, mutationResponse{Alert: alert, View: t.View()})
}

func (h *TableHandler[D]) count(op string, err error) {
	outcome := outcomeOf(err)
	if outcome == "in_flight" {
		metrics.DuplicateSubmissionsTotal.WithLabelValues(h.entity).Inc()
	}
	metrics.TableOperationsTotal.WithLabelValues(h.entity, op, outcome).Inc()
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "id must be a positive number")
	}
	return id, nil
}

// outcomeOf classifies err for the operations counter.
func outcomeOf(err error) string {
	var (
		ve *domain.ValidationError
		re *domain.RequestError
		te *domain.TransportError
	)
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &ve), errors.Is(err, domain.ErrDepartmentCycle):
		return "validation"
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrSessionMissing):
		return "unauthorized"
	case errors.Is(err, domain.ErrInFlight):
		return "in_flight"
	case errors.As(err, &re):
		return "upstream"
	case errors.As(err, &te):
		return "transport"
	default:
		return "error"
	}
}

// errorDoc documents the error envelope for the API docs.
type errorDoc struct {
	Error    string            `json:"error"`
	Fields   map[string]string `json:"fields,omitempty"`
	Alert    *domain.Alert     `json:"alert,omitempty"`
	Redirect string            `json:"redirect,omitempty"`
} //@name ErrorResponse
