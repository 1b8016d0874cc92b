package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/fintree/backoffice/internal/core/department"
	"github.com/fintree/backoffice/internal/core/domain"
	"github.com/fintree/backoffice/internal/core/service"
)

// DepartmentHandler serves the department table plus its parent picker and
// row expansion.
type DepartmentHandler struct {
	*TableHandler[domain.DepartmentDraft]
}

func NewDepartmentHandler(spaces Workspaces) *DepartmentHandler {
	return &DepartmentHandler{
		TableHandler: NewTableHandler("department", spaces, func(w *service.Workspace) Table[domain.DepartmentDraft] {
			return w.Departments
		}),
	}
}

type parentOptionsResponse struct {
	Options []department.ParentOption `json:"options"`
}

type expandResponse struct {
	ID       int64   `json:"id"`
	Expanded bool    `json:"expanded"`
	Rows     []int64 `json:"expandedRows"`
}

func (h *DepartmentHandler) Register(g *echo.Group, base string) {
	g.GET(base+"/parents", h.Parents)
	g.POST(base+"/:id/expand", h.Expand)
	h.TableHandler.Register(g, base)
}

// Parents lists the parent candidates for the add (no "for") or edit dialog.
//
// @Summary      Department parent options
// @Tags         departments
// @Produce      json
// @Param        for  query     int  false  "Department being edited"
// @Success      200  {object}  parentOptionsResponse
// @Router       /dashboard/department&role/department/parents [get]
func (h *DepartmentHandler) Parents(c echo.Context) error {
	w, err := ctxWorkspace(c, h.spaces)
	if err != nil {
		return err
	}

	var forID int64
	if raw := c.QueryParam("for"); raw != "" {
		forID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "for must be a number")
		}
	}
	return c.JSON(http.StatusOK, parentOptionsResponse{Options: w.Departments.ParentOptions(forID)})
}

// Expand toggles the inline details of a department row.
//
// @Summary      Toggle a department row
// @Tags         departments
// @Produce      json
// @Param        id   path      int  true  "Department id"
// @Success      200  {object}  expandResponse
// @Router       /dashboard/department&role/department/{id}/expand [post]
func (h *DepartmentHandler) Expand(c echo.Context) error {
	w, err := ctxWorkspace(c, h.spaces)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	expanded := w.Departments.ToggleExpanded(id)
	return c.JSON(http.StatusOK, expandResponse{ID: id, Expanded: expanded, Rows: w.Departments.Expanded()})
}
