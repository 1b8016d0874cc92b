package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/fintree/backoffice/internal/api/metrics"
	"github.com/fintree/backoffice/internal/core/domain"
	"github.com/fintree/backoffice/internal/core/review"
)

// ReviewHandler serves the tabbed review of one loan application.
type ReviewHandler struct {
	spaces Workspaces
}

func NewReviewHandler(spaces Workspaces) *ReviewHandler {
	return &ReviewHandler{spaces: spaces}
}

type decisionRequest struct {
	Action string `json:"action" validate:"required,oneof=approve reject hold"`
}

type documentRequest struct {
	Name string `json:"name"`
}

type historyRequest struct {
	Records []domain.EMIRecord `json:"records"`
}

type historyResponse struct {
	Years []review.HistoryRow `json:"years"`
}

func (h *ReviewHandler) Register(g *echo.Group, base string) {
	r := g.Group(base + "/:applicationId")
	r.GET("", h.Show)
	r.PUT("/packet", h.SetPacket)
	r.POST("/tab/:tab", h.Select)
	r.POST("/decision", h.Decide)
	r.POST("/documents", h.AddDocument)
	r.POST("/documents/:index/toggle", h.ToggleDocument)
	r.POST("/emi-history", h.History)
}

func (h *ReviewHandler) tabs(c echo.Context) (*review.TabSet, error) {
	w, err := ctxWorkspace(c, h.spaces)
	if err != nil {
		return nil, err
	}
	return w.Review(c.Param("applicationId"))
}

// Show returns the review state, starting the review on first access.
//
// @Summary      Review state
// @Tags         review
// @Produce      json
// @Param        applicationId  path      string  true  "Application id"
// @Success      200            {object}  review.State
// @Router       /dashboard/applicationid/{applicationId} [get]
func (h *ReviewHandler) Show(c echo.Context) error {
	ts, err := h.tabs(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ts.State())
}

// SetPacket replaces the applicant data shown by the tabs.
//
// @Summary      Set the applicant packet
// @Tags         review
// @Accept       json
// @Produce      json
// @Param        applicationId  path      string                  true  "Application id"
// @Param        body           body      domain.ApplicantPacket  true  "Applicant packet"
// @Success      200            {object}  review.State
// @Router       /dashboard/applicationid/{applicationId}/packet [put]
func (h *ReviewHandler) SetPacket(c echo.Context) error {
	ts, err := h.tabs(c)
	if err != nil {
		return err
	}
	var p domain.ApplicantPacket
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return c.JSON(http.StatusOK, ts.SetPacket(p))
}

// Select switches to another tab.
//
// @Summary      Select a tab
// @Tags         review
// @Produce      json
// @Param        applicationId  path      string  true  "Application id"
// @Param        tab            path      string  true  "Tab"
// @Success      200            {object}  review.State
// @Failure      400            {object}  errorDoc
// @Failure      409            {object}  errorDoc
// @Router       /dashboard/applicationid/{applicationId}/tab/{tab} [post]
func (h *ReviewHandler) Select(c echo.Context) error {
	ts, err := h.tabs(c)
	if err != nil {
		return err
	}
	tab, err := domain.ParseReviewTab(c.Param("tab"))
	if err != nil {
		return err
	}
	st, err := ts.Select(tab)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, st)
}

// Decide approves, rejects or holds the application.
//
// @Summary      Decide an application
// @Tags         review
// @Accept       json
// @Produce      json
// @Param        applicationId  path      string           true  "Application id"
// @Param        body           body      decisionRequest  true  "Decision"
// @Success      200            {object}  review.State
// @Failure      409            {object}  errorDoc
// @Failure      422            {object}  errorDoc
// @Router       /dashboard/applicationid/{applicationId}/decision [post]
func (h *ReviewHandler) Decide(c echo.Context) error {
	ts, err := h.tabs(c)
	if err != nil {
		return err
	}
	var req decisionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	action := domain.ReviewAction(req.Action)
	st, err := ts.Decide(c.Request().Context(), action)
	if err != nil {
		return err
	}
	metrics.ReviewDecisionsTotal.WithLabelValues(string(action)).Inc()
	return c.JSON(http.StatusOK, st)
}

// AddDocument appends a document to the checklist.
//
// @Summary      Add a checklist document
// @Tags         review
// @Accept       json
// @Produce      json
// @Param        applicationId  path      string           true  "Application id"
// @Param        body           body      documentRequest  true  "Document"
// @Success      200            {object}  review.State
// @Router       /dashboard/applicationid/{applicationId}/documents [post]
func (h *ReviewHandler) AddDocument(c echo.Context) error {
	ts, err := h.tabs(c)
	if err != nil {
		return err
	}
	var req documentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return c.JSON(http.StatusOK, ts.AddDocument(req.Name))
}

// ToggleDocument flips a checklist document between pending and verified.
//
// @Summary      Toggle a checklist document
// @Tags         review
// @Produce      json
// @Param        applicationId  path      string  true  "Application id"
// @Param        index          path      int     true  "Document index"
// @Success      200            {object}  review.State
// @Failure      404            {object}  errorDoc
// @Router       /dashboard/applicationid/{applicationId}/documents/{index}/toggle [post]
func (h *ReviewHandler) ToggleDocument(c echo.Context) error {
	ts, err := h.tabs(c)
	if err != nil {
		return err
	}
	idx, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "index must be a number")
	}
	st, err := ts.ToggleDocument(idx)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, st)
}

// History lays a trade line's repayments out as a year by month grid.
//
// @Summary      Trade-line payment history
// @Tags         review
// @Accept       json
// @Produce      json
// @Param        applicationId  path      string          true  "Application id"
// @Param        body           body      historyRequest  true  "EMI records"
// @Success      200            {object}  historyResponse
// @Router       /dashboard/applicationid/{applicationId}/emi-history [post]
func (h *ReviewHandler) History(c echo.Context) error {
	var req historyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return c.JSON(http.StatusOK, historyResponse{Years: review.HistoryByYear(req.Records)})
}
