package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/fintree/backoffice/internal/core/domain"
	"github.com/fintree/backoffice/internal/core/service"
	"github.com/fintree/backoffice/internal/core/session"
)

type stubCollection[T any, D any] struct {
	records  []T
	listFn   func(ctx context.Context) ([]T, error)
	createFn func(ctx context.Context, d D) (T, error)
}

func (s *stubCollection[T, D]) List(ctx context.Context) ([]T, error) {
	if s.listFn != nil {
		return s.listFn(ctx)
	}
	return s.records, nil
}

func (s *stubCollection[T, D]) Create(ctx context.Context, d D, _ string) (T, error) {
	rec, err := s.createFn(ctx, d)
	if err == nil {
		s.records = append(s.records, rec)
	}
	return rec, err
}

func (s *stubCollection[T, D]) Update(context.Context, int64, D) (T, error) {
	var zero T
	return zero, errors.New("not implemented")
}

func (s *stubCollection[T, D]) Delete(context.Context, int64) error { return nil }

func ptr(v int64) *int64 { return &v }

type fixture struct {
	e      *echo.Echo
	spaces *service.WorkspaceService
	pages  *stubCollection[domain.Page, domain.PageDraft]
	deps   *stubCollection[domain.Department, domain.DepartmentDraft]
}

func newFixture() *fixture {
	pages := &stubCollection[domain.Page, domain.PageDraft]{
		records: []domain.Page{{ID: 1, Name: "Home", URL: "/"}, {ID: 2, Name: "Reports", URL: "/reports"}},
		createFn: func(_ context.Context, d domain.PageDraft) (domain.Page, error) {
			return domain.Page{ID: 3, Name: d.Name, URL: d.URL}, nil
		},
	}
	deps := &stubCollection[domain.Department, domain.DepartmentDraft]{
		records: []domain.Department{
			{ID: 1, Name: "Finance"},
			{ID: 2, Name: "Payroll", ParentID: ptr(1)},
			{ID: 3, Name: "Sales"},
		},
	}
	colls := service.Collections{
		Companies:   &stubCollection[domain.Company, domain.CompanyDraft]{},
		Departments: deps,
		Roles:       &stubCollection[domain.Role, domain.RoleDraft]{records: []domain.Role{{ID: 9, Name: "Analyst"}}},
		Users:       &stubCollection[domain.User, domain.UserDraft]{records: []domain.User{{ID: 1, Name: "Asha", RoleID: ptr(9)}}},
		Pages:       pages,
	}

	e := echo.New()
	e.Validator = NewValidator()
	return &fixture{
		e:      e,
		spaces: service.NewWorkspaceService(colls, service.WorkspaceConfig{PageSize: 1}, nil, nil, zerolog.Nop()),
		pages:  pages,
		deps:   deps,
	}
}

// request builds a context for a route, with the session attached the way
// SessionGuard does it.
func (f *fixture) request(method, path, body string, names, values []string) (echo.Context, *httptest.ResponseRecorder) {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	req = req.WithContext(session.NewContext(req.Context(), domain.Session{ID: "s1", AccessToken: "tok", CompanyID: "7"}))
	rec := httptest.NewRecorder()
	c := f.e.NewContext(req, rec)
	c.SetParamNames(names...)
	c.SetParamValues(values...)
	return c, rec
}

func (f *fixture) pagesHandler() *TableHandler[domain.PageDraft] {
	return NewTableHandler("page", f.spaces, func(w *service.Workspace) Table[domain.PageDraft] { return w.Pages })
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
	}
}

func TestTableHandler_LoadAndShow(t *testing.T) {
	f := newFixture()
	h := f.pagesHandler()

	c, rec := f.request(http.MethodGet, "/dashboard/pages", "", nil, nil)
	if err := h.Load(c); err != nil {
		t.Fatalf("load: %v", err)
	}
	var view struct {
		Rows   []map[string]string `json:"rows"`
		Paging struct {
			Page, TotalPages int
			HasNext          bool
		} `json:"paging"`
	}
	decode(t, rec, &view)
	if len(view.Rows) != 1 || view.Rows[0]["name"] != "Home" || view.Paging.TotalPages != 2 || !view.Paging.HasNext {
		t.Fatalf("unexpected view %+v", view)
	}

	c, rec = f.request(http.MethodGet, "/dashboard/pages/view?q=report", "", nil, nil)
	if err := h.Show(c); err != nil {
		t.Fatalf("show: %v", err)
	}
	decode(t, rec, &view)
	if len(view.Rows) != 1 || view.Rows[0]["name"] != "Reports" {
		t.Fatalf("search not applied: %+v", view)
	}

	c, _ = f.request(http.MethodGet, "/dashboard/pages/view?page=x", "", nil, nil)
	var he *echo.HTTPError
	if err := h.Show(c); !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestTableHandler_ShowLoadsAFreshWorkspaceOnce(t *testing.T) {
	f := newFixture()
	calls := 0
	f.pages.listFn = func(context.Context) ([]domain.Page, error) {
		calls++
		return f.pages.records, nil
	}
	h := f.pagesHandler()

	for i := 0; i < 2; i++ {
		c, rec := f.request(http.MethodGet, "/dashboard/pages/view", "", nil, nil)
		if err := h.Show(c); err != nil {
			t.Fatalf("show: %v", err)
		}
		var view struct {
			Rows []map[string]string `json:"rows"`
		}
		decode(t, rec, &view)
		if len(view.Rows) != 1 || view.Rows[0]["name"] != "Home" {
			t.Fatalf("unexpected view %+v", view)
		}
	}
	if calls != 1 {
		t.Fatalf("want one list call, got %d", calls)
	}
}

func TestTableHandler_CreateReturnsAlertAndView(t *testing.T) {
	f := newFixture()
	h := f.pagesHandler()

	c, rec := f.request(http.MethodPost, "/dashboard/pages", `{"name":"Audit","url":"/audit"}`, nil, nil)
	if err := h.Create(c); err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var resp mutationResponse
	decode(t, rec, &resp)
	if resp.Alert.Description != "Audit added successfully!" || resp.View.Loaded != 3 {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestTableHandler_CreateValidation(t *testing.T) {
	f := newFixture()
	h := f.pagesHandler()

	c, _ := f.request(http.MethodPost, "/dashboard/pages", `{"name":""}`, nil, nil)
	err := h.Create(c)
	var ve *domain.ValidationError
	if !errors.As(err, &ve) || ve.Fields["url"] != "URL is required" {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(f.pages.records) != 2 {
		t.Fatalf("nothing should be created")
	}
}

func TestTableHandler_SortAndIDs(t *testing.T) {
	f := newFixture()
	h := f.pagesHandler()

	c, _ := f.request(http.MethodPost, "/dashboard/pages/sort/bogus", "", []string{"key"}, []string{"bogus"})
	if err := h.Sort(c); !errors.Is(err, domain.ErrUnknownColumn) {
		t.Fatalf("expected unknown column, got %v", err)
	}

	c, _ = f.request(http.MethodPost, "/dashboard/pages/0/delete-request", "", []string{"id"}, []string{"0"})
	var he *echo.HTTPError
	if err := h.RequestDelete(c); !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestTableHandler_DeleteFlow(t *testing.T) {
	f := newFixture()
	h := f.pagesHandler()

	c, _ := f.request(http.MethodGet, "/dashboard/pages", "", nil, nil)
	if err := h.Load(c); err != nil {
		t.Fatalf("load: %v", err)
	}

	c, _ = f.request(http.MethodDelete, "/dashboard/pages/2", "", []string{"id"}, []string{"2"})
	if err := h.Delete(c); !errors.Is(err, domain.ErrNotConfirmed) {
		t.Fatalf("expected not confirmed, got %v", err)
	}

	c, rec := f.request(http.MethodPost, "/dashboard/pages/2/delete-request", "", []string{"id"}, []string{"2"})
	if err := h.RequestDelete(c); err != nil {
		t.Fatalf("request delete: %v", err)
	}
	var conf confirmationResponse
	decode(t, rec, &conf)
	if conf.Confirmation.Label != "Reports" {
		t.Fatalf("unexpected confirmation %+v", conf)
	}

	c, rec = f.request(http.MethodDelete, "/dashboard/pages/2", "", []string{"id"}, []string{"2"})
	if err := h.Delete(c); err != nil {
		t.Fatalf("delete: %v", err)
	}
	var resp mutationResponse
	decode(t, rec, &resp)
	if resp.Alert.Description != "Reports deleted successfully!" || resp.View.Loaded != 1 {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestTableHandler_RequiresSession(t *testing.T) {
	f := newFixture()
	req := httptest.NewRequest(http.MethodGet, "/dashboard/pages", nil)
	c := f.e.NewContext(req, httptest.NewRecorder())

	if err := f.pagesHandler().Load(c); !errors.Is(err, domain.ErrSessionMissing) {
		t.Fatalf("expected missing session, got %v", err)
	}
}

func TestDepartmentHandler_ParentsAndExpand(t *testing.T) {
	f := newFixture()
	h := NewDepartmentHandler(f.spaces)

	c, _ := f.request(http.MethodGet, "/dashboard/department&role/department", "", nil, nil)
	if err := h.Load(c); err != nil {
		t.Fatalf("load: %v", err)
	}

	c, rec := f.request(http.MethodGet, "/dashboard/department&role/department/parents?for=1", "", nil, nil)
	if err := h.Parents(c); err != nil {
		t.Fatalf("parents: %v", err)
	}
	var opts parentOptionsResponse
	decode(t, rec, &opts)
	if len(opts.Options) != 2 || opts.Options[0].Label != "None" || opts.Options[1].Label != "Sales" {
		t.Fatalf("unexpected options %+v", opts.Options)
	}

	c, rec = f.request(http.MethodPost, "/dashboard/department&role/department/2/expand", "", []string{"id"}, []string{"2"})
	if err := h.Expand(c); err != nil {
		t.Fatalf("expand: %v", err)
	}
	var exp expandResponse
	decode(t, rec, &exp)
	if !exp.Expanded || len(exp.Rows) != 1 || exp.Rows[0] != 2 {
		t.Fatalf("unexpected expand response %+v", exp)
	}
}

func TestDepartmentHandler_CycleRejected(t *testing.T) {
	f := newFixture()
	h := NewDepartmentHandler(f.spaces)
	c, _ := f.request(http.MethodGet, "/dashboard/department&role/department", "", nil, nil)
	_ = h.Load(c)

	c, _ = f.request(http.MethodPut, "/dashboard/department&role/department/1", `{"departmentName":"Finance","parentId":2}`, []string{"id"}, []string{"1"})
	if err := h.Update(c); !errors.Is(err, domain.ErrDepartmentCycle) {
		t.Fatalf("expected cycle error, got %v", err)
	}
}

func TestUserHandler_LoadFillsOptions(t *testing.T) {
	f := newFixture()
	h := NewUserHandler(f.spaces)

	c, rec := f.request(http.MethodGet, "/dashboard/department&role/users", "", nil, nil)
	if err := h.Load(c); err != nil {
		t.Fatalf("load: %v", err)
	}
	var view struct {
		Rows []map[string]string `json:"rows"`
	}
	decode(t, rec, &view)
	if view.Rows[0]["role"] != "Analyst" {
		t.Fatalf("role not resolved: %v", view.Rows)
	}

	c, rec = f.request(http.MethodGet, "/dashboard/department&role/users/options", "", nil, nil)
	if err := h.Options(c); err != nil {
		t.Fatalf("options: %v", err)
	}
	var opts service.UserOptions
	decode(t, rec, &opts)
	if len(opts.Departments) != 3 || len(opts.Roles) != 1 {
		t.Fatalf("unexpected options %+v", opts)
	}
}

func TestReviewHandler_Flow(t *testing.T) {
	f := newFixture()
	h := NewReviewHandler(f.spaces)
	app := []string{"applicationId"}
	id := []string{"APP-1"}

	c, rec := f.request(http.MethodGet, "/dashboard/applicationid/APP-1", "", app, id)
	if err := h.Show(c); err != nil {
		t.Fatalf("show: %v", err)
	}
	var st struct {
		ActiveTab string `json:"activeTab"`
		Complete  bool   `json:"workflowComplete"`
		Documents []struct {
			Name, Status string
		} `json:"extraDocuments"`
	}
	decode(t, rec, &st)
	if st.ActiveTab != "login" {
		t.Fatalf("unexpected initial tab %q", st.ActiveTab)
	}

	c, _ = f.request(http.MethodPost, "/dashboard/applicationid/APP-1/tab/nope", "", []string{"applicationId", "tab"}, []string{"APP-1", "nope"})
	if err := h.Select(c); !errors.Is(err, domain.ErrUnknownTab) {
		t.Fatalf("expected unknown tab, got %v", err)
	}

	c, _ = f.request(http.MethodPost, "/dashboard/applicationid/APP-1/decision", `{"action":"escalate"}`, app, id)
	var ve *domain.ValidationError
	if err := h.Decide(c); !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}

	c, rec = f.request(http.MethodPost, "/dashboard/applicationid/APP-1/documents", `{"name":"Bank statement"}`, app, id)
	if err := h.AddDocument(c); err != nil {
		t.Fatalf("add document: %v", err)
	}
	decode(t, rec, &st)
	if len(st.Documents) != 1 || st.Documents[0].Status != "pending" {
		t.Fatalf("unexpected documents %+v", st.Documents)
	}

	c, rec = f.request(http.MethodPost, "/dashboard/applicationid/APP-1/decision", `{"action":"approve"}`, app, id)
	if err := h.Decide(c); err != nil {
		t.Fatalf("decide: %v", err)
	}
	decode(t, rec, &st)
	if st.ActiveTab != "final" || !st.Complete {
		t.Fatalf("unexpected state after approve %+v", st)
	}

	c, _ = f.request(http.MethodPost, "/dashboard/applicationid/APP-1/decision", `{"action":"approve"}`, app, id)
	if err := h.Decide(c); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
}

func TestReviewHandler_History(t *testing.T) {
	f := newFixture()
	h := NewReviewHandler(f.spaces)

	body := `{"records":[{"month":"2024-02","paidOnTime":true},{"month":"2025-01","delayDays":3}]}`
	c, rec := f.request(http.MethodPost, "/dashboard/applicationid/APP-1/emi-history", body, []string{"applicationId"}, []string{"APP-1"})
	if err := h.History(c); err != nil {
		t.Fatalf("history: %v", err)
	}
	var resp historyResponse
	decode(t, rec, &resp)
	if len(resp.Years) != 2 || resp.Years[0].Year != "2025" || resp.Years[1].Months[1] != "paid" {
		t.Fatalf("unexpected history %+v", resp)
	}
}

func TestHealthHandler(t *testing.T) {
	e := echo.New()
	h := NewHealthHandler(map[string]Probe{
		"mongo": func(context.Context) error { return nil },
		"redis": func(context.Context) error { return errors.New("connection refused") },
	})

	rec := httptest.NewRecorder()
	if err := h.Liveness(e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)); err != nil || rec.Code != http.StatusOK {
		t.Fatalf("liveness: %d %v", rec.Code, err)
	}

	rec = httptest.NewRecorder()
	if err := h.Readiness(e.NewContext(httptest.NewRequest(http.MethodGet, "/health/ready", nil), rec)); err != nil {
		t.Fatalf("readiness: %v", err)
	}
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	var resp readinessResponse
	decode(t, rec, &resp)
	if resp.Status != "degraded" || resp.Dependencies["mongo"].Status != "ok" || resp.Dependencies["redis"].Error != "connection refused" {
		t.Fatalf("unexpected readiness %+v", resp)
	}
}
