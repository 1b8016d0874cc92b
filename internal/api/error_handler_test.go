package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/fintree/backoffice/internal/api/middleware"
	"github.com/fintree/backoffice/internal/core/domain"
	"github.com/fintree/backoffice/internal/core/session"
)

type stubExpirer struct {
	expired []string
}

func (s *stubExpirer) Expire(_ context.Context, id string) error {
	s.expired = append(s.expired, id)
	return nil
}

func TestHTTPErrorHandler_UnauthorizedWipesSession(t *testing.T) {
	e := echo.New()
	expirer := &stubExpirer{}
	handle := NewHTTPErrorHandler(zerolog.Nop(), expirer, middleware.NewCookies("secret", false, 0))

	req := httptest.NewRequest(http.MethodGet, "/dashboard/company", nil)
	req = req.WithContext(session.NewContext(req.Context(), domain.Session{ID: "s1"}))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := &domain.OperationError{Action: "load companies", Err: fmt.Errorf("GET /companies: %w", domain.ErrUnauthorized)}
	handle(err, c)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if len(expirer.expired) != 1 || expirer.expired[0] != "s1" {
		t.Fatalf("session not expired: %v", expirer.expired)
	}
	if set := rec.Header().Get("Set-Cookie"); !strings.Contains(set, middleware.SessionCookieName+"=;") {
		t.Fatalf("cookie not cleared: %q", set)
	}

	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if body.Redirect != "/login" || body.Alert == nil || *body.Alert != domain.SessionExpiredNotice {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestHTTPErrorHandler_Mapping(t *testing.T) {
	op := func(action string, err error) error { return &domain.OperationError{Action: action, Err: err} }

	tests := []struct {
		name string
		err  error
		code int
		msg  string
	}{
		{"validation", &domain.ValidationError{Fields: map[string]string{"name": "Role Name is required"}}, 422, "validation failed"},
		{"cycle", op("update department", domain.ErrDepartmentCycle), 422, "validation failed"},
		{"upstream", op("add department", &domain.RequestError{Status: 500}), 502, "Failed to add department: HTTP error! status: 500"},
		{"upstream without action", &domain.RequestError{Status: 404}, 502, "Failed to complete the request: HTTP error! status: 404"},
		{"transport", op("load roles", &domain.TransportError{Endpoint: "GET /roles", Err: errors.New("dial tcp")}), 502, "Failed to load roles"},
		{"credentials", domain.ErrInvalidCredentials, 401, "Invalid email or password"},
		{"login without token", op("sign in", domain.ErrNoAccessToken), 502, "Failed to sign in: login response carried no access token"},
		{"forbidden", fmt.Errorf("role: %w", domain.ErrForbidden), 403, "You do not have access to this page"},
		{"in flight", op("add page", domain.ErrInFlight), 409, "Failed to add page: request already in progress"},
		{"not confirmed", op("delete role", domain.ErrNotConfirmed), 409, "Failed to delete role: delete was not confirmed"},
		{"children", op("delete department", fmt.Errorf("%w: Payroll", domain.ErrDepartmentHasChildren)), 409, "Failed to delete department: department still has sub-departments"},
		{"transition", fmt.Errorf("%w: approve after the review was decided", domain.ErrInvalidTransition), 409, ""},
		{"unsupported", op("update department", domain.ErrUnsupported), 405, "Failed to update department: operation not supported"},
		{"not found", op("delete user", domain.ErrNotFound), 404, ""},
		{"unknown column", fmt.Errorf("%w: %q", domain.ErrUnknownColumn, "x"), 400, ""},
		{"echo", echo.NewHTTPError(http.StatusBadRequest, "invalid payload"), 400, "invalid payload"},
		{"unexpected", errors.New("boom"), 500, "internal server error"},
	}

	e := echo.New()
	handle := NewHTTPErrorHandler(zerolog.Nop(), &stubExpirer{}, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handle(tt.err, e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec))

			if rec.Code != tt.code {
				t.Fatalf("expected %d, got %d", tt.code, rec.Code)
			}
			var body errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if tt.msg != "" && body.Error != tt.msg {
				t.Fatalf("expected %q, got %q", tt.msg, body.Error)
			}
		})
	}
}
