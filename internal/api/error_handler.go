package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/fintree/backoffice/internal/api/metrics"
	"github.com/fintree/backoffice/internal/api/middleware"
	"github.com/fintree/backoffice/internal/core/domain"
)

// errorResponse is the envelope of every failed request.
type errorResponse struct {
	Error    string            `json:"error"`
	Fields   map[string]string `json:"fields,omitempty"`
	Alert    *domain.Alert     `json:"alert,omitempty"`
	Redirect string            `json:"redirect,omitempty"`
}

// SessionExpirer ends a session whose token was rejected.
type SessionExpirer interface {
	Expire(ctx context.Context, id string) error
}

// NewHTTPErrorHandler returns the one place errors become responses. An
// unauthorized error from any layer ends the session, clears its cookie and
// sends the client back to the login page.
func NewHTTPErrorHandler(log zerolog.Logger, sessions SessionExpirer, cookies *middleware.Cookies) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		if errors.Is(err, domain.ErrUnauthorized) || errors.Is(err, domain.ErrSessionMissing) {
			expire(c, log, sessions, cookies)
			notice := domain.SessionExpiredNotice
			_ = c.JSON(http.StatusUnauthorized, errorResponse{
				Error:    err.Error(),
				Alert:    &notice,
				Redirect: middleware.LoginPath,
			})
			return
		}

		code, body := resolveError(err, log, c)
		_ = c.JSON(code, body)
	}
}

func expire(c echo.Context, log zerolog.Logger, sessions SessionExpirer, cookies *middleware.Cookies) {
	if sess, ok := middleware.SessionFrom(c); ok {
		if err := sessions.Expire(context.WithoutCancel(c.Request().Context()), sess.ID); err != nil {
			log.Warn().Err(err).Str("session_id", sess.ID).Msg("session wipe failed")
		}
		metrics.SessionsExpiredTotal.Inc()
	}
	if cookies != nil {
		cookies.ClearSession(c)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message)}
	}

	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return http.StatusUnprocessableEntity, errorResponse{Error: "validation failed", Fields: ve.Fields}
	}
	if errors.Is(err, domain.ErrDepartmentCycle) {
		return http.StatusUnprocessableEntity, errorResponse{
			Error:  "validation failed",
			Fields: map[string]string{"parentId": domain.ErrDepartmentCycle.Error()},
		}
	}

	action := "complete the request"
	var oe *domain.OperationError
	if errors.As(err, &oe) {
		action = oe.Action
	}

	var re *domain.RequestError
	if errors.As(err, &re) {
		return alert(http.StatusBadGateway, fmt.Sprintf("Failed to %s: %s", action, re.Error()))
	}
	var te *domain.TransportError
	if errors.As(err, &te) {
		log.Error().Err(err).Str("endpoint", te.Endpoint).Str("path", c.Path()).Msg("lending api unreachable")
		return alert(http.StatusBadGateway, fmt.Sprintf("Failed to %s", action))
	}

	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return alert(http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, domain.ErrNoAccessToken):
		return alert(http.StatusBadGateway, fmt.Sprintf("Failed to %s: %v", action, domain.ErrNoAccessToken))
	case errors.Is(err, domain.ErrForbidden):
		return alert(http.StatusForbidden, "You do not have access to this page")
	case errors.Is(err, domain.ErrInFlight):
		return alert(http.StatusConflict, fmt.Sprintf("Failed to %s: %v", action, domain.ErrInFlight))
	case errors.Is(err, domain.ErrNotConfirmed):
		return alert(http.StatusConflict, fmt.Sprintf("Failed to %s: %v", action, domain.ErrNotConfirmed))
	case errors.Is(err, domain.ErrDepartmentHasChildren):
		return alert(http.StatusConflict, fmt.Sprintf("Failed to %s: %v", action, domain.ErrDepartmentHasChildren))
	case errors.Is(err, domain.ErrInvalidTransition):
		return alert(http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrUnsupported):
		return alert(http.StatusMethodNotAllowed, fmt.Sprintf("Failed to %s: %v", action, domain.ErrUnsupported))
	case errors.Is(err, domain.ErrNotFound):
		return alert(http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnknownColumn),
		errors.Is(err, domain.ErrUnknownTab):
		return alert(http.StatusBadRequest, err.Error())
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Error: "internal server error"}
}

func alert(code int, description string) (int, errorResponse) {
	a := domain.ErrorAlert("Error", description)
	return code, errorResponse{Error: description, Alert: &a}
}
