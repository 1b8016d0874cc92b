package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrUnauthorized          = errors.New("session expired")
	ErrSessionMissing        = errors.New("no access token found")
	ErrNoAccessToken         = errors.New("login response carried no access token")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrForbidden             = errors.New("access forbidden")
	ErrNotFound              = errors.New("record not found")
	ErrInFlight              = errors.New("request already in progress")
	ErrNotConfirmed          = errors.New("delete was not confirmed")
	ErrUnsupported           = errors.New("operation not supported")
	ErrUnknownColumn         = errors.New("unknown column")
	ErrDepartmentCycle       = errors.New("a department cannot be its own parent or sit under one of its sub-departments")
	ErrDepartmentHasChildren = errors.New("department still has sub-departments")
	ErrInvalidTransition     = errors.New("invalid review transition")
	ErrUnknownTab            = errors.New("unknown tab")
)

// ValidationError carries one message per invalid draft field, keyed by the
// field's json name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// OperationError names the dashboard action a failure belongs to, e.g.
// "add department". The alert shown to the user is built from it.
type OperationError struct {
	Action string
	Err    error
}

func (e *OperationError) Error() string {
	return e.Action + ": " + e.Err.Error()
}

func (e *OperationError) Unwrap() error { return e.Err }

// RequestError is a non-2xx answer (other than 401) from the lending API.
type RequestError struct {
	Endpoint string
	Status   int
	Body     string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("HTTP error! status: %d", e.Status)
}

// TransportError wraps network and decoding failures talking to the lending API.
type TransportError struct {
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
