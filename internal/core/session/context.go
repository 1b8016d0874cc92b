// Package session owns the signed-in session: who is calling the lending API,
// for which company, under which tenant branding.
package session

import (
	"context"

	"github.com/fintree/backoffice/internal/core/domain"
)

type ctxKey struct{}

// NewContext returns a copy of ctx carrying s.
func NewContext(ctx context.Context, s domain.Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session stored by NewContext.
func FromContext(ctx context.Context) (domain.Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(domain.Session)
	return s, ok
}
