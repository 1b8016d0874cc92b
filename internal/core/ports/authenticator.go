package ports

import (
	"context"

	"github.com/fintree/backoffice/internal/core/domain"
)

// Authenticator exchanges staff credentials for an API token.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (domain.Credentials, error)
}

// SessionStore persists signed-in sessions by id.
// Get returns domain.ErrSessionMissing when the id is unknown or expired.
type SessionStore interface {
	Save(ctx context.Context, s domain.Session) error
	Get(ctx context.Context, id string) (domain.Session, error)
	Delete(ctx context.Context, id string) error
}
