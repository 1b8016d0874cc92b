package ports

import (
	"context"

	"github.com/fintree/backoffice/internal/core/domain"
)

// Collection is a remote REST collection of records T written from drafts D.
// The caller's session travels in ctx.
type Collection[T any, D any] interface {
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, draft D, idempotencyKey string) (T, error)
	Update(ctx context.Context, id int64, draft D) (T, error)
	Delete(ctx context.Context, id int64) error
}

// SubmissionGuard rejects a second identical submission while the first is
// still in flight.
type SubmissionGuard interface {
	Acquire(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

// AuditRepository stores the audit trail of dashboard mutations.
type AuditRepository interface {
	InsertEntry(ctx context.Context, entry *domain.AuditEntry) error
}
