package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultGuardTTL = 30 * time.Second

// SubmissionGuard marks a create or update as in flight so that an identical
// second click is refused until the first one finishes.
// Key format: inflight:<session>:<entity>:<op>:<id>:<payload hash>
type SubmissionGuard struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSubmissionGuard creates a guard whose marks expire after ttl even if
// Release is never called.
func NewSubmissionGuard(client *redis.Client, ttl time.Duration) *SubmissionGuard {
	if ttl <= 0 {
		ttl = defaultGuardTTL
	}
	return &SubmissionGuard{client: client, ttl: ttl}
}

// Acquire reports whether the caller now owns the in-flight mark for key.
func (g *SubmissionGuard) Acquire(ctx context.Context, key string) (bool, error) {
	ok, err := g.client.SetNX(ctx, g.key(key), "1", g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("inflight acquire: %w", err)
	}
	return ok, nil
}

// Release clears the in-flight mark for key.
func (g *SubmissionGuard) Release(ctx context.Context, key string) error {
	if err := g.client.Del(ctx, g.key(key)).Err(); err != nil {
		return fmt.Errorf("inflight release: %w", err)
	}
	return nil
}

func (g *SubmissionGuard) key(k string) string {
	return "inflight:" + k
}
