// Package redis keeps dashboard sessions and the create-submission guard in Redis.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	clientName  = "backoffice"
	dialTimeout = 5 * time.Second
)

// Config is the REDIS_* section of the dashboard configuration.
type Config struct {
	Addr     string
	Password string
	DB       int
	// Timeout bounds dialing and the startup ping. Zero means 5s.
	Timeout time.Duration
}

// Connect returns a client that answered PING, or closes it and reports which
// address failed.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	opts := &redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		ClientName:  clientName,
		DialTimeout: dialTimeout,
	}
	if cfg.Timeout > 0 {
		opts.DialTimeout = cfg.Timeout
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, opts.DialTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis %s db %d: %w", cfg.Addr, cfg.DB, err)
	}
	return client, nil
}
