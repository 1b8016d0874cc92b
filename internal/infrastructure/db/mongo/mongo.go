// Package mongo persists the dashboard's audit trail.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	appName        = "backoffice"
	startupTimeout = 10 * time.Second
)

// Config is the MONGO_* section of the dashboard configuration.
type Config struct {
	URI      string
	Database string
	// Timeout bounds server selection and the startup work. Zero means 10s.
	Timeout time.Duration
}

// Connect opens the audit database: it waits for a primary and creates the
// audit indexes before handing the client back.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	wait := startupTimeout
	if cfg.Timeout > 0 {
		wait = cfg.Timeout
	}

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetAppName(appName).
		SetServerSelectionTimeout(wait)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("mongo %s: %w", cfg.Database, err)
	}

	startCtx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	db := client.Database(cfg.Database)
	err = client.Ping(startCtx, readpref.Primary())
	if err == nil {
		err = EnsureAuditIndexes(startCtx, db)
	}
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("mongo %s: %w", cfg.Database, err)
	}
	return client, db, nil
}
