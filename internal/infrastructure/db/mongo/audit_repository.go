package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fintree/backoffice/internal/core/domain"
	"github.com/fintree/backoffice/internal/core/ports"
)

const (
	auditCollection = "audit_events"
	writeTimeout    = 5 * time.Second
)

// AuditRepository implements ports.AuditRepository using MongoDB.
type AuditRepository struct {
	db *mongo.Database
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(db *mongo.Database) ports.AuditRepository {
	return &AuditRepository{db: db}
}

// InsertEntry appends one entry to the audit_events collection.
func (r *AuditRepository) InsertEntry(ctx context.Context, entry *domain.AuditEntry) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	if _, err := r.db.Collection(auditCollection).InsertOne(ctx, auditDocument(entry, time.Now())); err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// auditDocument maps entry to its stored form; now stamps entries without a time.
func auditDocument(entry *domain.AuditEntry, now time.Time) bson.M {
	at := entry.At
	if at.IsZero() {
		at = now
	}

	doc := bson.M{
		"session_id":  entry.SessionID,
		"company_id":  entry.CompanyID,
		"entity":      entry.Entity,
		"action":      entry.Action,
		"outcome":     string(entry.Outcome),
		"occurred_at": at.UTC(),
	}
	if entry.RecordID != "" {
		doc["record_id"] = entry.RecordID
	}
	if entry.Detail != "" {
		doc["detail"] = entry.Detail
	}
	return doc
}

// EnsureAuditIndexes creates the indexes the audit queries rely on: per
// company timeline and per record history.
func EnsureAuditIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(auditCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "company_id", Value: 1}, {Key: "occurred_at", Value: -1}},
			Options: options.Index().SetName("company_timeline"),
		},
		{
			Keys:    bson.D{{Key: "entity", Value: 1}, {Key: "record_id", Value: 1}},
			Options: options.Index().SetName("record_history"),
		},
	})
	if err != nil {
		return fmt.Errorf("ensure audit indexes: %w", err)
	}
	return nil
}
