package mongo

import (
	"testing"
	"time"

	"github.com/fintree/backoffice/internal/core/domain"
)

func TestAuditDocument(t *testing.T) {
	now := time.Date(2025, 8, 7, 15, 4, 0, 0, time.FixedZone("IST", 5*3600+1800))
	entry := &domain.AuditEntry{
		SessionID: "s1",
		CompanyID: "7",
		Entity:    "department",
		Action:    "add department",
		RecordID:  "12",
		Outcome:   domain.AuditSucceeded,
	}

	doc := auditDocument(entry, now)
	if doc["session_id"] != "s1" || doc["company_id"] != "7" || doc["entity"] != "department" ||
		doc["action"] != "add department" || doc["outcome"] != "succeeded" || doc["record_id"] != "12" {
		t.Fatalf("unexpected document %v", doc)
	}
	if at, _ := doc["occurred_at"].(time.Time); !at.Equal(now) || at.Location() != time.UTC {
		t.Fatalf("expected UTC timestamp of now, got %v", doc["occurred_at"])
	}
	if _, ok := doc["detail"]; ok {
		t.Fatalf("empty detail should be omitted")
	}
}

func TestAuditDocument_KeepsEntryTime(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	doc := auditDocument(&domain.AuditEntry{Outcome: domain.AuditFailed, Detail: "HTTP error! status: 500", At: at}, time.Now())

	if got, _ := doc["occurred_at"].(time.Time); !got.Equal(at) {
		t.Fatalf("want %v, got %v", at, got)
	}
	if doc["detail"] != "HTTP error! status: 500" || doc["outcome"] != "failed" {
		t.Fatalf("unexpected document %v", doc)
	}
	if _, ok := doc["record_id"]; ok {
		t.Fatalf("empty record id should be omitted")
	}
}
