package domain

import "time"

// Session is the server-side half of a signed-in browser tab.
type Session struct {
	ID          string    `json:"id"`
	AccessToken string    `json:"access_token"`
	CompanyID   string    `json:"company_id"`
	ThemeCode   string    `json:"theme_code"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
}

// Credentials is what the lending API hands back for a successful login.
type Credentials struct {
	AccessToken string
	CompanyID   string
	Role        string
}

// Tenant is a branded login surface keyed by its URL slug.
type Tenant struct {
	ID           string `json:"id"           yaml:"id"`
	Name         string `json:"name"         yaml:"name"`
	Font         string `json:"font"         yaml:"font"`
	Gradient     string `json:"gradient"     yaml:"gradient"`
	PrimaryColor string `json:"primaryColor" yaml:"primaryColor"`
	Logo         string `json:"logo"         yaml:"logo"`
}

// AuditOutcome is the result recorded for an audited operation.
type AuditOutcome string

const (
	AuditSucceeded AuditOutcome = "succeeded"
	AuditFailed    AuditOutcome = "failed"
)

// AuditEntry records one mutation or review decision made from the dashboard.
type AuditEntry struct {
	SessionID string
	CompanyID string
	Entity    string
	Action    string
	RecordID  string
	Outcome   AuditOutcome
	Detail    string
	At        time.Time
}
