package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DisplayTimeLayout renders creation dates in table rows, e.g. "7 Aug 2025, 3:04 PM".
const DisplayTimeLayout = "2 Jan 2006, 3:04 PM"

// MaskedPassword replaces write-only secrets in every rendered row.
const MaskedPassword = "••••••••"

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Timestamp tolerates the handful of layouts the lending API emits and
// decodes null or "" to the zero time.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("timestamp %q: unrecognised layout", s)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time)
}

// RefID is a numeric id that the lending API sometimes serialises as a string.
type RefID int64

func (r *RefID) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*r = 0
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("ref id %q: %w", s, err)
	}
	*r = RefID(n)
	return nil
}

// optionalRef returns nil for a missing, null or zero reference.
func optionalRef(r *RefID) *int64 {
	if r == nil || *r == 0 {
		return nil
	}
	v := int64(*r)
	return &v
}

// Company is the root administrative record of a tenant.
type Company struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	LogoURL    string    `json:"logo_url"`
	ThemeColor string    `json:"theme_color"`
	AdminName  string    `json:"admin_name"`
	AdminEmail string    `json:"admin_email"`
	CreatedAt  Timestamp `json:"created_at"`
}

// Department optionally points at a parent department of the same company.
type Department struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	ParentID  *int64    `json:"parent_id"`
	CompanyID RefID     `json:"company_id"`
	CreatedAt Timestamp `json:"created_at"`
}

// UnmarshalJSON accepts parent_id as a number or a numeric string.
func (d *Department) UnmarshalJSON(b []byte) error {
	type plain Department
	aux := struct {
		*plain
		ParentID *RefID `json:"parent_id"`
	}{plain: (*plain)(d)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	d.ParentID = optionalRef(aux.ParentID)
	return nil
}

type Role struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CompanyID   RefID     `json:"company_id"`
	CreatedAt   Timestamp `json:"created_at"`
}

// User references its department and role by id only.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash,omitempty"`
	CompanyID    RefID     `json:"company_id"`
	DepartmentID *int64    `json:"department_id"`
	RoleID       *int64    `json:"role_id"`
	IsActive     bool      `json:"is_active"`
	UserType     string    `json:"user_type"`
	CreatedAt    Timestamp `json:"created_at"`
}

// UnmarshalJSON accepts department_id and role_id as numbers or numeric strings.
func (u *User) UnmarshalJSON(b []byte) error {
	type plain User
	aux := struct {
		*plain
		DepartmentID *RefID `json:"department_id"`
		RoleID       *RefID `json:"role_id"`
	}{plain: (*plain)(u)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	u.DepartmentID = optionalRef(aux.DepartmentID)
	u.RoleID = optionalRef(aux.RoleID)
	return nil
}

// Page is a navigation entry.
type Page struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ── Drafts ───────────────────────────────────────────────────────────────────
//
// Drafts are what the add/edit dialogs submit. Field names follow the UI,
// validation messages are looked up as "<field>.<tag>".

type CompanyDraft struct {
	CompanyName   string `json:"companyName"   validate:"required"`
	LogoURL       string `json:"logoUrl"       validate:"required"`
	ThemeColor    string `json:"themeColor"    validate:"required"`
	AdminName     string `json:"adminName"     validate:"required"`
	AdminEmail    string `json:"adminEmail"    validate:"required,email"`
	AdminPassword string `json:"adminPassword" validate:"min=4"`
}

func (CompanyDraft) ValidationMessages() map[string]string {
	return map[string]string{
		"companyName.required": "Company Name is required",
		"logoUrl.required":     "Logo URL is required",
		"themeColor.required":  "Theme Color is required",
		"adminName.required":   "Admin Name is required",
		"adminEmail.required":  "Valid email required",
		"adminEmail.email":     "Valid email required",
		"adminPassword.min":    "Password must be at least 4 characters",
	}
}

type DepartmentDraft struct {
	Name     string `json:"departmentName" validate:"required"`
	ParentID *int64 `json:"parentId"`
}

func (DepartmentDraft) ValidationMessages() map[string]string {
	return map[string]string{
		"departmentName.required": "Department Name is required",
	}
}

type RoleDraft struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

func (RoleDraft) ValidationMessages() map[string]string {
	return map[string]string{
		"name.required": "Role Name is required",
	}
}

type UserDraft struct {
	Name         string `json:"name"     validate:"required"`
	Email        string `json:"email"    validate:"required,email"`
	Password     string `json:"password" validate:"required"`
	DepartmentID *int64 `json:"departmentId"`
	RoleID       *int64 `json:"roleId"`
	IsActive     *bool  `json:"isActive"`
	UserType     string `json:"userType"`
}

func (UserDraft) ValidationMessages() map[string]string {
	return map[string]string{
		"name.required":     "Name is required",
		"email.required":    "Valid email required",
		"email.email":       "Valid email required",
		"password.required": "Password is required",
	}
}

type PageDraft struct {
	Name string `json:"name" validate:"required"`
	URL  string `json:"url"  validate:"required"`
}

func (PageDraft) ValidationMessages() map[string]string {
	return map[string]string{
		"name.required": "Page Name is required",
		"url.required":  "URL is required",
	}
}
