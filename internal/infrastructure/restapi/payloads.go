package restapi

import (
	"strconv"

	"github.com/fintree/backoffice/internal/core/domain"
)

type companyPayload struct {
	Name          string `json:"name"`
	LogoURL       string `json:"logo_url"`
	ThemeColor    string `json:"theme_color"`
	AdminName     string `json:"admin_name"`
	AdminEmail    string `json:"admin_email"`
	AdminPassword string `json:"admin_password,omitempty"`
}

type departmentPayload struct {
	Name      string `json:"name"`
	ParentID  *int64 `json:"parent_id"`
	CompanyID any    `json:"company_id"`
}

type rolePayload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	CompanyID   any    `json:"company_id"`
}

type userPayload struct {
	CompanyID    any    `json:"company_id"`
	RoleID       *int64 `json:"role_id"`
	DepartmentID *int64 `json:"department_id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	IsActive     bool   `json:"is_active"`
	UserType     string `json:"user_type,omitempty"`
}

type pagePayload struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// companyRef sends the session's company id as a number when it is one.
func companyRef(s domain.Session) any {
	if n, err := strconv.ParseInt(s.CompanyID, 10, 64); err == nil {
		return n
	}
	return s.CompanyID
}

func encodeCompany(d domain.CompanyDraft, _ domain.Session) any {
	return companyPayload{
		Name:          d.CompanyName,
		LogoURL:       d.LogoURL,
		ThemeColor:    d.ThemeColor,
		AdminName:     d.AdminName,
		AdminEmail:    d.AdminEmail,
		AdminPassword: d.AdminPassword,
	}
}

func encodeDepartment(d domain.DepartmentDraft, s domain.Session) any {
	return departmentPayload{Name: d.Name, ParentID: d.ParentID, CompanyID: companyRef(s)}
}

func encodeRole(d domain.RoleDraft, s domain.Session) any {
	return rolePayload{Name: d.Name, Description: d.Description, CompanyID: companyRef(s)}
}

// encodeUser activates new users unless the dialog says otherwise.
func encodeUser(d domain.UserDraft, s domain.Session) any {
	active := true
	if d.IsActive != nil {
		active = *d.IsActive
	}
	return userPayload{
		CompanyID:    companyRef(s),
		RoleID:       d.RoleID,
		DepartmentID: d.DepartmentID,
		Name:         d.Name,
		Email:        d.Email,
		Password:     d.Password,
		IsActive:     active,
		UserType:     d.UserType,
	}
}

func encodePage(d domain.PageDraft, _ domain.Session) any {
	return pagePayload{Name: d.Name, URL: d.URL}
}

func Companies(c *Client) *Resource[domain.Company, domain.CompanyDraft] {
	return NewResource[domain.Company](c, "/companies", encodeCompany)
}

func Departments(c *Client) *Resource[domain.Department, domain.DepartmentDraft] {
	return NewResource[domain.Department](c, "/departments", encodeDepartment)
}

func Roles(c *Client) *Resource[domain.Role, domain.RoleDraft] {
	return NewResource[domain.Role](c, "/roles", encodeRole)
}

func Users(c *Client) *Resource[domain.User, domain.UserDraft] {
	return NewResource[domain.User](c, "/users", encodeUser)
}

func Pages(c *Client) *Resource[domain.Page, domain.PageDraft] {
	return NewResource[domain.Page](c, "/pages", encodePage)
}
