package service

import (
	"github.com/fintree/backoffice/internal/core/domain"
	"github.com/fintree/backoffice/internal/core/table"
)

func companySchema() table.Schema[domain.Company, domain.CompanyDraft] {
	return table.Schema[domain.Company, domain.CompanyDraft]{
		Entity: "company",
		Plural: "companies",
		Columns: func([]domain.Company) []table.Column[domain.Company] {
			return []table.Column[domain.Company]{
				{Key: "id", Value: func(c domain.Company) any { return c.ID }},
				{Key: "companyName", Value: func(c domain.Company) any { return c.Name }},
				{Key: "logoUrl", Value: func(c domain.Company) any { return c.LogoURL }},
				{Key: "themeColor", Value: func(c domain.Company) any { return c.ThemeColor }},
				{Key: "adminName", Value: func(c domain.Company) any { return c.AdminName }},
				{Key: "adminEmail", Value: func(c domain.Company) any { return c.AdminEmail }},
				{Key: "adminPassword", Value: func(domain.Company) any { return domain.MaskedPassword }},
				{Key: "dateAdded", Value: func(c domain.Company) any { return c.CreatedAt }},
			}
		},
		SearchKeys: []string{"companyName", "adminName", "adminEmail"},
		ID:         func(c domain.Company) int64 { return c.ID },
		Label:      func(c domain.Company) string { return c.Name },
		UpdateMode: table.ModeRemote,
		DeleteMode: table.ModeRemote,
	}
}

func roleSchema() table.Schema[domain.Role, domain.RoleDraft] {
	return table.Schema[domain.Role, domain.RoleDraft]{
		Entity: "role",
		Plural: "roles",
		Columns: func([]domain.Role) []table.Column[domain.Role] {
			return []table.Column[domain.Role]{
				{Key: "id", Value: func(r domain.Role) any { return r.ID }},
				{Key: "name", Value: func(r domain.Role) any { return r.Name }},
				{Key: "description", Value: func(r domain.Role) any { return r.Description }},
				{Key: "dateAdded", Value: func(r domain.Role) any { return r.CreatedAt }},
			}
		},
		SearchKeys: []string{"name", "description"},
		ID:         func(r domain.Role) int64 { return r.ID },
		Label:      func(r domain.Role) string { return r.Name },
		UpdateMode: table.ModeRemote,
		DeleteMode: table.ModeRemote,
	}
}

// pageSchema: the lending API only lists and creates pages, edits and
// deletes stay in this table instance.
func pageSchema() table.Schema[domain.Page, domain.PageDraft] {
	return table.Schema[domain.Page, domain.PageDraft]{
		Entity: "page",
		Plural: "pages",
		Columns: func([]domain.Page) []table.Column[domain.Page] {
			return []table.Column[domain.Page]{
				{Key: "id", Value: func(p domain.Page) any { return p.ID }},
				{Key: "name", Value: func(p domain.Page) any { return p.Name }},
				{Key: "url", Value: func(p domain.Page) any { return p.URL }},
			}
		},
		SearchKeys: []string{"name", "url"},
		ID:         func(p domain.Page) int64 { return p.ID },
		Label:      func(p domain.Page) string { return p.Name },
		UpdateMode: table.ModeLocal,
		DeleteMode: table.ModeLocal,
		Apply: func(p domain.Page, d domain.PageDraft) domain.Page {
			p.Name = d.Name
			p.URL = d.URL
			return p
		},
	}
}

// userSchema resolves department and role names through refs, which the
// user table refreshes together with the users themselves.
func userSchema(refs *userRefs) table.Schema[domain.User, domain.UserDraft] {
	return table.Schema[domain.User, domain.UserDraft]{
		Entity: "user",
		Plural: "users",
		Columns: func([]domain.User) []table.Column[domain.User] {
			return []table.Column[domain.User]{
				{Key: "id", Value: func(u domain.User) any { return u.ID }},
				{Key: "name", Value: func(u domain.User) any { return u.Name }},
				{Key: "email", Value: func(u domain.User) any { return u.Email }},
				{Key: "department", Value: func(u domain.User) any { return refs.department(u.DepartmentID) }},
				{Key: "role", Value: func(u domain.User) any { return refs.role(u.RoleID) }},
				{Key: "userType", Value: func(u domain.User) any { return u.UserType }},
				{Key: "status", Value: func(u domain.User) any {
					if u.IsActive {
						return "Active"
					}
					return "Inactive"
				}},
				{Key: "dateAdded", Value: func(u domain.User) any { return u.CreatedAt }},
			}
		},
		SearchKeys: []string{"name", "email", "department", "role"},
		ID:         func(u domain.User) int64 { return u.ID },
		Label:      func(u domain.User) string { return u.Name },
		UpdateMode: table.ModeLocal,
		DeleteMode: table.ModeLocal,
		Apply: func(u domain.User, d domain.UserDraft) domain.User {
			u.Name = d.Name
			u.Email = d.Email
			u.DepartmentID = d.DepartmentID
			u.RoleID = d.RoleID
			u.UserType = d.UserType
			if d.IsActive != nil {
				u.IsActive = *d.IsActive
			}
			return u
		},
	}
}
