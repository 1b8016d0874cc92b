// Package tenant maps login URL slugs to tenant branding.
package tenant

import (
	"errors"
	"slices"
	"strings"

	"github.com/fintree/backoffice/internal/core/domain"
)

var ErrNoTenants = errors.New("no tenants configured")

// Resolver looks tenants up by slug. The first configured tenant is the
// default for unknown slugs.
type Resolver struct {
	tenants []domain.Tenant
	byID    map[string]domain.Tenant
}

func NewResolver(tenants []domain.Tenant) (*Resolver, error) {
	if len(tenants) == 0 {
		return nil, ErrNoTenants
	}
	byID := make(map[string]domain.Tenant, len(tenants))
	for _, t := range tenants {
		if _, dup := byID[t.ID]; !dup {
			byID[t.ID] = t
		}
	}
	return &Resolver{tenants: slices.Clone(tenants), byID: byID}, nil
}

// Resolve returns the tenant for slug, or the default tenant when none matches.
func (r *Resolver) Resolve(slug string) domain.Tenant {
	if t, ok := r.byID[strings.TrimSpace(slug)]; ok {
		return t
	}
	return r.tenants[0]
}

// Known reports whether slug names a configured tenant.
func (r *Resolver) Known(slug string) bool {
	_, ok := r.byID[strings.TrimSpace(slug)]
	return ok
}

func (r *Resolver) Default() domain.Tenant {
	return r.tenants[0]
}

func (r *Resolver) All() []domain.Tenant {
	return slices.Clone(r.tenants)
}
