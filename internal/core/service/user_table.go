package service

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/fintree/backoffice/internal/core/domain"
	"github.com/fintree/backoffice/internal/core/ports"
	"github.com/fintree/backoffice/internal/core/table"
)

// Option is an entry of a select box.
type Option struct {
	ID    int64  `json:"id"`
	Label string `json:"label"`
}

// UserOptions feeds the department and role pickers of the user dialog.
type UserOptions struct {
	Departments []Option `json:"departments"`
	Roles       []Option `json:"roles"`
}

// userRefs is the user table's own copy of the department and role lists.
type userRefs struct {
	mu          sync.RWMutex
	departments []Option
	roles       []Option
}

func (r *userRefs) setDepartments(ds []domain.Department) {
	opts := make([]Option, len(ds))
	for i, d := range ds {
		opts[i] = Option{ID: d.ID, Label: d.Name}
	}
	r.mu.Lock()
	r.departments = opts
	r.mu.Unlock()
}

func (r *userRefs) setRoles(rs []domain.Role) {
	opts := make([]Option, len(rs))
	for i, role := range rs {
		opts[i] = Option{ID: role.ID, Label: role.Name}
	}
	r.mu.Lock()
	r.roles = opts
	r.mu.Unlock()
}

func (r *userRefs) department(id *int64) any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lookup(r.departments, id)
}

func (r *userRefs) role(id *int64) any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lookup(r.roles, id)
}

func lookup(opts []Option, id *int64) any {
	if id == nil {
		return nil
	}
	for _, o := range opts {
		if o.ID == *id {
			return o.Label
		}
	}
	return nil
}

// UserTable is the user entity table plus the department and role lists its
// rows and pickers refer to.
type UserTable struct {
	*table.Engine[domain.User, domain.UserDraft]

	departments ports.Collection[domain.Department, domain.DepartmentDraft]
	roles       ports.Collection[domain.Role, domain.RoleDraft]
	refs        *userRefs
}

// Refresh reloads users, departments and roles concurrently so that names in
// the user rows are as fresh as the users themselves.
func (t *UserTable) Refresh(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return t.List(gctx)
	})
	g.Go(func() error {
		ds, err := t.departments.List(gctx)
		if err != nil {
			return &domain.OperationError{Action: "load departments", Err: err}
		}
		t.refs.setDepartments(ds)
		return nil
	})
	g.Go(func() error {
		rs, err := t.roles.List(gctx)
		if err != nil {
			return &domain.OperationError{Action: "load roles", Err: err}
		}
		t.refs.setRoles(rs)
		return nil
	})

	return g.Wait()
}

// Options returns the picker entries from the last Refresh.
func (t *UserTable) Options() UserOptions {
	t.refs.mu.RLock()
	defer t.refs.mu.RUnlock()
	return UserOptions{
		Departments: append([]Option{}, t.refs.departments...),
		Roles:       append([]Option{}, t.refs.roles...),
	}
}
