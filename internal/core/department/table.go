package department

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/fintree/backoffice/internal/core/domain"
	"github.com/fintree/backoffice/internal/core/table"
)

// DeletePolicy decides what happens to sub-departments of a deleted department.
type DeletePolicy string

const (
	// DeleteOrphan lets the delete through; children keep a dangling parent
	// id and render "-" until they are edited.
	DeleteOrphan DeletePolicy = "orphan"
	// DeleteBlock refuses to delete a department that still has children.
	DeleteBlock DeletePolicy = "block"
)

func ParseDeletePolicy(s string) (DeletePolicy, error) {
	switch p := DeletePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "", DeleteOrphan:
		return DeleteOrphan, nil
	case DeleteBlock:
		return DeleteBlock, nil
	default:
		return "", fmt.Errorf("unknown department delete policy %q", s)
	}
}

// Engine is the entity table instantiated for departments.
type Engine = table.Engine[domain.Department, domain.DepartmentDraft]

// Columns renders departments with their parent resolved against snapshot.
func Columns(snapshot []domain.Department) []table.Column[domain.Department] {
	names := make(map[int64]string, len(snapshot))
	for _, d := range snapshot {
		names[d.ID] = d.Name
	}

	return []table.Column[domain.Department]{
		{Key: "id", Value: func(d domain.Department) any { return d.ID }},
		{Key: "name", Value: func(d domain.Department) any { return d.Name }},
		{Key: "parentName", Value: func(d domain.Department) any {
			if d.ParentID == nil {
				return nil
			}
			return names[*d.ParentID]
		}},
		{Key: "dateAdded", Value: func(d domain.Department) any { return d.CreatedAt }},
	}
}

// NewSchema builds the department table schema. The lending API has no
// department update endpoint, so updateMode is normally table.ModeUnsupported.
func NewSchema(policy DeletePolicy, updateMode table.Mode) table.Schema[domain.Department, domain.DepartmentDraft] {
	s := table.Schema[domain.Department, domain.DepartmentDraft]{
		Entity:     "department",
		Plural:     "departments",
		Columns:    Columns,
		SearchKeys: []string{"name", "parentName"},
		ID:         func(d domain.Department) int64 { return d.ID },
		Label:      func(d domain.Department) string { return d.Name },
		UpdateMode: updateMode,
		DeleteMode: table.ModeRemote,
		Apply: func(d domain.Department, draft domain.DepartmentDraft) domain.Department {
			d.Name = draft.Name
			d.ParentID = draft.ParentID
			return d
		},
		Check: func(snapshot []domain.Department, id int64, draft domain.DepartmentDraft) error {
			return CheckParent(snapshot, id, draft.ParentID)
		},
	}

	if policy == DeleteBlock {
		s.CanDelete = func(snapshot []domain.Department, id int64) error {
			for _, d := range snapshot {
				if d.ParentID != nil && *d.ParentID == id {
					return fmt.Errorf("%w: %s", domain.ErrDepartmentHasChildren, d.Name)
				}
			}
			return nil
		}
	}
	return s
}

// Table adds the parent picker and row expansion to the department engine.
type Table struct {
	*Engine

	mu       sync.Mutex
	expanded map[int64]struct{}
}

func NewTable(engine *Engine) *Table {
	return &Table{Engine: engine, expanded: make(map[int64]struct{})}
}

// ParentOptions lists the parents offered when creating (forID 0) or editing forID.
func (t *Table) ParentOptions(forID int64) []ParentOption {
	return ParentOptions(t.Snapshot(), forID)
}

// ToggleExpanded flips the inline details of a row and reports whether it is now expanded.
func (t *Table) ToggleExpanded(id int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.expanded[id]; ok {
		delete(t.expanded, id)
		return false
	}
	t.expanded[id] = struct{}{}
	return true
}

// Expanded returns the expanded row ids in ascending order.
func (t *Table) Expanded() []int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	ids := make([]int64, 0, len(t.expanded))
	for id := range t.expanded {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
