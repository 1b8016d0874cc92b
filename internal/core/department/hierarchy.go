// Package department specialises the entity table for the self-referencing
// department tree.
package department

import (
	"fmt"

	"github.com/fintree/backoffice/internal/core/domain"
)

// ParentOption is one entry of the parent picker. The "None" entry has a nil ID.
type ParentOption struct {
	ID    *int64 `json:"id"`
	Label string `json:"label"`
}

// Descendants returns the ids of every department below id. Cycles already
// present in the data are walked once.
func Descendants(snapshot []domain.Department, id int64) map[int64]struct{} {
	children := make(map[int64][]int64, len(snapshot))
	for _, d := range snapshot {
		if d.ParentID != nil {
			children[*d.ParentID] = append(children[*d.ParentID], d.ID)
		}
	}

	seen := make(map[int64]struct{})
	queue := []int64{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, child := range children[cur] {
			if _, ok := seen[child]; ok || child == id {
				continue
			}
			seen[child] = struct{}{}
			queue = append(queue, child)
		}
	}
	return seen
}

// CheckParent rejects a parent that is the department itself or one of its
// descendants. Parents missing from the snapshot are left to the API.
func CheckParent(snapshot []domain.Department, id int64, parentID *int64) error {
	if parentID == nil || id == 0 {
		return nil
	}
	if *parentID == id {
		return fmt.Errorf("department %d as its own parent: %w", id, domain.ErrDepartmentCycle)
	}
	if _, below := Descendants(snapshot, id)[*parentID]; below {
		return fmt.Errorf("department %d under its descendant %d: %w", id, *parentID, domain.ErrDepartmentCycle)
	}
	return nil
}

// ParentOptions lists the candidate parents for the department forID (0 when
// creating): "None" first, then every loaded department in list order except
// forID and its descendants.
func ParentOptions(snapshot []domain.Department, forID int64) []ParentOption {
	excluded := map[int64]struct{}{}
	if forID != 0 {
		excluded = Descendants(snapshot, forID)
		excluded[forID] = struct{}{}
	}

	opts := make([]ParentOption, 0, len(snapshot)+1)
	opts = append(opts, ParentOption{Label: "None"})
	for _, d := range snapshot {
		if _, skip := excluded[d.ID]; skip {
			continue
		}
		id := d.ID
		opts = append(opts, ParentOption{ID: &id, Label: d.Name})
	}
	return opts
}
