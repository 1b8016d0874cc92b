package table

import (
	"fmt"
	"strings"
)

// Mode says where an operation takes effect.
type Mode int

const (
	// ModeRemote calls the lending API, then refreshes the list.
	ModeRemote Mode = iota
	// ModeLocal changes the in-memory list only.
	ModeLocal
	// ModeUnsupported rejects the operation.
	ModeUnsupported
)

// ParseMode reads a configured mode: "remote", "local" or "off".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "remote":
		return ModeRemote, nil
	case "local":
		return ModeLocal, nil
	case "", "off":
		return ModeUnsupported, nil
	default:
		return ModeUnsupported, fmt.Errorf("unknown mode %q", s)
	}
}

// Schema configures one entity table.
type Schema[T any, D any] struct {
	// Entity and Plural name the records in alerts ("add department", "load departments").
	Entity string
	Plural string

	// Columns builds the display columns against the current snapshot, so a
	// column may resolve references into the same list.
	Columns func(snapshot []T) []Column[T]
	// SearchKeys are the column keys the search box matches against.
	SearchKeys []string

	ID    func(T) int64
	Label func(T) string

	UpdateMode Mode
	DeleteMode Mode

	// Apply patches a record in place for ModeLocal updates.
	Apply func(rec T, draft D) T

	// Check runs after field validation with the snapshot and the id being
	// edited (0 on create).
	Check func(snapshot []T, id int64, draft D) error
	// CanDelete vetoes a delete before the confirmation is shown.
	CanDelete func(snapshot []T, id int64) error
}

func (s Schema[T, D]) column(snapshot []T, key string) (Column[T], bool) {
	for _, c := range s.Columns(snapshot) {
		if c.Key == key {
			return c, true
		}
	}
	return Column[T]{}, false
}

func (s Schema[T, D]) searchable(cols []Column[T]) []Column[T] {
	out := make([]Column[T], 0, len(s.SearchKeys))
	for _, key := range s.SearchKeys {
		for _, c := range cols {
			if c.Key == key {
				out = append(out, c)
			}
		}
	}
	return out
}
