package table

import (
	"slices"
	"strings"
)

// DefaultPageSize is the number of rows per table page.
const DefaultPageSize = 10

type Direction string

const (
	Unsorted   Direction = ""
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// SortState is the header the table is currently sorted by.
type SortState struct {
	Key       string    `json:"key,omitempty"`
	Direction Direction `json:"direction,omitempty"`
}

// Next is the state after a click on the header key: the first click sorts
// ascending, a click on the header already sorted ascending flips it to
// descending, anything else starts over at ascending.
func (s SortState) Next(key string) SortState {
	if s.Key == key && s.Direction == Ascending {
		return SortState{Key: key, Direction: Descending}
	}
	return SortState{Key: key, Direction: Ascending}
}

// PageInfo describes the page being shown and whether the pager buttons are enabled.
type PageInfo struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"pageSize"`
	TotalPages int  `json:"totalPages"`
	Total      int  `json:"total"`
	HasPrev    bool `json:"hasPrev"`
	HasNext    bool `json:"hasNext"`
}

// Row is a rendered table row keyed by column.
type Row map[string]string

// View is everything the dashboard needs to draw one table.
type View struct {
	Entity  string    `json:"entity"`
	Columns []string  `json:"columns"`
	Rows    []Row     `json:"rows"`
	Query   string    `json:"query"`
	Sort    SortState `json:"sort"`
	Paging  PageInfo  `json:"paging"`
	Loaded  int       `json:"loaded"`
}

// Filter keeps the records whose rendered value in any of the searchable
// columns contains query, case-insensitively. An empty query keeps everything.
func Filter[T any](records []T, searchable []Column[T], query string) []T {
	q := strings.ToLower(query)
	if q == "" {
		return slices.Clone(records)
	}

	out := make([]T, 0, len(records))
	for _, r := range records {
		for _, c := range searchable {
			if strings.Contains(strings.ToLower(Display(c.Value(r))), q) {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

// Sort returns a stably sorted copy of records. Equal keys keep their input order.
func Sort[T any](records []T, col Column[T], dir Direction) []T {
	out := slices.Clone(records)
	if dir == Unsorted {
		return out
	}
	slices.SortStableFunc(out, func(a, b T) int {
		c := Compare(col.Value(a), col.Value(b))
		if dir == Descending {
			return -c
		}
		return c
	})
	return out
}

// Paginate slices records into fixed-size pages. page is clamped to the
// available range; an empty list still reports page 1.
func Paginate[T any](records []T, page, size int) ([]T, PageInfo) {
	if size <= 0 {
		size = DefaultPageSize
	}
	total := len(records)
	pages := (total + size - 1) / size

	page = max(1, min(page, pages))

	start := (page - 1) * size
	end := min(start+size, total)

	out := []T{}
	if start < total {
		out = records[start:end]
	}

	return out, PageInfo{
		Page:       page,
		PageSize:   size,
		TotalPages: pages,
		Total:      total,
		HasPrev:    page > 1,
		HasNext:    page < pages,
	}
}
