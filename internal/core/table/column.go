package table

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fintree/backoffice/internal/core/domain"
)

// Column is one display field of a table. Value returns the typed value used
// for sorting; Display renders it for a cell and for search.
type Column[T any] struct {
	Key   string
	Value func(T) any
}

// Display renders a cell value. Missing values render as "-".
func Display(v any) string {
	switch x := normalize(v).(type) {
	case nil:
		return "-"
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		if x {
			return "Yes"
		}
		return "No"
	case time.Time:
		return x.Format(domain.DisplayTimeLayout)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// Compare orders two cell values: missing first, then numbers, strings and
// times by their natural order. Values of different kinds compare by their
// rendered text.
func Compare(a, b any) int {
	a, b = normalize(a), normalize(b)
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	switch x := a.(type) {
	case int64:
		if y, ok := b.(int64); ok {
			return cmp.Compare(x, y)
		}
	case float64:
		if y, ok := b.(float64); ok {
			return cmp.Compare(x, y)
		}
	case string:
		if y, ok := b.(string); ok {
			return cmp.Compare(x, y)
		}
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Compare(y)
		}
	case bool:
		if y, ok := b.(bool); ok {
			switch {
			case x == y:
				return 0
			case !x:
				return -1
			default:
				return 1
			}
		}
	}
	return cmp.Compare(Display(a), Display(b))
}

// normalize collapses pointers, widths and "empty" representations so that
// Display and Compare only deal with a handful of kinds.
func normalize(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case string:
		if strings.TrimSpace(x) == "" {
			return nil
		}
		return x
	case *string:
		if x == nil {
			return nil
		}
		return normalize(*x)
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case domain.RefID:
		if x == 0 {
			return nil
		}
		return int64(x)
	case *int64:
		if x == nil {
			return nil
		}
		return *x
	case float32:
		return float64(x)
	case domain.Timestamp:
		if x.IsZero() {
			return nil
		}
		return x.Time
	case time.Time:
		if x.IsZero() {
			return nil
		}
		return x
	case *time.Time:
		if x == nil {
			return nil
		}
		return normalize(*x)
	default:
		return v
	}
}
