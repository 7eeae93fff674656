// Package records defines the in-memory row representation shared by the
// parser, cleaners, validator, and storage sinks.
package records

import (
	"fmt"
	"strconv"
	"time"
)

// Record is a single row: column name -> value. A nil value is SQL-style
// NULL; an absent key means the column does not exist for this table.
type Record map[string]any

// Table is an ordered sequence of records. The column set is fixed per table
// even though individual values may be nil.
type Table []Record

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// HasColumn reports whether the table carries the named column. The column
// set is fixed per table, so the first record is authoritative.
func (t Table) HasColumn(name string) bool {
	if len(t) == 0 {
		return false
	}
	_, ok := t[0][name]
	return ok
}

// Float coerces a cell value to float64. It returns ok=false for nil and for
// values that are not numeric.
func Float(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// String converts common cell types to their string form without the
// overhead of fmt.Sprint; nil becomes "".
func String(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case bool:
		if t {
			return "true"
		}
		return "false"
	case time.Time:
		return t.Format(time.RFC3339)
	default:
		return fmt.Sprint(t)
	}
}
