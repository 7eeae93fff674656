// Package clean contains the per-column field cleaners: date normalization
// and numeric de-formatting. Cleaners are idempotent and never fail a whole
// column; a value that cannot be coerced becomes nil and is left for the
// quality validator to account for.
package clean

import (
	"strings"
	"time"

	"erpingest/pkg/records"
)

// ISODate is the single output layout every surviving date is re-serialized
// to.
const ISODate = "2006-01-02"

// dateLayouts are the input formats tolerated, tried in order. ISO forms
// first, then day-first forms (the dominant convention in the ERP exports
// this engine sees), then month-first as a last resort.
var dateLayouts = []string{
	ISODate,
	"2006-01-02 15:04:05",
	time.RFC3339,
	"02-01-2006",
	"02/01/2006",
	"02.01.2006",
	"2006/01/02",
	"01/02/2006",
	"2 Jan 2006",
	"Jan 2, 2006",
}

// Dates parses the named column's values as dates, coerces unparseable
// values to nil, drops rows whose date lies strictly after now (future dates
// are bad input), and re-serializes survivors to YYYY-MM-DD. The number of
// future-dated rows removed is returned for the audit trail.
//
// Running Dates on an already-clean column is a no-op: YYYY-MM-DD values
// reparse to themselves and nil stays nil.
func Dates(t records.Table, column string, now time.Time) (records.Table, int) {
	if !t.HasColumn(column) {
		return t, 0
	}

	out := t[:0]
	future := 0
	for _, r := range t {
		v := r[column]
		if v == nil {
			out = append(out, r)
			continue
		}
		parsed, ok := parseDate(v)
		if !ok {
			r[column] = nil
			out = append(out, r)
			continue
		}
		if parsed.After(now) {
			future++
			continue
		}
		r[column] = parsed.Format(ISODate)
		out = append(out, r)
	}
	return out, future
}

// parseDate coerces a cell to a time.Time. Strings are tried against each
// known layout; native times pass through; anything else is unparseable.
func parseDate(v any) (time.Time, bool) {
	switch d := v.(type) {
	case time.Time:
		return d, true
	case string:
		s := strings.TrimSpace(d)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range dateLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts, true
			}
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}
