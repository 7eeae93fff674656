package clean

import (
	"math"
	"strconv"
	"strings"

	"erpingest/pkg/records"
)

// currencyReplacer strips the currency markers and digit grouping seen in
// real ERP exports before numeric parsing. NBSP shows up in exports produced
// by spreadsheet round-trips.
var currencyReplacer = strings.NewReplacer(
	"₹", "",
	"$", "",
	"€", "",
	"£", "",
	"Rs.", "",
	"Rs", "",
	",", "",
	" ", "",
	" ", "",
)

// Numeric coerces the named column's values to float64. Formatted strings
// like "₹1,200.50" parse to 1200.5; values that do not parse become nil.
// Rows are never dropped here. Already-numeric values pass through, so the
// cleaner is idempotent.
func Numeric(t records.Table, column string) records.Table {
	if !t.HasColumn(column) {
		return t
	}
	for _, r := range t {
		v := r[column]
		if v == nil {
			continue
		}
		if f, ok := parseNumeric(v); ok {
			r[column] = f
		} else {
			r[column] = nil
		}
	}
	return t
}

func parseNumeric(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n) && !math.IsInf(n, 0)
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		s := currencyReplacer.Replace(strings.TrimSpace(n))
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		// ParseFloat accepts "NaN" and "Inf"; neither is a usable amount.
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
