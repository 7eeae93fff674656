package quality

import (
	"errors"
	"fmt"
	"math"

	"github.com/zeebo/xxh3"

	"erpingest/internal/schema"
	"erpingest/pkg/records"
)

// ErrAllRowsRemoved is returned when validation ends with zero usable rows,
// whether the rules removed them all or nothing came in to begin with. A run
// that produces nothing usable is a terminal failure, not a success with
// zero output.
var ErrAllRowsRemoved = errors.New("quality: validation removed all rows")

// Validator applies the business rules for usable sales rows, in a fixed
// order: duplicate IDs, null required fields, non-positive quantity,
// non-positive unit price, then the warn-only cost-over-price check.
type Validator struct {
	Schema schema.Canonical
}

// Validate filters t down to usable rows and reports every finding. The
// input table is consumed; callers must not reuse it. OriginalRows is the
// row count at entry, and RowsRemoved always equals OriginalRows minus
// FinalRows. When nothing survives, the filtered table is empty and
// ErrAllRowsRemoved is returned alongside the full report.
func (v Validator) Validate(t records.Table) (records.Table, Report, error) {
	rep := NewReport()
	rep.OriginalRows = len(t)

	// Column presence is decided once, up front. A required column that is
	// absent from the table entirely is a structural finding; rows are not
	// punished for it.
	present := map[string]bool{}
	if len(t) > 0 {
		for _, f := range v.Schema.Fields {
			present[f] = t.HasColumn(f)
		}
	}

	t = v.dropDuplicateIDs(t, &rep)
	t = v.dropNullRequired(t, present, &rep)
	t = dropNonPositive(t, schema.FieldQuantity, RuleBadQuantity, "rows with zero, negative, or missing quantity", &rep)
	t = dropNonPositive(t, schema.FieldUnitPrice, RuleBadUnitPrice, "rows with zero, negative, or missing unit price", &rep)
	v.flagCostOverPrice(t, &rep)

	for _, f := range v.Schema.Required {
		if rep.OriginalRows > 0 && !present[f] {
			rep.Add(RuleMissingColumn, 1, fmt.Sprintf("required column %q is absent from the input", f))
		}
	}

	rep.FinalRows = len(t)
	rep.RowsRemoved = rep.OriginalRows - rep.FinalRows

	if rep.FinalRows == 0 {
		return t, rep, ErrAllRowsRemoved
	}
	return t, rep, nil
}

// dropDuplicateIDs keeps the first occurrence of each transaction ID. Rows
// with a nil ID are not deduplicated here; the null-required rule deals with
// them.
func (v Validator) dropDuplicateIDs(t records.Table, rep *Report) records.Table {
	seen := make(map[uint64]struct{}, len(t))
	out := t[:0]
	dropped := 0
	for _, r := range t {
		id := r[schema.FieldTransactionID]
		if id == nil {
			out = append(out, r)
			continue
		}
		key := xxh3.HashString(records.String(id))
		if _, dup := seen[key]; dup {
			dropped++
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	rep.Add(RuleDuplicateID, dropped, "duplicate transaction IDs removed, first occurrence kept")
	return out
}

// dropNullRequired removes rows missing a value for any required field whose
// column is actually present in the table.
func (v Validator) dropNullRequired(t records.Table, present map[string]bool, rep *Report) records.Table {
	out := t[:0]
	dropped := 0
	for _, r := range t {
		ok := true
		for _, f := range v.Schema.Required {
			if !present[f] {
				continue
			}
			if r[f] == nil {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, r)
		} else {
			dropped++
		}
	}
	rep.Add(RuleNullRequired, dropped, "rows missing a value for a required field")
	return out
}

// dropNonPositive removes rows whose value in field is nil, non-numeric,
// non-finite, or not strictly positive.
func dropNonPositive(t records.Table, field, rule, message string, rep *Report) records.Table {
	if !t.HasColumn(field) {
		return t
	}
	out := t[:0]
	dropped := 0
	for _, r := range t {
		f, ok := records.Float(r[field])
		if !ok || math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
			dropped++
			continue
		}
		out = append(out, r)
	}
	rep.Add(rule, dropped, message)
	return out
}

// flagCostOverPrice reports rows selling below cost. A suspicious margin is
// worth a look but is not grounds for discarding revenue data, so the rows
// stay.
func (v Validator) flagCostOverPrice(t records.Table, rep *Report) {
	if !t.HasColumn(schema.FieldCostPrice) || !t.HasColumn(schema.FieldUnitPrice) {
		return
	}
	flagged := 0
	for _, r := range t {
		cost, okC := records.Float(r[schema.FieldCostPrice])
		price, okP := records.Float(r[schema.FieldUnitPrice])
		if okC && okP && cost > price {
			flagged++
		}
	}
	rep.Add(RuleCostOverPrice, flagged, "rows where cost price exceeds unit price (kept)")
}
