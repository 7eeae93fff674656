// Package quality enforces the business rules that decide whether a cleaned
// row is usable, and produces the audit report for each run.
package quality

import (
	"github.com/google/uuid"
)

// Rule names used in issue reporting. Stable strings: downstream dashboards
// group on them.
const (
	RuleDuplicateID    = "duplicate_transaction_id"
	RuleNullRequired   = "null_required_field"
	RuleBadQuantity    = "invalid_quantity"
	RuleBadUnitPrice   = "invalid_unit_price"
	RuleCostOverPrice  = "cost_exceeds_price"
	RuleMissingColumn  = "missing_required_column"
	RuleLowConfidence  = "low_detection_confidence"
	RuleFuzzyMatch     = "fuzzy_column_match"
	RuleUnmatchedField = "unmatched_field"
	RuleFutureDate     = "future_transaction_date"
)

// Issue is one quality finding, aggregated over a run. Count is the number
// of rows (or columns, for structural findings) affected.
type Issue struct {
	Rule    string `json:"rule"`
	Count   int    `json:"count"`
	Message string `json:"message"`
}

// Report summarizes one ingestion run: how many rows came in, how many
// survived, and every finding along the way. Warn-only findings appear in
// Issues without contributing to RowsRemoved.
type Report struct {
	RunID        string  `json:"run_id"`
	SourceFile   string  `json:"source_file,omitempty"`
	Profile      string  `json:"profile,omitempty"`
	OriginalRows int     `json:"original_rows"`
	FinalRows    int     `json:"final_rows"`
	RowsRemoved  int     `json:"rows_removed"`
	Issues       []Issue `json:"issues,omitempty"`
}

// NewReport allocates a report with a fresh run identifier.
func NewReport() Report {
	return Report{RunID: uuid.NewString()}
}

// Add appends a finding. Zero-count findings are dropped so callers can
// report counters unconditionally.
func (r *Report) Add(rule string, count int, message string) {
	if count == 0 {
		return
	}
	r.Issues = append(r.Issues, Issue{Rule: rule, Count: count, Message: message})
}

// Ratio is the fraction of original rows that survived. A run with no input
// rows reports 0.
func (r Report) Ratio() float64 {
	if r.OriginalRows == 0 {
		return 0
	}
	return float64(r.FinalRows) / float64(r.OriginalRows)
}
