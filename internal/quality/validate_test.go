package quality

import (
	"errors"
	"math"
	"testing"

	"erpingest/internal/schema"
	"erpingest/pkg/records"
)

func salesSchema() schema.Canonical {
	return schema.Canonical{
		Fields: []string{
			schema.FieldTransactionID,
			schema.FieldTransactionDate,
			schema.FieldCustomerName,
			schema.FieldQuantity,
			schema.FieldUnitPrice,
			schema.FieldCostPrice,
		},
		Required: []string{
			schema.FieldTransactionID,
			schema.FieldTransactionDate,
			schema.FieldCustomerName,
		},
	}
}

func goodRow(id string) records.Record {
	return records.Record{
		schema.FieldTransactionID:   id,
		schema.FieldTransactionDate: "2024-01-01",
		schema.FieldCustomerName:    "Acme Traders",
		schema.FieldQuantity:        2.0,
		schema.FieldUnitPrice:       100.0,
		schema.FieldCostPrice:       60.0,
	}
}

func issueCount(rep Report, rule string) int {
	for _, is := range rep.Issues {
		if is.Rule == rule {
			return is.Count
		}
	}
	return 0
}

func TestValidate_DuplicatesKeepFirst(t *testing.T) {
	v := Validator{Schema: salesSchema()}
	first := goodRow("T1")
	first[schema.FieldQuantity] = 5.0
	dup := goodRow("T1")

	out, rep, err := v.Validate(records.Table{first, dup, goodRow("T2")})
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("len(out) = %d, want 2", len(out))
	}
	if q, _ := records.Float(out[0][schema.FieldQuantity]); q != 5.0 {
		t.Errorf("first occurrence not kept: quantity = %v", out[0][schema.FieldQuantity])
	}
	if got := issueCount(rep, RuleDuplicateID); got != 1 {
		t.Errorf("duplicate issue count = %d, want 1", got)
	}
}

func TestValidate_NullRequiredDropped(t *testing.T) {
	v := Validator{Schema: salesSchema()}
	bad := goodRow("T2")
	bad[schema.FieldCustomerName] = nil

	out, rep, err := v.Validate(records.Table{goodRow("T1"), bad})
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("len(out) = %d, want 1", len(out))
	}
	if got := issueCount(rep, RuleNullRequired); got != 1 {
		t.Errorf("null-required issue count = %d, want 1", got)
	}
}

func TestValidate_QuantityAndPriceRules(t *testing.T) {
	tests := []struct {
		name  string
		field string
		value any
		rule  string
	}{
		{name: "zero_quantity", field: schema.FieldQuantity, value: 0.0, rule: RuleBadQuantity},
		{name: "negative_quantity", field: schema.FieldQuantity, value: -3.0, rule: RuleBadQuantity},
		{name: "nil_quantity", field: schema.FieldQuantity, value: nil, rule: RuleBadQuantity},
		{name: "zero_price", field: schema.FieldUnitPrice, value: 0.0, rule: RuleBadUnitPrice},
		{name: "negative_price", field: schema.FieldUnitPrice, value: -1.0, rule: RuleBadUnitPrice},
		{name: "nil_price", field: schema.FieldUnitPrice, value: nil, rule: RuleBadUnitPrice},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Validator{Schema: salesSchema()}
			bad := goodRow("T2")
			bad[tt.field] = tt.value

			out, rep, err := v.Validate(records.Table{goodRow("T1"), bad})
			if err != nil {
				t.Fatalf("Validate: %v", err)
			}
			if len(out) != 1 {
				t.Fatalf("len(out) = %d, want 1", len(out))
			}
			if got := issueCount(rep, tt.rule); got != 1 {
				t.Errorf("issue %s count = %d, want 1", tt.rule, got)
			}
		})
	}
}

func TestValidate_CostOverPriceWarnsOnly(t *testing.T) {
	v := Validator{Schema: salesSchema()}
	suspicious := goodRow("T1")
	suspicious[schema.FieldCostPrice] = 150.0
	suspicious[schema.FieldUnitPrice] = 100.0

	out, rep, err := v.Validate(records.Table{suspicious, goodRow("T2")})
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("len(out) = %d, want 2: cost>price must not drop rows", len(out))
	}
	if got := issueCount(rep, RuleCostOverPrice); got != 1 {
		t.Errorf("cost-over-price issue count = %d, want 1", got)
	}
	if rep.RowsRemoved != 0 {
		t.Errorf("RowsRemoved = %d, want 0", rep.RowsRemoved)
	}
}

func TestValidate_AbsentRequiredColumnIsStructuralOnly(t *testing.T) {
	v := Validator{Schema: salesSchema()}
	// No customer_name column anywhere: rows pass, but the report flags it.
	row := records.Record{
		schema.FieldTransactionID:   "T1",
		schema.FieldTransactionDate: "2024-01-01",
		schema.FieldQuantity:        1.0,
		schema.FieldUnitPrice:       10.0,
	}
	out, rep, err := v.Validate(records.Table{row})
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("len(out) = %d, want 1", len(out))
	}
	if got := issueCount(rep, RuleMissingColumn); got != 1 {
		t.Errorf("missing-column issue count = %d, want 1", got)
	}
}

func TestValidate_RowAccounting(t *testing.T) {
	v := Validator{Schema: salesSchema()}
	bad := goodRow("T2")
	bad[schema.FieldQuantity] = -1.0

	_, rep, err := v.Validate(records.Table{goodRow("T1"), goodRow("T1"), bad})
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if rep.OriginalRows != 3 || rep.FinalRows != 1 || rep.RowsRemoved != 2 {
		t.Errorf("accounting = %d/%d/%d, want 3/1/2", rep.OriginalRows, rep.FinalRows, rep.RowsRemoved)
	}
	if rep.RunID == "" {
		t.Error("RunID is empty")
	}
	if rep.Ratio() != 1.0/3.0 {
		t.Errorf("Ratio() = %v", rep.Ratio())
	}
}

func TestValidate_AllRowsRemovedIsTerminal(t *testing.T) {
	v := Validator{Schema: salesSchema()}
	bad := goodRow("T1")
	bad[schema.FieldQuantity] = 0.0

	out, rep, err := v.Validate(records.Table{bad})
	if !errors.Is(err, ErrAllRowsRemoved) {
		t.Fatalf("err = %v, want ErrAllRowsRemoved", err)
	}
	if len(out) != 0 {
		t.Errorf("len(out) = %d, want 0", len(out))
	}
	if rep.OriginalRows != 1 || rep.FinalRows != 0 {
		t.Errorf("report accounting = %d/%d", rep.OriginalRows, rep.FinalRows)
	}
}

func TestValidate_EmptyInputIsTerminal(t *testing.T) {
	v := Validator{Schema: salesSchema()}
	// An input with no rows at all yields nothing usable; that must surface
	// as the terminal condition, never as an empty success.
	out, rep, err := v.Validate(nil)
	if !errors.Is(err, ErrAllRowsRemoved) {
		t.Fatalf("err = %v, want ErrAllRowsRemoved", err)
	}
	if len(out) != 0 || rep.OriginalRows != 0 || rep.FinalRows != 0 {
		t.Errorf("out=%v report=%+v, want empty table and zero accounting", out, rep)
	}
}

func TestValidate_NonFiniteQuantityDropped(t *testing.T) {
	v := Validator{Schema: salesSchema()}
	bad := goodRow("T2")
	bad[schema.FieldQuantity] = math.NaN()
	worse := goodRow("T3")
	worse[schema.FieldUnitPrice] = math.Inf(1)

	out, rep, err := v.Validate(records.Table{goodRow("T1"), bad, worse})
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("len(out) = %d, want 1: non-finite amounts must not pass", len(out))
	}
	if got := issueCount(rep, RuleBadQuantity); got != 1 {
		t.Errorf("quantity issue count = %d, want 1", got)
	}
	if got := issueCount(rep, RuleBadUnitPrice); got != 1 {
		t.Errorf("unit-price issue count = %d, want 1", got)
	}
}
