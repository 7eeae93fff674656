package match

import (
	"reflect"
	"testing"
)

func TestMatch_ExactHeadersSkipScoring(t *testing.T) {
	m := Matcher{}
	res := m.Match(
		[]string{"bill_no", "bill_date", "qty"},
		[]string{"transaction_id", "transaction_date", "quantity"},
		map[string]string{
			"transaction_id":   "bill_no",
			"transaction_date": "bill_date",
			"quantity":         "qty",
		},
	)

	want := map[string]string{
		"bill_no":   "transaction_id",
		"bill_date": "transaction_date",
		"qty":       "quantity",
	}
	if !reflect.DeepEqual(res.Columns, want) {
		t.Errorf("Columns = %v, want %v", res.Columns, want)
	}
	if len(res.Fuzzy) != 0 {
		t.Errorf("Fuzzy = %v, want none for verbatim headers", res.Fuzzy)
	}
	if len(res.Unmatched) != 0 {
		t.Errorf("Unmatched = %v, want none", res.Unmatched)
	}
}

func TestMatch_FuzzyBindingIsRecorded(t *testing.T) {
	m := Matcher{}
	// "bill_num" vs expected "bill_no": above the threshold but short of a
	// perfect score, so the binding must appear in Fuzzy.
	res := m.Match(
		[]string{"bill_num", "qty"},
		[]string{"transaction_id", "quantity"},
		map[string]string{"transaction_id": "bill_no", "quantity": "qty"},
	)

	if got := res.Columns["bill_num"]; got != "transaction_id" {
		t.Fatalf("Columns[%q] = %q, want transaction_id", "bill_num", got)
	}
	if len(res.Fuzzy) != 1 {
		t.Fatalf("Fuzzy = %v, want exactly one entry", res.Fuzzy)
	}
	fm := res.Fuzzy[0]
	if fm.SourceColumn != "bill_num" || fm.Field != "transaction_id" {
		t.Errorf("Fuzzy[0] = %+v", fm)
	}
	if fm.Score < DefaultThreshold || fm.Score >= 100 {
		t.Errorf("Score = %d, want in [%d, 100)", fm.Score, DefaultThreshold)
	}
}

func TestMatch_TokenEqualBindsWithoutAuditEntry(t *testing.T) {
	m := Matcher{}
	// "Bill No" normalizes to the same token sequence as "bill_no": the
	// binding is a perfect score and stays out of the fuzzy audit list.
	res := m.Match(
		[]string{"Bill No"},
		[]string{"transaction_id"},
		map[string]string{"transaction_id": "bill_no"},
	)

	if got := res.Columns["Bill No"]; got != "transaction_id" {
		t.Fatalf("Columns[%q] = %q, want transaction_id", "Bill No", got)
	}
	if len(res.Fuzzy) != 0 {
		t.Errorf("Fuzzy = %v, want none for a perfect-score binding", res.Fuzzy)
	}
	if len(res.Unmatched) != 0 {
		t.Errorf("Unmatched = %v, want none", res.Unmatched)
	}
}

func TestMatch_BelowThresholdStaysUnmatched(t *testing.T) {
	m := Matcher{}
	res := m.Match(
		[]string{"zzzz"},
		[]string{"transaction_id"},
		map[string]string{"transaction_id": "bill_no"},
	)

	if len(res.Columns) != 0 {
		t.Errorf("Columns = %v, want empty", res.Columns)
	}
	if !reflect.DeepEqual(res.Unmatched, []string{"transaction_id"}) {
		t.Errorf("Unmatched = %v, want [transaction_id]", res.Unmatched)
	}
}

func TestMatch_HeaderConsumedOnlyOnce(t *testing.T) {
	m := Matcher{}
	// Both fields expect columns similar to the single "rate" header; only
	// the first field (in field order) may bind it.
	res := m.Match(
		[]string{"rate"},
		[]string{"unit_price", "cost_price"},
		map[string]string{"unit_price": "rate", "cost_price": "rates"},
	)

	if got := res.Columns["rate"]; got != "unit_price" {
		t.Errorf("Columns[rate] = %q, want unit_price", got)
	}
	if !reflect.DeepEqual(res.Unmatched, []string{"cost_price"}) {
		t.Errorf("Unmatched = %v, want [cost_price]", res.Unmatched)
	}
}

func TestMatch_FieldsWithoutMappingAreSkipped(t *testing.T) {
	m := Matcher{}
	res := m.Match(
		[]string{"bill_no"},
		[]string{"transaction_id", "tax_amount"},
		map[string]string{"transaction_id": "bill_no"},
	)
	if len(res.Unmatched) != 0 {
		t.Errorf("Unmatched = %v; fields absent from the profile mapping must not be reported", res.Unmatched)
	}
}

func TestMatch_DiacriticsAreFolded(t *testing.T) {
	m := Matcher{}
	res := m.Match(
		[]string{"Číslo dokladu"},
		[]string{"transaction_id"},
		map[string]string{"transaction_id": "cislo dokladu"},
	)
	if got := res.Columns["Číslo dokladu"]; got != "transaction_id" {
		t.Errorf("Columns = %v, want accented header bound to transaction_id", res.Columns)
	}
}

func TestMatcher_CustomThreshold(t *testing.T) {
	strict := Matcher{Threshold: 95}
	res := strict.Match(
		[]string{"bil_n"},
		[]string{"transaction_id"},
		map[string]string{"transaction_id": "bill_no"},
	)
	if len(res.Columns) != 0 {
		t.Errorf("Columns = %v, want empty under strict threshold", res.Columns)
	}
}
