package clean

import (
	"math"
	"reflect"
	"testing"
	"time"

	"erpingest/pkg/records"
)

var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func TestDates_TableDriven(t *testing.T) {
	tests := []struct {
		name       string
		in         records.Table
		want       records.Table
		wantFuture int
	}{
		{
			name: "iso_passthrough",
			in:   records.Table{{"transaction_date": "2024-01-31"}},
			want: records.Table{{"transaction_date": "2024-01-31"}},
		},
		{
			name: "day_first_reserialized",
			in:   records.Table{{"transaction_date": "31/01/2024"}},
			want: records.Table{{"transaction_date": "2024-01-31"}},
		},
		{
			name: "dotted_day_first",
			in:   records.Table{{"transaction_date": "31.01.2024"}},
			want: records.Table{{"transaction_date": "2024-01-31"}},
		},
		{
			name: "datetime_truncated_to_date",
			in:   records.Table{{"transaction_date": "2024-01-31 09:30:00"}},
			want: records.Table{{"transaction_date": "2024-01-31"}},
		},
		{
			name: "garbage_coerced_to_nil",
			in:   records.Table{{"transaction_date": "not a date"}},
			want: records.Table{{"transaction_date": nil}},
		},
		{
			name: "non_string_coerced_to_nil",
			in:   records.Table{{"transaction_date": 42.0}},
			want: records.Table{{"transaction_date": nil}},
		},
		{
			name: "nil_stays_nil",
			in:   records.Table{{"transaction_date": nil}},
			want: records.Table{{"transaction_date": nil}},
		},
		{
			name: "future_rows_dropped_and_counted",
			in: records.Table{
				{"transaction_date": "2024-06-14"},
				{"transaction_date": "2031-01-01"},
				{"transaction_date": "2030-12-31"},
			},
			want:       records.Table{{"transaction_date": "2024-06-14"}},
			wantFuture: 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, future := Dates(tt.in, "transaction_date", testNow)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Dates() = %v, want %v", got, tt.want)
			}
			if future != tt.wantFuture {
				t.Errorf("future = %d, want %d", future, tt.wantFuture)
			}
		})
	}
}

func TestDates_Idempotent(t *testing.T) {
	in := records.Table{
		{"transaction_date": "15/03/2024"},
		{"transaction_date": "junk"},
	}
	once, _ := Dates(in, "transaction_date", testNow)
	again, future := Dates(cloneTable(once), "transaction_date", testNow)
	if !reflect.DeepEqual(once, again) {
		t.Errorf("second pass changed output: %v vs %v", once, again)
	}
	if future != 0 {
		t.Errorf("second pass dropped %d rows", future)
	}
}

func TestDates_AbsentColumnIsNoop(t *testing.T) {
	in := records.Table{{"quantity": "3"}}
	got, future := Dates(in, "transaction_date", testNow)
	if !reflect.DeepEqual(got, in) || future != 0 {
		t.Errorf("Dates() = %v future=%d, want untouched input", got, future)
	}
}

func TestNumeric_TableDriven(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want any
	}{
		{name: "plain_number", in: "1200", want: 1200.0},
		{name: "decimal", in: "99.5", want: 99.5},
		{name: "rupee_and_thousands", in: "₹1,200.50", want: 1200.5},
		{name: "rs_prefix", in: "Rs. 450", want: 450.0},
		{name: "dollar", in: "$3,000", want: 3000.0},
		{name: "euro", in: "€12,5", want: 125.0},
		{name: "negative", in: "-5", want: -5.0},
		{name: "already_float", in: 42.5, want: 42.5},
		{name: "int_widened", in: 7, want: 7.0},
		{name: "garbage", in: "ten units", want: nil},
		{name: "nan_string_rejected", in: "NaN", want: nil},
		{name: "inf_string_rejected", in: "Inf", want: nil},
		{name: "negative_inf_rejected", in: "-inf", want: nil},
		{name: "nan_float_rejected", in: math.NaN(), want: nil},
		{name: "inf_float_rejected", in: math.Inf(1), want: nil},
		{name: "currency_only", in: "₹", want: nil},
		{name: "nil_stays_nil", in: nil, want: nil},
		{name: "bool_is_not_numeric", in: true, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Numeric(records.Table{{"unit_price": tt.in}}, "unit_price")
			if !reflect.DeepEqual(got[0]["unit_price"], tt.want) {
				t.Errorf("Numeric(%v) = %v, want %v", tt.in, got[0]["unit_price"], tt.want)
			}
		})
	}
}

func TestNumeric_RowsNeverDropped(t *testing.T) {
	in := records.Table{
		{"quantity": "₹bad"},
		{"quantity": "2"},
	}
	got := Numeric(in, "quantity")
	if len(got) != 2 {
		t.Fatalf("row count = %d, want 2", len(got))
	}
	want := records.Table{{"quantity": nil}, {"quantity": 2.0}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Numeric() = %v, want %v", got, want)
	}
}

func cloneTable(t records.Table) records.Table {
	out := make(records.Table, len(t))
	for i, r := range t {
		out[i] = r.Clone()
	}
	return out
}
