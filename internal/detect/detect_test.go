package detect

import (
	"testing"

	"erpingest/internal/schema"
)

func registry(t *testing.T) *schema.Registry {
	t.Helper()
	c := schema.Canonical{
		Fields: []string{"transaction_id", "transaction_date", "quantity", "unit_price"},
	}
	reg, err := schema.NewRegistry(c, []schema.Profile{
		{Name: "gofrugal", Mapping: map[string]string{
			"transaction_id":   "bill_no",
			"transaction_date": "bill_date",
			"quantity":         "qty",
			"unit_price":       "rate",
		}},
		{Name: "tally", Mapping: map[string]string{
			"transaction_id":   "voucher_no",
			"transaction_date": "voucher_date",
			"quantity":         "billed_qty",
			"unit_price":       "rate",
		}},
	})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return reg
}

func TestDetect(t *testing.T) {
	reg := registry(t)

	tests := []struct {
		name           string
		headers        []string
		wantProfile    string
		wantMatches    int
		wantConfidence float64
		wantLow        bool
	}{
		{
			name:           "full_gofrugal_export",
			headers:        []string{"bill_no", "bill_date", "qty", "rate", "extra_col"},
			wantProfile:    "gofrugal",
			wantMatches:    4,
			wantConfidence: 1.0,
		},
		{
			name:           "partial_tally_export",
			headers:        []string{"voucher_no", "voucher_date", "billed_qty"},
			wantProfile:    "tally",
			wantMatches:    3,
			wantConfidence: 0.75,
		},
		{
			name:           "weak_evidence_is_low",
			headers:        []string{"bill_no", "something", "else"},
			wantProfile:    "gofrugal",
			wantMatches:    1,
			wantConfidence: 0.25,
			wantLow:        true,
		},
		{
			// "rate" is shared; both profiles score 1, so the first declared
			// profile wins the tie.
			name:           "tie_keeps_declaration_order",
			headers:        []string{"rate"},
			wantProfile:    "gofrugal",
			wantMatches:    1,
			wantConfidence: 0.25,
			wantLow:        true,
		},
		{
			name:           "no_evidence_at_all",
			headers:        []string{"a", "b"},
			wantProfile:    "gofrugal",
			wantMatches:    0,
			wantConfidence: 0,
			wantLow:        true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Detect(reg, tt.headers)
			if d.Profile != tt.wantProfile {
				t.Errorf("Profile = %q, want %q", d.Profile, tt.wantProfile)
			}
			if d.Matches != tt.wantMatches {
				t.Errorf("Matches = %d, want %d", d.Matches, tt.wantMatches)
			}
			if d.Confidence != tt.wantConfidence {
				t.Errorf("Confidence = %v, want %v", d.Confidence, tt.wantConfidence)
			}
			if d.Low() != tt.wantLow {
				t.Errorf("Low() = %v, want %v", d.Low(), tt.wantLow)
			}
		})
	}
}
