// Package detect identifies which source-system profile an input table most
// likely uses, based purely on column-name evidence.
package detect

import (
	"erpingest/internal/schema"
)

// LowConfidence is the coverage ratio below which a detection should be
// surfaced to the operator as unreliable. Detection itself never fails; a
// wrong or weak guess is a recoverable condition the caller can override by
// naming a profile explicitly.
const LowConfidence = 0.5

// Detection is the outcome of scoring every registered profile against a
// table's headers.
type Detection struct {
	// Profile is the best-scoring profile name.
	Profile string
	// Matches is how many of the profile's expected columns were present.
	Matches int
	// Confidence is Matches divided by the size of the profile's mapping.
	Confidence float64
}

// Low reports whether the detection confidence is below LowConfidence.
func (d Detection) Low() bool { return d.Confidence < LowConfidence }

// Detect scores each profile by counting how many of its expected source
// columns appear in headers and returns the profile with the most matches.
// Ties keep the earliest profile in registry declaration order.
func Detect(reg *schema.Registry, headers []string) Detection {
	present := make(map[string]struct{}, len(headers))
	for _, h := range headers {
		present[h] = struct{}{}
	}

	var best Detection
	for i, p := range reg.Profiles() {
		matches := 0
		for _, col := range p.Mapping {
			if _, ok := present[col]; ok {
				matches++
			}
		}
		if i == 0 || matches > best.Matches {
			best = Detection{
				Profile:    p.Name,
				Matches:    matches,
				Confidence: float64(matches) / float64(len(p.Mapping)),
			}
		}
	}
	return best
}
