// Package pipeline runs one table of raw export rows through the full
// normalization sequence: profile detection, column matching, field
// cleaning, quality validation, and provenance stamping.
package pipeline

import (
	"fmt"
	"log"
	"time"

	"erpingest/internal/clean"
	"erpingest/internal/detect"
	"erpingest/internal/match"
	"erpingest/internal/quality"
	"erpingest/internal/schema"
	"erpingest/pkg/records"
)

// Provenance columns stamped on every output row.
const (
	ColLoadedAt   = "loaded_at"
	ColSourceFile = "source_file"
)

// Driver executes the normalization sequence for one input table at a time.
// A Driver is safe for concurrent use: it holds only read-only state.
type Driver struct {
	Registry *schema.Registry
	Matcher  match.Matcher

	// Now supplies the clock for future-date checks and the loaded_at stamp.
	// Nil means time.Now.
	Now func() time.Time
}

// Run normalizes one table. sourceID labels the input (usually a file path)
// in logs, provenance, and the report. explicitProfile, when non-empty,
// bypasses detection; naming an unregistered profile is an error. The input
// rows are consumed and must not be reused by the caller.
//
// The returned report is populated even when an error is returned, so
// callers can persist the audit trail for failed runs.
func (d *Driver) Run(headers []string, rows records.Table, sourceID, explicitProfile string) (records.Table, quality.Report, error) {
	now := time.Now
	if d.Now != nil {
		now = d.Now
	}

	rep := quality.NewReport()
	rep.SourceFile = sourceID

	profile, err := d.resolveProfile(headers, explicitProfile, &rep)
	if err != nil {
		return nil, rep, err
	}
	rep.Profile = profile.Name
	log.Printf("run=%s source=%s profile=%s rows=%d", rep.RunID, sourceID, profile.Name, len(rows))

	canonical := d.Registry.Canonical()
	res := d.Matcher.Match(headers, canonical.Fields, profile.Mapping)
	for _, fm := range res.Fuzzy {
		rep.Add(quality.RuleFuzzyMatch, 1,
			fmt.Sprintf("column %q bound to field %q by similarity (score %d)", fm.SourceColumn, fm.Field, fm.Score))
		log.Printf("run=%s fuzzy_match column=%q field=%q score=%d", rep.RunID, fm.SourceColumn, fm.Field, fm.Score)
	}
	for _, f := range res.Unmatched {
		rep.Add(quality.RuleUnmatchedField, 1, fmt.Sprintf("no column matched field %q", f))
	}

	rows = restrict(rows, res.Columns)

	rows, future := clean.Dates(rows, schema.FieldTransactionDate, now())
	rep.Add(quality.RuleFutureDate, future, "rows with a transaction date in the future")
	for _, f := range schema.NumericFields() {
		rows = clean.Numeric(rows, f)
	}

	v := quality.Validator{Schema: canonical}
	rows, vrep, verr := v.Validate(rows)

	// The validator's report carries the row accounting; fold the driver's
	// findings in ahead of the rule findings and keep the driver's run ID.
	vrep.RunID = rep.RunID
	vrep.SourceFile = rep.SourceFile
	vrep.Profile = rep.Profile
	vrep.Issues = append(rep.Issues, vrep.Issues...)
	rep = vrep

	if verr != nil {
		return nil, rep, fmt.Errorf("source %s: %w", sourceID, verr)
	}

	stamp := now().UTC().Format(time.RFC3339)
	for _, r := range rows {
		r[ColLoadedAt] = stamp
		r[ColSourceFile] = sourceID
	}
	log.Printf("run=%s source=%s final_rows=%d removed=%d issues=%d",
		rep.RunID, sourceID, rep.FinalRows, rep.RowsRemoved, len(rep.Issues))
	return rows, rep, nil
}

// resolveProfile picks the source-system profile: the explicit one when
// named, the detector's best guess otherwise. A weak guess is recorded but
// does not stop the run.
func (d *Driver) resolveProfile(headers []string, explicit string, rep *quality.Report) (schema.Profile, error) {
	if explicit != "" {
		p, ok := d.Registry.Profile(explicit)
		if !ok {
			return schema.Profile{}, fmt.Errorf("pipeline: unknown profile %q (known: %v)", explicit, d.Registry.Names())
		}
		return p, nil
	}

	det := detect.Detect(d.Registry, headers)
	if det.Low() {
		rep.Add(quality.RuleLowConfidence, 1,
			fmt.Sprintf("profile %q detected with confidence %.2f (%d columns matched)", det.Profile, det.Confidence, det.Matches))
		log.Printf("run=%s low_confidence profile=%s confidence=%.2f", rep.RunID, det.Profile, det.Confidence)
	}
	p, _ := d.Registry.Profile(det.Profile)
	return p, nil
}

// restrict rebuilds each row with canonical field names, keeping only the
// matched columns. columns maps source column -> canonical field.
func restrict(rows records.Table, columns map[string]string) records.Table {
	out := make(records.Table, len(rows))
	for i, r := range rows {
		nr := make(records.Record, len(columns)+2)
		for col, field := range columns {
			nr[field] = r[col]
		}
		out[i] = nr
	}
	return out
}
