// This file adds a lightweight linter for Config values. It performs static
// checks over a decoded Config and returns a list of issues (errors and
// warnings) that callers can surface in a CLI or tests before building the
// registry.
package config

import (
	"fmt"
	"strings"

	"erpingest/internal/schema"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that blocks execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a finding that should be surfaced to users
	// but does not block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding.
//
// Path is a dotted path into the config (e.g. "profiles[1].entities").
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a
// single error where convenient.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// Validate performs static validation of a Config. It does not mutate the
// config; callers decide whether warnings are fatal.
func Validate(c Config) []Issue {
	var issues []Issue

	ent, ok := c.Entities[schema.SalesEntity]
	if !ok {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "entities",
			Message:  fmt.Sprintf("entity %q must be declared", schema.SalesEntity),
		})
	} else {
		issues = append(issues, validateEntity(ent)...)
	}

	if len(c.Profiles) == 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "profiles",
			Message:  "at least one source-system profile is required",
		})
	}

	names := make(map[string]struct{}, len(c.Profiles))
	for i, p := range c.Profiles {
		path := fmt.Sprintf("profiles[%d]", i)
		if strings.TrimSpace(p.Name) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".name",
				Message:  "profile name must not be empty",
			})
		}
		if _, dup := names[p.Name]; dup {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".name",
				Message:  fmt.Sprintf("duplicate profile name %q", p.Name),
			})
		}
		names[p.Name] = struct{}{}

		mapping, ok := p.Entities[schema.SalesEntity]
		if !ok {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".entities",
				Message:  fmt.Sprintf("profile %q declares no %q mapping", p.Name, schema.SalesEntity),
			})
			continue
		}
		if len(mapping) == 0 {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".entities." + schema.SalesEntity,
				Message:  "column mapping must not be empty",
			})
		}

		// Mapping keys must be canonical fields; values are raw export column
		// names and may be anything non-empty.
		if ok && len(ent.Fields) > 0 {
			known := make(map[string]struct{}, len(ent.Fields))
			for _, f := range ent.Fields {
				known[f] = struct{}{}
			}
			for field, col := range mapping {
				if _, k := known[field]; !k {
					issues = append(issues, Issue{
						Severity: SeverityError,
						Path:     fmt.Sprintf("%s.entities.%s.%s", path, schema.SalesEntity, field),
						Message:  fmt.Sprintf("%q is not a canonical field", field),
					})
				}
				if strings.TrimSpace(col) == "" {
					issues = append(issues, Issue{
						Severity: SeverityError,
						Path:     fmt.Sprintf("%s.entities.%s.%s", path, schema.SalesEntity, field),
						Message:  "expected source column must not be empty",
					})
				}
			}
			// A profile that covers under half the canonical fields will never
			// detect with usable confidence; flag it early.
			if len(mapping) > 0 && len(mapping)*2 < len(ent.Fields) {
				issues = append(issues, Issue{
					Severity: SeverityWarning,
					Path:     path + ".entities." + schema.SalesEntity,
					Message: fmt.Sprintf("mapping covers %d of %d canonical fields; detection confidence will be low",
						len(mapping), len(ent.Fields)),
				})
			}
		}
	}

	return issues
}

// validateEntity checks the canonical field declaration for one entity.
func validateEntity(e Entity) []Issue {
	var issues []Issue

	if len(e.Fields) == 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "entities." + schema.SalesEntity + ".fields",
			Message:  "canonical field list must not be empty",
		})
		return issues
	}

	seen := make(map[string]struct{}, len(e.Fields))
	for i, f := range e.Fields {
		if strings.TrimSpace(f) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     fmt.Sprintf("entities.%s.fields[%d]", schema.SalesEntity, i),
				Message:  "field name must not be empty",
			})
			continue
		}
		if _, dup := seen[f]; dup {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     fmt.Sprintf("entities.%s.fields[%d]", schema.SalesEntity, i),
				Message:  fmt.Sprintf("duplicate field %q", f),
			})
		}
		seen[f] = struct{}{}
	}

	for _, f := range e.Required {
		if _, ok := seen[f]; !ok {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "entities." + schema.SalesEntity + ".required",
				Message:  fmt.Sprintf("required field %q is not in the field list", f),
			})
		}
	}
	if len(e.Required) == 0 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "entities." + schema.SalesEntity + ".required",
			Message:  "no required fields declared; the validator will not drop incomplete rows",
		})
	}

	return issues
}
