// Package config defines the declarative configuration model for the
// ingestion engine: the canonical schema and the source-system profiles.
//
// The configuration is data, not code. Adding support for a new ERP export
// means adding a profile entry to the JSON file; the engine itself never
// changes. Decoding uses the standard library and the decoded objects are
// passed explicitly into the schema registry — no component locates its own
// configuration file.
//
// Example (trimmed):
//
//	{
//	  "entities": {
//	    "sales_transactions": {
//	      "fields":   ["transaction_id", "transaction_date", ...],
//	      "required": ["transaction_id", "transaction_date", ...]
//	    }
//	  },
//	  "profiles": [
//	    { "name": "gofrugal",
//	      "entities": { "sales_transactions": { "transaction_id": "bill_no", ... } } }
//	  ]
//	}
package config

import (
	"encoding/json"
	"fmt"
	"io"

	"erpingest/internal/schema"
)

// Config is the top-level object decoded from a schema/profile file.
type Config struct {
	// Entities declares the canonical schema per logical entity. Only
	// schema.SalesEntity is consumed by the pipeline today.
	Entities map[string]Entity `json:"entities"`

	// Profiles lists the known source systems in declaration order. Order is
	// load-bearing: the format detector breaks ties by first declaration.
	Profiles []Profile `json:"profiles"`
}

// Entity declares the canonical field list for one logical entity and the
// subset of fields a usable row must populate.
type Entity struct {
	Fields   []string `json:"fields"`
	Required []string `json:"required"`
}

// Profile declares one source system's expected export columns.
type Profile struct {
	// Name identifies the source system, e.g. "gofrugal" or "tally".
	Name string `json:"name"`

	// Entities maps entity name -> (canonical field -> expected source column).
	Entities map[string]map[string]string `json:"entities"`
}

// Load decodes a configuration from r. Structural JSON errors are returned
// as-is; semantic problems are reported by Validate and by Registry.
func Load(r io.Reader) (Config, error) {
	var c Config
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return c, nil
}

// Registry builds the process-wide schema registry from the configuration.
// It fails on any malformed entry; a partially usable registry is never
// returned.
func (c Config) Registry() (*schema.Registry, error) {
	ent, ok := c.Entities[schema.SalesEntity]
	if !ok {
		return nil, fmt.Errorf("config: entity %q is not declared", schema.SalesEntity)
	}
	canonical := schema.Canonical{Fields: ent.Fields, Required: ent.Required}

	profiles := make([]schema.Profile, 0, len(c.Profiles))
	for _, p := range c.Profiles {
		mapping, ok := p.Entities[schema.SalesEntity]
		if !ok {
			return nil, fmt.Errorf("config: profile %q has no %q mapping", p.Name, schema.SalesEntity)
		}
		profiles = append(profiles, schema.Profile{Name: p.Name, Mapping: mapping})
	}
	return schema.NewRegistry(canonical, profiles)
}
