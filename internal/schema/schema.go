// Package schema holds the canonical sales-transaction field list and the
// per-source-system column profiles. The registry built here is process-wide
// read-only state: constructed once from configuration before any pipeline
// run, never mutated afterwards.
package schema

import "fmt"

// SalesEntity is the logical entity this engine normalizes. Profiles may
// declare mappings for other entities; only this one is consumed.
const SalesEntity = "sales_transactions"

// Well-known canonical fields the cleaners and quality rules key on. The
// field list itself is configuration; these names are the contract between
// the configuration and the rule code.
const (
	FieldTransactionID   = "transaction_id"
	FieldTransactionDate = "transaction_date"
	FieldCustomerName    = "customer_name"
	FieldProductName     = "product_name"
	FieldQuantity        = "quantity"
	FieldUnitPrice       = "unit_price"
	FieldTotalAmount     = "total_amount"
	FieldCostPrice       = "cost_price"
	FieldTaxAmount       = "tax_amount"
)

// NumericFields lists the canonical fields the numeric cleaner runs on.
func NumericFields() []string {
	return []string{
		FieldQuantity,
		FieldUnitPrice,
		FieldCostPrice,
		FieldTotalAmount,
		FieldTaxAmount,
	}
}

// Canonical is the universal sales-transaction schema every source system is
// normalized onto. Required lists the subset of Fields that a usable row
// must carry a value for.
type Canonical struct {
	Fields   []string
	Required []string
}

// IsRequired reports whether field is in the required subset.
func (c Canonical) IsRequired(field string) bool {
	for _, f := range c.Required {
		if f == field {
			return true
		}
	}
	return false
}

// Has reports whether field is a canonical field.
func (c Canonical) Has(field string) bool {
	for _, f := range c.Fields {
		if f == field {
			return true
		}
	}
	return false
}

// Profile declares, for one source system, which raw export column carries
// each canonical field.
type Profile struct {
	Name    string
	Mapping map[string]string // canonical field -> expected source column
}

// Registry holds the canonical schema and all known profiles. Profiles keep
// their declaration order; the format detector breaks score ties by taking
// the first profile encountered in that order.
type Registry struct {
	canonical Canonical
	profiles  []Profile
	byName    map[string]int
}

// NewRegistry validates the canonical schema and profiles and builds the
// registry. Malformed input is a configuration error and fails fast; nothing
// is processed with a partially valid registry.
func NewRegistry(c Canonical, profiles []Profile) (*Registry, error) {
	if len(c.Fields) == 0 {
		return nil, fmt.Errorf("schema: canonical field list is empty")
	}
	seen := make(map[string]struct{}, len(c.Fields))
	for _, f := range c.Fields {
		if f == "" {
			return nil, fmt.Errorf("schema: canonical field name is empty")
		}
		if _, dup := seen[f]; dup {
			return nil, fmt.Errorf("schema: duplicate canonical field %q", f)
		}
		seen[f] = struct{}{}
	}
	for _, f := range c.Required {
		if _, ok := seen[f]; !ok {
			return nil, fmt.Errorf("schema: required field %q is not a canonical field", f)
		}
	}
	if len(profiles) == 0 {
		return nil, fmt.Errorf("schema: no source-system profiles declared")
	}

	r := &Registry{
		canonical: c,
		profiles:  make([]Profile, 0, len(profiles)),
		byName:    make(map[string]int, len(profiles)),
	}
	for _, p := range profiles {
		if p.Name == "" {
			return nil, fmt.Errorf("schema: profile with empty name")
		}
		if _, dup := r.byName[p.Name]; dup {
			return nil, fmt.Errorf("schema: duplicate profile %q", p.Name)
		}
		if len(p.Mapping) == 0 {
			return nil, fmt.Errorf("schema: profile %q has no column mapping", p.Name)
		}
		for field, col := range p.Mapping {
			if _, ok := seen[field]; !ok {
				return nil, fmt.Errorf("schema: profile %q maps unknown field %q", p.Name, field)
			}
			if col == "" {
				return nil, fmt.Errorf("schema: profile %q maps field %q to an empty column", p.Name, field)
			}
		}
		r.byName[p.Name] = len(r.profiles)
		r.profiles = append(r.profiles, p)
	}
	return r, nil
}

// Canonical returns the canonical schema.
func (r *Registry) Canonical() Canonical { return r.canonical }

// Profile returns the named profile.
func (r *Registry) Profile(name string) (Profile, bool) {
	i, ok := r.byName[name]
	if !ok {
		return Profile{}, false
	}
	return r.profiles[i], true
}

// Profiles returns all profiles in declaration order.
func (r *Registry) Profiles() []Profile { return r.profiles }

// Names returns the profile names in declaration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.profiles))
	for i, p := range r.profiles {
		out[i] = p.Name
	}
	return out
}
