// Package facet defines the server-side facet schema: the aggregation
// dimensions a deployment exposes and the per-facet defaults clients may
// override. The same schema doubles as the filter allow-list: a field is
// filterable exactly when it is facetable.
package facet

import "fmt"

// Kind is the facet aggregation type.
type Kind string

// Supported facet kinds.
const (
	Terms         Kind = "terms"
	DateHistogram Kind = "date_histogram"
)

// IsValid checks if the kind is one of the supported values.
func (k Kind) IsValid() bool {
	return k == Terms || k == DateHistogram
}

// Definition describes a single facet: its kind, the engine field it runs
// over, and the kind-specific default (bucket size for terms, bucket interval
// for date histograms). Definitions are immutable values; overrides produce
// copies, so a shared Schema is never mutated by request handling.
type Definition struct {
	kind     Kind
	field    string
	size     int
	interval string
}

// NewTerms creates a terms facet definition.
func NewTerms(field string, size int) (Definition, error) {
	if field == "" {
		return Definition{}, fmt.Errorf("terms facet requires a field")
	}
	if size <= 0 {
		return Definition{}, fmt.Errorf("terms facet on %q requires a positive default size", field)
	}
	return Definition{kind: Terms, field: field, size: size}, nil
}

// NewDateHistogram creates a date histogram facet definition.
func NewDateHistogram(field, interval string) (Definition, error) {
	if field == "" {
		return Definition{}, fmt.Errorf("date_histogram facet requires a field")
	}
	if interval == "" {
		return Definition{}, fmt.Errorf("date_histogram facet on %q requires a default interval", field)
	}
	return Definition{kind: DateHistogram, field: field, interval: interval}, nil
}

// Kind returns the facet aggregation type.
func (d Definition) Kind() Kind { return d.kind }

// Field returns the engine field the facet aggregates over.
func (d Definition) Field() string { return d.field }

// Size returns the bucket count (terms facets only).
func (d Definition) Size() int { return d.size }

// Interval returns the bucket interval (date histogram facets only).
func (d Definition) Interval() string { return d.interval }

// WithSize returns a copy of the definition with the bucket size replaced.
func (d Definition) WithSize(size int) Definition {
	d.size = size
	return d
}

// WithInterval returns a copy of the definition with the interval replaced.
func (d Definition) WithInterval(interval string) Definition {
	d.interval = interval
	return d
}

// Schema maps facet names to their definitions. It is loaded once at startup
// and read-only afterwards, so concurrent readers need no synchronization.
type Schema map[string]Definition

// Lookup returns the definition for a facet name.
func (s Schema) Lookup(name string) (Definition, bool) {
	d, ok := s[name]
	return d, ok
}
