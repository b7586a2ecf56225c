// Package clause defines validated filter clauses: hard constraints narrowing
// which documents a search may match.
package clause

import "fmt"

// Clause is a tagged filter clause: either a terms membership filter or a
// date range filter. Exactly one variant is active, indicated by IsRange.
type Clause struct {
	field  string
	values []any
	from   any
	to     any
	ranged bool
}

// NewTerms creates a terms filter: documents must match one of the values on
// the given engine field. Values keep their input order and are passed to the
// engine as-is.
func NewTerms(field string, values []any) (Clause, error) {
	if field == "" {
		return Clause{}, fmt.Errorf("terms filter requires a field")
	}
	return Clause{field: field, values: values}, nil
}

// NewRange creates a range filter on the given engine field. Either bound may
// be nil (unbounded); bound values are forwarded to the engine verbatim. A
// range with both bounds nil is still a valid clause: the legacy API emitted
// the no-op range and clients rely on it being accepted.
func NewRange(field string, from, to any) (Clause, error) {
	if field == "" {
		return Clause{}, fmt.Errorf("range filter requires a field")
	}
	return Clause{field: field, from: from, to: to, ranged: true}, nil
}

// Field returns the engine field the clause constrains.
func (c Clause) Field() string { return c.field }

// IsRange reports whether this is a range clause.
func (c Clause) IsRange() bool { return c.ranged }

// Values returns the terms values (terms clauses only).
func (c Clause) Values() []any { return c.values }

// From returns the lower bound, or nil (range clauses only).
func (c Clause) From() any { return c.from }

// To returns the upper bound, or nil (range clauses only).
func (c Clause) To() any { return c.to }
