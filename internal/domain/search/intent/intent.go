// Package intent defines the validated, normalized form of a search request:
// everything the engine query builder needs, with every client-supplied value
// already checked against configuration and the facet schema.
package intent

import (
	"fmt"

	"github.com/openharvest/searchgw/internal/domain/facet"
	"github.com/openharvest/searchgw/internal/domain/search/clause"
	"github.com/openharvest/searchgw/internal/domain/search/order"
)

// Facet pairs a requested facet name with its resolved definition
// (schema defaults plus any client overrides).
type Facet struct {
	name string
	def  facet.Definition
}

// NewFacet creates a resolved facet entry.
func NewFacet(name string, def facet.Definition) Facet {
	return Facet{name: name, def: def}
}

// Name returns the facet name as requested by the client.
func (f Facet) Name() string { return f.name }

// Definition returns the resolved facet definition.
func (f Facet) Definition() facet.Definition { return f.def }

// Intent is a validated search request. It is built once per request by the
// compiler, handed to the query builder, and discarded.
type Intent struct {
	query   string
	size    int
	from    int
	sort    string
	ord     order.Order
	facets  []Facet
	filters []clause.Clause
}

// New creates an Intent. The compiler is the only producer and has already
// enforced the request-level rules; this constructor guards the structural
// invariants so an Intent can never exist in an impossible state.
func New(
	query string,
	size, from int,
	sort string,
	ord order.Order,
	facets []Facet,
	filters []clause.Clause,
) (Intent, error) {
	if query == "" {
		return Intent{}, fmt.Errorf("query is required")
	}
	if size < 0 {
		return Intent{}, fmt.Errorf("size must be 0 or larger, got %d", size)
	}
	if from < 0 {
		return Intent{}, fmt.Errorf("from must be 0 or larger, got %d", from)
	}
	if sort == "" {
		return Intent{}, fmt.Errorf("sort field is required")
	}
	if !ord.IsValid() {
		return Intent{}, fmt.Errorf("invalid order: %q", ord)
	}
	return Intent{
		query:   query,
		size:    size,
		from:    from,
		sort:    sort,
		ord:     ord,
		facets:  facets,
		filters: filters,
	}, nil
}

// Query returns the free-text query.
func (i *Intent) Query() string { return i.query }

// Size returns the page size.
func (i *Intent) Size() int { return i.size }

// From returns the pagination offset.
func (i *Intent) From() int { return i.from }

// Sort returns the sort field.
func (i *Intent) Sort() string { return i.sort }

// Order returns the sort direction.
func (i *Intent) Order() order.Order { return i.ord }

// Facets returns the resolved facets, in compiler emission order.
func (i *Intent) Facets() []Facet { return i.facets }

// Filters returns the filter clauses, in compiler emission order.
func (i *Intent) Filters() []clause.Clause { return i.filters }
