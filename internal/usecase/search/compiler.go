package search

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"github.com/openharvest/searchgw/internal/domain"
	"github.com/openharvest/searchgw/internal/domain/facet"
	"github.com/openharvest/searchgw/internal/domain/search/clause"
	"github.com/openharvest/searchgw/internal/domain/search/intent"
	"github.com/openharvest/searchgw/internal/domain/search/order"
)

// defaultSortField is used when the request does not name a sort field.
const defaultSortField = "_score"

// Limits holds the deployment-wide bounds the compiler enforces.
// SortableFields must include "_score" for the default sort to be accepted.
type Limits struct {
	DefaultSize          int
	MaxSize              int
	SortableFields       []string
	AllowedDateIntervals []string
}

// Compiler validates a decoded search request body against the facet schema
// and the configured limits, producing a normalized intent. Validation is
// fail-fast: fields are checked in a fixed order (query, size, from, sort,
// order, facets, filters) and the first violation wins. A Compiler is
// immutable after construction and safe for concurrent use.
type Compiler struct {
	schema    facet.Schema
	limits    Limits
	sortable  map[string]struct{}
	intervals map[string]struct{}
}

// NewCompiler creates a request compiler for the given schema and limits.
func NewCompiler(schema facet.Schema, limits Limits) *Compiler {
	sortable := make(map[string]struct{}, len(limits.SortableFields))
	for _, f := range limits.SortableFields {
		sortable[f] = struct{}{}
	}
	intervals := make(map[string]struct{}, len(limits.AllowedDateIntervals))
	for _, iv := range limits.AllowedDateIntervals {
		intervals[iv] = struct{}{}
	}
	return &Compiler{
		schema:    schema,
		limits:    limits,
		sortable:  sortable,
		intervals: intervals,
	}
}

// Compile validates raw field by field and returns the normalized intent, or
// a *domain.RequestError describing the first violation.
//
// The request body is a JSON object; facet and filter entries are therefore
// unordered on the wire. Compile iterates them in sorted name order so output
// is deterministic for identical inputs; clients must not rely on insertion
// order of facet or filter entries.
func (c *Compiler) Compile(raw map[string]any) (intent.Intent, error) {
	query, ok := raw["query"].(string)
	if !ok || query == "" {
		return intent.Intent{}, domain.NewRequestError(domain.CodeMissingQuery, "Missing 'query'")
	}

	size := c.limits.DefaultSize
	if v, present := raw["size"]; present {
		n, ok := parseInt(v)
		if !ok {
			return intent.Intent{}, domain.NewRequestError(domain.CodeInvalidSize, "Invalid value for 'size'")
		}
		size = n
	}
	if size < 0 || size > c.limits.MaxSize {
		return intent.Intent{}, domain.NewRequestError(domain.CodeSizeOutOfRange,
			"Value of 'size' must be between 0 and %d", c.limits.MaxSize)
	}

	from := 0
	if v, present := raw["from"]; present {
		n, ok := parseInt(v)
		if !ok {
			return intent.Intent{}, domain.NewRequestError(domain.CodeInvalidFrom, "Invalid value for 'from'")
		}
		from = n
	}
	if from < 0 {
		return intent.Intent{}, domain.NewRequestError(domain.CodeFromNegative, "Value of 'from' must 0 or larger")
	}

	sortField := defaultSortField
	if v, present := raw["sort"]; present {
		s, _ := v.(string)
		sortField = s
	}
	if _, ok := c.sortable[sortField]; !ok {
		return intent.Intent{}, domain.NewRequestError(domain.CodeInvalidSort,
			"Invalid value for 'sort', sortable fields are: %s", strings.Join(c.limits.SortableFields, ", "))
	}

	ord := order.Desc
	if v, present := raw["order"]; present {
		s, _ := v.(string)
		ord = order.Order(s)
	}
	if !ord.IsValid() {
		return intent.Intent{}, domain.NewRequestError(domain.CodeInvalidOrder,
			"Invalid value for 'order', must be asc or desc")
	}

	facets, err := c.compileFacets(raw["facets"])
	if err != nil {
		return intent.Intent{}, err
	}

	filters, err := c.compileFilters(raw["filters"])
	if err != nil {
		return intent.Intent{}, err
	}

	return intent.New(query, size, from, sortField, ord, facets, filters)
}

// compileFacets resolves requested facets against the schema, applying the
// narrow per-kind overrides (terms size, date histogram interval). Any other
// override keys are ignored on purpose: the override surface is fixed.
func (c *Compiler) compileFacets(v any) ([]intent.Facet, error) {
	if v == nil {
		return nil, nil
	}
	requested, ok := v.(map[string]any)
	if !ok {
		return nil, domain.NewRequestError(domain.CodeFacetsNotObject, "'facets' should be an object")
	}

	facets := make([]intent.Facet, 0, len(requested))
	for _, name := range sortedKeys(requested) {
		def, ok := c.schema.Lookup(name)
		if !ok {
			return nil, domain.NewRequestError(domain.CodeUnknownFacet, "'%s' is not a valid facet", name)
		}

		// A non-object override block carries no usable keys; treat it as
		// empty rather than rejecting, the legacy API never validated it.
		overrides, _ := requested[name].(map[string]any)

		switch def.Kind() {
		case facet.Terms:
			if v, present := overrides["size"]; present {
				n, ok := intValue(v)
				if !ok {
					return nil, domain.NewRequestError(domain.CodeInvalidFacetSizeType,
						"'facets.%s.size' should be an integer", name)
				}
				def = def.WithSize(n)
			}
		case facet.DateHistogram:
			if v, present := overrides["interval"]; present {
				interval, ok := v.(string)
				if !ok {
					return nil, domain.NewRequestError(domain.CodeInvalidIntervalType,
						"'facets.%s.interval' should be a strimg", name)
				}
				if _, ok := c.intervals[interval]; !ok {
					return nil, domain.NewRequestError(domain.CodeInvalidIntervalValue,
						"'%s' is an invalid interval for 'facets.%s.interval'", interval, name)
				}
				def = def.WithInterval(interval)
			}
		}

		facets = append(facets, intent.NewFacet(name, def))
	}
	return facets, nil
}

// compileFilters turns requested filters into clauses. The facet schema
// doubles as the filter allow-list: a name is filterable iff it is facetable.
func (c *Compiler) compileFilters(v any) ([]clause.Clause, error) {
	if v == nil {
		return nil, nil
	}
	requested, ok := v.(map[string]any)
	if !ok {
		return nil, domain.NewRequestError(domain.CodeFiltersNotObject, "'filters' should be an object")
	}

	filters := make([]clause.Clause, 0, len(requested))
	for _, name := range sortedKeys(requested) {
		def, ok := c.schema.Lookup(name)
		if !ok {
			return nil, domain.NewRequestError(domain.CodeUnknownFilter, "'%s' is not a valid filter", name)
		}

		var (
			cl  clause.Clause
			err error
		)
		switch def.Kind() {
		case facet.Terms:
			cl, err = termsClause(name, def.Field(), requested[name])
		case facet.DateHistogram:
			cl, err = rangeClause(name, def.Field(), requested[name])
		}
		if err != nil {
			return nil, err
		}
		filters = append(filters, cl)
	}
	return filters, nil
}

func termsClause(name, field string, opts any) (clause.Clause, error) {
	optsMap, _ := opts.(map[string]any)
	terms, present := optsMap["terms"]
	if !present {
		return clause.Clause{}, domain.NewRequestError(domain.CodeMissingFilterTerms,
			"Missing 'filters.%s.terms'", name)
	}
	values, ok := terms.([]any)
	if !ok {
		return clause.Clause{}, domain.NewRequestError(domain.CodeFilterTermsNotArray,
			"'filters.%s.terms' should be an array", name)
	}
	for _, v := range values {
		if _, isString := v.(string); isString {
			continue
		}
		if _, isInt := intValue(v); isInt {
			continue
		}
		return clause.Clause{}, domain.NewRequestError(domain.CodeFilterTermsBadElement,
			"'filters.%s.terms' should only contain strings and integers", name)
	}
	return clause.NewTerms(field, values)
}

func rangeClause(name, field string, opts any) (clause.Clause, error) {
	optsMap, ok := opts.(map[string]any)
	if !ok {
		return clause.Clause{}, domain.NewRequestError(domain.CodeFilterOptsNotObject,
			"'filters.%s' should be an object", name)
	}
	// Bounds are forwarded verbatim, no type coercion or validation.
	return clause.NewRange(field, optsMap["from"], optsMap["to"])
}

// parseInt converts a JSON-decoded value to an int for pagination fields.
// Mirrors the lenient legacy coercion: numeric strings are accepted, but a
// fractional number is a type error, not a truncation.
func parseInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}

// intValue converts a JSON-decoded value to an int, rejecting strings:
// facet overrides and terms elements require an actual number on the wire.
func intValue(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	default:
		return 0, false
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
