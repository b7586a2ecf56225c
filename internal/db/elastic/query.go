package elastic

import (
	"github.com/openharvest/searchgw/internal/domain/facet"
	"github.com/openharvest/searchgw/internal/domain/search/clause"
	"github.com/openharvest/searchgw/internal/domain/search/intent"
)

// queryFields are the weighted fields the free-text clause searches over.
// Title matches count triple, author and description matches double; the
// original object id and the catch-all body field are unboosted.
var queryFields = []string{
	"title^3",
	"authors^2",
	"description^2",
	"meta.original_object_id",
	"all_text",
}

// allTextField is indexed for search only and stripped from returned
// documents; it duplicates the rest of the document and is large.
const allTextField = "all_text"

// BuildQuery translates a compiled intent into the engine's query document.
// It is pure and cannot fail: every value in the intent was already
// validated.
func BuildQuery(in *intent.Intent) map[string]any {
	filtered := map[string]any{
		"query": map[string]any{
			"simple_query_string": map[string]any{
				"query":            in.Query(),
				"default_operator": "OR",
				"fields":           queryFields,
			},
		},
	}

	// An unfiltered search carries no filter clause at all; an empty
	// always-true filter is not equivalent for the engine's query cache.
	if clauses := in.Filters(); len(clauses) > 0 {
		must := make([]any, len(clauses))
		for i, cl := range clauses {
			must[i] = clauseBody(cl)
		}
		filtered["filter"] = map[string]any{
			"bool": map[string]any{"must": must},
		}
	}

	return map[string]any{
		"query":  map[string]any{"filtered": filtered},
		"facets": facetsBody(in.Facets()),
		"size":   in.Size(),
		"from":   in.From(),
		"sort": map[string]any{
			in.Sort(): map[string]any{"order": string(in.Order())},
		},
		"_source": map[string]any{
			"exclude": []any{allTextField},
		},
	}
}

func facetsBody(facets []intent.Facet) map[string]any {
	body := make(map[string]any, len(facets))
	for _, f := range facets {
		def := f.Definition()
		switch def.Kind() {
		case facet.Terms:
			body[f.Name()] = map[string]any{
				"terms": map[string]any{
					"field": def.Field(),
					"size":  def.Size(),
				},
			}
		case facet.DateHistogram:
			body[f.Name()] = map[string]any{
				"date_histogram": map[string]any{
					"field":    def.Field(),
					"interval": def.Interval(),
				},
			}
		}
	}
	return body
}

func clauseBody(cl clause.Clause) map[string]any {
	if !cl.IsRange() {
		return map[string]any{
			"terms": map[string]any{cl.Field(): cl.Values()},
		}
	}

	bounds := map[string]any{}
	if cl.From() != nil {
		bounds["from"] = cl.From()
	}
	if cl.To() != nil {
		bounds["to"] = cl.To()
	}
	return map[string]any{
		"range": map[string]any{cl.Field(): bounds},
	}
}
