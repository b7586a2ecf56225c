package elastic

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/openharvest/searchgw/internal/domain/facet"
	"github.com/openharvest/searchgw/internal/domain/search/clause"
	"github.com/openharvest/searchgw/internal/domain/search/intent"
	"github.com/openharvest/searchgw/internal/domain/search/order"
)

func mustTermsFacet(t *testing.T, field string, size int) facet.Definition {
	t.Helper()
	def, err := facet.NewTerms(field, size)
	if err != nil {
		t.Fatalf("facet.NewTerms: %v", err)
	}
	return def
}

func mustDateFacet(t *testing.T, field, interval string) facet.Definition {
	t.Helper()
	def, err := facet.NewDateHistogram(field, interval)
	if err != nil {
		t.Fatalf("facet.NewDateHistogram: %v", err)
	}
	return def
}

func mustTerms(t *testing.T, field string, values []any) clause.Clause {
	t.Helper()
	cl, err := clause.NewTerms(field, values)
	if err != nil {
		t.Fatalf("clause.NewTerms: %v", err)
	}
	return cl
}

func mustRange(t *testing.T, field string, from, to any) clause.Clause {
	t.Helper()
	cl, err := clause.NewRange(field, from, to)
	if err != nil {
		t.Fatalf("clause.NewRange: %v", err)
	}
	return cl
}

func mustIntent(t *testing.T, query string, size, from int, sort string, ord order.Order, facets []intent.Facet, filters []clause.Clause) *intent.Intent {
	t.Helper()
	in, err := intent.New(query, size, from, sort, ord, facets, filters)
	if err != nil {
		t.Fatalf("intent.New: %v", err)
	}
	return &in
}

func TestBuildQuery_Minimal(t *testing.T) {
	in := mustIntent(t, "fietsen", 10, 0, "_score", order.Desc, nil, nil)

	got := BuildQuery(in)

	want := map[string]any{
		"query": map[string]any{
			"filtered": map[string]any{
				"query": map[string]any{
					"simple_query_string": map[string]any{
						"query":            "fietsen",
						"default_operator": "OR",
						"fields": []string{
							"title^3",
							"authors^2",
							"description^2",
							"meta.original_object_id",
							"all_text",
						},
					},
				},
			},
		},
		"facets": map[string]any{},
		"size":   10,
		"from":   0,
		"sort": map[string]any{
			"_score": map[string]any{"order": "desc"},
		},
		"_source": map[string]any{
			"exclude": []any{"all_text"},
		},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("query mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildQuery_NoFilterKeyWithoutFilters(t *testing.T) {
	in := mustIntent(t, "q", 10, 0, "_score", order.Desc, nil, nil)

	got := BuildQuery(in)

	filtered := got["query"].(map[string]any)["filtered"].(map[string]any)
	if _, ok := filtered["filter"]; ok {
		t.Error("unfiltered search must not carry a filter clause")
	}
}

func TestBuildQuery_TermsFilter(t *testing.T) {
	filters := []clause.Clause{
		mustTerms(t, "rights", []any{"open", 42}),
	}
	in := mustIntent(t, "q", 10, 0, "_score", order.Desc, nil, filters)

	got := BuildQuery(in)

	filtered := got["query"].(map[string]any)["filtered"].(map[string]any)
	want := map[string]any{
		"bool": map[string]any{
			"must": []any{
				map[string]any{
					"terms": map[string]any{"rights": []any{"open", 42}},
				},
			},
		},
	}
	if diff := cmp.Diff(want, filtered["filter"]); diff != "" {
		t.Errorf("filter mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildQuery_RangeFilter(t *testing.T) {
	tests := []struct {
		name     string
		from, to any
		bounds   map[string]any
	}{
		{
			name:   "both bounds",
			from:   "2011-12-24",
			to:     "2012-02-22",
			bounds: map[string]any{"from": "2011-12-24", "to": "2012-02-22"},
		},
		{
			name:   "from only",
			from:   "2011-12-24",
			bounds: map[string]any{"from": "2011-12-24"},
		},
		{
			name:   "no bounds",
			bounds: map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cl := mustRange(t, "date", tt.from, tt.to)
			in := mustIntent(t, "q", 10, 0, "_score", order.Desc, nil, []clause.Clause{cl})

			got := BuildQuery(in)

			filtered := got["query"].(map[string]any)["filtered"].(map[string]any)
			must := filtered["filter"].(map[string]any)["bool"].(map[string]any)["must"].([]any)
			want := map[string]any{
				"range": map[string]any{"date": tt.bounds},
			}
			if diff := cmp.Diff(want, must[0]); diff != "" {
				t.Errorf("range clause mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBuildQuery_Facets(t *testing.T) {
	facets := []intent.Facet{
		intent.NewFacet("rights", mustTermsFacet(t, "meta.rights", 10)),
		intent.NewFacet("date", mustDateFacet(t, "date", "month")),
	}
	in := mustIntent(t, "q", 10, 0, "_score", order.Desc, facets, nil)

	got := BuildQuery(in)

	want := map[string]any{
		"rights": map[string]any{
			"terms": map[string]any{
				"field": "meta.rights",
				"size":  10,
			},
		},
		"date": map[string]any{
			"date_histogram": map[string]any{
				"field":    "date",
				"interval": "month",
			},
		},
	}
	if diff := cmp.Diff(want, got["facets"]); diff != "" {
		t.Errorf("facets mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildQuery_Pagination(t *testing.T) {
	in := mustIntent(t, "q", 25, 50, "date", order.Asc, nil, nil)

	got := BuildQuery(in)

	if got["size"] != 25 {
		t.Errorf("size = %v, want 25", got["size"])
	}
	if got["from"] != 50 {
		t.Errorf("from = %v, want 50", got["from"])
	}
	want := map[string]any{
		"date": map[string]any{"order": "asc"},
	}
	if diff := cmp.Diff(want, got["sort"]); diff != "" {
		t.Errorf("sort mismatch (-want +got):\n%s", diff)
	}
}
