package intent

import (
	"testing"

	"github.com/openharvest/searchgw/internal/domain/facet"
	"github.com/openharvest/searchgw/internal/domain/search/order"
)

func TestNew(t *testing.T) {
	d, _ := facet.NewTerms("cat_field", 10)
	in, err := New("climate policy", 10, 0, "_score", order.Desc, []Facet{NewFacet("category", d)}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.Query() != "climate policy" {
		t.Errorf("unexpected query: %s", in.Query())
	}
	if in.Size() != 10 || in.From() != 0 {
		t.Errorf("unexpected pagination: size=%d from=%d", in.Size(), in.From())
	}
	if in.Sort() != "_score" || in.Order() != order.Desc {
		t.Errorf("unexpected sort: %s %s", in.Sort(), in.Order())
	}
	if len(in.Facets()) != 1 || in.Facets()[0].Name() != "category" {
		t.Errorf("unexpected facets: %v", in.Facets())
	}
}

func TestNew_ZeroSizeAllowed(t *testing.T) {
	if _, err := New("x", 0, 0, "_score", order.Desc, nil, nil); err != nil {
		t.Fatalf("size 0 must be allowed: %v", err)
	}
}

func TestNew_Invalid(t *testing.T) {
	cases := []struct {
		name  string
		query string
		size  int
		from  int
		sort  string
		ord   order.Order
	}{
		{"empty query", "", 10, 0, "_score", order.Desc},
		{"negative size", "x", -1, 0, "_score", order.Desc},
		{"negative from", "x", 10, -1, "_score", order.Desc},
		{"empty sort", "x", 10, 0, "", order.Desc},
		{"bad order", "x", 10, 0, "_score", order.Order("sideways")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(tc.query, tc.size, tc.from, tc.sort, tc.ord, nil, nil); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
