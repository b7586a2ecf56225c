package searchgw

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNew_RequiresBaseURL(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Error("expected error without base URL")
	}
}

func TestSearch_Success(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"took": 5,
			"hits": {
				"total": 1,
				"max_score": 1.2,
				"hits": [{"_id": "a1", "_score": 1.2, "_source": {"title": "eerste"}}]
			},
			"facets": {"rights": {"_type": "terms"}}
		}`))
	}))
	defer srv.Close()

	c, err := New(srv.URL, WithAPIKey("key-1"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	res, err := c.Search(context.Background(), SearchRequest{
		Query: "fietsen",
		Size:  Int(5),
		Facets: map[string]FacetParams{
			"date": {Interval: "month"},
		},
		Filters: map[string]FilterParams{
			"rights": {Terms: []any{"open"}},
		},
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if gotPath != "/v1/search" {
		t.Errorf("path = %q, want /v1/search", gotPath)
	}
	if gotAuth != "Bearer key-1" {
		t.Errorf("auth header = %q", gotAuth)
	}
	if gotBody["query"] != "fietsen" || gotBody["size"] != float64(5) {
		t.Errorf("unexpected request body: %v", gotBody)
	}

	if res.Hits.Total != 1 || res.Hits.Hits[0].ID != "a1" {
		t.Errorf("unexpected result: %+v", res)
	}
	if _, ok := res.Facets["rights"]; !ok {
		t.Error("expected rights facet in result")
	}
}

func TestSearch_OmitsUnsetFields(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`{"hits":{"total":0,"hits":[]}}`))
	}))
	defer srv.Close()

	c, _ := New(srv.URL)
	if _, err := c.Search(context.Background(), SearchRequest{Query: "q"}); err != nil {
		t.Fatalf("Search: %v", err)
	}

	for _, field := range []string{"size", "from", "sort", "order", "facets", "filters"} {
		if _, ok := gotBody[field]; ok {
			t.Errorf("unset field %q should be omitted, got %v", field, gotBody[field])
		}
	}
}

func TestSearch_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code": "missing_query", "message": "Missing 'query'"}`))
	}))
	defer srv.Close()

	c, _ := New(srv.URL)
	_, err := c.Search(context.Background(), SearchRequest{})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Status != http.StatusBadRequest || apiErr.Code != "missing_query" {
		t.Errorf("unexpected APIError: %+v", apiErr)
	}
	if apiErr.Message != "Missing 'query'" {
		t.Errorf("message = %q", apiErr.Message)
	}
}

func TestSearch_NonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("bad gateway"))
	}))
	defer srv.Close()

	c, _ := New(srv.URL)
	_, err := c.Search(context.Background(), SearchRequest{Query: "q"})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Status != http.StatusBadGateway || apiErr.Message != "bad gateway" {
		t.Errorf("unexpected APIError: %+v", apiErr)
	}
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("path = %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"status": "ok", "checks": {"engine": "ok"}}`))
	}))
	defer srv.Close()

	c, _ := New(srv.URL)
	status, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if status != "ok" {
		t.Errorf("status = %q, want ok", status)
	}
}
