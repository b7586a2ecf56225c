package elastic

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/openharvest/searchgw/internal/domain"
	"github.com/openharvest/searchgw/internal/domain/search/order"
)

func newTestStore(t *testing.T, handler http.HandlerFunc) *Store {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	s, err := NewStore(Config{
		Addrs:   []string{srv.URL},
		Index:   "combined_index",
		Timeout: 2 * time.Second,
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return s
}

func TestNewStore_Validation(t *testing.T) {
	if _, err := NewStore(Config{Index: "x"}, zap.NewNop()); err == nil {
		t.Error("expected error without addrs")
	}
	if _, err := NewStore(Config{Addrs: []string{"http://localhost:9200"}}, zap.NewNop()); err == nil {
		t.Error("expected error without index")
	}
}

func TestSearch_Success(t *testing.T) {
	var gotBody map[string]any
	s := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"took":      3,
			"timed_out": false,
			"_shards":   map[string]any{"total": 1},
			"hits": map[string]any{
				"total": 1,
				"hits": []any{
					map[string]any{"_index": "combined_index", "_type": "item", "_id": "a1"},
				},
			},
		})
	})

	in := mustIntent(t, "fietsen", 10, 0, "_score", order.Desc, nil, nil)
	res, err := s.Search(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotBody["size"] != float64(10) {
		t.Errorf("request size = %v, want 10", gotBody["size"])
	}
	if _, ok := res["_shards"]; ok {
		t.Error("result should be shaped")
	}
	hit := res["hits"].(map[string]any)["hits"].([]any)[0].(map[string]any)
	if _, ok := hit["_index"]; ok {
		t.Error("_index should be stripped from hits")
	}
}

func TestSearch_EngineError(t *testing.T) {
	s := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"boom"}`))
	})

	in := mustIntent(t, "q", 10, 0, "_score", order.Desc, nil, nil)
	_, err := s.Search(context.Background(), in)
	if !errors.Is(err, domain.ErrEngineUnavailable) {
		t.Fatalf("expected ErrEngineUnavailable, got %v", err)
	}
}

func TestSearch_MalformedResponse(t *testing.T) {
	s := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"hits": [truncated`))
	})

	in := mustIntent(t, "q", 10, 0, "_score", order.Desc, nil, nil)
	_, err := s.Search(context.Background(), in)
	if !errors.Is(err, domain.ErrEngineUnavailable) {
		t.Fatalf("expected ErrEngineUnavailable, got %v", err)
	}
}

func TestSearch_EngineDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	s, err := NewStore(Config{
		Addrs:   []string{srv.URL},
		Index:   "combined_index",
		Timeout: time.Second,
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	in := mustIntent(t, "q", 10, 0, "_score", order.Desc, nil, nil)
	if _, err := s.Search(context.Background(), in); !errors.Is(err, domain.ErrEngineUnavailable) {
		t.Fatalf("expected ErrEngineUnavailable, got %v", err)
	}
}

func TestPing(t *testing.T) {
	s := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.WriteHeader(http.StatusOK)
	})

	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
