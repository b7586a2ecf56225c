// Package elastic talks to the search engine: it renders compiled intents
// into engine query documents, executes them, and shapes the raw responses
// for clients.
package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"go.uber.org/zap"

	"github.com/openharvest/searchgw/internal/domain"
	"github.com/openharvest/searchgw/internal/domain/search/intent"
	"github.com/openharvest/searchgw/internal/metrics"
)

// Config holds connection parameters for the search engine.
type Config struct {
	Addrs    []string
	Username string
	Password string
	Index    string
	Timeout  time.Duration
}

// Store executes search intents against an Elasticsearch-compatible engine.
type Store struct {
	es      *elasticsearch.Client
	index   string
	timeout time.Duration
	logger  *zap.Logger
}

// NewStore connects to the engine. It does not ping; the engine may come up
// after the gateway does.
func NewStore(cfg Config, logger *zap.Logger) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}
	if cfg.Index == "" {
		return nil, fmt.Errorf("index is required")
	}

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addrs,
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create engine client: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Store{es: es, index: cfg.Index, timeout: timeout, logger: logger}, nil
}

// Search renders the intent into a query document, executes it, and returns
// the shaped result. Engine failures of any kind are reported as
// domain.ErrEngineUnavailable so the transport layer can map them uniformly.
func (s *Store) Search(ctx context.Context, in *intent.Intent) (map[string]any, error) {
	body, err := json.Marshal(BuildQuery(in))
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	res, err := s.es.Search(
		s.es.Search.WithContext(ctx),
		s.es.Search.WithIndex(s.index),
		s.es.Search.WithBody(bytes.NewReader(body)),
	)
	metrics.EngineRequestDuration.WithLabelValues(s.index).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.EngineErrorsTotal.WithLabelValues(s.index, "transport").Inc()
		s.logger.Error("engine request failed", zap.String("index", s.index), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", domain.ErrEngineUnavailable, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		metrics.EngineErrorsTotal.WithLabelValues(s.index, "response").Inc()
		s.logger.Error("engine returned error",
			zap.String("index", s.index),
			zap.String("status", res.Status()))
		// Drain so the transport can reuse the connection.
		_, _ = io.Copy(io.Discard, res.Body)
		return nil, fmt.Errorf("%w: engine returned %s", domain.ErrEngineUnavailable, res.Status())
	}

	var raw map[string]any
	if err := json.NewDecoder(res.Body).Decode(&raw); err != nil {
		metrics.EngineErrorsTotal.WithLabelValues(s.index, "decode").Inc()
		return nil, fmt.Errorf("%w: decode response: %v", domain.ErrEngineUnavailable, err)
	}

	return shapeResult(raw), nil
}

// Ping checks engine connectivity.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.es.Ping(s.es.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, res.Body)

	if res.IsError() {
		return fmt.Errorf("ping: engine returned %s", res.Status())
	}
	return nil
}
