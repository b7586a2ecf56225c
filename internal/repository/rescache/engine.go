// Package rescache caches shaped search results in a key-value store,
// decorating the engine behind the search service.
package rescache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/openharvest/searchgw/internal/db"
	"github.com/openharvest/searchgw/internal/domain/search/intent"
)

const cacheKeyPrefix = "searchgw:res_cache:"

// store is the consumer interface for the result cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// engine is the inner search engine being decorated.
type engine interface {
	Search(ctx context.Context, in *intent.Intent) (map[string]any, error)
}

// CachedEngine serves repeated identical searches from the cache. Results are
// cached only on success and expire after the configured TTL, so clients see
// fresh data once the index re-syncs.
type CachedEngine struct {
	inner      engine
	store      store
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner engine,
	s store,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedEngine {
	return &CachedEngine{
		inner:      inner,
		store:      s,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Search returns a cached result or calls the inner engine. Cache failures
// are logged and never fail the search.
func (c *CachedEngine) Search(ctx context.Context, in *intent.Intent) (map[string]any, error) {
	key := cacheKey(in)

	if res, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return res, nil
	}

	c.incCache("miss")

	result, err := c.inner.Search(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	c.putToCache(ctx, key, result)
	return result, nil
}

func (c *CachedEngine) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

// keyPayload is a stable projection of an intent. json.Marshal of a struct
// emits fields in declaration order, so equal intents always hash equal.
type keyPayload struct {
	Query   string        `json:"q"`
	Size    int           `json:"size"`
	From    int           `json:"from"`
	Sort    string        `json:"sort"`
	Order   string        `json:"order"`
	Facets  []facetEntry  `json:"facets,omitempty"`
	Filters []filterEntry `json:"filters,omitempty"`
}

type facetEntry struct {
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Field    string `json:"field"`
	Size     int    `json:"size,omitempty"`
	Interval string `json:"interval,omitempty"`
}

type filterEntry struct {
	Field  string `json:"field"`
	Range  bool   `json:"range"`
	Values []any  `json:"values,omitempty"`
	From   any    `json:"from,omitempty"`
	To     any    `json:"to,omitempty"`
}

func cacheKey(in *intent.Intent) string {
	p := keyPayload{
		Query: in.Query(),
		Size:  in.Size(),
		From:  in.From(),
		Sort:  in.Sort(),
		Order: string(in.Order()),
	}
	for _, f := range in.Facets() {
		def := f.Definition()
		p.Facets = append(p.Facets, facetEntry{
			Name:     f.Name(),
			Kind:     string(def.Kind()),
			Field:    def.Field(),
			Size:     def.Size(),
			Interval: def.Interval(),
		})
	}
	for _, cl := range in.Filters() {
		p.Filters = append(p.Filters, filterEntry{
			Field:  cl.Field(),
			Range:  cl.IsRange(),
			Values: cl.Values(),
			From:   cl.From(),
			To:     cl.To(),
		})
	}

	data, err := json.Marshal(p)
	if err != nil {
		// Intents hold only JSON-decoded values; this cannot happen.
		data = []byte(in.Query())
	}
	h := sha256.Sum256(data)
	return cacheKeyPrefix + hex.EncodeToString(h[:])
}

func (c *CachedEngine) getFromCache(ctx context.Context, key string) (map[string]any, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached result", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}

	var res map[string]any
	if err := json.Unmarshal(data, &res); err != nil {
		c.logger.Warn("Failed to parse cached result", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return res, true
}

func (c *CachedEngine) putToCache(ctx context.Context, key string, res map[string]any) {
	data, err := json.Marshal(res)
	if err != nil {
		c.logger.Warn("Failed to encode result for cache", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache result", zap.String("key", key), zap.Error(err))
	}
}
