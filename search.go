package searchgw

import (
	"context"
	"encoding/json"
)

// SearchRequest describes a search. Query is the only required field; the
// server applies its configured defaults for everything else.
type SearchRequest struct {
	Query   string                  `json:"query"`
	Size    *int                    `json:"size,omitempty"`
	From    *int                    `json:"from,omitempty"`
	Sort    string                  `json:"sort,omitempty"`
	Order   string                  `json:"order,omitempty"`
	Facets  map[string]FacetParams  `json:"facets,omitempty"`
	Filters map[string]FilterParams `json:"filters,omitempty"`
}

// FacetParams overrides per-facet defaults. Size applies to terms facets,
// Interval to date histogram facets.
type FacetParams struct {
	Size     int    `json:"size,omitempty"`
	Interval string `json:"interval,omitempty"`
}

// FilterParams restricts results on a facet field. Set Terms for a terms
// filter, or From/To for a date range filter.
type FilterParams struct {
	Terms []any `json:"terms,omitempty"`
	From  any   `json:"from,omitempty"`
	To    any   `json:"to,omitempty"`
}

// SearchResult is the shaped engine response.
type SearchResult struct {
	Took   int                        `json:"took"`
	Hits   Hits                       `json:"hits"`
	Facets map[string]json.RawMessage `json:"facets"`
}

// Hits is the result page.
type Hits struct {
	Total    int     `json:"total"`
	MaxScore float64 `json:"max_score"`
	Hits     []Hit   `json:"hits"`
}

// Hit is a single matching document.
type Hit struct {
	ID     string          `json:"_id"`
	Score  float64         `json:"_score"`
	Source json.RawMessage `json:"_source"`
}

// Int is a convenience for the optional Size and From fields.
func Int(v int) *int { return &v }

// Search runs a search. Validation failures and server errors come back as
// *APIError.
func (c *Client) Search(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	var res SearchResult
	if err := c.post(ctx, "/v1/search", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
