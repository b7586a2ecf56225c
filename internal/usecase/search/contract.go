package search

import (
	"context"

	"github.com/openharvest/searchgw/internal/domain/search/intent"
)

// Engine executes a compiled search against the backing full-text engine and
// returns the already-shaped result document. The single blocking call in the
// request flow lives behind this interface.
type Engine interface {
	Search(ctx context.Context, in *intent.Intent) (map[string]any, error)
}
