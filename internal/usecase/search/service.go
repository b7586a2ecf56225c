package search

import (
	"context"
	"fmt"
)

// Service compiles incoming search requests and executes them against the
// engine. It holds no per-request state: the schema and limits inside the
// compiler are read-only, so a single Service serves all handlers.
type Service struct {
	compiler *Compiler
	engine   Engine
}

// New creates a search service.
func New(compiler *Compiler, engine Engine) *Service {
	return &Service{compiler: compiler, engine: engine}
}

// Search validates raw, compiles it, and runs it against the engine.
// Validation failures come back as *domain.RequestError; engine failures wrap
// domain.ErrEngineUnavailable. No retries happen at this layer.
func (s *Service) Search(ctx context.Context, raw map[string]any) (map[string]any, error) {
	in, err := s.compiler.Compile(raw)
	if err != nil {
		return nil, err
	}

	res, err := s.engine.Search(ctx, &in)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}
	return res, nil
}
