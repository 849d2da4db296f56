package chunk

import (
	"context"
	"fmt"

	"github.com/iyulab/webflux/content"
)

// Strategy splits an ExtractedContent into an ordered chunk list.
type Strategy interface {
	Name() string
	Chunk(ctx context.Context, c content.ExtractedContent, opts Options) ([]content.Chunk, error)
}

// Registry is a name-keyed lookup of available strategies, used by the
// Chunking Strategy Selector (§4.8) and the orchestrator to resolve a
// strategy name into a callable implementation.
type Registry struct {
	strategies map[string]Strategy
}

// NewRegistry returns a registry pre-populated with the five built-in
// strategies.
func NewRegistry() *Registry {
	r := &Registry{strategies: make(map[string]Strategy)}
	for _, s := range []Strategy{
		DomStructureStrategy{},
		ParagraphStrategy{},
		FixedSizeStrategy{},
		SemanticStrategy{},
		MemoryOptimizedStrategy{},
	} {
		r.Register(s)
	}
	return r
}

func (r *Registry) Register(s Strategy) {
	r.strategies[s.Name()] = s
}

func (r *Registry) Get(name string) (Strategy, bool) {
	s, ok := r.strategies[name]
	return s, ok
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.strategies))
	for n := range r.strategies {
		names = append(names, n)
	}
	return names
}

// Run looks up name and chunks c with it. Run adds no post-pass of its
// own: any min-size merge and the dense resequencing happen inside the
// strategy's Chunk.
func (r *Registry) Run(ctx context.Context, name string, c content.ExtractedContent, opts Options) ([]content.Chunk, error) {
	s, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("chunk: unknown strategy %q", name)
	}
	return s.Chunk(ctx, c, opts)
}
