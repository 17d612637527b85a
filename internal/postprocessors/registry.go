package postprocessors

import (
	"fmt"

	"github.com/custodia-labs/deskref/internal/core/domain"
	"github.com/custodia-labs/deskref/internal/core/ports/driven"
)

// BuilderFunc creates a processor from the chain's shared config: chunk_size
// and overlap, as ints from settings or float64 when decoded from JSON.
type BuilderFunc func(cfg map[string]any) (driven.PostProcessor, error)

// Registry holds the processors a chain is assembled from, keyed by Name().
type Registry struct {
	builders map[string]BuilderFunc
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{builders: make(map[string]BuilderFunc)}
}

// Register adds or replaces the builder for name.
func (r *Registry) Register(name string, builder BuilderFunc) {
	r.builders[name] = builder
}

// Chain builds the named processors in order into one pipeline. Every
// processor sees the same cfg. An unknown name is a configuration error.
func (r *Registry) Chain(order []string, cfg map[string]any) (*Pipeline, error) {
	p := NewPipeline()
	for _, name := range order {
		builder, ok := r.builders[name]
		if !ok {
			return nil, fmt.Errorf("%w: unknown processor %q", domain.ErrInvalidConfig, name)
		}
		proc, err := builder(cfg)
		if err != nil {
			return nil, err
		}
		p.Add(proc)
	}
	return p, nil
}
