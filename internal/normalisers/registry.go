package normalisers

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/deskref/internal/core/domain"
	"github.com/custodia-labs/deskref/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.NormaliserRegistry = (*Registry)(nil)

// Registry maps formats to their normalisers.
// A later registration for a format replaces the earlier one.
type Registry struct {
	mu          sync.RWMutex
	normalisers map[domain.Format]driven.Normaliser
}

// NewRegistry creates an empty normaliser registry.
func NewRegistry() *Registry {
	return &Registry{
		normalisers: make(map[domain.Format]driven.Normaliser),
	}
}

// Register adds a normaliser for each of its formats.
func (r *Registry) Register(n driven.Normaliser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range n.Formats() {
		r.normalisers[f] = n
	}
}

// Get returns the normaliser for a format.
func (r *Registry) Get(format domain.Format) (driven.Normaliser, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.normalisers[format]
	return n, ok
}

// Normalise dispatches to the normaliser registered for the document format.
func (r *Registry) Normalise(ctx context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}
	n, ok := r.Get(raw.Format)
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedType, raw.Format)
	}
	return n.Normalise(ctx, raw)
}

// Formats returns every registered format, sorted.
func (r *Registry) Formats() []domain.Format {
	r.mu.RLock()
	defer r.mu.RUnlock()
	formats := make([]domain.Format, 0, len(r.normalisers))
	for f := range r.normalisers {
		formats = append(formats, f)
	}
	sort.Slice(formats, func(i, j int) bool { return formats[i] < formats[j] })
	return formats
}
