// Package hybrid blends a vector scorer with a lexical scorer.
package hybrid

import (
	"context"
	"fmt"

	"github.com/custodia-labs/deskref/internal/core/domain"
	"github.com/custodia-labs/deskref/internal/core/ports/driven"
)

// Name identifies the hybrid backend.
const Name = "hybrid"

// Ensure the builder and index implement the interfaces.
var (
	_ driven.SimilarityBuilder = (*Builder)(nil)
	_ driven.Similarity        = (*Similarity)(nil)
)

// Builder builds both halves over the same chunk set.
type Builder struct {
	vector  driven.SimilarityBuilder
	lexical driven.SimilarityBuilder
	alpha   float64
}

// NewBuilder creates a hybrid builder; alpha weights the vector half.
func NewBuilder(vector, lexical driven.SimilarityBuilder, alpha float64) *Builder {
	return &Builder{vector: vector, lexical: lexical, alpha: alpha}
}

// Name returns the backend name with its vector half, e.g. "hybrid(tfidf)".
func (b *Builder) Name() string {
	return fmt.Sprintf("%s(%s)", Name, b.vector.Name())
}

// Build builds the vector and lexical indexes.
func (b *Builder) Build(ctx context.Context, chunks []domain.Chunk) (driven.Similarity, error) {
	v, err := b.vector.Build(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("building %s: %w", b.vector.Name(), err)
	}
	l, err := b.lexical.Build(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("building %s: %w", b.lexical.Name(), err)
	}
	return &Similarity{name: b.Name(), vector: v, lexical: l, alpha: b.alpha}, nil
}

// Similarity scores alpha*vector + (1-alpha)*lexical.
type Similarity struct {
	name    string
	vector  driven.Similarity
	lexical driven.Similarity
	alpha   float64
}

// Name returns the backend name.
func (s *Similarity) Name() string {
	return s.name
}

// Scores blends both halves chunk by chunk.
func (s *Similarity) Scores(ctx context.Context, query string) ([]float64, error) {
	vs, err := s.vector.Scores(ctx, query)
	if err != nil {
		return nil, err
	}
	ls, err := s.lexical.Scores(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(vs) != len(ls) {
		return nil, fmt.Errorf("hybrid: %d vector scores for %d lexical scores", len(vs), len(ls))
	}

	out := make([]float64, len(vs))
	for i := range vs {
		out[i] = s.alpha*vs[i] + (1-s.alpha)*ls[i]
	}
	return out, nil
}
