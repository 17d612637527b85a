// Package lexical scores chunks by IDF-weighted query term coverage.
package lexical

import (
	"context"
	"math"

	"github.com/custodia-labs/deskref/internal/core/domain"
	"github.com/custodia-labs/deskref/internal/core/ports/driven"
	"github.com/custodia-labs/deskref/internal/tokenize"
)

// Name identifies the lexical backend.
const Name = "lexical"

// Ensure the builder and index implement the interfaces.
var (
	_ driven.SimilarityBuilder = (*Builder)(nil)
	_ driven.Similarity        = (*Index)(nil)
)

// Builder creates lexical indexes.
type Builder struct{}

// NewBuilder creates a lexical builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Name returns the backend name.
func (b *Builder) Name() string {
	return Name
}

// Build creates an inverted index over the chunk headings and content.
func (b *Builder) Build(ctx context.Context, chunks []domain.Chunk) (driven.Similarity, error) {
	idx := &Index{
		postings: make(map[string][]int),
		n:        len(chunks),
	}
	for i := range chunks {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		for _, term := range tokenize.Unique(chunks[i].IndexText()) {
			idx.postings[term] = append(idx.postings[term], i)
		}
	}
	return idx, nil
}

// Index is an immutable inverted index.
type Index struct {
	postings map[string][]int
	n        int
}

// Name returns the backend name.
func (x *Index) Name() string {
	return Name
}

// IDF returns the smoothed inverse document frequency of a term.
// Terms absent from the corpus get the floor weight of a term found in
// every chunk: they cannot tell chunks apart, but still count against coverage.
func (x *Index) IDF(term string) float64 {
	df := len(x.postings[term])
	if df == 0 {
		return 1
	}
	return math.Log((1+float64(x.n))/(1+float64(df))) + 1
}

// Scores returns, per chunk, the IDF-weighted share of query terms it contains.
func (x *Index) Scores(_ context.Context, query string) ([]float64, error) {
	scores := make([]float64, x.n)
	terms := tokenize.Unique(query)
	if len(terms) == 0 || x.n == 0 {
		return scores, nil
	}

	total := 0.0
	for _, t := range terms {
		w := x.IDF(t)
		total += w
		for _, i := range x.postings[t] {
			scores[i] += w
		}
	}
	for i := range scores {
		scores[i] /= total
		if scores[i] > 1 {
			scores[i] = 1
		}
	}
	return scores, nil
}
