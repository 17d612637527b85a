package driven

import (
	"context"

	"github.com/custodia-labs/deskref/internal/core/domain"
)

// Similarity scores a query against the chunk set it was built from.
// Implementations are immutable after construction and safe for concurrent use.
type Similarity interface {
	// Name identifies the scoring backend.
	Name() string

	// Scores returns one score in [0,1] per chunk, in chunk order.
	Scores(ctx context.Context, query string) ([]float64, error)
}

// SimilarityBuilder derives a Similarity from a chunk set.
// Build must not retain or modify the slice it is given.
type SimilarityBuilder interface {
	// Name identifies the scoring backend.
	Name() string

	// Build prepares a Similarity for the chunks.
	Build(ctx context.Context, chunks []domain.Chunk) (Similarity, error)
}
