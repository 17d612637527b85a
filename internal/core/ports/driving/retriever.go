package driving

import (
	"context"

	"github.com/custodia-labs/deskref/internal/core/domain"
)

// Retriever answers relevance queries against the live index.
type Retriever interface {
	// Query returns at most top_k chunks scoring at or above the threshold,
	// ordered by non-increasing score. Nil options use the configured values.
	// Returns *domain.ConfigurationError for an invalid top_k or threshold.
	Query(ctx context.Context, text string, opts domain.QueryOptions) (*domain.RetrievalResult, error)
}
