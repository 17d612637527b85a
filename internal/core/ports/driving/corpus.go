package driving

import (
	"context"
	"io"

	"github.com/custodia-labs/deskref/internal/core/domain"
)

// CorpusService reports on the live index.
type CorpusService interface {
	// Stats describes the live index.
	Stats(ctx context.Context) (*domain.CorpusStats, error)

	// ContentGaps runs each query and reports the ones with too few results.
	// With no queries, the most recent logged queries are analysed.
	ContentGaps(ctx context.Context, queries []string) (*domain.GapReport, error)

	// Export writes the live index as JSON.
	Export(ctx context.Context, w io.Writer) error
}
