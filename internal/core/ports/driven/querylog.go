package driven

import (
	"context"

	"github.com/custodia-labs/deskref/internal/core/domain"
)

// QueryLog records executed queries.
type QueryLog interface {
	// Record appends an entry. Failures are logged by the implementation, never returned,
	// so that query answering is not affected by logging problems.
	Record(entry domain.QueryLogEntry)

	// Recent returns up to n of the latest entries, oldest first.
	Recent(ctx context.Context, n int) ([]domain.QueryLogEntry, error)
}
