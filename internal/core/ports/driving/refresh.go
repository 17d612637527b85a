package driving

import (
	"context"

	"github.com/custodia-labs/deskref/internal/core/domain"
)

// Refresher keeps the live index in step with its sources.
type Refresher interface {
	// Refresh rescans the sources and rebuilds the index if anything changed.
	// The previous index stays live until the new one is swapped in.
	Refresh(ctx context.Context) (*domain.RefreshResult, error)

	// State returns the current refresh state.
	State() domain.RefreshState
}

// Watcher triggers refreshes when sources change.
type Watcher interface {
	// Watch blocks until ctx is cancelled, refreshing on change.
	// onRefresh, if non-nil, receives every refresh result.
	Watch(ctx context.Context, onRefresh func(*domain.RefreshResult)) error
}
