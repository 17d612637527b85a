package driven

import (
	"context"

	"github.com/custodia-labs/deskref/internal/core/domain"
)

// SnapshotStore persists the most recent successful build.
type SnapshotStore interface {
	// Save replaces the stored snapshot.
	Save(ctx context.Context, snap *domain.Snapshot) error

	// Load returns the stored snapshot, or domain.ErrNotFound.
	Load(ctx context.Context) (*domain.Snapshot, error)

	// Close releases resources.
	Close() error
}
