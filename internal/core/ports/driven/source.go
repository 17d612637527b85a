package driven

import (
	"context"

	"github.com/custodia-labs/deskref/internal/core/domain"
)

// DocumentSource lists and reads documents.
type DocumentSource interface {
	// Scan lists every supported document without reading its contents.
	// Files with unknown formats are reported as warnings, not errors.
	Scan(ctx context.Context) ([]domain.SourceEntry, []domain.Warning, error)

	// Load reads one scanned document.
	// Returns *domain.TooLargeError before reading when the entry exceeds maxBytes.
	Load(ctx context.Context, entry domain.SourceEntry, maxBytes int64) (*domain.RawDocument, error)
}

// Watcher reports source changes as they happen.
type Watcher interface {
	// Watch streams changes until ctx is cancelled, then closes the channel.
	Watch(ctx context.Context) (<-chan domain.SourceChange, error)
}
