// Package reference serves an in-memory structured reference as a document source.
package reference

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/deskref/internal/core/domain"
	"github.com/custodia-labs/deskref/internal/core/ports/driven"
)

// Ensure Source implements the interfaces.
var (
	_ driven.DocumentSource = (*Source)(nil)
	_ driven.Watcher        = (*Source)(nil)
)

// Source holds one structured payload (maps, slices and scalars, as decoded
// from YAML or JSON) under a logical document name.
type Source struct {
	name string
	now  func() time.Time

	mu         sync.RWMutex
	payload    any
	revision   int64
	modifiedAt time.Time
	watchers   []chan domain.SourceChange
}

// NewSource creates a source for payload.
func NewSource(name string, payload any) *Source {
	s := &Source{name: name, now: time.Now}
	s.payload = payload
	s.revision = 1
	s.modifiedAt = s.now()
	return s
}

// Name returns the logical document name.
func (s *Source) Name() string {
	return s.name
}

// Update replaces the payload and notifies watchers.
func (s *Source) Update(payload any) {
	s.mu.Lock()
	s.payload = payload
	s.revision++
	s.modifiedAt = s.now()
	defer s.mu.Unlock()

	change := domain.SourceChange{Type: domain.ChangeUpdated, ID: s.name, URI: s.uri()}
	for _, ch := range s.watchers {
		select {
		case ch <- change:
		default:
		}
	}
}

// Scan returns the single reference entry. Size carries the revision so that
// every Update is seen as a change.
func (s *Source) Scan(ctx context.Context) ([]domain.SourceEntry, []domain.Warning, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	return []domain.SourceEntry{{
		ID:         s.name,
		URI:        s.uri(),
		Format:     domain.FormatReference,
		Size:       s.revision,
		ModifiedAt: s.modifiedAt,
	}}, nil, nil
}

// Load returns the payload. The size limit does not apply to in-memory values.
func (s *Source) Load(ctx context.Context, entry domain.SourceEntry, _ int64) (*domain.RawDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if entry.ID != s.name {
		return nil, domain.ErrNotFound
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	return &domain.RawDocument{
		ID:         s.name,
		URI:        s.uri(),
		Format:     domain.FormatReference,
		Payload:    s.payload,
		Size:       s.revision,
		ModifiedAt: s.modifiedAt,
		Metadata:   map[string]any{"source": "memory"},
	}, nil
}

// Watch reports every Update until ctx is cancelled.
func (s *Source) Watch(ctx context.Context) (<-chan domain.SourceChange, error) {
	ch := make(chan domain.SourceChange, 1)

	s.mu.Lock()
	s.watchers = append(s.watchers, ch)
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, w := range s.watchers {
			if w == ch {
				s.watchers = append(s.watchers[:i], s.watchers[i+1:]...)
				break
			}
		}
		close(ch)
	}()
	return ch, nil
}

func (s *Source) uri() string {
	return "memory://" + s.name
}
