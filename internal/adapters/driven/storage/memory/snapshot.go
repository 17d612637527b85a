package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/deskref/internal/core/domain"
	"github.com/custodia-labs/deskref/internal/core/ports/driven"
)

// Ensure SnapshotStore implements the interface.
var _ driven.SnapshotStore = (*SnapshotStore)(nil)

// SnapshotStore keeps the last saved snapshot in memory.
type SnapshotStore struct {
	mu    sync.RWMutex
	snap  *domain.Snapshot
	saves int
}

// NewSnapshotStore creates an empty snapshot store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{}
}

// Save replaces the stored snapshot.
func (s *SnapshotStore) Save(_ context.Context, snap *domain.Snapshot) error {
	if snap == nil {
		return domain.ErrInvalidInput
	}
	cp := *snap
	cp.Chunks = append([]domain.Chunk(nil), snap.Chunks...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = &cp
	s.saves++
	return nil
}

// Load returns the stored snapshot, or domain.ErrNotFound.
func (s *SnapshotStore) Load(_ context.Context) (*domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snap == nil {
		return nil, domain.ErrNotFound
	}
	cp := *s.snap
	cp.Chunks = append([]domain.Chunk(nil), s.snap.Chunks...)
	return &cp, nil
}

// Saves returns how many snapshots have been saved.
func (s *SnapshotStore) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

// Close is a no-op.
func (s *SnapshotStore) Close() error {
	return nil
}
