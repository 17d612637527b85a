package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/deskref/internal/core/domain"
	"github.com/custodia-labs/deskref/internal/core/ports/driven"
)

// Ensure QueryLog implements the interface.
var _ driven.QueryLog = (*QueryLog)(nil)

// DefaultQueryLogCapacity is the ring size used when none is given.
const DefaultQueryLogCapacity = 1000

// QueryLog keeps the most recent entries in a fixed-size ring.
type QueryLog struct {
	mu      sync.Mutex
	entries []domain.QueryLogEntry
	next    int
	full    bool
}

// NewQueryLog creates a ring holding up to capacity entries.
func NewQueryLog(capacity int) *QueryLog {
	if capacity <= 0 {
		capacity = DefaultQueryLogCapacity
	}
	return &QueryLog{entries: make([]domain.QueryLogEntry, capacity)}
}

// Record appends an entry, overwriting the oldest when full.
func (q *QueryLog) Record(entry domain.QueryLogEntry) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.entries[q.next] = entry
	q.next = (q.next + 1) % len(q.entries)
	if q.next == 0 {
		q.full = true
	}
}

// Recent returns up to n of the latest entries, oldest first.
func (q *QueryLog) Recent(_ context.Context, n int) ([]domain.QueryLogEntry, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	size := q.next
	if q.full {
		size = len(q.entries)
	}
	n = min(n, size)
	if n <= 0 {
		return nil, nil
	}

	out := make([]domain.QueryLogEntry, n)
	start := q.next - n
	for i := range out {
		out[i] = q.entries[(start+i+len(q.entries))%len(q.entries)]
	}
	return out, nil
}

// Len returns the number of stored entries.
func (q *QueryLog) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.full {
		return len(q.entries)
	}
	return q.next
}
