package corpus

import "sync/atomic"

// Live is the single owned reference to the current index.
// Readers load it without locking; the writer replaces it with one atomic swap.
type Live struct {
	p atomic.Pointer[Index]
}

// NewLive creates a holder that starts with the given index, or Empty if nil.
func NewLive(initial *Index) *Live {
	l := &Live{}
	if initial == nil {
		initial = Empty()
	}
	l.p.Store(initial)
	return l
}

// Current returns the live index. It is never nil.
func (l *Live) Current() *Index {
	return l.p.Load()
}

// Swap installs next and returns the index it replaced.
func (l *Live) Swap(next *Index) *Index {
	if next == nil {
		return l.Current()
	}
	return l.p.Swap(next)
}
