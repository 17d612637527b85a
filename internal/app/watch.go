package app

import (
	"context"
	"sync"

	"github.com/custodia-labs/deskref/internal/core/domain"
	"github.com/custodia-labs/deskref/internal/core/ports/driven"
)

// multiWatcher fans several change feeds into one.
type multiWatcher []driven.Watcher

func (m multiWatcher) Watch(ctx context.Context) (<-chan domain.SourceChange, error) {
	feeds := make([]<-chan domain.SourceChange, 0, len(m))
	for _, w := range m {
		ch, err := w.Watch(ctx)
		if err != nil {
			return nil, err
		}
		feeds = append(feeds, ch)
	}

	out := make(chan domain.SourceChange)
	var wg sync.WaitGroup
	for _, ch := range feeds {
		wg.Add(1)
		go func(ch <-chan domain.SourceChange) {
			defer wg.Done()
			for c := range ch {
				select {
				case out <- c:
				case <-ctx.Done():
					return
				}
			}
		}(ch)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out, nil
}
