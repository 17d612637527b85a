package services

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/deskref/internal/adapters/driven/similarity/lexical"
	"github.com/custodia-labs/deskref/internal/core/domain"
	"github.com/custodia-labs/deskref/internal/core/ports/driven"
	"github.com/custodia-labs/deskref/internal/corpus"
	"github.com/custodia-labs/deskref/internal/normalisers"
	"github.com/custodia-labs/deskref/internal/postprocessors"
)

// undecodable fails UTF-8 and every default fallback encoding.
var undecodable = []byte{0x00, 0x81, 0x01, 0x02, 0x8D}

func testSettings() domain.Settings {
	s := domain.DefaultSettings()
	s.IngestWorkers = 2
	s.WatchDebounceMS = 0
	return s
}

type rig struct {
	live       *corpus.Live
	controller *RefreshController
	retriever  *Retriever
}

func newRig(t *testing.T, s domain.Settings, sources []driven.DocumentSource, opts ...RefreshOption) *rig {
	t.Helper()
	registry, err := normalisers.NewDefaultRegistry(s)
	require.NoError(t, err)
	pipeline, err := postprocessors.NewDefaultPipeline(s)
	require.NoError(t, err)

	live := corpus.NewLive(nil)
	return &rig{
		live:       live,
		controller: NewRefreshController(live, sources, registry, pipeline, lexical.NewBuilder(), s, opts...),
		retriever:  NewRetriever(live, s, nil),
	}
}

func writeDoc(t *testing.T, dir, name string, content []byte) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, content, 0o644))
}

func buildLive(t *testing.T, chunks ...domain.Chunk) *corpus.Live {
	t.Helper()
	idx, err := corpus.Build(context.Background(), lexical.NewBuilder(), chunks, domain.Manifest{}, domain.IngestReport{Documents: 1, Chunks: len(chunks)})
	require.NoError(t, err)
	return corpus.NewLive(idx)
}

// stubSource serves fixed text documents from memory.
type stubSource struct {
	mu      sync.Mutex
	entries []domain.SourceEntry
	content map[string][]byte
	scanErr error
	loads   int

	// block, when set, makes the first Load wait for ctx to end.
	block   bool
	started chan struct{}
}

func newStubSource(docs map[string]string) *stubSource {
	s := &stubSource{content: make(map[string][]byte)}
	for id, text := range docs {
		s.entries = append(s.entries, domain.SourceEntry{ID: id, URI: "stub://" + id, Format: domain.FormatText, Size: int64(len(text))})
		s.content[id] = []byte(text)
	}
	return s
}

func (s *stubSource) Scan(ctx context.Context) ([]domain.SourceEntry, []domain.Warning, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scanErr != nil {
		return nil, nil, s.scanErr
	}
	return append([]domain.SourceEntry(nil), s.entries...), nil, ctx.Err()
}

func (s *stubSource) Load(ctx context.Context, e domain.SourceEntry, _ int64) (*domain.RawDocument, error) {
	s.mu.Lock()
	s.loads++
	block := s.block
	s.block = false
	s.mu.Unlock()

	if block {
		close(s.started)
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return &domain.RawDocument{ID: e.ID, URI: e.URI, Format: e.Format, Content: s.content[e.ID], Size: e.Size}, nil
}

// fakeEmbedder maps texts to two-dimensional vectors.
type fakeEmbedder struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	return []float32{float32(len(text)), 1}, nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i], _ = f.Embed(ctx, t)
	}
	return out, nil
}

func (f *fakeEmbedder) Dimensions() int             { return 2 }
func (f *fakeEmbedder) ModelName() string           { return "fake" }
func (f *fakeEmbedder) Ping(context.Context) error  { return nil }
func (f *fakeEmbedder) Close() error                { return nil }

// chanWatcher replays changes sent on its channel.
type chanWatcher struct {
	ch chan domain.SourceChange
}

func (w *chanWatcher) Watch(ctx context.Context) (<-chan domain.SourceChange, error) {
	out := make(chan domain.SourceChange)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case c := <-w.ch:
				select {
				case out <- c:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
