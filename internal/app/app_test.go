package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/deskref/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/deskref/internal/core/domain"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadSettings_Layers(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "config.toml")
	writeFile(t, cfg, "chunk_size = 800\nchunk_overlap = 100\ntop_k = 9\n")
	envFile := filepath.Join(dir, "test.env")
	writeFile(t, envFile, "RAG_TOP_K=3\n")
	t.Setenv("RAG_SIMILARITY_THRESHOLD", "0.4")
	// godotenv never overrides a variable that is already set.
	t.Setenv("RAG_TOP_K", "")
	require.NoError(t, os.Unsetenv("RAG_TOP_K"))

	s, store, err := LoadSettings(Options{ConfigPath: cfg, EnvFile: envFile, DocsPath: "/srv/docs"})
	require.NoError(t, err)

	assert.Equal(t, cfg, store.Path())
	assert.Equal(t, 800, s.ChunkSize)
	assert.Equal(t, 100, s.ChunkOverlap)
	assert.Equal(t, 3, s.TopK)
	assert.Equal(t, 0.4, s.SimilarityThreshold)
	assert.Equal(t, "/srv/docs", s.DocsPath)
}

func TestLoadSettings_InvalidOverlap(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "config.toml")
	writeFile(t, cfg, "chunk_size = 100\nchunk_overlap = 100\n")

	_, _, err := LoadSettings(Options{ConfigPath: cfg, EnvFile: filepath.Join(dir, "none.env")})
	var cfgErr *domain.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestLoadSettings_CustomStore(t *testing.T) {
	saved := domain.DefaultSettings()
	saved.TopK = 7
	saved.DocsPath = "/srv/training"
	store := memory.NewConfigStore()
	require.NoError(t, store.Save(saved))

	s, got, err := LoadSettings(Options{Store: store, EnvFile: filepath.Join(t.TempDir(), "none.env")})
	require.NoError(t, err)

	assert.Same(t, store, got)
	assert.Equal(t, 7, s.TopK)
	assert.Equal(t, "/srv/training", s.DocsPath)
}

func TestNew_RejectsOverlapBeforeReading(t *testing.T) {
	s := domain.DefaultSettings()
	s.DocsPath = t.TempDir()
	s.ChunkSize = 200
	s.ChunkOverlap = 250

	a, err := New(s)
	assert.Nil(t, a)
	var cfgErr *domain.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "CHUNK_OVERLAP", cfgErr.Field)
}

func TestNew_UnknownScorer(t *testing.T) {
	s := domain.DefaultSettings()
	s.Scorer = "psychic"

	_, err := New(s)
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestApp_Ping(t *testing.T) {
	a, err := New(domain.DefaultSettings())
	require.NoError(t, err)
	defer a.Close()
	assert.NoError(t, a.Ping(context.Background()))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "no", http.StatusUnauthorized)
	}))
	defer srv.Close()

	s := domain.DefaultSettings()
	s.Scorer = domain.ScorerEmbedding
	s.EmbeddingAPIKey = "sk-test"
	s.EmbeddingBaseURL = srv.URL
	b, err := New(s)
	require.NoError(t, err)
	defer b.Close()
	require.NotNil(t, b.Embedder)
	assert.ErrorIs(t, b.Ping(context.Background()), domain.ErrInvalidConfig)
}

func TestApp_LexicalScorerIgnoresEmbeddingService(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	docs := t.TempDir()
	writeFile(t, filepath.Join(docs, "pool.txt"), "The pool opens at seven and closes at ten.")

	s := domain.DefaultSettings()
	s.DocsPath = docs
	s.EmbeddingAPIKey = "sk-test"
	s.EmbeddingBaseURL = srv.URL

	a, err := New(s)
	require.NoError(t, err)
	defer a.Close()
	assert.Nil(t, a.Embedder)
	require.NoError(t, a.Ping(context.Background()))

	result, err := a.Start(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeRebuilt, result.Outcome)
	assert.Empty(t, result.Report.Errors)
	assert.Positive(t, a.Live.Current().Len())
	assert.Zero(t, calls.Load())
}

func TestApp_StartAndQuery(t *testing.T) {
	docs := t.TempDir()
	writeFile(t, filepath.Join(docs, "billing.md"),
		"# Billing Disputes\nWhen a guest questions a charge, listen to the complaint calmly.\n")
	writeFile(t, filepath.Join(docs, "checkin.md"),
		"# Check-in Procedure\nGreet the guest and confirm the reservation.\n")

	s := domain.DefaultSettings()
	s.DocsPath = docs

	a, err := New(s)
	require.NoError(t, err)
	defer a.Close()

	result, err := a.Start(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeRebuilt, result.Outcome)

	res, err := a.Retriever.Query(context.Background(), "angry guest billing complaint",
		domain.QueryOptions{}.WithTopK(1).WithThreshold(0.5))
	require.NoError(t, err)
	require.Len(t, res.Results, 1)
	assert.Equal(t, "Billing Disputes", res.Results[0].Chunk.Heading)

	entries, err := a.QueryLog.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestApp_SQLiteRestoresBetweenRuns(t *testing.T) {
	docs := t.TempDir()
	writeFile(t, filepath.Join(docs, "pool.txt"), "The pool opens at seven and closes at ten.")

	s := domain.DefaultSettings()
	s.DocsPath = docs
	s.DataDir = t.TempDir()
	s.Snapshot = domain.SnapshotSQLite

	first, err := New(s)
	require.NoError(t, err)
	built, err := first.Start(context.Background())
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := New(s)
	require.NoError(t, err)

	again, err := second.Start(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeUnchanged, again.Outcome)
	assert.Equal(t, built.IndexID, second.Live.Current().ID())
	require.NoError(t, second.Close())

	s.ChunkSize = 20
	s.ChunkOverlap = 5
	third, err := New(s)
	require.NoError(t, err)
	defer third.Close()

	rechunked, err := third.Start(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeRebuilt, rechunked.Outcome)
	stats, err := third.Corpus.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 20, stats.ChunkSize)
	assert.Greater(t, stats.Chunks, 1)
}

func TestApp_QueryLogFile(t *testing.T) {
	s := domain.DefaultSettings()
	s.DocsPath = t.TempDir()
	s.QueryLogPath = filepath.Join(t.TempDir(), "queries.jsonl")

	a, err := New(s)
	require.NoError(t, err)
	defer a.Close()

	_, err = a.Start(context.Background())
	require.NoError(t, err)
	_, err = a.Retriever.Query(context.Background(), "towels", domain.QueryOptions{})
	require.NoError(t, err)

	data, err := os.ReadFile(s.QueryLogPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"towels"`)
}
