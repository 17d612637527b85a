package domain

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSettings_Valid(t *testing.T) {
	s := DefaultSettings()

	require.NoError(t, s.Validate())
	assert.Equal(t, 1000, s.ChunkSize)
	assert.Equal(t, 200, s.ChunkOverlap)
	assert.Equal(t, 5, s.TopK)
	assert.InDelta(t, 0.7, s.SimilarityThreshold, 1e-9)
	assert.Equal(t, 20, s.MaxDocumentSizeMB)
	assert.Equal(t, int64(20<<20), s.MaxDocumentBytes())
}

func TestDefaultSettings_FallbackEncodingsAreCopied(t *testing.T) {
	s := DefaultSettings()
	s.FallbackEncodings[0] = "changed"

	assert.Equal(t, "utf-16", DefaultFallbackEncodings[0])
}

func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
		field  string
	}{
		{"zero chunk size", func(s *Settings) { s.ChunkSize = 0 }, "CHUNK_SIZE"},
		{"negative overlap", func(s *Settings) { s.ChunkOverlap = -1 }, "CHUNK_OVERLAP"},
		{"overlap equals size", func(s *Settings) { s.ChunkOverlap = s.ChunkSize }, "CHUNK_OVERLAP"},
		{"overlap exceeds size", func(s *Settings) { s.ChunkOverlap = s.ChunkSize + 1 }, "CHUNK_OVERLAP"},
		{"zero top k", func(s *Settings) { s.TopK = 0 }, "RAG_TOP_K"},
		{"threshold above one", func(s *Settings) { s.SimilarityThreshold = 1.5 }, "RAG_SIMILARITY_THRESHOLD"},
		{"threshold below zero", func(s *Settings) { s.SimilarityThreshold = -0.1 }, "RAG_SIMILARITY_THRESHOLD"},
		{"threshold NaN", func(s *Settings) { s.SimilarityThreshold = math.NaN() }, "RAG_SIMILARITY_THRESHOLD"},
		{"zero size limit", func(s *Settings) { s.MaxDocumentSizeMB = 0 }, "MAX_DOCUMENT_SIZE_MB"},
		{"unknown scorer", func(s *Settings) { s.Scorer = "bm25" }, "SCORER"},
		{"embedding without key", func(s *Settings) { s.Scorer = ScorerEmbedding }, "SCORER"},
		{"alpha out of range", func(s *Settings) { s.HybridAlpha = 2 }, "HYBRID_ALPHA"},
		{"negative workers", func(s *Settings) { s.IngestWorkers = -2 }, "INGEST_WORKERS"},
		{"zero rows per block", func(s *Settings) { s.RowsPerBlock = 0 }, "ROWS_PER_BLOCK"},
		{"unknown snapshot backend", func(s *Settings) { s.Snapshot = "redis" }, "SNAPSHOT_BACKEND"},
		{"negative debounce", func(s *Settings) { s.WatchDebounceMS = -1 }, "WATCH_DEBOUNCE_MS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mutate(&s)

			err := s.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)

			var cfgErr *ConfigurationError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestSettings_EmbeddingScorerWithKey(t *testing.T) {
	s := DefaultSettings()
	s.Scorer = ScorerEmbedding
	s.EmbeddingAPIKey = "sk-test"

	assert.NoError(t, s.Validate())
}

func TestSettings_HybridWithoutKeyIsValid(t *testing.T) {
	s := DefaultSettings()
	s.Scorer = ScorerHybrid

	assert.NoError(t, s.Validate())
}

func TestSettings_UsesEmbedding(t *testing.T) {
	tests := []struct {
		scorer Scorer
		key    string
		want   bool
	}{
		{ScorerLexical, "sk-test", false},
		{ScorerTFIDF, "sk-test", false},
		{ScorerEmbedding, "sk-test", true},
		{ScorerHybrid, "sk-test", true},
		{ScorerHybrid, "", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.scorer)+"/"+tt.key, func(t *testing.T) {
			s := DefaultSettings()
			s.Scorer = tt.scorer
			s.EmbeddingAPIKey = tt.key
			assert.Equal(t, tt.want, s.UsesEmbedding())
		})
	}
}

func TestSettings_ChunkPolicy(t *testing.T) {
	s := DefaultSettings()
	s.ChunkSize = 300
	s.ChunkOverlap = 30

	assert.Equal(t, ChunkPolicy{Size: 300, Overlap: 30}, s.ChunkPolicy())
	assert.False(t, s.ChunkPolicy().IsZero())
	assert.True(t, ChunkPolicy{}.IsZero())
}

func TestValidateChunking_Boundaries(t *testing.T) {
	assert.NoError(t, ValidateChunking(1, 0))
	assert.NoError(t, ValidateChunking(10, 9))
	assert.Error(t, ValidateChunking(10, 10))
}

func TestValidateRetrieval_Boundaries(t *testing.T) {
	assert.NoError(t, ValidateRetrieval(1, 0))
	assert.NoError(t, ValidateRetrieval(1, 1))
	assert.Error(t, ValidateRetrieval(-1, 0.5))
}

func TestScorer(t *testing.T) {
	tests := []struct {
		scorer      Scorer
		valid       bool
		needsEmbed  bool
		description string
	}{
		{ScorerLexical, true, false, "Lexical (IDF-weighted term coverage)"},
		{ScorerTFIDF, true, false, "TF-IDF (cosine similarity)"},
		{ScorerEmbedding, true, true, "Embedding (semantic cosine similarity)"},
		{ScorerHybrid, true, false, "Hybrid (vector + lexical)"},
		{Scorer("other"), false, false, "Unknown"},
	}

	for _, tt := range tests {
		t.Run(string(tt.scorer), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.scorer.IsValid())
			assert.Equal(t, tt.needsEmbed, tt.scorer.RequiresEmbedding())
			assert.Equal(t, tt.description, tt.scorer.Description())
		})
	}
}
