package similarity

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/deskref/internal/core/domain"
)

type nopEmbedder struct{}

func (nopEmbedder) Embed(context.Context, string) ([]float32, error) { return []float32{1}, nil }
func (nopEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = []float32{1}
	}
	return out, nil
}
func (nopEmbedder) Dimensions() int            { return 1 }
func (nopEmbedder) ModelName() string          { return "nop" }
func (nopEmbedder) Ping(context.Context) error { return nil }
func (nopEmbedder) Close() error               { return nil }

func TestNewBuilder(t *testing.T) {
	tests := []struct {
		scorer   domain.Scorer
		embedder bool
		want     string
	}{
		{domain.ScorerLexical, false, "lexical"},
		{"", false, "lexical"},
		{domain.ScorerTFIDF, false, "tfidf"},
		{domain.ScorerEmbedding, true, "embedding"},
		{domain.ScorerHybrid, false, "hybrid(tfidf)"},
		{domain.ScorerHybrid, true, "hybrid(embedding)"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			s := domain.DefaultSettings()
			s.Scorer = tt.scorer
			var emb nopEmbedder
			var b interface{ Name() string }
			var err error
			if tt.embedder {
				b, err = NewBuilder(s, emb)
			} else {
				b, err = NewBuilder(s, nil)
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, b.Name())
		})
	}
}

func TestNewBuilder_Errors(t *testing.T) {
	s := domain.DefaultSettings()

	s.Scorer = domain.ScorerEmbedding
	_, err := NewBuilder(s, nil)
	var cfgErr *domain.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "SCORER", cfgErr.Field)

	s.Scorer = "bm25"
	_, err = NewBuilder(s, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}
