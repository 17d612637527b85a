package vector

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/deskref/internal/core/domain"
)

// mockEmbedder maps keywords to fixed axes so cosines are predictable.
type mockEmbedder struct {
	batches int
	err     error
}

var axes = []string{"billing", "checkin", "pool"}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if m.err != nil {
		return nil, m.err
	}
	v := make([]float32, len(axes))
	lower := strings.ToLower(text)
	for i, a := range axes {
		if strings.Contains(lower, a) {
			v[i] = 1
		}
	}
	if strings.Contains(lower, "opposite") {
		v[0] = -1
	}
	return v, nil
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	m.batches++
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := m.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int              { return len(axes) }
func (m *mockEmbedder) ModelName() string            { return "mock" }
func (m *mockEmbedder) Ping(_ context.Context) error { return nil }
func (m *mockEmbedder) Close() error                 { return nil }

func TestTFIDF_Scores(t *testing.T) {
	chunks := []domain.Chunk{
		{Heading: "Billing Disputes", Content: "Review the folio and refund duplicate charges."},
		{Heading: "Pool", Content: "The pool opens at seven."},
		{Content: "Billing questions go to the night auditor."},
	}

	sim, err := NewTFIDFBuilder().Build(context.Background(), chunks)
	require.NoError(t, err)
	assert.Equal(t, "tfidf", sim.Name())

	scores, err := sim.Scores(context.Background(), "billing dispute refund")
	require.NoError(t, err)
	require.Len(t, scores, 3)

	for _, s := range scores {
		assert.GreaterOrEqual(t, s, 0.0)
		assert.LessOrEqual(t, s, 1.0)
	}
	assert.Greater(t, scores[0], scores[2])
	assert.Greater(t, scores[2], scores[1])
	assert.Equal(t, 0.0, scores[1])
}

func TestTFIDF_IdenticalTextScoresOne(t *testing.T) {
	sim, err := NewTFIDFBuilder().Build(context.Background(), []domain.Chunk{
		{Content: "late checkout fee"},
		{Content: "pool towels"},
	})
	require.NoError(t, err)

	scores, err := sim.Scores(context.Background(), "late checkout fee")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, scores[0], 1e-9)
}

func TestTFIDF_EmptyCorpusAndUnknownTerms(t *testing.T) {
	sim, err := NewTFIDFBuilder().Build(context.Background(), nil)
	require.NoError(t, err)
	scores, err := sim.Scores(context.Background(), "anything")
	require.NoError(t, err)
	assert.Empty(t, scores)

	sim, err = NewTFIDFBuilder().Build(context.Background(), []domain.Chunk{{Content: "guest"}})
	require.NoError(t, err)
	scores, err = sim.Scores(context.Background(), "helicopter")
	require.NoError(t, err)
	assert.Equal(t, []float64{0}, scores)
	assert.Equal(t, 1, sim.(*TFIDF).Dimension())
}

func TestEmbedding_BuildAndScore(t *testing.T) {
	emb := &mockEmbedder{}
	chunks := []domain.Chunk{
		{Content: "billing rules", Embedding: []float32{1, 0, 0}},
		{Content: "pool rules"},
		{Content: "checkin and billing"},
	}

	sim, err := NewEmbeddingBuilder(emb).Build(context.Background(), chunks)
	require.NoError(t, err)
	assert.Equal(t, 1, emb.batches)
	assert.Nil(t, chunks[1].Embedding, "Build must not modify its input")

	scores, err := sim.Scores(context.Background(), "billing")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, scores[0], 1e-6)
	assert.Equal(t, 0.0, scores[1])
	assert.InDelta(t, 0.70710678, scores[2], 1e-6)

	scores, err = sim.Scores(context.Background(), "opposite")
	require.NoError(t, err)
	assert.Equal(t, 0.0, scores[0], "negative cosines clamp to zero")
}

func TestEmbedding_Errors(t *testing.T) {
	_, err := NewEmbeddingBuilder(nil).Build(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)

	boom := errors.New("rate limited")
	_, err = NewEmbeddingBuilder(&mockEmbedder{err: boom}).Build(context.Background(), []domain.Chunk{{Content: "x"}})
	assert.ErrorIs(t, err, boom)

	emb := &mockEmbedder{}
	sim, err := NewEmbeddingBuilder(emb).Build(context.Background(), []domain.Chunk{{Content: "pool"}})
	require.NoError(t, err)
	emb.err = boom
	_, err = sim.Scores(context.Background(), "pool")
	assert.ErrorIs(t, err, boom)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, clamp(-0.3))
	assert.Equal(t, 1.0, clamp(1.0000001))
	assert.Equal(t, 0.5, clamp(0.5))
}
