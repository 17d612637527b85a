package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/deskref/internal/core/domain"
)

func TestEmbedChunks_Batches(t *testing.T) {
	emb := &fakeEmbedder{}
	chunks := make([]domain.Chunk, embedBatchSize*2+3)
	for i := range chunks {
		chunks[i].Content = "pool"
	}

	require.NoError(t, embedChunks(context.Background(), emb, chunks))
	assert.Equal(t, 3, emb.calls)
	for _, c := range chunks {
		assert.Equal(t, []float32{4, 1}, c.Embedding)
	}
}
