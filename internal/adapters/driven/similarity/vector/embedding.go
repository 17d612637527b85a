package vector

import (
	"context"
	"fmt"

	"github.com/custodia-labs/deskref/internal/core/domain"
	"github.com/custodia-labs/deskref/internal/core/ports/driven"
)

// NameEmbedding identifies the embedding backend.
const NameEmbedding = "embedding"

// DefaultBatchSize is the number of texts sent per embedding request.
const DefaultBatchSize = 64

// Ensure the builder and index implement the interfaces.
var (
	_ driven.SimilarityBuilder = (*EmbeddingBuilder)(nil)
	_ driven.Similarity        = (*Embedding)(nil)
)

// EmbeddingBuilder indexes chunk embeddings produced by an embedding service.
type EmbeddingBuilder struct {
	service   driven.EmbeddingService
	batchSize int
}

// NewEmbeddingBuilder creates an embedding builder.
func NewEmbeddingBuilder(service driven.EmbeddingService) *EmbeddingBuilder {
	return &EmbeddingBuilder{service: service, batchSize: DefaultBatchSize}
}

// Name returns the backend name.
func (b *EmbeddingBuilder) Name() string {
	return NameEmbedding
}

// Build copies the chunk embeddings, requesting any that are missing.
func (b *EmbeddingBuilder) Build(ctx context.Context, chunks []domain.Chunk) (driven.Similarity, error) {
	if b.service == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	vectors := make([][]float64, len(chunks))
	var missing []int
	for i := range chunks {
		if len(chunks[i].Embedding) == 0 {
			missing = append(missing, i)
			continue
		}
		vectors[i] = toFloat64(chunks[i].Embedding)
	}

	for start := 0; start < len(missing); start += b.batchSize {
		end := min(start+b.batchSize, len(missing))
		texts := make([]string, 0, end-start)
		for _, i := range missing[start:end] {
			texts = append(texts, chunks[i].IndexText())
		}
		embs, err := b.service.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embedding chunks: %w", err)
		}
		if len(embs) != len(texts) {
			return nil, fmt.Errorf("embedding chunks: got %d vectors for %d texts", len(embs), len(texts))
		}
		for k, i := range missing[start:end] {
			vectors[i] = toFloat64(embs[k])
		}
	}

	for _, v := range vectors {
		normalise(v)
	}
	return &Embedding{service: b.service, vectors: vectors}, nil
}

// Embedding is an immutable set of unit-length chunk embeddings.
type Embedding struct {
	service driven.EmbeddingService
	vectors [][]float64
}

// Name returns the backend name.
func (e *Embedding) Name() string {
	return NameEmbedding
}

// Scores embeds the query and returns the clamped cosine against each chunk.
func (e *Embedding) Scores(ctx context.Context, query string) ([]float64, error) {
	scores := make([]float64, len(e.vectors))
	if len(e.vectors) == 0 {
		return scores, nil
	}

	q, err := e.service.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	qv := toFloat64(q)
	normalise(qv)

	for i, v := range e.vectors {
		scores[i] = clamp(dot(qv, v))
	}
	return scores, nil
}
