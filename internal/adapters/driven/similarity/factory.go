// Package similarity selects a scoring backend from configuration.
package similarity

import (
	"github.com/custodia-labs/deskref/internal/adapters/driven/similarity/hybrid"
	"github.com/custodia-labs/deskref/internal/adapters/driven/similarity/lexical"
	"github.com/custodia-labs/deskref/internal/adapters/driven/similarity/vector"
	"github.com/custodia-labs/deskref/internal/core/domain"
	"github.com/custodia-labs/deskref/internal/core/ports/driven"
	"github.com/custodia-labs/deskref/internal/logger"
)

// NewBuilder returns the builder for the configured scorer.
// embedder may be nil; hybrid scoring then uses TF-IDF for its vector half.
func NewBuilder(s domain.Settings, embedder driven.EmbeddingService) (driven.SimilarityBuilder, error) {
	switch s.Scorer {
	case domain.ScorerLexical, "":
		return lexical.NewBuilder(), nil
	case domain.ScorerTFIDF:
		return vector.NewTFIDFBuilder(), nil
	case domain.ScorerEmbedding:
		if embedder == nil {
			return nil, domain.NewConfigurationError("SCORER", "embedding scorer requires an embedding service")
		}
		return vector.NewEmbeddingBuilder(embedder), nil
	case domain.ScorerHybrid:
		var vec driven.SimilarityBuilder = vector.NewTFIDFBuilder()
		if embedder != nil {
			vec = vector.NewEmbeddingBuilder(embedder)
		} else {
			logger.Debug("hybrid scorer: no embedding service, using tfidf")
		}
		return hybrid.NewBuilder(vec, lexical.NewBuilder(), s.HybridAlpha), nil
	default:
		return nil, domain.NewConfigurationError("SCORER", "unknown scorer %q", s.Scorer)
	}
}
