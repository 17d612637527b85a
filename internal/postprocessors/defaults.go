package postprocessors

import (
	"github.com/custodia-labs/deskref/internal/core/domain"
	"github.com/custodia-labs/deskref/internal/core/ports/driven"
	"github.com/custodia-labs/deskref/internal/postprocessors/annotate"
	"github.com/custodia-labs/deskref/internal/postprocessors/chunker"
)

// DefaultOrder is the fixed processor chain: cut chunks, then tag them.
var DefaultOrder = []string{chunker.Name, annotate.Name}

// RegisterDefaults registers all built-in processors with the registry.
func RegisterDefaults(r *Registry) {
	r.Register(chunker.Name, buildChunker)
	r.Register(annotate.Name, func(map[string]any) (driven.PostProcessor, error) {
		return annotate.New(), nil
	})
}

// NewDefaultPipeline builds the default chain for the given settings.
// Returns a ConfigurationError if the chunking policy is invalid.
func NewDefaultPipeline(s domain.Settings) (*Pipeline, error) {
	r := NewRegistry()
	RegisterDefaults(r)

	return r.Chain(DefaultOrder, map[string]any{
		"chunk_size": s.ChunkSize,
		"overlap":    s.ChunkOverlap,
	})
}

// buildChunker creates a chunker processor from generic config.
// Supported config keys:
//   - chunk_size (int): Runes per chunk (default: 1000)
//   - overlap (int): Runes shared by neighbouring chunks (default: 200)
func buildChunker(cfg map[string]any) (driven.PostProcessor, error) {
	var opts []chunker.Option

	if size, ok := getIntFromConfig(cfg, "chunk_size"); ok {
		opts = append(opts, chunker.WithChunkSize(size))
	}
	if overlap, ok := getIntFromConfig(cfg, "overlap"); ok {
		opts = append(opts, chunker.WithOverlap(overlap))
	}

	proc, err := chunker.New(opts...)
	if err != nil {
		return nil, err
	}
	return proc, nil
}

// getIntFromConfig extracts an int from a generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) (int, bool) {
	val, ok := cfg[key]
	if !ok {
		return 0, false
	}

	switch v := val.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
