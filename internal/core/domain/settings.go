package domain

import "math"

const unknownDescription = "Unknown"

// Default settings.
const (
	DefaultChunkSize           = 1000
	DefaultChunkOverlap        = 200
	DefaultTopK                = 5
	DefaultSimilarityThreshold = 0.7
	DefaultMaxDocumentSizeMB   = 20
	DefaultHybridAlpha         = 0.5
	DefaultRowsPerBlock        = 50
	DefaultWatchDebounceMS     = 2000
)

// DefaultFallbackEncodings are tried in order after UTF-8.
var DefaultFallbackEncodings = []string{"utf-16", "windows-1252", "iso-8859-1"}

// Scorer selects the similarity backend.
type Scorer string

// Available scorers.
const (
	// ScorerLexical scores by IDF-weighted query term coverage.
	ScorerLexical Scorer = "lexical"

	// ScorerTFIDF scores by cosine similarity of TF-IDF vectors.
	ScorerTFIDF Scorer = "tfidf"

	// ScorerEmbedding scores by cosine similarity of model embeddings.
	ScorerEmbedding Scorer = "embedding"

	// ScorerHybrid blends a vector scorer with the lexical scorer.
	ScorerHybrid Scorer = "hybrid"
)

// IsValid returns true if the scorer is recognised.
func (s Scorer) IsValid() bool {
	switch s {
	case ScorerLexical, ScorerTFIDF, ScorerEmbedding, ScorerHybrid:
		return true
	default:
		return false
	}
}

// RequiresEmbedding returns true if this scorer cannot work without an embedding service.
func (s Scorer) RequiresEmbedding() bool {
	return s == ScorerEmbedding
}

// Description returns a human-readable description of the scorer.
func (s Scorer) Description() string {
	switch s {
	case ScorerLexical:
		return "Lexical (IDF-weighted term coverage)"
	case ScorerTFIDF:
		return "TF-IDF (cosine similarity)"
	case ScorerEmbedding:
		return "Embedding (semantic cosine similarity)"
	case ScorerHybrid:
		return "Hybrid (vector + lexical)"
	default:
		return unknownDescription
	}
}

// SnapshotBackend selects where built indexes are persisted.
type SnapshotBackend string

// Available snapshot backends.
const (
	SnapshotMemory SnapshotBackend = "memory"
	SnapshotSQLite SnapshotBackend = "sqlite"
)

// IsValid returns true if the backend is recognised.
func (b SnapshotBackend) IsValid() bool {
	return b == SnapshotMemory || b == SnapshotSQLite
}

// Settings is the complete runtime configuration.
type Settings struct {
	ChunkSize           int     `toml:"chunk_size" envconfig:"CHUNK_SIZE"`
	ChunkOverlap        int     `toml:"chunk_overlap" envconfig:"CHUNK_OVERLAP"`
	TopK                int     `toml:"top_k" envconfig:"RAG_TOP_K"`
	SimilarityThreshold float64 `toml:"similarity_threshold" envconfig:"RAG_SIMILARITY_THRESHOLD"`
	MaxDocumentSizeMB   int     `toml:"max_document_size_mb" envconfig:"MAX_DOCUMENT_SIZE_MB"`

	DocsPath      string `toml:"docs_path" envconfig:"DOCS_PATH"`
	ReferencePath string `toml:"reference_path" envconfig:"REFERENCE_PATH"`
	DataDir       string `toml:"data_dir" envconfig:"DATA_DIR"`
	QueryLogPath  string `toml:"query_log_path" envconfig:"QUERY_LOG_PATH"`

	Scorer            Scorer          `toml:"scorer" envconfig:"SCORER"`
	HybridAlpha       float64         `toml:"hybrid_alpha" envconfig:"HYBRID_ALPHA"`
	IngestWorkers     int             `toml:"ingest_workers" envconfig:"INGEST_WORKERS"`
	RowsPerBlock      int             `toml:"rows_per_block" envconfig:"ROWS_PER_BLOCK"`
	FallbackEncodings []string        `toml:"fallback_encodings" envconfig:"FALLBACK_ENCODINGS"`
	Snapshot          SnapshotBackend `toml:"snapshot" envconfig:"SNAPSHOT_BACKEND"`
	WatchDebounceMS   int             `toml:"watch_debounce_ms" envconfig:"WATCH_DEBOUNCE_MS"`

	EmbeddingAPIKey  string `toml:"embedding_api_key" envconfig:"EMBEDDING_API_KEY"`
	EmbeddingBaseURL string `toml:"embedding_base_url" envconfig:"EMBEDDING_BASE_URL"`
	EmbeddingModel   string `toml:"embedding_model" envconfig:"EMBEDDING_MODEL"`
}

// EmbeddingConfigured returns true if an embedding service can be created.
func (s Settings) EmbeddingConfigured() bool {
	return s.EmbeddingAPIKey != ""
}

// UsesEmbedding returns true if the configured scorer reads chunk embeddings
// and a service is available to compute them.
func (s Settings) UsesEmbedding() bool {
	return s.EmbeddingConfigured() && (s.Scorer == ScorerEmbedding || s.Scorer == ScorerHybrid)
}

// ChunkPolicy returns the chunking configuration.
func (s Settings) ChunkPolicy() ChunkPolicy {
	return ChunkPolicy{Size: s.ChunkSize, Overlap: s.ChunkOverlap}
}

// DefaultSettings returns the built-in configuration.
func DefaultSettings() Settings {
	return Settings{
		ChunkSize:           DefaultChunkSize,
		ChunkOverlap:        DefaultChunkOverlap,
		TopK:                DefaultTopK,
		SimilarityThreshold: DefaultSimilarityThreshold,
		MaxDocumentSizeMB:   DefaultMaxDocumentSizeMB,
		DocsPath:            "docs",
		Scorer:              ScorerLexical,
		HybridAlpha:         DefaultHybridAlpha,
		RowsPerBlock:        DefaultRowsPerBlock,
		FallbackEncodings:   append([]string(nil), DefaultFallbackEncodings...),
		Snapshot:            SnapshotMemory,
		WatchDebounceMS:     DefaultWatchDebounceMS,
	}
}

// MaxDocumentBytes returns the size limit in bytes.
func (s Settings) MaxDocumentBytes() int64 {
	return int64(s.MaxDocumentSizeMB) << 20
}

// Validate checks every setting and returns the first ConfigurationError found.
func (s Settings) Validate() error {
	if err := ValidateChunking(s.ChunkSize, s.ChunkOverlap); err != nil {
		return err
	}
	if err := ValidateRetrieval(s.TopK, s.SimilarityThreshold); err != nil {
		return err
	}
	if s.MaxDocumentSizeMB <= 0 {
		return NewConfigurationError("MAX_DOCUMENT_SIZE_MB", "must be positive, got %d", s.MaxDocumentSizeMB)
	}
	if !s.Scorer.IsValid() {
		return NewConfigurationError("SCORER", "unknown scorer %q", s.Scorer)
	}
	if s.Scorer.RequiresEmbedding() && !s.EmbeddingConfigured() {
		return NewConfigurationError("SCORER", "%s scorer requires EMBEDDING_API_KEY", s.Scorer)
	}
	if !inUnitInterval(s.HybridAlpha) {
		return NewConfigurationError("HYBRID_ALPHA", "must be within [0,1], got %v", s.HybridAlpha)
	}
	if s.IngestWorkers < 0 {
		return NewConfigurationError("INGEST_WORKERS", "must not be negative, got %d", s.IngestWorkers)
	}
	if s.RowsPerBlock <= 0 {
		return NewConfigurationError("ROWS_PER_BLOCK", "must be positive, got %d", s.RowsPerBlock)
	}
	if !s.Snapshot.IsValid() {
		return NewConfigurationError("SNAPSHOT_BACKEND", "unknown backend %q", s.Snapshot)
	}
	if s.WatchDebounceMS < 0 {
		return NewConfigurationError("WATCH_DEBOUNCE_MS", "must not be negative, got %d", s.WatchDebounceMS)
	}
	return nil
}

// ValidateChunking checks a chunking policy.
func ValidateChunking(size, overlap int) error {
	if size <= 0 {
		return NewConfigurationError("CHUNK_SIZE", "must be positive, got %d", size)
	}
	if overlap < 0 {
		return NewConfigurationError("CHUNK_OVERLAP", "must not be negative, got %d", overlap)
	}
	if overlap >= size {
		return NewConfigurationError("CHUNK_OVERLAP", "must be smaller than CHUNK_SIZE (%d), got %d", size, overlap)
	}
	return nil
}

// ValidateRetrieval checks a top-k and threshold pair.
func ValidateRetrieval(topK int, threshold float64) error {
	if topK <= 0 {
		return NewConfigurationError("RAG_TOP_K", "must be positive, got %d", topK)
	}
	if !inUnitInterval(threshold) {
		return NewConfigurationError("RAG_SIMILARITY_THRESHOLD", "must be within [0,1], got %v", threshold)
	}
	return nil
}

func inUnitInterval(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= 1
}
