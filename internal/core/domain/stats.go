package domain

import "time"

// CorpusStats describes the live index.
type CorpusStats struct {
	IndexID      string         `json:"index_id"`
	BuiltAt      time.Time      `json:"built_at"`
	Documents    int            `json:"documents"`
	Chunks       int            `json:"chunks"`
	Scorer       string         `json:"scorer"`
	ChunkSize    int            `json:"chunk_size"`
	ChunkOverlap int            `json:"chunk_overlap"`
	Errors       int            `json:"errors"`
	Warnings     int            `json:"warnings"`
	Formats      map[Format]int `json:"formats"`
	DocumentIDs  []string       `json:"document_ids"`
}

// ContentGap is a query the corpus answers poorly.
type ContentGap struct {
	Query       string  `json:"query"`
	ResultCount int     `json:"result_count"`
	BestScore   float64 `json:"best_score"`
}

// GapReport is the outcome of a content gap analysis.
type GapReport struct {
	Analysed        int          `json:"analysed"`
	Gaps            []ContentGap `json:"gaps"`
	Recommendations []string     `json:"recommendations"`
}

// ChunkPolicy is the chunking configuration an index was cut with.
type ChunkPolicy struct {
	Size    int `json:"chunk_size"`
	Overlap int `json:"chunk_overlap"`
}

// IsZero reports whether the policy is unknown.
func (p ChunkPolicy) IsZero() bool {
	return p.Size == 0 && p.Overlap == 0
}

// Snapshot is a persisted index: enough to restore without re-reading documents.
type Snapshot struct {
	IndexID  string       `json:"index_id"`
	BuiltAt  time.Time    `json:"built_at"`
	Scorer   string       `json:"scorer"`
	Policy   ChunkPolicy  `json:"policy"`
	Manifest Manifest     `json:"manifest"`
	Chunks   []Chunk      `json:"chunks"`
	Report   IngestReport `json:"report"`
}
