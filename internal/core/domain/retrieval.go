package domain

import "time"

// QueryOptions overrides the configured retrieval defaults for one query.
// Nil fields use the configured value.
type QueryOptions struct {
	TopK      *int
	Threshold *float64
}

// WithTopK returns a copy of o with TopK set.
func (o QueryOptions) WithTopK(k int) QueryOptions {
	o.TopK = &k
	return o
}

// WithThreshold returns a copy of o with Threshold set.
func (o QueryOptions) WithThreshold(t float64) QueryOptions {
	o.Threshold = &t
	return o
}

// ScoredChunk is a chunk paired with its similarity to a query.
type ScoredChunk struct {
	Chunk Chunk   `json:"chunk"`
	Score float64 `json:"score"`
}

// RetrievalResult is the ranked answer to a query.
// Results are ordered by non-increasing score; every score is in [0,1]
// and at or above the threshold that was applied.
type RetrievalResult struct {
	Query     string        `json:"query"`
	TopK      int           `json:"top_k"`
	Threshold float64       `json:"threshold"`
	IndexID   string        `json:"index_id"`
	Results   []ScoredChunk `json:"results"`
}

// Len returns the number of results.
func (r *RetrievalResult) Len() int {
	return len(r.Results)
}

// BestScore returns the top score, or 0 when there are no results.
func (r *RetrievalResult) BestScore() float64 {
	if len(r.Results) == 0 {
		return 0
	}
	return r.Results[0].Score
}

// QueryLogEntry records one executed query.
type QueryLogEntry struct {
	Timestamp  time.Time     `json:"timestamp"`
	Query      string        `json:"query"`
	TopK       int           `json:"top_k"`
	Threshold  float64       `json:"threshold"`
	NumResults int           `json:"num_results"`
	BestScore  float64       `json:"best_score"`
	IndexID    string        `json:"index_id"`
	Duration   time.Duration `json:"duration_ns"`
	LatencyMs  int64         `json:"latency_ms"`
}
