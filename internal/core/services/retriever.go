package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/custodia-labs/deskref/internal/core/domain"
	"github.com/custodia-labs/deskref/internal/core/ports/driven"
	"github.com/custodia-labs/deskref/internal/core/ports/driving"
	"github.com/custodia-labs/deskref/internal/corpus"
	"github.com/custodia-labs/deskref/internal/logger"
)

// Ensure Retriever implements the interface.
var _ driving.Retriever = (*Retriever)(nil)

// Retriever answers queries against the live index.
// Each query reads the live pointer once, so a concurrent refresh never
// mixes two indexes in one answer.
type Retriever struct {
	live      *corpus.Live
	topK      int
	threshold float64
	queryLog  driven.QueryLog
	now       func() time.Time
}

// NewRetriever creates a retriever with the configured defaults.
// The queryLog parameter is optional (can be nil).
func NewRetriever(live *corpus.Live, settings domain.Settings, queryLog driven.QueryLog) *Retriever {
	return &Retriever{
		live:      live,
		topK:      settings.TopK,
		threshold: settings.SimilarityThreshold,
		queryLog:  queryLog,
		now:       time.Now,
	}
}

// Query returns at most top_k chunks scoring at or above the threshold.
func (r *Retriever) Query(ctx context.Context, text string, opts domain.QueryOptions) (*domain.RetrievalResult, error) {
	logger.Section("Query")
	logger.Debug("Query: %q", text)

	start := r.now()
	result, err := r.search(ctx, text, opts)
	if err != nil {
		return nil, err
	}
	if result.Query != "" {
		r.record(result, r.now().Sub(start))
	}
	return result, nil
}

// search runs a query without recording it.
func (r *Retriever) search(ctx context.Context, text string, opts domain.QueryOptions) (*domain.RetrievalResult, error) {
	topK, threshold := r.topK, r.threshold
	if opts.TopK != nil {
		topK = *opts.TopK
	}
	if opts.Threshold != nil {
		threshold = *opts.Threshold
	}
	if err := domain.ValidateRetrieval(topK, threshold); err != nil {
		return nil, err
	}

	idx := r.live.Current()
	result := &domain.RetrievalResult{
		Query:     strings.TrimSpace(text),
		TopK:      topK,
		Threshold: threshold,
		IndexID:   idx.ID(),
		Results:   []domain.ScoredChunk{},
	}
	if result.Query == "" || idx.Len() == 0 {
		return result, nil
	}

	scores, err := idx.Scores(ctx, result.Query)
	if err != nil {
		return nil, fmt.Errorf("scoring query: %w", err)
	}

	type candidate struct {
		pos   int
		score float64
	}
	candidates := make([]candidate, 0, len(scores))
	for i, s := range scores {
		if s >= threshold && s > 0 {
			candidates = append(candidates, candidate{pos: i, score: min(s, 1)})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	if len(candidates) > topK {
		candidates = candidates[:topK]
	}

	for _, c := range candidates {
		result.Results = append(result.Results, domain.ScoredChunk{
			Chunk: idx.Chunk(c.pos),
			Score: c.score,
		})
	}
	logger.Debug("Scored %d chunks, %d above %.2f, returning %d",
		len(scores), len(candidates), threshold, len(result.Results))
	return result, nil
}

func (r *Retriever) record(result *domain.RetrievalResult, took time.Duration) {
	if r.queryLog == nil {
		return
	}
	r.queryLog.Record(domain.QueryLogEntry{
		Timestamp:  r.now().UTC(),
		Query:      result.Query,
		TopK:       result.TopK,
		Threshold:  result.Threshold,
		NumResults: result.Len(),
		BestScore:  result.BestScore(),
		IndexID:    result.IndexID,
		Duration:   took,
		LatencyMs:  took.Milliseconds(),
	})
}
