package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/custodia-labs/deskref/internal/core/domain"
	"github.com/custodia-labs/deskref/internal/core/ports/driven"
	"github.com/custodia-labs/deskref/internal/core/ports/driving"
	"github.com/custodia-labs/deskref/internal/corpus"
)

// Ensure CorpusService implements the interface.
var _ driving.CorpusService = (*CorpusService)(nil)

// Content gap analysis parameters.
const (
	gapTopK            = 3
	gapMinResults      = 2
	gapRecentQueries   = 100
	gapRecommendations = 5
	gapMinWordLength   = 4
)

// NoGapsRecommendation is returned when every analysed query is well covered.
const NoGapsRecommendation = "No significant content gaps identified"

// CorpusService reports on the live index.
type CorpusService struct {
	live      *corpus.Live
	retriever *Retriever
	queryLog  driven.QueryLog
	settings  domain.Settings
}

// NewCorpusService creates a corpus service.
// The queryLog parameter is optional (can be nil).
func NewCorpusService(live *corpus.Live, retriever *Retriever, queryLog driven.QueryLog, settings domain.Settings) *CorpusService {
	return &CorpusService{
		live:      live,
		retriever: retriever,
		queryLog:  queryLog,
		settings:  settings,
	}
}

// Stats describes the live index.
func (s *CorpusService) Stats(_ context.Context) (*domain.CorpusStats, error) {
	idx := s.live.Current()
	report := idx.Report()

	policy := idx.Policy()
	if policy.IsZero() {
		policy = s.settings.ChunkPolicy()
	}

	formats := make(map[domain.Format]int)
	for _, entry := range idx.Manifest() {
		formats[entry.Format]++
	}

	return &domain.CorpusStats{
		IndexID:      idx.ID(),
		BuiltAt:      idx.BuiltAt(),
		Documents:    report.Documents,
		Chunks:       idx.Len(),
		Scorer:       idx.Scorer(),
		ChunkSize:    policy.Size,
		ChunkOverlap: policy.Overlap,
		Errors:       len(report.Errors),
		Warnings:     len(report.Warnings),
		Formats:      formats,
		DocumentIDs:  idx.DocumentIDs(),
	}, nil
}

// ContentGaps runs each query with a small top_k and reports those with
// fewer than two results. With no queries, recent logged queries are used.
func (s *CorpusService) ContentGaps(ctx context.Context, queries []string) (*domain.GapReport, error) {
	if len(queries) == 0 && s.queryLog != nil {
		entries, err := s.queryLog.Recent(ctx, gapRecentQueries)
		if err != nil {
			return nil, fmt.Errorf("read query log: %w", err)
		}
		for _, e := range entries {
			queries = append(queries, e.Query)
		}
	}

	report := &domain.GapReport{Gaps: []domain.ContentGap{}}
	opts := domain.QueryOptions{}.WithTopK(gapTopK)
	for _, q := range queries {
		if strings.TrimSpace(q) == "" {
			continue
		}
		res, err := s.retriever.search(ctx, q, opts)
		if err != nil {
			return nil, err
		}
		report.Analysed++
		if res.Len() < gapMinResults {
			report.Gaps = append(report.Gaps, domain.ContentGap{
				Query:       res.Query,
				ResultCount: res.Len(),
				BestScore:   res.BestScore(),
			})
		}
	}
	report.Recommendations = recommend(report.Gaps)
	return report, nil
}

// recommend suggests topics from the most frequent long words of gap queries.
func recommend(gaps []domain.ContentGap) []string {
	if len(gaps) == 0 {
		return []string{NoGapsRecommendation}
	}

	counts := make(map[string]int)
	for _, g := range gaps {
		for _, w := range strings.Fields(strings.ToLower(g.Query)) {
			if len([]rune(w)) >= gapMinWordLength {
				counts[w]++
			}
		}
	}

	words := make([]string, 0, len(counts))
	for w := range counts {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if counts[words[i]] != counts[words[j]] {
			return counts[words[i]] > counts[words[j]]
		}
		return words[i] < words[j]
	})
	if len(words) > gapRecommendations {
		words = words[:gapRecommendations]
	}

	out := make([]string, 0, len(words))
	for _, w := range words {
		out = append(out, fmt.Sprintf("Consider adding training content about '%s' (mentioned in %d low-result queries)", w, counts[w]))
	}
	if len(out) == 0 {
		out = append(out, NoGapsRecommendation)
	}
	return out
}

// Export writes the live index as indented JSON.
func (s *CorpusService) Export(_ context.Context, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s.live.Current().Snapshot()); err != nil {
		return fmt.Errorf("encode index: %w", err)
	}
	return nil
}
