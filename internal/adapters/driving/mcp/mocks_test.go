package mcp

import (
	"context"
	"io"

	"github.com/custodia-labs/deskref/internal/core/domain"
	"github.com/custodia-labs/deskref/internal/core/ports/driving"
)

var (
	_ driving.Retriever     = (*mockRetriever)(nil)
	_ driving.Refresher     = (*mockRefresher)(nil)
	_ driving.CorpusService = (*mockCorpus)(nil)
)

type mockRetriever struct {
	result *domain.RetrievalResult
	err    error
	opts   domain.QueryOptions
	text   string
}

func (m *mockRetriever) Query(_ context.Context, text string, opts domain.QueryOptions) (*domain.RetrievalResult, error) {
	m.text = text
	m.opts = opts
	if m.err != nil {
		return nil, m.err
	}
	if m.result != nil {
		return m.result, nil
	}
	return &domain.RetrievalResult{Query: text, TopK: 5, Threshold: 0.7, IndexID: "empty"}, nil
}

type mockRefresher struct {
	result *domain.RefreshResult
	err    error
}

func (m *mockRefresher) Refresh(_ context.Context) (*domain.RefreshResult, error) {
	return m.result, m.err
}

func (m *mockRefresher) State() domain.RefreshState {
	return domain.RefreshIdle
}

type mockCorpus struct {
	stats  *domain.CorpusStats
	export string
	err    error
}

func (m *mockCorpus) Stats(_ context.Context) (*domain.CorpusStats, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.stats == nil {
		return &domain.CorpusStats{IndexID: "empty"}, nil
	}
	return m.stats, nil
}

func (m *mockCorpus) ContentGaps(_ context.Context, _ []string) (*domain.GapReport, error) {
	return &domain.GapReport{}, m.err
}

func (m *mockCorpus) Export(_ context.Context, w io.Writer) error {
	if m.err != nil {
		return m.err
	}
	_, err := io.WriteString(w, m.export)
	return err
}
