package cli

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/deskref/internal/core/domain"
	"github.com/custodia-labs/deskref/internal/core/ports/driving"
)

var (
	_ driving.Retriever     = (*mockRetriever)(nil)
	_ driving.Refresher     = (*mockRefresher)(nil)
	_ driving.Watcher       = (*mockWatcher)(nil)
	_ driving.CorpusService = (*mockCorpus)(nil)
)

type mockRetriever struct {
	result *domain.RetrievalResult
	err    error
	text   string
	opts   domain.QueryOptions
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
	calls  int
}

func (m *mockRefresher) Refresh(_ context.Context) (*domain.RefreshResult, error) {
	m.calls++
	if m.result == nil && m.err == nil {
		return &domain.RefreshResult{Outcome: domain.OutcomeUnchanged, IndexID: "idx-1"}, nil
	}
	return m.result, m.err
}

func (m *mockRefresher) State() domain.RefreshState {
	return domain.RefreshIdle
}

type mockWatcher struct {
	results []*domain.RefreshResult
}

func (m *mockWatcher) Watch(_ context.Context, onRefresh func(*domain.RefreshResult)) error {
	for _, r := range m.results {
		onRefresh(r)
	}
	return context.Canceled
}

type mockCorpus struct {
	stats   *domain.CorpusStats
	report  *domain.GapReport
	export  string
	queries []string
	err     error
}

func (m *mockCorpus) Stats(_ context.Context) (*domain.CorpusStats, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.stats == nil {
		return &domain.CorpusStats{IndexID: "empty", Scorer: "lexical"}, nil
	}
	return m.stats, nil
}

func (m *mockCorpus) ContentGaps(_ context.Context, queries []string) (*domain.GapReport, error) {
	m.queries = queries
	if m.err != nil {
		return nil, m.err
	}
	if m.report == nil {
		return &domain.GapReport{Recommendations: []string{"No significant content gaps identified"}}, nil
	}
	return m.report, nil
}

func (m *mockCorpus) Export(_ context.Context, w io.Writer) error {
	if m.err != nil {
		return m.err
	}
	_, err := io.WriteString(w, m.export)
	return err
}

// setupTestServices installs svc as the live services with no bootstrap,
// and restores global state when the test ends.
func setupTestServices(t *testing.T, svc *Services) {
	t.Helper()
	oldServices, oldBootstrap := services, bootstrap
	services, bootstrap = svc, nil
	t.Cleanup(func() {
		services, bootstrap = oldServices, oldBootstrap
		resetFlags(rootCmd)
	})
}

// resetFlags returns every flag to its default so tests don't leak state.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// execute runs the root command with args and returns everything written.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		resetFlags(rootCmd)
	})

	err := rootCmd.Execute()
	return buf.String(), err
}
