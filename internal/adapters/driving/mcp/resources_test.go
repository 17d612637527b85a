package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/deskref/internal/core/domain"
)

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleStatsResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns stats as JSON", func(t *testing.T) {
		corpus := &mockCorpus{stats: &domain.CorpusStats{IndexID: "idx-1", Documents: 4, Chunks: 9}}
		server := newTestServer(t, &Ports{Retriever: &mockRetriever{}, Corpus: corpus})

		result, err := server.handleStatsResource(ctx, makeReadResourceRequest(uriScheme+"stats"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)

		var stats domain.CorpusStats
		require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &stats))
		assert.Equal(t, "idx-1", stats.IndexID)
		assert.Equal(t, 4, stats.Documents)
		assert.Equal(t, 9, stats.Chunks)
	})

	t.Run("not found without corpus", func(t *testing.T) {
		server := newTestServer(t, &Ports{Retriever: &mockRetriever{}})

		_, err := server.handleStatsResource(ctx, makeReadResourceRequest(uriScheme+"stats"))
		assert.Error(t, err)
	})

	t.Run("wraps service error", func(t *testing.T) {
		corpus := &mockCorpus{err: errors.New("boom")}
		server := newTestServer(t, &Ports{Retriever: &mockRetriever{}, Corpus: corpus})

		_, err := server.handleStatsResource(ctx, makeReadResourceRequest(uriScheme+"stats"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reading stats")
	})
}

func TestServer_handleIndexResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the export", func(t *testing.T) {
		corpus := &mockCorpus{export: `{"index_id":"idx-1"}`}
		server := newTestServer(t, &Ports{Retriever: &mockRetriever{}, Corpus: corpus})

		result, err := server.handleIndexResource(ctx, makeReadResourceRequest(uriScheme+"index"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, uriScheme+"index", result.Contents[0].URI)
		assert.JSONEq(t, `{"index_id":"idx-1"}`, result.Contents[0].Text)
	})

	t.Run("wraps export error", func(t *testing.T) {
		corpus := &mockCorpus{err: errors.New("boom")}
		server := newTestServer(t, &Ports{Retriever: &mockRetriever{}, Corpus: corpus})

		_, err := server.handleIndexResource(ctx, makeReadResourceRequest(uriScheme+"index"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exporting index")
	})
}
