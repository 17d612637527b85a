package querylog

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/deskref/internal/core/domain"
)

func TestFile_RecordAndRecent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "queries.jsonl")
	log, err := NewFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, log.Path())

	entries, err := log.Recent(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, entries, "missing file means no entries")

	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	for _, q := range []string{"refund", "checkout", "parking"} {
		log.Record(domain.QueryLogEntry{Timestamp: ts, Query: q, TopK: 5, NumResults: 1, LatencyMs: 2})
	}

	entries, err = log.Recent(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "checkout", entries[0].Query)
	assert.Equal(t, "parking", entries[1].Query)
	assert.True(t, ts.Equal(entries[1].Timestamp))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(string(content), "\n"))
	assert.Contains(t, string(content), `"latency_ms":2`)
}

func TestFile_SkipsCorruptLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queries.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("not json\n{\"query\":\"ok\"}\n"), 0o600))

	log, err := NewFile(path)
	require.NoError(t, err)

	entries, err := log.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "ok", entries[0].Query)
}
