package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/deskref/internal/core/domain"
)

func TestStatsCmd_Prints(t *testing.T) {
	corpus := &mockCorpus{stats: &domain.CorpusStats{
		IndexID:      "idx-1",
		BuiltAt:      time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
		Documents:    2,
		Chunks:       3,
		Scorer:       "lexical",
		ChunkSize:    1000,
		ChunkOverlap: 200,
		Errors:       1,
		Formats:      map[domain.Format]int{domain.FormatText: 1, domain.FormatReference: 1},
	}}
	setupTestServices(t, &Services{Corpus: corpus})

	out, err := execute(t, "stats")

	require.NoError(t, err)
	assert.Contains(t, out, "Index idx-1")
	assert.Contains(t, out, "Documents: 2")
	assert.Contains(t, out, "Chunks:    3")
	assert.Contains(t, out, "Scorer:    lexical")
	assert.Contains(t, out, "1000 runes, 200 overlap")
	assert.Contains(t, out, "1 skipped, 0 warnings")
	assert.Contains(t, out, "reference 1, text 1")
}

func TestStatsCmd_JSON(t *testing.T) {
	setupTestServices(t, &Services{Corpus: &mockCorpus{}})

	out, err := execute(t, "stats", "--json")

	require.NoError(t, err)
	var stats domain.CorpusStats
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.Equal(t, "empty", stats.IndexID)
}

func TestStatsCmd_MissingCorpus(t *testing.T) {
	setupTestServices(t, &Services{})

	_, err := execute(t, "stats")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "corpus service not configured")
}

func TestGapsCmd_PassesQueries(t *testing.T) {
	corpus := &mockCorpus{report: &domain.GapReport{
		Analysed: 2,
		Gaps:     []domain.ContentGap{{Query: "parking garage rates", ResultCount: 0}},
		Recommendations: []string{
			"Consider adding training content about 'parking' (mentioned in 1 low-result queries)",
		},
	}}
	setupTestServices(t, &Services{Corpus: corpus})

	out, err := execute(t, "gaps", "parking garage rates", "towels")

	require.NoError(t, err)
	assert.Equal(t, []string{"parking garage rates", "towels"}, corpus.queries)
	assert.Contains(t, out, "Analysed 2 queries, 1 gaps")
	assert.Contains(t, out, `"parking garage rates": 0 results`)
	assert.Contains(t, out, "- Consider adding training content about 'parking'")
}

func TestGapsCmd_NoArgsUsesQueryLog(t *testing.T) {
	corpus := &mockCorpus{}
	setupTestServices(t, &Services{Corpus: corpus})

	out, err := execute(t, "gaps")

	require.NoError(t, err)
	assert.Empty(t, corpus.queries)
	assert.Contains(t, out, "No significant content gaps identified")
}

func TestExportCmd_Stdout(t *testing.T) {
	setupTestServices(t, &Services{Corpus: &mockCorpus{export: `{"index_id":"idx-1"}`}})

	out, err := execute(t, "export")

	require.NoError(t, err)
	assert.JSONEq(t, `{"index_id":"idx-1"}`, out)
}

func TestExportCmd_File(t *testing.T) {
	setupTestServices(t, &Services{Corpus: &mockCorpus{export: `{"index_id":"idx-1"}`}})
	path := filepath.Join(t.TempDir(), "index.json")

	out, err := execute(t, "export", path)

	require.NoError(t, err)
	assert.Contains(t, out, "Exported index to "+path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"index_id":"idx-1"}`, string(data))
}
