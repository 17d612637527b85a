package cli

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/deskref/internal/core/domain"
)

func TestRefreshCmd_Use(t *testing.T) {
	assert.Equal(t, "refresh", refreshCmd.Use)
	assert.Equal(t, "watch", watchCmd.Use)
}

func TestRefreshCmd_Rebuilt(t *testing.T) {
	refresher := &mockRefresher{result: &domain.RefreshResult{
		Outcome: domain.OutcomeRebuilt,
		IndexID: "idx-2",
		Diff:    domain.ManifestDiff{Added: []string{"b.txt"}},
		Report: domain.IngestReport{
			Documents: 2,
			Chunks:    5,
			Errors:    []domain.DocumentError{{DocumentID: "bad.txt", Message: "decode error"}},
			Warnings:  []domain.Warning{{Code: domain.WarningEmptyPage, DocumentID: "guide.pdf", Message: "page 3 has no text"}},
		},
	}}
	setupTestServices(t, &Services{Refresher: refresher})

	out, err := execute(t, "refresh")

	require.NoError(t, err)
	assert.Contains(t, out, "Rebuilt index idx-2: 2 documents, 5 chunks")
	assert.Contains(t, out, "1 added, 0 removed, 0 changed")
	assert.Contains(t, out, "skipped bad.txt: decode error")
	assert.Contains(t, out, "empty_page guide.pdf: page 3 has no text")
}

func TestRefreshCmd_Unchanged(t *testing.T) {
	setupTestServices(t, &Services{Refresher: &mockRefresher{}})

	out, err := execute(t, "refresh")

	require.NoError(t, err)
	assert.Contains(t, out, "Unchanged: index idx-1 is up to date")
}

func TestRefreshCmd_FailedKeepsIndex(t *testing.T) {
	failure := &domain.BuildFailure{Stage: domain.RefreshScanning, Err: errors.New("docs missing")}
	refresher := &mockRefresher{
		result: &domain.RefreshResult{Outcome: domain.OutcomeFailed, Reason: failure.Error(), IndexID: "idx-1", Err: failure},
		err:    failure,
	}
	setupTestServices(t, &Services{Refresher: refresher})

	out, err := execute(t, "refresh")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBuildFailed)
	assert.Contains(t, out, "index idx-1 stays live")
}

func TestRefreshCmd_JSON(t *testing.T) {
	refresher := &mockRefresher{result: &domain.RefreshResult{
		Outcome: domain.OutcomeRebuilt,
		IndexID: "idx-2",
		Report:  domain.IngestReport{Documents: 1, Chunks: 1},
	}}
	setupTestServices(t, &Services{Refresher: refresher})

	out, err := execute(t, "refresh", "--json")

	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "rebuilt", got["outcome"])
	assert.Equal(t, "idx-2", got["index_id"])
}

func TestWatchCmd_PrintsEachRefresh(t *testing.T) {
	watcher := &mockWatcher{results: []*domain.RefreshResult{
		{Outcome: domain.OutcomeRebuilt, IndexID: "idx-3", Report: domain.IngestReport{Documents: 3, Chunks: 7}},
		{Outcome: domain.OutcomeSuperseded},
	}}
	setupTestServices(t, &Services{Watcher: watcher})

	out, err := execute(t, "watch")

	require.NoError(t, err)
	assert.Contains(t, out, "Watching for document changes.")
	assert.Contains(t, out, "Rebuilt index idx-3: 3 documents, 7 chunks")
	assert.Contains(t, out, "Superseded by a newer refresh")
}

func TestWatchCmd_MissingWatcher(t *testing.T) {
	setupTestServices(t, &Services{})

	_, err := execute(t, "watch")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "watcher not configured")
}
