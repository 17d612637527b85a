package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/deskref/internal/core/domain"
)

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
}

func TestNewConfigStore_DefaultDir(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot determine home directory")
	}

	store, err := NewConfigStore("")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".deskref", "config.toml"), store.Path())
}

func TestConfigStore_ApplyMissingFile(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	s := domain.DefaultSettings()
	require.NoError(t, store.Apply(&s))
	assert.Equal(t, domain.DefaultSettings(), s)
}

func TestConfigStore_ApplyOverlaysPresentKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
chunk_size = 500
scorer = "hybrid"
fallback_encodings = ["windows-1252"]
`), 0600))

	s := domain.DefaultSettings()
	require.NoError(t, NewConfigStoreAt(path).Apply(&s))

	assert.Equal(t, 500, s.ChunkSize)
	assert.Equal(t, domain.ScorerHybrid, s.Scorer)
	assert.Equal(t, []string{"windows-1252"}, s.FallbackEncodings)
	assert.Equal(t, domain.DefaultChunkOverlap, s.ChunkOverlap, "absent keys are untouched")
}

func TestConfigStore_ApplyRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("chunk_sise = 10\n"), 0600))

	s := domain.DefaultSettings()
	assert.Error(t, NewConfigStoreAt(path).Apply(&s))
}

func TestConfigStore_SaveRoundTrip(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	want := domain.DefaultSettings()
	want.TopK = 8
	want.SimilarityThreshold = 0.4
	require.NoError(t, store.Save(want))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	var got domain.Settings
	require.NoError(t, store.Apply(&got))
	assert.Equal(t, want, got)
}

func TestConfigStore_Set(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("chunk_size", "800"))
	require.NoError(t, store.Set("similarity_threshold", "0.5"))
	require.NoError(t, store.Set("fallback_encodings", "utf-16, latin-1"))

	s := domain.DefaultSettings()
	require.NoError(t, store.Apply(&s))
	assert.Equal(t, 800, s.ChunkSize)
	assert.Equal(t, 0.5, s.SimilarityThreshold)
	assert.Equal(t, []string{"utf-16", "latin-1"}, s.FallbackEncodings)

	keys, err := store.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"chunk_size", "fallback_encodings", "similarity_threshold"}, keys)
}

func TestConfigStore_SetRejectsInvalid(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	err = store.Set("chunk_overlap", "5000")
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)

	err = store.Set("not_a_key", "1")
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)

	_, statErr := os.Stat(store.Path())
	assert.True(t, os.IsNotExist(statErr), "nothing is written on failure")
}

func TestParseValue(t *testing.T) {
	assert.Equal(t, int64(3), parseValue("3"))
	assert.Equal(t, 0.25, parseValue("0.25"))
	assert.Equal(t, true, parseValue("true"))
	assert.Equal(t, []string{"a", "b"}, parseValue("a,b"))
	assert.Equal(t, "lexical", parseValue(" lexical "))
}
