package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/deskref/internal/core/domain"
)

func TestConfigCmd_Subcommands(t *testing.T) {
	var names []string
	for _, c := range configCmd.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"list", "get", "set", "path", "defaults"}, names)
}

func TestConfigCmd_SetGetList(t *testing.T) {
	setupTestServices(t, nil)
	path := filepath.Join(t.TempDir(), "config.toml")

	out, err := execute(t, "--config", path, "config", "set", "top_k", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Set top_k in "+path)

	_, err = execute(t, "--config", path, "config", "set", "docs_path", "/srv/training")
	require.NoError(t, err)

	out, err = execute(t, "--config", path, "config", "get", "top_k")
	require.NoError(t, err)
	assert.Equal(t, "3\n", out)

	out, err = execute(t, "--config", path, "config", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "docs_path = /srv/training")
	assert.Contains(t, out, "top_k = 3")
}

func TestConfigCmd_SetRejectsInvalidOverlap(t *testing.T) {
	setupTestServices(t, nil)
	path := filepath.Join(t.TempDir(), "config.toml")

	_, err := execute(t, "--config", path, "config", "set", "chunk_overlap", "1000")

	require.Error(t, err)
	var cfgErr *domain.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestConfigCmd_GetMissing(t *testing.T) {
	setupTestServices(t, nil)
	path := filepath.Join(t.TempDir(), "config.toml")

	_, err := execute(t, "--config", path, "config", "get", "top_k")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestConfigCmd_ListEmpty(t *testing.T) {
	setupTestServices(t, nil)
	path := filepath.Join(t.TempDir(), "config.toml")

	out, err := execute(t, "--config", path, "config", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "No values set in "+path)
}

func TestConfigCmd_Path(t *testing.T) {
	setupTestServices(t, nil)
	path := filepath.Join(t.TempDir(), "config.toml")

	out, err := execute(t, "--config", path, "config", "path")

	require.NoError(t, err)
	assert.Equal(t, path+"\n", out)
}

func TestConfigCmd_Defaults(t *testing.T) {
	setupTestServices(t, nil)

	out, err := execute(t, "config", "defaults")

	require.NoError(t, err)
	assert.Contains(t, out, "chunk_size = 1000")
	assert.Contains(t, out, "chunk_overlap = 200")
}
