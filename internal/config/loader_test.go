package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromDirDefaults(t *testing.T) {
	cfg, err := LoadFromDir(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, ".nir/state.db", cfg.StatePath)
	assert.Equal(t, 20, cfg.HistoryLimit)
	assert.False(t, cfg.Output.Pretty)
}

func TestLoadFromDirReadsYAML(t *testing.T) {
	dir := t.TempDir()
	content := "state_path: custom.db\nhistory_limit: 5\noutput:\n  spikes_path: out/spikes.json\n  pretty: true\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0o644))

	cfg, err := LoadFromDir(dir)
	require.NoError(t, err)
	assert.Equal(t, "custom.db", cfg.StatePath)
	assert.Equal(t, 5, cfg.HistoryLimit)
	assert.Equal(t, "out/spikes.json", cfg.Output.SpikesPath)
	assert.True(t, cfg.Output.Pretty)
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("state_path: from_file.db\n"), 0o644))
	t.Setenv("NIR_STATE_PATH", "from_env.db")

	cfg, err := LoadFromDir(dir)
	require.NoError(t, err)
	assert.Equal(t, "from_env.db", cfg.StatePath)
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, ConfigFileNameAlt), []byte(""), 0o644))

	assert.Equal(t, root, FindProjectRoot(nested))
	assert.Equal(t, "", FindProjectRoot(t.TempDir()))
}
