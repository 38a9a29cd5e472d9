package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NotNil(t, cfg)

	assert.Contains(t, cfg.Scan.Types, "js")
	assert.Contains(t, cfg.Scan.Exclude, "node_modules")
	assert.Contains(t, cfg.Scan.Exclude, BackupDirName)
	assert.Equal(t, 10, cfg.Scan.MaxDepth)
	assert.Equal(t, int64(10*1024*1024), cfg.Scan.MaxFileSize)
	assert.False(t, cfg.Scan.Gitignore)
	assert.True(t, cfg.Backup.Enabled)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 24, cfg.Cache.TTL)
	assert.Equal(t, "text", cfg.Output.Format)
}

func TestLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deadwood.toml")
	content := `
[scan]
types = ["py", "rb"]
max_depth = 5
gitignore = true

[backup]
enabled = false

[output]
format = "json"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"py", "rb"}, cfg.Scan.Types)
	assert.Equal(t, 5, cfg.Scan.MaxDepth)
	assert.True(t, cfg.Scan.Gitignore)
	assert.False(t, cfg.Backup.Enabled)
	assert.Equal(t, "json", cfg.Output.Format)
	// Untouched sections keep their defaults.
	assert.True(t, cfg.Cache.Enabled)
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deadwood.yaml")
	content := `
scan:
  max_depth: 3
cache:
  enabled: false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Scan.MaxDepth)
	assert.False(t, cfg.Cache.Enabled)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}
