package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load(New(), "")
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8000/api", cfg.API.URL)
	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
	assert.Equal(t, 300*time.Millisecond, cfg.UI.SearchDebounce)
	assert.False(t, cfg.Sync.Rollback)
	assert.False(t, cfg.Local.Enabled)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestFileAndEnvironmentOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api:
  url: https://board.example.com/api
  timeout: 3s
sync:
  rollback: true
ui:
  search_debounce: 150ms
`), 0o644))
	t.Setenv("KANBAN_API_TOKEN", "from-env")
	t.Setenv("KANBAN_LOG_LEVEL", "debug")

	cfg, err := Load(New(), path)
	require.NoError(t, err)
	assert.Equal(t, "https://board.example.com/api", cfg.API.URL)
	assert.Equal(t, 3*time.Second, cfg.API.Timeout)
	assert.Equal(t, "from-env", cfg.API.Token)
	assert.True(t, cfg.Sync.Rollback)
	assert.Equal(t, 150*time.Millisecond, cfg.UI.SearchDebounce)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestDefaultPathIsReadWhenPresent(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "kanban"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "kanban", "config.yaml"), []byte("local:\n  enabled: true\n  user: mike\n"), 0o644))

	cfg, err := Load(New(), "")
	require.NoError(t, err)
	assert.True(t, cfg.Local.Enabled)
	assert.Equal(t, "mike", cfg.Local.User)
}

func TestMissingExplicitFile(t *testing.T) {
	_, err := Load(New(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	v := New()
	v.Set("api.url", "not a url")
	v.Set("log.level", "loud")

	_, err := Load(v, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api.url")
	assert.Contains(t, err.Error(), "log.level")

	v = New()
	v.Set("api.url", "")
	v.Set("local.enabled", true)
	_, err = Load(v, "")
	assert.NoError(t, err, "the api url is unused in local mode")
}

func TestYAMLMasksSecrets(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	v := New()
	v.Set("api.token", "s3cret")
	cfg, err := Load(v, "")
	require.NoError(t, err)

	out, err := cfg.YAML()
	require.NoError(t, err)
	assert.NotContains(t, string(out), "s3cret")

	var back map[string]map[string]any
	require.NoError(t, yaml.Unmarshal(out, &back))
	assert.Equal(t, "300ms", back["ui"]["search_debounce"])
	assert.Equal(t, "********", back["api"]["token"])
}
