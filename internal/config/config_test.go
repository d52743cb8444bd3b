package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("BAHATERM_CONFIG", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "https://forum.gamer.com.tw/", cfg.Source.BaseURL)
	require.Equal(t, 5*time.Second, cfg.Source.Timeout)
	require.Equal(t, "bahaterm/1.0", cfg.Source.UserAgent)
	require.Equal(t, filepath.Join(home, ".local", "share", "bahaterm", "bahaterm.db"), cfg.Database.Path)
	require.Equal(t, filepath.Join(home, ".local", "state", "bahaterm", "bahaterm.log"), cfg.Log.Path)
	require.Equal(t, "info", cfg.Log.Level)
	require.Equal(t, 100*time.Millisecond, cfg.UI.PollInterval)
	require.Equal(t, 10, cfg.UI.HistoryLimit)
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[source]
timeout = "2s"

[ui]
poll_interval = "250ms"
history_limit = 3
`), 0o600))
	t.Setenv("HOME", dir)
	t.Setenv("BAHATERM_CONFIG", path)
	t.Setenv("BAHATERM_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 2*time.Second, cfg.Source.Timeout)
	require.Equal(t, 250*time.Millisecond, cfg.UI.PollInterval)
	require.Equal(t, 3, cfg.UI.HistoryLimit)
	require.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadRejectsZeroPollInterval(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("BAHATERM_CONFIG", "")
	t.Setenv("BAHATERM_UI_POLL_INTERVAL", "0s")

	_, err := Load()
	require.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.toml")
	t.Setenv("HOME", dir)
	t.Setenv("BAHATERM_CONFIG", path)

	want := Config{
		Source:   SourceConfig{BaseURL: "http://localhost:9000/", Timeout: 3 * time.Second, UserAgent: "test"},
		Database: DatabaseConfig{Path: filepath.Join(dir, "h.db")},
		Log:      LogConfig{Path: filepath.Join(dir, "h.log"), Level: "warn"},
		UI:       UIConfig{PollInterval: 50 * time.Millisecond, HistoryLimit: 4},
	}
	require.NoError(t, Save(want))

	got, err := Load()
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestPathDefaultsUnderHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("BAHATERM_CONFIG", "")

	require.Equal(t, filepath.Join(home, ".config", "bahaterm", "config.toml"), Path())
	require.False(t, Exists())

	cfg, err := Load()
	require.NoError(t, err)
	require.NoError(t, Save(cfg))
	require.True(t, Exists())
}
