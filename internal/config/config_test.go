package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.True(t, cfg.Audio.Enabled)
	assert.Equal(t, 80, cfg.Audio.Volume)
	assert.Equal(t, 2*time.Second, cfg.Audio.PollInterval.Duration())
	assert.True(t, cfg.Audio.Preload)
	assert.Equal(t, "local", cfg.Focus.Backend)
	assert.Equal(t, "music", cfg.Focus.Stream)
	assert.Equal(t, "numbers", cfg.Catalog.Default)
	assert.True(t, cfg.TUI.StopOnBlur)
	assert.True(t, cfg.TUI.ShowImages)
	assert.True(t, cfg.TUI.ShowHelp)
	assert.NotNil(t, cfg.Theme.Colors)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig_DefaultsWhenNoFile(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.toml")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Audio.Volume, cfg.Audio.Volume)
}

func TestLoadConfig_ParsesTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `
[audio]
enabled = false
volume = 35
asset_dir = "/srv/miwok/audio"
poll_interval = "500ms"
preload = false

[focus]
backend = "dbus"
stream = "notification"

[catalog]
dir = "/srv/miwok/catalogs"
default = "family"

[tui]
stop_on_blur = false
show_images = false
show_help = false
clipboard_command = "wl-copy -n"

[theme]
default = "#000000"

[theme.colors]
numbers = "#FD8E09"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.False(t, cfg.Audio.Enabled)
	assert.Equal(t, 35, cfg.Audio.Volume)
	assert.Equal(t, "/srv/miwok/audio", cfg.AssetDir())
	assert.Equal(t, 500*time.Millisecond, cfg.Audio.PollInterval.Duration())
	assert.False(t, cfg.Audio.Preload)
	assert.Equal(t, "dbus", cfg.Focus.Backend)
	assert.Equal(t, "notification", cfg.Focus.Stream)
	assert.Equal(t, "/srv/miwok/catalogs", cfg.CatalogDir())
	assert.Equal(t, "family", cfg.Catalog.Default)
	assert.False(t, cfg.TUI.StopOnBlur)
	assert.False(t, cfg.TUI.ShowImages)
	assert.False(t, cfg.TUI.ShowHelp)
	assert.Equal(t, "wl-copy -n", cfg.TUI.ClipboardCommand)
	assert.Equal(t, "#FD8E09", cfg.Theme.Colors["numbers"])
	assert.Equal(t, "#000000", cfg.Theme.Default)
}

func TestLoadConfig_PartialConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `
[audio]
volume = 10
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Audio.Volume)

	// Unchanged fields keep their defaults
	assert.True(t, cfg.Audio.Enabled)
	assert.Equal(t, "local", cfg.Focus.Backend)
	assert.True(t, cfg.TUI.StopOnBlur)
}

func TestLoadConfig_IntegerPollInterval(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	require.NoError(t, os.WriteFile(path, []byte("[audio]\npoll_interval = \"1500\"\n"), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, cfg.Audio.PollInterval.Duration())
}

func TestLoadConfig_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	require.NoError(t, os.WriteFile(path, []byte(`this is not valid toml [`), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"volume too high", func(c *Config) { c.Audio.Volume = 101 }, true},
		{"volume negative", func(c *Config) { c.Audio.Volume = -1 }, true},
		{"volume zero", func(c *Config) { c.Audio.Volume = 0 }, false},
		{"dbus backend", func(c *Config) { c.Focus.Backend = "dbus" }, false},
		{"unknown backend", func(c *Config) { c.Focus.Backend = "pulse" }, true},
		{"alarm stream", func(c *Config) { c.Focus.Stream = "alarm" }, false},
		{"unknown stream", func(c *Config) { c.Focus.Stream = "voice" }, true},
		{"negative poll", func(c *Config) { c.Audio.PollInterval = Duration(-time.Second) }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_SaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.toml")

	cfg := DefaultConfig()
	cfg.Audio.Volume = 42
	cfg.Theme.Colors["family"] = "#379237"
	require.NoError(t, cfg.Save(path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 42, loaded.Audio.Volume)
	assert.Equal(t, "#379237", loaded.Theme.Colors["family"])
	assert.Equal(t, cfg.Audio.PollInterval, loaded.Audio.PollInterval)
}

func TestConfig_ColorFor(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Theme.Colors["numbers"] = "#111111"

	assert.Equal(t, "#111111", cfg.ColorFor("numbers", "#FD8E09"))
	assert.Equal(t, "#379237", cfg.ColorFor("family", "#379237"))
	assert.Equal(t, DefaultCategoryColor, cfg.ColorFor("phrases", ""))
}

func TestConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	assert.Equal(t, "/custom/config/miwok/config.toml", ConfigPath())
}

func TestDataPath(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/custom/data")
	assert.Equal(t, "/custom/data/miwok", DataPath())
}

func TestDefaultDirs(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	t.Setenv("XDG_DATA_HOME", "/custom/data")
	cfg := DefaultConfig()

	assert.Equal(t, "/custom/data/miwok/audio", cfg.AssetDir())
	assert.Equal(t, "/custom/config/miwok/catalogs", cfg.CatalogDir())
}

func TestLogPath(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "/custom/state")
	assert.Equal(t, "/custom/state/miwok/miwok.log", LogPath())
}

func TestEnsureStateDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_STATE_HOME", dir)

	require.NoError(t, EnsureStateDir())

	info, err := os.Stat(filepath.Join(dir, "miwok"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "sounds"), ExpandPath("~/sounds"))
	assert.Equal(t, "/abs/path", ExpandPath("/abs/path"))
	assert.Equal(t, "relative", ExpandPath("relative"))
}
