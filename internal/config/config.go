// Package config handles configuration file loading and parsing.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Default configuration values.
const (
	DefaultVolume        = 80
	DefaultPollInterval  = 2 * time.Second
	DefaultFocusBackend  = FocusBackendLocal
	DefaultFocusStream   = "music"
	DefaultCatalog       = "numbers"
	DefaultCategoryColor = "#4A4A4A"
)

// Focus backends.
const (
	FocusBackendLocal = "local"
	FocusBackendDBus  = "dbus"
)

const (
	appDirName     = "miwok"
	configFileName = "config.toml"
	catalogDirName = "catalogs"
	audioDirName   = "audio"
	logFileName    = "miwok.log"
)

// Duration is a time.Duration that can be unmarshaled from human-readable strings.
// Supports formats like "500ms", "2s", "1m", or integer milliseconds.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML parsing.
func (d *Duration) UnmarshalText(text []byte) error {
	s := string(text)

	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: must be like '500ms', '2s', '1m' or milliseconds: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}

// MarshalText implements encoding.TextMarshaler for TOML output.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Config represents the miwok configuration.
type Config struct {
	Audio   AudioConfig   `toml:"audio"`
	Focus   FocusConfig   `toml:"focus"`
	Catalog CatalogConfig `toml:"catalog"`
	TUI     TUIConfig     `toml:"tui"`
	Theme   ThemeConfig   `toml:"theme"`
}

// AudioConfig contains audio playback settings.
type AudioConfig struct {
	Enabled      bool     `toml:"enabled"`
	Volume       int      `toml:"volume"`        // 0-100
	AssetDir     string   `toml:"asset_dir"`     // Base directory for relative audio references
	PollInterval Duration `toml:"poll_interval"` // How often loaded files are checked for changes
	Preload      bool     `toml:"preload"`       // Decode a catalog's audio when its screen opens
}

// FocusConfig contains audio focus settings.
type FocusConfig struct {
	Backend string `toml:"backend"` // "local" or "dbus"
	Stream  string `toml:"stream"`  // "music", "notification" or "alarm"
}

// CatalogConfig contains word catalog settings.
type CatalogConfig struct {
	Dir     string `toml:"dir"`     // User catalogs, overriding bundled ones by name
	Default string `toml:"default"` // Catalog shown first
}

// TUIConfig holds TUI-specific settings.
type TUIConfig struct {
	StopOnBlur       bool   `toml:"stop_on_blur"` // Stop playback when the terminal loses focus
	ShowImages       bool   `toml:"show_images"`
	ShowHelp         bool   `toml:"show_help"`
	ClipboardCommand string `toml:"clipboard_command"` // Empty = auto-detect
}

// ThemeConfig holds per-category row colors.
type ThemeConfig struct {
	Default string            `toml:"default"`
	Colors  map[string]string `toml:"colors"` // catalog name -> color
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Audio: AudioConfig{
			Enabled:      true,
			Volume:       DefaultVolume,
			AssetDir:     "", // DataPath()/audio
			PollInterval: Duration(DefaultPollInterval),
			Preload:      true,
		},
		Focus: FocusConfig{
			Backend: DefaultFocusBackend,
			Stream:  DefaultFocusStream,
		},
		Catalog: CatalogConfig{
			Dir:     "", // ConfigDir()/catalogs
			Default: DefaultCatalog,
		},
		TUI: TUIConfig{
			StopOnBlur: true,
			ShowImages: true,
			ShowHelp:   true,
		},
		Theme: ThemeConfig{
			Default: DefaultCategoryColor,
			Colors:  make(map[string]string),
		},
	}
}

// ConfigDir returns the miwok config directory.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func ConfigDir() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, appDirName)
}

// ConfigPath returns the path to the config file.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, configFileName)
}

// DataPath returns the path to the data directory.
// Uses XDG_DATA_HOME if set, otherwise ~/.local/share.
func DataPath() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, appDirName)
}

// StatePath returns the path to the state directory used for logs.
// Uses XDG_STATE_HOME if set, otherwise ~/.local/state.
func StatePath() string {
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		stateHome = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateHome, appDirName)
}

// LogPath returns the path of the TUI log file.
func LogPath() string {
	return filepath.Join(StatePath(), logFileName)
}

// LoadConfig loads configuration from the specified path.
// If path is empty, uses the default config path.
// Returns default config if file doesn't exist.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the specified path.
// Creates parent directories if needed.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write atomically via temp file
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return os.Rename(tmpPath, path)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Audio.Volume < 0 || c.Audio.Volume > 100 {
		return fmt.Errorf("volume must be between 0 and 100, got %d", c.Audio.Volume)
	}
	if c.Audio.PollInterval.Duration() < 0 {
		return fmt.Errorf("poll_interval cannot be negative")
	}

	switch c.Focus.Backend {
	case FocusBackendLocal, FocusBackendDBus:
	default:
		return fmt.Errorf("invalid focus backend %q, must be %q or %q",
			c.Focus.Backend, FocusBackendLocal, FocusBackendDBus)
	}

	switch strings.ToLower(c.Focus.Stream) {
	case "music", "notification", "alarm":
	default:
		return fmt.Errorf("invalid focus stream %q", c.Focus.Stream)
	}

	return nil
}

// AssetDir returns the directory relative audio references resolve against.
func (c *Config) AssetDir() string {
	if c.Audio.AssetDir != "" {
		return ExpandPath(c.Audio.AssetDir)
	}
	return filepath.Join(DataPath(), audioDirName)
}

// CatalogDir returns the user catalog directory.
func (c *Config) CatalogDir() string {
	if c.Catalog.Dir != "" {
		return ExpandPath(c.Catalog.Dir)
	}
	return filepath.Join(ConfigDir(), catalogDirName)
}

// ColorFor returns the row color for a catalog, falling back to the
// catalog's own color and then the theme default.
func (c *Config) ColorFor(catalog, catalogColor string) string {
	if color, ok := c.Theme.Colors[catalog]; ok && color != "" {
		return color
	}
	if catalogColor != "" {
		return catalogColor
	}
	if c.Theme.Default != "" {
		return c.Theme.Default
	}
	return DefaultCategoryColor
}

// EnsureStateDir creates the state directory if it doesn't exist.
func EnsureStateDir() error {
	path := StatePath()
	if path == "" {
		return errors.New("unable to determine state directory")
	}
	return os.MkdirAll(path, 0755)
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
