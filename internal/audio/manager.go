package audio

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/jmylchreest/miwok/internal/config"
	"github.com/jmylchreest/miwok/internal/model"
	"github.com/jmylchreest/miwok/internal/playback"
)

// Manager resolves asset references and loads them through a Player.
// It implements playback.AudioPlayer.
type Manager struct {
	mu       sync.RWMutex
	logger   *slog.Logger
	player   *Player
	watcher  *Watcher
	enabled  bool
	assetDir string
	preload  bool
}

var _ playback.AudioPlayer = (*Manager)(nil)

// NewManager creates a manager from the audio configuration.
func NewManager(cfg *config.Config, logger *slog.Logger) *Manager {
	return newManager(cfg, NewPlayer(logger), logger)
}

func newManager(cfg *config.Config, player *Player, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	m := &Manager{
		logger:  logger,
		player:  player,
		watcher: NewWatcher(player, cfg.Audio.PollInterval.Duration(), logger),
	}
	m.applyConfig(cfg)
	return m
}

func (m *Manager) applyConfig(cfg *config.Config) {
	m.mu.Lock()
	m.enabled = cfg.Audio.Enabled
	m.assetDir = cfg.AssetDir()
	m.preload = cfg.Audio.Preload
	m.mu.Unlock()

	m.player.SetVolume(float64(cfg.Audio.Volume) / 100.0)
}

// Enabled reports whether audio output is enabled.
func (m *Manager) Enabled() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.enabled
}

// Resolve maps an asset reference to a file path. Absolute references and
// references starting with ~ are used as they are; anything else is relative
// to the asset directory.
func (m *Manager) Resolve(ref model.AudioRef) string {
	path := config.ExpandPath(string(ref))
	if filepath.IsAbs(path) {
		return path
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return filepath.Join(m.assetDir, path)
}

// Load implements playback.AudioPlayer. With audio disabled it returns a
// silent track that completes as soon as it starts.
func (m *Manager) Load(ref model.AudioRef) (playback.Track, error) {
	if !m.Enabled() {
		m.logger.Debug("audio disabled, using silent track", "ref", ref)
		return newSilentTrack(), nil
	}

	path := m.Resolve(ref)
	track, err := m.player.Load(path)
	if err != nil {
		return nil, err
	}
	m.watcher.Watch(path)
	return track, nil
}

// Check reports the size of the file behind ref.
func (m *Manager) Check(ref model.AudioRef) (path string, size int64, err error) {
	path = m.Resolve(ref)
	info, err := os.Stat(path)
	if err != nil {
		return path, 0, err
	}
	if info.IsDir() {
		return path, 0, fmt.Errorf("%s is a directory", path)
	}
	return path, info.Size(), nil
}

// Decode decodes the file behind ref, reporting unreadable or unsupported
// files. The audio output is not opened.
func (m *Manager) Decode(ref model.AudioRef) error {
	return m.player.Verify(m.Resolve(ref))
}

// Start preloads refs when preloading is enabled and starts the file
// watcher. Preload failures are logged, not returned.
func (m *Manager) Start(ctx context.Context, refs []model.AudioRef) error {
	m.mu.RLock()
	preload := m.preload && m.enabled
	m.mu.RUnlock()

	loaded := 0
	if preload {
		for _, ref := range refs {
			path := m.Resolve(ref)
			if err := m.player.Preload(path); err != nil {
				m.logger.Warn("failed to preload sound", "path", path, "error", err)
				continue
			}
			m.watcher.Watch(path)
			loaded++
		}
	}

	if err := m.watcher.Start(ctx); err != nil {
		return err
	}

	m.logger.Info("audio manager started", "preloaded", loaded, "enabled", m.Enabled())
	return nil
}

// Stop shuts down the watcher and the player.
func (m *Manager) Stop() {
	m.watcher.Stop()
	m.player.Close()
	m.logger.Debug("audio manager stopped")
}

// SetVolume sets the volume (0 to 100) for tracks started afterwards.
func (m *Manager) SetVolume(volume int) {
	m.player.SetVolume(float64(volume) / 100.0)
}

// Volume returns the volume (0 to 100).
func (m *Manager) Volume() int {
	return int(m.player.Volume()*100 + 0.5)
}

// UpdateConfig applies a reloaded configuration. Cached buffers are dropped
// so a changed asset directory takes effect.
func (m *Manager) UpdateConfig(cfg *config.Config) {
	m.applyConfig(cfg)
	m.player.ClearCache()
	m.logger.Debug("audio manager config updated")
}
