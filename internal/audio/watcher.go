package audio

import (
	"context"
	"log/slog"
	"maps"
	"os"
	"sync"
	"time"
)

// fileStamp identifies one version of a file.
type fileStamp struct {
	modTime time.Time
	size    int64
}

func (s fileStamp) equal(o fileStamp) bool {
	return s.size == o.size && s.modTime.Equal(o.modTime)
}

// Watcher polls loaded asset files and invalidates the player cache when one
// changes on disk. The next Load of that asset decodes it again.
type Watcher struct {
	mu     sync.RWMutex
	logger *slog.Logger
	player *Player

	watched      map[string]fileStamp
	pollInterval time.Duration
	onChange     func(path string)

	stopCh chan struct{}
	doneCh chan struct{}

	running bool
}

// NewWatcher creates a watcher polling every interval. A non-positive
// interval uses two seconds.
func NewWatcher(player *Player, interval time.Duration, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = 2 * time.Second
	}

	return &Watcher{
		logger:       logger,
		player:       player,
		watched:      make(map[string]fileStamp),
		pollInterval: interval,
	}
}

// SetChangeCallback registers fn to run after a changed file is invalidated.
func (w *Watcher) SetChangeCallback(fn func(path string)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = fn
}

// Watch adds a path to the watch list. Watching a path twice keeps the
// first stamp.
func (w *Watcher) Watch(path string) {
	if path == "" {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.watched[path]; ok {
		return
	}
	w.watched[path] = stat(path)
}

// Unwatch removes a path from the watch list.
func (w *Watcher) Unwatch(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.watched, path)
}

// Start begins polling until Stop is called or ctx is done.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.mu.Unlock()

	go w.watchLoop(ctx)

	w.logger.Debug("audio watcher started", "interval", w.pollInterval)
	return nil
}

// Stop stops polling and waits for the loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	close(w.stopCh)
	w.mu.Unlock()

	<-w.doneCh
	w.logger.Debug("audio watcher stopped")
}

func (w *Watcher) watchLoop(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.mu.Lock()
			w.running = false
			w.mu.Unlock()
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.checkForChanges()
		}
	}
}

// checkForChanges invalidates every watched file whose stamp moved.
func (w *Watcher) checkForChanges() {
	w.mu.RLock()
	paths := maps.Clone(w.watched)
	onChange := w.onChange
	w.mu.RUnlock()

	for path, last := range paths {
		now := stat(path)
		if now.equal(last) {
			continue
		}

		w.logger.Debug("audio file changed, invalidating cache", "path", path)

		w.mu.Lock()
		if _, ok := w.watched[path]; ok {
			w.watched[path] = now
		}
		w.mu.Unlock()

		if w.player != nil {
			w.player.InvalidateCache(path)
		}
		if onChange != nil {
			onChange(path)
		}
	}
}

// IsRunning returns whether the watcher is currently running.
func (w *Watcher) IsRunning() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

// stat returns the zero stamp for missing files, so a file appearing later
// counts as a change.
func stat(path string) fileStamp {
	info, err := os.Stat(path)
	if err != nil {
		return fileStamp{}
	}
	return fileStamp{modTime: info.ModTime(), size: info.Size()}
}
