package tui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jmylchreest/miwok/internal/catalog"
	"github.com/jmylchreest/miwok/internal/config"
)

// dispatchMsg carries a controller callback onto the update loop.
type dispatchMsg struct {
	fn func()
}

// eventLoop hands callbacks raised on other goroutines to the program in
// the order they were raised. Before a program is attached callbacks run
// inline.
type eventLoop struct {
	mu      sync.Mutex
	program *tea.Program
	pending []func()
	wake    chan struct{}
	done    chan struct{}
}

func newEventLoop() *eventLoop {
	return &eventLoop{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

func (l *eventLoop) attach(p *tea.Program) {
	l.mu.Lock()
	l.program = p
	l.mu.Unlock()
	go l.run(p)
}

// dispatch never blocks: it may be called from inside Update.
func (l *eventLoop) dispatch(fn func()) {
	l.mu.Lock()
	if l.program == nil {
		l.mu.Unlock()
		fn()
		return
	}
	l.pending = append(l.pending, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (l *eventLoop) run(p *tea.Program) {
	for {
		select {
		case <-l.done:
			return
		case <-l.wake:
		}

		l.mu.Lock()
		batch := l.pending
		l.pending = nil
		l.mu.Unlock()

		for _, fn := range batch {
			p.Send(dispatchMsg{fn: fn})
		}
	}
}

func (l *eventLoop) stop() {
	close(l.done)
}

// Run starts the TUI and blocks until it exits. All playback is released
// before Run returns.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithReportFocus())
	m.loop.attach(p)
	defer m.loop.stop()

	var watcher *catalog.Watcher
	if dir := m.library.Dir(); dir != "" {
		w, err := catalog.NewWatcher(m.library, func(name string) {
			p.Send(catalogChangedMsg{name: name})
		}, m.logger)
		if err != nil {
			m.logger.Warn("failed to create catalog watcher", "error", err)
		} else if err := w.Start(); err != nil {
			m.logger.Warn("failed to start catalog watcher", "dir", dir, "error", err)
		} else {
			watcher = w
		}
	}

	var cfgWatcher *config.Watcher
	if opts.ConfigPath != "" {
		cfgWatcher = config.NewWatcher(opts.ConfigPath, m.logger)
		cfgWatcher.SetReloadCallback(func(cfg *config.Config) {
			p.Send(configReloadedMsg{cfg: cfg})
		})
		cfgWatcher.SetErrorCallback(func(err error) {
			p.Send(configErrorMsg{err: err})
		})
		if err := cfgWatcher.Start(context.Background(), m.cfg); err != nil {
			m.logger.Warn("failed to start config watcher", "path", opts.ConfigPath, "error", err)
			cfgWatcher = nil
		}
	}

	final, err := p.Run()
	if fm, ok := final.(Model); ok {
		fm.stopAll()
	}

	if cfgWatcher != nil {
		cfgWatcher.Stop()
	}
	if watcher != nil {
		_ = watcher.Stop()
	}
	return err
}
