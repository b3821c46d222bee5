// Package playback owns the audio-focus-gated playback lifecycle of a screen.
//
// A Controller plays at most one entry at a time. It asks the focus arbiter
// for transient focus before every playback and hands the focus back on every
// exit path: completion, permanent focus loss, a new selection or the screen
// going away.
//
// A Controller is not safe for concurrent use. All of its methods must be
// called from the host's event loop. Callbacks raised on other goroutines
// (track completion, focus changes) are passed through Options.Dispatch so the
// host can run them on that loop.
package playback

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmylchreest/miwok/internal/focus"
	"github.com/jmylchreest/miwok/internal/model"
)

// ErrLoad is returned by Select when the entry's audio could not be loaded.
var ErrLoad = errors.New("failed to load audio")

// Track is a loaded, playable audio asset.
type Track interface {
	Start()
	Pause()
	SeekToStart()
	// Release stops playback and frees the track. Further calls are no-ops.
	Release()
	// OnComplete registers fn to run when playback reaches the end.
	OnComplete(fn func())
}

// AudioPlayer loads audio assets.
type AudioPlayer interface {
	Load(ref model.AudioRef) (Track, error)
}

// State is the playback state of a controller.
type State int

const (
	StateIdle State = iota
	StatePlaying
	StatePaused
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// Options configures a Controller.
type Options struct {
	// Name identifies the owning screen in log lines.
	Name string

	Arbiter focus.Arbiter
	Player  AudioPlayer

	// Stream and Gain are used for every focus request.
	Stream focus.Stream
	Gain   focus.Gain

	// Dispatch runs fn on the host's event loop. Nil runs fn inline.
	Dispatch func(fn func())

	// OnStateChange is called after every state transition.
	OnStateChange func(state State, entry model.Entry)

	// OnComplete is called when a session's audio plays to the end, before
	// the session is released.
	OnComplete func(entry model.Entry)

	Logger *slog.Logger
}

// Controller manages the playback session of one screen.
type Controller struct {
	name    string
	arbiter focus.Arbiter
	player  AudioPlayer
	stream  focus.Stream
	gain    focus.Gain

	dispatch      func(fn func())
	onStateChange func(state State, entry model.Entry)
	onComplete    func(entry model.Entry)
	logger        *slog.Logger

	session *session
}

// session is one playback of one entry. It is also the focus listener for
// that playback, so notifications for a released session can be told apart
// from those for the current one.
type session struct {
	ctrl  *Controller
	entry model.Entry
	track Track
	state State
}

// OnFocusChange implements focus.Listener.
func (s *session) OnFocusChange(change focus.Change) {
	s.ctrl.dispatch(func() {
		s.ctrl.handleFocusChange(s, change)
	})
}

// NewController creates an idle controller.
func NewController(opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	dispatch := opts.Dispatch
	if dispatch == nil {
		dispatch = func(fn func()) { fn() }
	}

	return &Controller{
		name:          opts.Name,
		arbiter:       opts.Arbiter,
		player:        opts.Player,
		stream:        opts.Stream,
		gain:          opts.Gain,
		dispatch:      dispatch,
		onStateChange: opts.OnStateChange,
		onComplete:    opts.OnComplete,
		logger:        logger,
	}
}

// State returns the current playback state.
func (c *Controller) State() State {
	if c.session == nil {
		return StateIdle
	}
	return c.session.state
}

// Current returns the entry being played, if any.
func (c *Controller) Current() (model.Entry, bool) {
	if c.session == nil {
		return model.Entry{}, false
	}
	return c.session.entry, true
}

// Select plays entry, replacing any playback in progress.
//
// The previous session is released first. If the arbiter denies focus,
// nothing is played and Select returns nil. If the audio cannot be loaded
// the focus is handed back and an error wrapping ErrLoad is returned.
func (c *Controller) Select(entry model.Entry) error {
	c.Release()

	c.logger.Debug("entry selected", "screen", c.name, "entry", entry)

	s := &session{ctrl: c, entry: entry}
	if c.arbiter.Request(s, c.stream, c.gain) != focus.ResultGranted {
		c.logger.Debug("audio focus denied, not playing", "screen", c.name, "audio", entry.Audio)
		return nil
	}

	track, err := c.player.Load(entry.Audio)
	if err != nil {
		c.arbiter.Abandon(s)
		return fmt.Errorf("%w %s: %w", ErrLoad, entry.Audio, err)
	}

	s.track = track
	s.state = StatePlaying
	c.session = s

	track.OnComplete(func() {
		c.dispatch(func() {
			c.handleComplete(s)
		})
	})
	track.Start()

	c.logger.Debug("playback started", "screen", c.name, "audio", entry.Audio)
	c.notify(StatePlaying, entry)
	return nil
}

// OnFocusChange applies a focus change to the current session.
func (c *Controller) OnFocusChange(change focus.Change) {
	if c.session == nil {
		return
	}
	c.handleFocusChange(c.session, change)
}

// OnPlaybackComplete releases the current session.
func (c *Controller) OnPlaybackComplete() {
	if c.session == nil {
		return
	}
	c.handleComplete(c.session)
}

// OnScreenStopped releases the current session. Playback never outlives a
// screen that is no longer visible.
func (c *Controller) OnScreenStopped() {
	c.logger.Debug("screen stopped", "screen", c.name)
	c.Release()
}

// Release stops and frees the current playback and abandons its focus
// registration. It is a no-op when idle.
func (c *Controller) Release() {
	s := c.session
	if s == nil {
		return
	}

	// Clear first so callbacks raised while tearing down see an idle controller.
	c.session = nil
	s.state = StateIdle

	s.track.Release()
	c.arbiter.Abandon(s)

	c.logger.Debug("playback released", "screen", c.name, "audio", s.entry.Audio)
	c.notify(StateIdle, s.entry)
}

func (c *Controller) handleFocusChange(s *session, change focus.Change) {
	if c.session != s {
		c.logger.Debug("ignoring focus change for released session", "screen", c.name, "change", change)
		return
	}

	switch {
	case change.IsTransientLoss():
		if s.state != StatePlaying {
			return
		}
		// Pausing rewinds too; a regained focus always replays the whole word.
		s.track.Pause()
		s.track.SeekToStart()
		s.state = StatePaused
		c.notify(StatePaused, s.entry)

	case change == focus.ChangeGain:
		if s.state != StatePaused {
			return
		}
		s.track.Start()
		s.state = StatePlaying
		c.notify(StatePlaying, s.entry)

	case change == focus.ChangeLoss:
		c.Release()
	}
}

func (c *Controller) handleComplete(s *session) {
	if c.session != s {
		c.logger.Debug("ignoring completion of released session", "screen", c.name)
		return
	}
	c.logger.Debug("playback complete", "screen", c.name, "audio", s.entry.Audio)
	if c.onComplete != nil {
		c.onComplete(s.entry)
	}
	c.Release()
}

func (c *Controller) notify(state State, entry model.Entry) {
	if c.onStateChange != nil {
		c.onStateChange(state, entry)
	}
}
