package audio

import (
	"github.com/gopxl/beep/v2"
)

// Track plays one loaded asset. It satisfies playback.Track.
//
// All mutable state is guarded by the output lock, which is also held while
// the output pulls samples and runs the completion callback.
type Track struct {
	player *Player
	path   string
	buffer *beep.Buffer

	seeker     beep.StreamSeeker
	ctrl       *beep.Ctrl
	queued     bool
	released   bool
	onComplete func()
}

func newTrack(p *Player, path string, buffer *beep.Buffer) *Track {
	return &Track{
		player: p,
		path:   path,
		buffer: buffer,
		seeker: buffer.Streamer(0, buffer.Len()),
	}
}

// Path returns the file the track was loaded from.
func (t *Track) Path() string {
	return t.path
}

// Start starts or resumes playback. A track that already played to the end
// starts again from the beginning.
func (t *Track) Start() {
	volume, sampleRate := t.player.outputParams()

	out := t.player.out
	out.Lock()
	if t.released {
		out.Unlock()
		return
	}
	if t.queued {
		t.ctrl.Paused = false
		out.Unlock()
		return
	}

	if t.seeker.Position() >= t.buffer.Len() {
		_ = t.seeker.Seek(0)
	}
	t.ctrl = &beep.Ctrl{Streamer: chain(t.buffer.Format(), t.seeker, volume, sampleRate)}
	t.queued = true
	s := beep.Seq(t.ctrl, beep.Callback(t.drained))
	out.Unlock()

	// Play takes the output lock itself.
	out.Play(s)
}

// drained runs on the output goroutine with the output lock held.
func (t *Track) drained() {
	t.queued = false
	if t.released || t.onComplete == nil {
		return
	}
	// The callback may call back into the track, which takes the output lock.
	go t.onComplete()
}

// Pause pauses playback, keeping the position.
func (t *Track) Pause() {
	out := t.player.out
	out.Lock()
	defer out.Unlock()

	if t.queued && !t.released {
		t.ctrl.Paused = true
	}
}

// SeekToStart rewinds to the beginning.
func (t *Track) SeekToStart() {
	out := t.player.out
	out.Lock()
	defer out.Unlock()

	if !t.released {
		_ = t.seeker.Seek(0)
	}
}

// Position returns the current sample position.
func (t *Track) Position() int {
	out := t.player.out
	out.Lock()
	defer out.Unlock()
	return t.seeker.Position()
}

// Playing reports whether the track is queued on the output and not paused.
func (t *Track) Playing() bool {
	out := t.player.out
	out.Lock()
	defer out.Unlock()
	return t.queued && !t.ctrl.Paused && !t.released
}

// Release stops playback and detaches the track from the output. The
// completion callback never runs after Release.
func (t *Track) Release() {
	out := t.player.out
	out.Lock()
	defer out.Unlock()

	if t.released {
		return
	}
	t.released = true
	if t.ctrl != nil {
		t.ctrl.Streamer = nil
		t.ctrl.Paused = false
	}
}

// OnComplete registers fn to run, on its own goroutine, when playback
// reaches the end.
func (t *Track) OnComplete(fn func()) {
	out := t.player.out
	out.Lock()
	defer out.Unlock()
	t.onComplete = fn
}
