package audio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadTrack(t *testing.T, samples int) (*Track, *fakeSink) {
	t.Helper()
	path := writeWAV(t, t.TempDir(), "word.wav", samples)
	out := &fakeSink{}
	p := newPlayer(out, nil)
	track, err := p.Load(path)
	require.NoError(t, err)
	return track, out
}

func TestTrack_PlaysToCompletion(t *testing.T) {
	track, out := loadTrack(t, 2000)

	done := make(chan struct{})
	track.OnComplete(func() { close(done) })
	track.Start()
	assert.True(t, track.Playing())

	out.drain(t)
	waitFor(t, done)
	assert.False(t, track.Playing())
	assert.Equal(t, 2000, track.Position())
}

func TestTrack_PauseHoldsPosition(t *testing.T) {
	track, out := loadTrack(t, 4000)

	track.Start()
	out.pull(1000)
	track.Pause()
	assert.False(t, track.Playing())

	pos := track.Position()
	out.pull(1000)
	out.pull(1000)
	assert.Equal(t, pos, track.Position())
	assert.Equal(t, 1, out.queued(), "paused track stays queued")

	track.Start()
	out.pull(1000)
	assert.Greater(t, track.Position(), pos)
}

func TestTrack_SeekToStart(t *testing.T) {
	track, out := loadTrack(t, 4000)

	track.Start()
	out.pull(1000)
	track.Pause()
	track.SeekToStart()
	assert.Equal(t, 0, track.Position())
}

func TestTrack_RestartAfterCompletion(t *testing.T) {
	track, out := loadTrack(t, 1000)

	completions := make(chan struct{}, 2)
	track.OnComplete(func() { completions <- struct{}{} })

	track.Start()
	out.drain(t)
	waitFor(t, completions)

	track.Start()
	assert.True(t, track.Playing())
	out.drain(t)
	waitFor(t, completions)
}

func TestTrack_ReleaseSuppressesCompletion(t *testing.T) {
	track, out := loadTrack(t, 4000)

	completed := make(chan struct{}, 1)
	track.OnComplete(func() { completed <- struct{}{} })

	track.Start()
	out.pull(500)
	track.Release()
	out.drain(t)

	select {
	case <-completed:
		t.Fatal("completion after release")
	case <-time.After(50 * time.Millisecond):
	}

	// Further calls are no-ops.
	track.Release()
	track.Start()
	assert.Equal(t, 0, out.queued())
	assert.False(t, track.Playing())
}

func TestTrack_CompletionMayCallBack(t *testing.T) {
	track, out := loadTrack(t, 500)

	done := make(chan struct{})
	track.OnComplete(func() {
		track.Release()
		close(done)
	})

	track.Start()
	out.drain(t)
	waitFor(t, done)
}
