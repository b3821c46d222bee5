package audio

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/wav"
	"github.com/stretchr/testify/require"
)

// fakeSink mixes into memory. Tests pull samples with pull.
type fakeSink struct {
	mu      sync.Mutex
	mixer   beep.Mixer
	inits   int
	rate    beep.SampleRate
	initErr error
	closed  bool
}

func (s *fakeSink) Init(sampleRate beep.SampleRate, bufferSize int) error {
	s.inits++
	s.rate = sampleRate
	return s.initErr
}

func (s *fakeSink) Lock()   { s.mu.Lock() }
func (s *fakeSink) Unlock() { s.mu.Unlock() }

func (s *fakeSink) Play(st beep.Streamer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mixer.Add(st)
}

func (s *fakeSink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.mixer.Clear()
}

// pull streams n samples through the mixer, like one speaker tick.
func (s *fakeSink) pull(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	buf := make([][2]float64, n)
	s.mixer.Stream(buf)
}

// drain pulls until the mixer is empty or the limit is hit.
func (s *fakeSink) drain(t *testing.T) {
	t.Helper()
	for range 1000 {
		if s.queued() == 0 {
			return
		}
		s.pull(512)
	}
	t.Fatal("mixer did not drain")
}

func (s *fakeSink) queued() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mixer.Len()
}

const testRate = beep.SampleRate(8000)

// writeWAV writes a mono WAV of n samples of silence.
func writeWAV(t *testing.T, dir, name string, n int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	format := beep.Format{SampleRate: testRate, NumChannels: 1, Precision: 2}
	require.NoError(t, wav.Encode(f, beep.Silence(n), format))
	return path
}
