package audio

import "sync"

// silentTrack stands in for a real track when audio is disabled. Starting it
// completes immediately, so the playback lifecycle runs unchanged.
type silentTrack struct {
	mu         sync.Mutex
	released   bool
	onComplete func()
}

func newSilentTrack() *silentTrack {
	return &silentTrack{}
}

func (s *silentTrack) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released || s.onComplete == nil {
		return
	}
	go s.complete()
}

func (s *silentTrack) complete() {
	s.mu.Lock()
	fn := s.onComplete
	released := s.released
	s.mu.Unlock()
	if !released && fn != nil {
		fn()
	}
}

func (s *silentTrack) Pause()       {}
func (s *silentTrack) SeekToStart() {}

func (s *silentTrack) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.released = true
}

func (s *silentTrack) OnComplete(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onComplete = fn
}
