package playback

import (
	"errors"

	"github.com/jmylchreest/miwok/internal/focus"
	"github.com/jmylchreest/miwok/internal/model"
)

// eventLog is shared by the fakes so tests can check call ordering.
type eventLog struct {
	events []string
}

func (l *eventLog) add(e string) {
	l.events = append(l.events, e)
}

type fakeTrack struct {
	ref    model.AudioRef
	player *fakePlayer

	starts   int
	pauses   int
	seeks    int
	releases int

	playing    bool
	position   int
	onComplete func()
}

func (t *fakeTrack) Start() {
	t.starts++
	t.playing = true
	t.player.log.add("start:" + string(t.ref))
}

func (t *fakeTrack) Pause() {
	t.pauses++
	t.playing = false
	t.player.log.add("pause:" + string(t.ref))
}

func (t *fakeTrack) SeekToStart() {
	t.seeks++
	t.position = 0
}

func (t *fakeTrack) Release() {
	t.releases++
	if t.releases == 1 {
		t.player.live--
	}
	t.playing = false
	t.player.log.add("release:" + string(t.ref))
}

func (t *fakeTrack) OnComplete(fn func()) {
	t.onComplete = fn
}

// advance simulates playback progress.
func (t *fakeTrack) advance(n int) {
	if t.playing {
		t.position += n
	}
}

// finish simulates the stream draining.
func (t *fakeTrack) finish() {
	if t.onComplete != nil {
		t.onComplete()
	}
}

type fakePlayer struct {
	log     *eventLog
	tracks  []*fakeTrack
	live    int
	maxLive int
	err     error
}

func newFakePlayer(log *eventLog) *fakePlayer {
	return &fakePlayer{log: log}
}

func (p *fakePlayer) Load(ref model.AudioRef) (Track, error) {
	if p.err != nil {
		return nil, p.err
	}
	t := &fakeTrack{ref: ref, player: p}
	p.tracks = append(p.tracks, t)
	p.live++
	if p.live > p.maxLive {
		p.maxLive = p.live
	}
	p.log.add("load:" + string(ref))
	return t, nil
}

func (p *fakePlayer) last() *fakeTrack {
	if len(p.tracks) == 0 {
		return nil
	}
	return p.tracks[len(p.tracks)-1]
}

type fakeArbiter struct {
	log      *eventLog
	deny     bool
	held     map[focus.Listener]bool
	last     focus.Listener
	requests int
	abandons int
}

func newFakeArbiter(log *eventLog) *fakeArbiter {
	return &fakeArbiter{log: log, held: make(map[focus.Listener]bool)}
}

func (a *fakeArbiter) Request(l focus.Listener, stream focus.Stream, gain focus.Gain) focus.Result {
	a.requests++
	a.log.add("request")
	if a.deny {
		return focus.ResultDenied
	}
	a.held[l] = true
	a.last = l
	return focus.ResultGranted
}

func (a *fakeArbiter) Abandon(l focus.Listener) {
	a.abandons++
	a.log.add("abandon")
	delete(a.held, l)
}

// send delivers a change to the most recently granted listener.
func (a *fakeArbiter) send(c focus.Change) {
	if a.last != nil {
		a.last.OnFocusChange(c)
	}
}

var errMissing = errors.New("no such file")
