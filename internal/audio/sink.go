package audio

import (
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
)

// sink is the audio output. Tracks mutate their streamers only while
// holding the sink lock, the same lock the output holds while pulling
// samples.
type sink interface {
	Init(sampleRate beep.SampleRate, bufferSize int) error
	Lock()
	Unlock()
	Play(s beep.Streamer)
	Close()
}

// speakerSink plays through the system speaker.
type speakerSink struct{}

func (speakerSink) Init(sampleRate beep.SampleRate, bufferSize int) error {
	return speaker.Init(sampleRate, bufferSize)
}

func (speakerSink) Lock()                { speaker.Lock() }
func (speakerSink) Unlock()              { speaker.Unlock() }
func (speakerSink) Play(s beep.Streamer) { speaker.Play(s) }
func (speakerSink) Close()               { speaker.Close() }
