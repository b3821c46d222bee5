// Package focus arbitrates exclusive audio focus between players.
//
// A player requests focus before it starts producing sound and abandons it
// when it stops. While it holds focus it is told about other players taking
// focus away, either for a short while (transient loss) or for good.
package focus

import (
	"fmt"
	"strings"
)

// Stream identifies the kind of audio a requester plays.
type Stream int

const (
	StreamMusic Stream = iota
	StreamNotification
	StreamAlarm
)

// String returns the stream name.
func (s Stream) String() string {
	switch s {
	case StreamMusic:
		return "music"
	case StreamNotification:
		return "notification"
	case StreamAlarm:
		return "alarm"
	default:
		return "unknown"
	}
}

// ParseStream converts a stream name into a Stream.
func ParseStream(s string) (Stream, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "music":
		return StreamMusic, nil
	case "notification":
		return StreamNotification, nil
	case "alarm":
		return StreamAlarm, nil
	default:
		return StreamMusic, fmt.Errorf("unknown audio stream %q", s)
	}
}

// Gain is the kind of focus being requested.
type Gain int

const (
	// GainTransient asks for focus for a short clip.
	GainTransient Gain = iota
	// GainTransientMayDuck asks for a short clip; others may keep playing quietly.
	GainTransientMayDuck
	// GainPermanent asks for focus for an unknown duration.
	GainPermanent
)

// String returns the gain name.
func (g Gain) String() string {
	switch g {
	case GainPermanent:
		return "gain"
	case GainTransient:
		return "gain-transient"
	case GainTransientMayDuck:
		return "gain-transient-may-duck"
	default:
		return "unknown"
	}
}

// Change is a focus change delivered to a listener.
type Change int

const (
	ChangeGain Change = iota
	ChangeLoss
	ChangeLossTransient
	ChangeLossTransientCanDuck
)

// String returns the change name.
func (c Change) String() string {
	switch c {
	case ChangeGain:
		return "gain"
	case ChangeLoss:
		return "loss"
	case ChangeLossTransient:
		return "loss-transient"
	case ChangeLossTransientCanDuck:
		return "loss-transient-can-duck"
	default:
		return "unknown"
	}
}

// IsTransientLoss reports whether the change is a temporary loss.
func (c Change) IsTransientLoss() bool {
	return c == ChangeLossTransient || c == ChangeLossTransientCanDuck
}

// lossFor returns the change the current holder sees when another
// requester asks for gain g.
func lossFor(g Gain) Change {
	switch g {
	case GainTransient:
		return ChangeLossTransient
	case GainTransientMayDuck:
		return ChangeLossTransientCanDuck
	default:
		return ChangeLoss
	}
}

// Result is the outcome of a focus request.
type Result int

const (
	ResultDenied Result = iota
	ResultGranted
)

// String returns the result name.
func (r Result) String() string {
	if r == ResultGranted {
		return "granted"
	}
	return "denied"
}

// Listener receives focus changes.
// Listeners are compared by identity, so implementations should be pointers.
type Listener interface {
	OnFocusChange(change Change)
}

// Arbiter grants and revokes audio focus.
type Arbiter interface {
	// Request asks for focus on behalf of l.
	Request(l Listener, stream Stream, gain Gain) Result
	// Abandon drops any focus registration held by l. It is a no-op if l
	// holds nothing.
	Abandon(l Listener)
}
