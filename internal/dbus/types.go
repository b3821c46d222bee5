package dbus

import (
	"errors"
	"fmt"

	"github.com/jmylchreest/miwok/internal/focus"
)

const (
	// DBusInterface is the audio focus interface name.
	DBusInterface = "io.github.jmylchreest.Miwok.AudioFocus"
	// DBusPath is the audio focus object path.
	DBusPath = "/io/github/jmylchreest/Miwok/AudioFocus"
	// DBusBusName is the bus name claimed by miwokd.
	DBusBusName = "io.github.jmylchreest.Miwok"

	// SignalFocusChanged is the member name of the focus change signal.
	SignalFocusChanged = "FocusChanged"
)

// ErrInvalidArgument is returned for out of range wire values.
var ErrInvalidArgument = errors.New("invalid argument")

// Wire encodings. Streams travel as u, gains, changes and results as i.

func streamToWire(s focus.Stream) uint32 { return uint32(s) }

func streamFromWire(v uint32) (focus.Stream, error) {
	s := focus.Stream(v)
	switch s {
	case focus.StreamMusic, focus.StreamNotification, focus.StreamAlarm:
		return s, nil
	}
	return 0, fmt.Errorf("%w: stream %d", ErrInvalidArgument, v)
}

func gainToWire(g focus.Gain) int32 { return int32(g) }

func gainFromWire(v int32) (focus.Gain, error) {
	g := focus.Gain(v)
	switch g {
	case focus.GainTransient, focus.GainTransientMayDuck, focus.GainPermanent:
		return g, nil
	}
	return 0, fmt.Errorf("%w: gain %d", ErrInvalidArgument, v)
}

func changeToWire(c focus.Change) int32 { return int32(c) }

func changeFromWire(v int32) (focus.Change, error) {
	c := focus.Change(v)
	switch c {
	case focus.ChangeGain, focus.ChangeLoss, focus.ChangeLossTransient, focus.ChangeLossTransientCanDuck:
		return c, nil
	}
	return 0, fmt.Errorf("%w: change %d", ErrInvalidArgument, v)
}

func resultToWire(r focus.Result) int32 { return int32(r) }

func resultFromWire(v int32) focus.Result {
	if focus.Result(v) == focus.ResultGranted {
		return focus.ResultGranted
	}
	return focus.ResultDenied
}
