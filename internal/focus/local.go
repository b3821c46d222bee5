package focus

import (
	"log/slog"
	"sync"
)

// holder is one entry of the focus stack.
type holder struct {
	listener Listener
	stream   Stream
	gain     Gain
}

// notification is a focus change waiting to be delivered.
type notification struct {
	listener Listener
	change   Change
}

// Local is an in-process focus arbiter.
//
// Requesters form a stack; the top of the stack holds focus. Listeners are
// notified after the internal lock is released, so a listener may call back
// into the arbiter.
type Local struct {
	mu     sync.Mutex
	logger *slog.Logger

	stack []holder

	locked     bool
	lockReason string
}

// NewLocal creates an empty arbiter.
func NewLocal(logger *slog.Logger) *Local {
	if logger == nil {
		logger = slog.Default()
	}
	return &Local{logger: logger}
}

// Request grants focus to l unless the arbiter is locked.
// The previous holder loses focus transiently for transient gains. A
// GainPermanent request takes focus from every registered requester for good
// and drops them from the stack.
func (a *Local) Request(l Listener, stream Stream, gain Gain) Result {
	a.mu.Lock()

	if a.locked {
		reason := a.lockReason
		a.mu.Unlock()
		a.logger.Debug("focus request denied", "stream", stream, "gain", gain, "reason", reason)
		return ResultDenied
	}

	var pending []notification

	idx := a.indexOf(l)
	switch {
	case idx >= 0 && idx == len(a.stack)-1:
		// Already on top, refresh the request.
		a.stack[idx] = holder{listener: l, stream: stream, gain: gain}
	default:
		if idx >= 0 {
			a.stack = append(a.stack[:idx], a.stack[idx+1:]...)
		}
		if n := len(a.stack); n > 0 {
			change := lossFor(gain)
			if change == ChangeLoss {
				// Permanent losers never regain focus.
				for i := n - 1; i >= 0; i-- {
					pending = append(pending, notification{listener: a.stack[i].listener, change: ChangeLoss})
				}
				a.stack = a.stack[:0]
			} else {
				pending = append(pending, notification{listener: a.stack[n-1].listener, change: change})
			}
		}
		a.stack = append(a.stack, holder{listener: l, stream: stream, gain: gain})
	}

	depth := len(a.stack)
	a.mu.Unlock()

	a.logger.Debug("focus granted", "stream", stream, "gain", gain, "depth", depth)
	a.deliver(pending)
	return ResultGranted
}

// Abandon removes l from the stack. If l held focus, the next holder regains it.
func (a *Local) Abandon(l Listener) {
	a.mu.Lock()

	idx := a.indexOf(l)
	if idx < 0 {
		a.mu.Unlock()
		return
	}

	wasTop := idx == len(a.stack)-1
	a.stack = append(a.stack[:idx], a.stack[idx+1:]...)

	var pending []notification
	if wasTop && len(a.stack) > 0 && !a.locked {
		pending = append(pending, notification{listener: a.stack[len(a.stack)-1].listener, change: ChangeGain})
	}
	depth := len(a.stack)
	a.mu.Unlock()

	a.logger.Debug("focus abandoned", "depth", depth)
	a.deliver(pending)
}

// Lock denies every request until Unlock is called. The current holder loses
// focus transiently and regains it on Unlock.
func (a *Local) Lock(reason string) {
	a.mu.Lock()
	if a.locked {
		a.lockReason = reason
		a.mu.Unlock()
		return
	}
	a.locked = true
	a.lockReason = reason

	var pending []notification
	if n := len(a.stack); n > 0 {
		pending = append(pending, notification{listener: a.stack[n-1].listener, change: ChangeLossTransient})
	}
	a.mu.Unlock()

	a.logger.Info("audio focus locked", "reason", reason)
	a.deliver(pending)
}

// Unlock accepts requests again.
func (a *Local) Unlock() {
	a.mu.Lock()
	if !a.locked {
		a.mu.Unlock()
		return
	}
	a.locked = false
	a.lockReason = ""

	var pending []notification
	if n := len(a.stack); n > 0 {
		pending = append(pending, notification{listener: a.stack[n-1].listener, change: ChangeGain})
	}
	a.mu.Unlock()

	a.logger.Info("audio focus unlocked")
	a.deliver(pending)
}

// Locked reports whether requests are currently denied.
func (a *Local) Locked() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.locked
}

// Holds reports whether l is registered with the arbiter.
func (a *Local) Holds(l Listener) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.indexOf(l) >= 0
}

// Depth returns the number of registered requesters.
func (a *Local) Depth() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.stack)
}

// indexOf returns the stack position of l, or -1. Caller must hold mu.
func (a *Local) indexOf(l Listener) int {
	for i, h := range a.stack {
		if h.listener == l {
			return i
		}
	}
	return -1
}

func (a *Local) deliver(pending []notification) {
	for _, n := range pending {
		a.logger.Debug("focus change", "change", n.change)
		n.listener.OnFocusChange(n.change)
	}
}
