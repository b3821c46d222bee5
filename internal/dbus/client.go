package dbus

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/oklog/ulid/v2"

	"github.com/jmylchreest/miwok/internal/focus"
)

// caller is the subset of dbus.BusObject the client uses.
type caller interface {
	Call(method string, flags dbus.Flags, args ...interface{}) *dbus.Call
}

// FocusClient implements focus.Arbiter against a FocusServer on the bus.
//
// Each listener is given a ULID client id on its first request. Listener
// callbacks run on the client's signal goroutine.
type FocusClient struct {
	conn   *dbus.Conn
	obj    caller
	logger *slog.Logger

	mu        sync.Mutex
	ids       map[focus.Listener]string
	listeners map[string]focus.Listener
	signals   chan *dbus.Signal
	done      chan struct{}
}

var _ focus.Arbiter = (*FocusClient)(nil)

// NewFocusClient creates an unconnected client.
func NewFocusClient(logger *slog.Logger) *FocusClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &FocusClient{
		logger:    logger,
		ids:       make(map[focus.Listener]string),
		listeners: make(map[string]focus.Listener),
	}
}

// Connect connects to the session bus and subscribes to focus changes.
func (c *FocusClient) Connect() error {
	conn, err := dbus.SessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}

	if err := conn.AddMatchSignal(
		dbus.WithMatchObjectPath(DBusPath),
		dbus.WithMatchInterface(DBusInterface),
		dbus.WithMatchMember(SignalFocusChanged),
	); err != nil {
		return fmt.Errorf("failed to subscribe to focus changes: %w", err)
	}

	c.conn = conn
	c.obj = conn.Object(DBusBusName, DBusPath)
	c.signals = make(chan *dbus.Signal, 16)
	c.done = make(chan struct{})
	conn.Signal(c.signals)

	go c.routeSignals()

	c.logger.Debug("connected to focus service", "bus_name", DBusBusName)
	return nil
}

// Ping checks that the focus service is running.
func (c *FocusClient) Ping() error {
	if c.obj == nil {
		return fmt.Errorf("not connected to D-Bus")
	}
	if err := c.obj.Call("org.freedesktop.DBus.Peer.Ping", 0).Err; err != nil {
		return fmt.Errorf("focus service %s not reachable: %w", DBusBusName, err)
	}
	return nil
}

// Close unsubscribes from focus changes. The shared bus connection stays open.
func (c *FocusClient) Close() {
	if c.conn == nil {
		return
	}
	c.conn.RemoveSignal(c.signals)
	_ = c.conn.RemoveMatchSignal(
		dbus.WithMatchObjectPath(DBusPath),
		dbus.WithMatchInterface(DBusInterface),
		dbus.WithMatchMember(SignalFocusChanged),
	)
	close(c.done)
	c.conn = nil
}

// Request implements focus.Arbiter. Bus errors are logged and reported as
// a denial.
func (c *FocusClient) Request(l focus.Listener, stream focus.Stream, gain focus.Gain) focus.Result {
	if c.obj == nil {
		c.logger.Warn("focus request without a bus connection")
		return focus.ResultDenied
	}

	id := c.register(l)

	var result int32
	err := c.obj.Call(DBusInterface+".RequestFocus", 0, id, streamToWire(stream), gainToWire(gain)).Store(&result)
	if err != nil {
		c.logger.Warn("RequestFocus failed", "client", id, "error", err)
		c.forget(l)
		return focus.ResultDenied
	}

	r := resultFromWire(result)
	if r == focus.ResultDenied {
		c.forget(l)
	}
	return r
}

// Abandon implements focus.Arbiter.
func (c *FocusClient) Abandon(l focus.Listener) {
	id, ok := c.forget(l)
	if !ok || c.obj == nil {
		return
	}
	if err := c.obj.Call(DBusInterface+".AbandonFocus", 0, id).Err; err != nil {
		c.logger.Warn("AbandonFocus failed", "client", id, "error", err)
	}
}

// Lock asks the service to deny every request until Unlock.
func (c *FocusClient) Lock(reason string) error {
	if c.obj == nil {
		return fmt.Errorf("not connected to D-Bus")
	}
	return c.obj.Call(DBusInterface+".Lock", 0, reason).Err
}

// Unlock lifts a Lock.
func (c *FocusClient) Unlock() error {
	if c.obj == nil {
		return fmt.Errorf("not connected to D-Bus")
	}
	return c.obj.Call(DBusInterface+".Unlock", 0).Err
}

// Status is the focus service state reported by Status.
type Status struct {
	Locked  bool
	Depth   int
	Clients int
}

// Status queries the focus service state.
func (c *FocusClient) Status() (Status, error) {
	if c.obj == nil {
		return Status{}, fmt.Errorf("not connected to D-Bus")
	}
	var (
		locked         bool
		depth, clients int32
	)
	if err := c.obj.Call(DBusInterface+".Status", 0).Store(&locked, &depth, &clients); err != nil {
		return Status{}, fmt.Errorf("failed to query focus status: %w", err)
	}
	return Status{Locked: locked, Depth: int(depth), Clients: int(clients)}, nil
}

func (c *FocusClient) register(l focus.Listener) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if id, ok := c.ids[l]; ok {
		return id
	}
	id := ulid.Make().String()
	c.ids[l] = id
	c.listeners[id] = l
	return id
}

func (c *FocusClient) forget(l focus.Listener) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id, ok := c.ids[l]
	if ok {
		delete(c.ids, l)
		delete(c.listeners, id)
	}
	return id, ok
}

func (c *FocusClient) routeSignals() {
	for {
		select {
		case <-c.done:
			return
		case sig, ok := <-c.signals:
			if !ok {
				return
			}
			c.handleSignal(sig)
		}
	}
}

// handleSignal delivers a FocusChanged signal to the listener it names.
// Signals for ids this client does not know are ignored.
func (c *FocusClient) handleSignal(sig *dbus.Signal) {
	if sig == nil || sig.Name != DBusInterface+"."+SignalFocusChanged {
		return
	}

	var id string
	var raw int32
	if err := dbus.Store(sig.Body, &id, &raw); err != nil {
		c.logger.Warn("malformed FocusChanged signal", "error", err)
		return
	}
	change, err := changeFromWire(raw)
	if err != nil {
		c.logger.Warn("malformed FocusChanged signal", "error", err)
		return
	}

	c.mu.Lock()
	l, ok := c.listeners[id]
	c.mu.Unlock()
	if !ok {
		return
	}

	c.logger.Debug("focus changed", "client", id, "change", change.String())
	l.OnFocusChange(change)
}
