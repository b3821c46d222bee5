package dbus

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"

	"github.com/jmylchreest/miwok/internal/focus"
)

// emitFunc matches dbus.Conn.Emit.
type emitFunc func(path dbus.ObjectPath, name string, values ...interface{}) error

// FocusServer exports a focus arbiter on the session bus.
//
// Each client id registered through RequestFocus becomes a listener on the
// arbiter. Focus changes for that listener are broadcast as FocusChanged
// signals carrying the id. When a peer leaves the bus every id it
// registered is abandoned.
type FocusServer struct {
	conn    *dbus.Conn
	logger  *slog.Logger
	arbiter *focus.Local
	emit    emitFunc

	mu      sync.Mutex
	clients map[string]*remoteListener // client id -> listener
	owners  map[string][]string        // bus name -> client ids
	running bool
	stopCh  chan struct{}
	signals chan *dbus.Signal
}

// remoteListener stands in for a listener in another process.
type remoteListener struct {
	server *FocusServer
	id     string
	owner  string
}

// OnFocusChange implements focus.Listener.
func (r *remoteListener) OnFocusChange(change focus.Change) {
	r.server.emitFocusChanged(r.id, change)
}

// NewFocusServer creates a server for arbiter.
func NewFocusServer(arbiter *focus.Local, logger *slog.Logger) *FocusServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &FocusServer{
		logger:  logger,
		arbiter: arbiter,
		clients: make(map[string]*remoteListener),
		owners:  make(map[string][]string),
		stopCh:  make(chan struct{}),
	}
}

// Start connects to the session bus and exports the focus service.
func (s *FocusServer) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("server already running")
	}
	s.mu.Unlock()

	conn, err := dbus.SessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}
	s.conn = conn
	s.emit = conn.Emit

	if err := conn.Export(s, DBusPath, DBusInterface); err != nil {
		return fmt.Errorf("failed to export object: %w", err)
	}

	node := &introspect.Node{
		Name: DBusPath,
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			{
				Name:    DBusInterface,
				Methods: focusMethods(),
				Signals: focusSignals(),
			},
		},
	}
	if err := conn.Export(introspect.NewIntrospectable(node), DBusPath,
		"org.freedesktop.DBus.Introspectable"); err != nil {
		return fmt.Errorf("failed to export introspectable: %w", err)
	}

	reply, err := conn.RequestName(DBusBusName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return fmt.Errorf("failed to request bus name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return fmt.Errorf("bus name %s already taken", DBusBusName)
	}

	if err := conn.AddMatchSignal(
		dbus.WithMatchInterface("org.freedesktop.DBus"),
		dbus.WithMatchMember("NameOwnerChanged"),
	); err != nil {
		s.logger.Warn("failed to watch bus peers, crashed clients keep their focus", "error", err)
	}

	s.mu.Lock()
	s.running = true
	s.stopCh = make(chan struct{})
	s.signals = make(chan *dbus.Signal, 16)
	conn.Signal(s.signals)
	s.mu.Unlock()

	go s.watchPeers(s.signals, s.stopCh)

	s.logger.Info("D-Bus focus server started", "interface", DBusInterface, "path", DBusPath)
	return nil
}

// Stop releases the bus name.
func (s *FocusServer) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	close(s.stopCh)
	s.running = false

	if s.conn != nil {
		s.conn.RemoveSignal(s.signals)
		if _, err := s.conn.ReleaseName(DBusBusName); err != nil {
			s.logger.Warn("failed to release bus name", "error", err)
		}
		// The session bus connection is shared; leave it open.
	}

	s.logger.Info("D-Bus focus server stopped")
	return nil
}

// watchPeers abandons the focus of peers that leave the bus.
func (s *FocusServer) watchPeers(signals <-chan *dbus.Signal, stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case sig, ok := <-signals:
			if !ok {
				return
			}
			if sig.Name != "org.freedesktop.DBus.NameOwnerChanged" || len(sig.Body) != 3 {
				continue
			}
			name, _ := sig.Body[0].(string)
			newOwner, _ := sig.Body[2].(string)
			if newOwner == "" {
				s.dropOwner(name)
			}
		}
	}
}

// RequestFocus asks for focus on behalf of client.
// D-Bus method: RequestFocus(sui) -> i
func (s *FocusServer) RequestFocus(sender dbus.Sender, client string, stream uint32, gain int32) (int32, *dbus.Error) {
	if client == "" {
		return 0, dbus.MakeFailedError(fmt.Errorf("%w: empty client id", ErrInvalidArgument))
	}
	st, err := streamFromWire(stream)
	if err != nil {
		return 0, dbus.MakeFailedError(err)
	}
	g, err := gainFromWire(gain)
	if err != nil {
		return 0, dbus.MakeFailedError(err)
	}

	l := s.listener(client, string(sender))
	result := s.arbiter.Request(l, st, g)
	if result == focus.ResultDenied && !s.arbiter.Holds(l) {
		s.abandon(client)
	}

	s.logger.Debug("RequestFocus called",
		"client", client,
		"sender", sender,
		"stream", st.String(),
		"gain", g.String(),
		"result", result.String(),
	)
	return resultToWire(result), nil
}

// AbandonFocus drops client's focus registration.
// D-Bus method: AbandonFocus(s)
func (s *FocusServer) AbandonFocus(client string) *dbus.Error {
	s.logger.Debug("AbandonFocus called", "client", client)
	s.abandon(client)
	return nil
}

// Lock denies every request until Unlock.
// D-Bus method: Lock(s)
func (s *FocusServer) Lock(reason string) *dbus.Error {
	s.logger.Debug("Lock called", "reason", reason)
	s.arbiter.Lock(reason)
	return nil
}

// Unlock lifts a Lock.
// D-Bus method: Unlock()
func (s *FocusServer) Unlock() *dbus.Error {
	s.logger.Debug("Unlock called")
	s.arbiter.Unlock()
	return nil
}

// Status reports whether the arbiter is locked, how many listeners are on
// its focus stack and how many client ids are registered.
// D-Bus method: Status() -> (b locked, i depth, i clients)
func (s *FocusServer) Status() (bool, int32, int32, *dbus.Error) {
	return s.arbiter.Locked(), int32(s.arbiter.Depth()), int32(s.Clients()), nil
}

// listener returns the listener for client, creating it on first use.
func (s *FocusServer) listener(client, owner string) *remoteListener {
	s.mu.Lock()
	defer s.mu.Unlock()

	if l, ok := s.clients[client]; ok {
		return l
	}
	l := &remoteListener{server: s, id: client, owner: owner}
	s.clients[client] = l
	if owner != "" {
		s.owners[owner] = append(s.owners[owner], client)
	}
	return l
}

func (s *FocusServer) abandon(client string) {
	s.mu.Lock()
	l, ok := s.clients[client]
	if ok {
		delete(s.clients, client)
		ids := s.owners[l.owner]
		for i, id := range ids {
			if id == client {
				s.owners[l.owner] = append(ids[:i], ids[i+1:]...)
				break
			}
		}
		if len(s.owners[l.owner]) == 0 {
			delete(s.owners, l.owner)
		}
	}
	s.mu.Unlock()

	if ok {
		s.arbiter.Abandon(l)
	}
}

// dropOwner abandons every client registered by a departed bus peer.
func (s *FocusServer) dropOwner(owner string) {
	s.mu.Lock()
	ids := append([]string(nil), s.owners[owner]...)
	s.mu.Unlock()

	if len(ids) == 0 {
		return
	}
	s.logger.Info("bus peer left, abandoning its focus", "owner", owner, "clients", len(ids))
	for _, id := range ids {
		s.abandon(id)
	}
}

// Clients returns the number of registered client ids.
func (s *FocusServer) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// focusMethods returns the D-Bus method introspection data.
func focusMethods() []introspect.Method {
	return []introspect.Method{
		{
			Name: "RequestFocus",
			Args: []introspect.Arg{
				{Name: "client", Type: "s", Direction: "in"},
				{Name: "stream", Type: "u", Direction: "in"},
				{Name: "gain", Type: "i", Direction: "in"},
				{Name: "result", Type: "i", Direction: "out"},
			},
		},
		{
			Name: "AbandonFocus",
			Args: []introspect.Arg{
				{Name: "client", Type: "s", Direction: "in"},
			},
		},
		{
			Name: "Lock",
			Args: []introspect.Arg{
				{Name: "reason", Type: "s", Direction: "in"},
			},
		},
		{
			Name: "Unlock",
		},
		{
			Name: "Status",
			Args: []introspect.Arg{
				{Name: "locked", Type: "b", Direction: "out"},
				{Name: "depth", Type: "i", Direction: "out"},
				{Name: "clients", Type: "i", Direction: "out"},
			},
		},
	}
}

// focusSignals returns the D-Bus signal introspection data.
func focusSignals() []introspect.Signal {
	return []introspect.Signal{
		{
			Name: SignalFocusChanged,
			Args: []introspect.Arg{
				{Name: "client", Type: "s"},
				{Name: "change", Type: "i"},
			},
		},
	}
}
