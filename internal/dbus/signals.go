package dbus

import (
	"fmt"

	"github.com/jmylchreest/miwok/internal/focus"
)

// emitFocusChanged emits the FocusChanged signal for one client.
func (s *FocusServer) emitFocusChanged(client string, change focus.Change) {
	if err := s.EmitFocusChanged(client, change); err != nil {
		s.logger.Warn("failed to emit FocusChanged signal", "client", client, "error", err)
	}
}

// EmitFocusChanged emits the FocusChanged signal.
func (s *FocusServer) EmitFocusChanged(client string, change focus.Change) error {
	if s.emit == nil {
		return fmt.Errorf("not connected to D-Bus")
	}

	err := s.emit(DBusPath, DBusInterface+"."+SignalFocusChanged, client, changeToWire(change))
	if err != nil {
		return fmt.Errorf("failed to emit FocusChanged signal: %w", err)
	}

	s.logger.Debug("emitted FocusChanged signal", "client", client, "change", change.String())
	return nil
}
