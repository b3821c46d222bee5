// Package dbus shares one audio focus arbiter between processes over the
// D-Bus session bus.
//
// FocusServer exports a focus.Local as io.github.jmylchreest.Miwok.AudioFocus.
// FocusClient implements focus.Arbiter against that service, so controllers in
// separate miwok instances take focus from one another exactly as controllers
// in one process do.
package dbus
