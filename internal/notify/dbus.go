// Package notify broadcasts engine state changes over the D-Bus session
// bus. The manager UI is a separate process; these signals are its only
// feed from the daemon, so delivery is fire-and-forget and a missing bus
// degrades to the no-op notifier.
package notify

import (
	"fmt"
	"log/slog"

	"github.com/godbus/dbus/v5"

	"github.com/wezm/Xpander/internal/logging"
)

const (
	// BusName is the daemon's well-known name on the session bus.
	BusName = "com.github.wezm.Xpander"

	// ObjectPath is where the daemon's signals originate.
	ObjectPath dbus.ObjectPath = "/com/github/wezm/Xpander"

	// Interface qualifies the emitted signal names.
	Interface = "com.github.wezm.Xpander.Service"

	signalServiceToggled = Interface + ".ServiceToggled"
	signalShowManager    = Interface + ".ShowManager"
)

// DBus emits engine signals on the session bus.
type DBus struct {
	conn *dbus.Conn
	log  *slog.Logger
}

// NewDBus connects to the session bus and claims the daemon's name. A
// second daemon instance fails here, which doubles as a single-instance
// check.
func NewDBus(logger *slog.Logger) (*DBus, error) {
	if logger == nil {
		logger = logging.Default().WithComponent("notify")
	}
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect to session bus: %w", err)
	}
	reply, err := conn.RequestName(BusName, dbus.NameFlagDoNotQueue)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("request bus name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		conn.Close()
		return nil, fmt.Errorf("bus name %s already taken, is another instance running?", BusName)
	}
	return &DBus{conn: conn, log: logger}, nil
}

// ServiceToggled announces a pause state change.
func (d *DBus) ServiceToggled(paused bool) {
	if err := d.conn.Emit(ObjectPath, signalServiceToggled, paused); err != nil {
		d.log.Warn("emit ServiceToggled", "error", err)
	}
}

// ShowManager asks the manager UI to raise its window.
func (d *DBus) ShowManager() {
	if err := d.conn.Emit(ObjectPath, signalShowManager); err != nil {
		d.log.Warn("emit ShowManager", "error", err)
	}
}

// Close releases the bus name and connection.
func (d *DBus) Close() error {
	if _, err := d.conn.ReleaseName(BusName); err != nil {
		d.log.Debug("release bus name", "error", err)
	}
	return d.conn.Close()
}

// Nop is the notifier used when no session bus is available.
type Nop struct{}

func (Nop) ServiceToggled(bool) {}
func (Nop) ShowManager()        {}
