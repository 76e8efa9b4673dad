// Package x11 owns the X server connections and everything that touches
// them: the RECORD event hook, keycode/keysym translation and its caches,
// layout switching, key/clipboard synthesis and grabs.
//
// All state-touching operations marshal through a single dispatcher
// goroutine fed by a command channel, so injected events, layout switches
// and cache invalidations are totally ordered with respect to each other.
package x11

import "github.com/wezm/Xpander/internal/phrase"

// Modifiers is the semantic modifier state attached to a key event.
type Modifiers struct {
	Shift   bool
	AltGr   bool
	Alt     bool
	Control bool
	Super   bool
}

// Command reports whether a command-style modifier is held, which routes a
// key event to hotkey matching instead of the input history.
func (m Modifiers) Command() bool {
	return m.Alt || m.Control || m.Super
}

// Roles returns the active roles as a set for hotkey comparison.
func (m Modifiers) Roles() map[phrase.Modifier]bool {
	set := make(map[phrase.Modifier]bool, 5)
	if m.Shift {
		set[phrase.ModShift] = true
	}
	if m.AltGr {
		set[phrase.ModAltGr] = true
	}
	if m.Alt {
		set[phrase.ModAlt] = true
	}
	if m.Control {
		set[phrase.ModControl] = true
	}
	if m.Super {
		set[phrase.ModSuper] = true
	}
	return set
}

// KeyEvent is a decoded, translated keyboard event. Immutable and
// transient; the engine consumes it synchronously on the dispatcher.
type KeyEvent struct {
	Keysym uint32
	Press  bool
	Mods   Modifiers
}

// Handler receives every translated key event. It runs on the dispatcher
// goroutine and must not block.
type Handler func(KeyEvent)
