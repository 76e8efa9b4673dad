package x11

import (
	"fmt"
	"sync"

	"github.com/jezek/xgb/xproto"

	"github.com/wezm/Xpander/internal/keysym"
)

// mappingSnapshot is one fetch of the server's keyboard mapping plus the
// keypad keycode set derived from it.
type mappingSnapshot struct {
	minKeycode xproto.Keycode
	maxKeycode xproto.Keycode
	perKeycode int
	keysyms    []xproto.Keysym
	keypad     map[xproto.Keycode]bool
}

// keysymAt returns the keysym at the given column for a keycode, or zero
// when the keycode or column is out of range.
func (s *mappingSnapshot) keysymAt(kc xproto.Keycode, column int) uint32 {
	if kc < s.minKeycode || kc > s.maxKeycode || column < 0 || column >= s.perKeycode {
		return 0
	}
	offset := int(kc-s.minKeycode)*s.perKeycode + column
	if offset >= len(s.keysyms) {
		return 0
	}
	return uint32(s.keysyms[offset])
}

// lookupKeycode finds the first keycode producing the keysym, scanning
// column-major so base bindings win over shifted ones. Zero when unbound.
func (s *mappingSnapshot) lookupKeycode(ks uint32) xproto.Keycode {
	for column := 0; column < s.perKeycode; column++ {
		for kc := s.minKeycode; ; kc++ {
			if s.keysymAt(kc, column) == ks {
				return kc
			}
			if kc == s.maxKeycode {
				break
			}
		}
	}
	return 0
}

// keycodeState is a memoized resolution of a keysym to the keycode and
// modifier state that produce it. Negative resolutions are cached too.
type keycodeState struct {
	keycode xproto.Keycode
	state   uint16
}

// keymapCache memoizes everything derived from the server keyboard
// mapping. A layout switch invalidates it wholesale; entries are refetched
// lazily on the next query. Reads and writes happen on the dispatcher, the
// mutex only covers Invalidate arriving from other goroutines.
type keymapCache struct {
	fetch func() (*mappingSnapshot, error)

	mu       sync.Mutex
	mapping  *mappingSnapshot
	states   map[uint32]keycodeState
	keycodes map[uint32]xproto.Keycode
}

func newKeymapCache(fetch func() (*mappingSnapshot, error)) *keymapCache {
	return &keymapCache{
		fetch:    fetch,
		states:   make(map[uint32]keycodeState),
		keycodes: make(map[uint32]xproto.Keycode),
	}
}

// Invalidate drops every derived entry. Stale answers must not survive a
// layout switch, so this clears rather than updates.
func (c *keymapCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mapping = nil
	c.states = make(map[uint32]keycodeState)
	c.keycodes = make(map[uint32]xproto.Keycode)
}

func (c *keymapCache) snapshot() (*mappingSnapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mapping != nil {
		return c.mapping, nil
	}
	snap, err := c.fetch()
	if err != nil {
		return nil, fmt.Errorf("fetch keyboard mapping: %w", err)
	}
	snap.keypad = make(map[xproto.Keycode]bool)
	for column := 0; column < snap.perKeycode; column++ {
		for idx := 0; idx*snap.perKeycode+column < len(snap.keysyms); idx++ {
			ks := uint32(snap.keysyms[idx*snap.perKeycode+column])
			if keysym.IsKeypad(ks) {
				snap.keypad[snap.minKeycode+xproto.Keycode(idx)] = true
			}
		}
	}
	c.mapping = snap
	return snap, nil
}

// KeycodeToKeysym returns the keysym at the given table index.
func (c *keymapCache) KeycodeToKeysym(kc xproto.Keycode, index int) (uint32, error) {
	snap, err := c.snapshot()
	if err != nil {
		return 0, err
	}
	return snap.keysymAt(kc, index), nil
}

// LookupKeycode is the memoized reverse mapping.
func (c *keymapCache) LookupKeycode(ks uint32) (xproto.Keycode, error) {
	c.mu.Lock()
	kc, ok := c.keycodes[ks]
	c.mu.Unlock()
	if ok {
		return kc, nil
	}
	snap, err := c.snapshot()
	if err != nil {
		return 0, err
	}
	kc = snap.lookupKeycode(ks)
	c.mu.Lock()
	c.keycodes[ks] = kc
	c.mu.Unlock()
	return kc, nil
}

// IsKeypad reports whether the keycode carries a keypad keysym in any
// column.
func (c *keymapCache) IsKeypad(kc xproto.Keycode) bool {
	snap, err := c.snapshot()
	if err != nil {
		return false
	}
	return snap.keypad[kc]
}

// State returns the memoized keysym resolution, computing it with resolve
// on a miss. resolve runs outside the lock; it may query symbol tables.
func (c *keymapCache) State(ks uint32, resolve func(uint32) (keycodeState, error)) (keycodeState, error) {
	c.mu.Lock()
	entry, ok := c.states[ks]
	c.mu.Unlock()
	if ok {
		return entry, nil
	}
	entry, err := resolve(ks)
	if err != nil {
		return keycodeState{}, err
	}
	c.mu.Lock()
	c.states[ks] = entry
	c.mu.Unlock()
	return entry, nil
}
