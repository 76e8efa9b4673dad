package x11

import (
	"github.com/jezek/xgb/xproto"

	"github.com/wezm/Xpander/internal/keysym"
	"github.com/wezm/Xpander/internal/phrase"
)

// ModMasks maps modifier roles to the X state bits that carry them on this
// keyboard. Shift, Lock and Control sit on fixed bits; the floating roles
// are discovered from the server's modifier mapping and are zero when the
// keyboard binds nothing to them, which makes the role simply never active.
type ModMasks struct {
	Shift   uint16
	Lock    uint16
	Control uint16
	Alt     uint16
	AltGr   uint16
	Super   uint16
	NumLock uint16
}

// classifyModifiers inspects the 8-slot modifier mapping and assigns the
// floating roles from the base keysym of each bound keycode. Slots are
// checked in role priority order so a slot carrying several bindings gets
// one role, matching how servers lay these out in practice.
func classifyModifiers(perMod byte, keycodes []xproto.Keycode, keysymAt func(xproto.Keycode) uint32) ModMasks {
	masks := ModMasks{
		Shift:   xproto.ModMaskShift,
		Lock:    xproto.ModMaskLock,
		Control: xproto.ModMaskControl,
	}
	for slot := 0; slot < 8; slot++ {
		bit := uint16(1) << uint(slot)
		bound := make(map[uint32]bool)
		for j := 0; j < int(perMod); j++ {
			kc := keycodes[slot*int(perMod)+j]
			if kc == 0 {
				continue
			}
			if ks := keysymAt(kc); ks != 0 {
				bound[ks] = true
			}
		}
		switch {
		case bound[keysym.AltL] || bound[keysym.AltR]:
			masks.Alt = bit
		case bound[keysym.ISOLevel3Shift]:
			masks.AltGr = bit
		case bound[keysym.SuperL] || bound[keysym.SuperR]:
			masks.Super = bit
		case bound[keysym.NumLock]:
			masks.NumLock = bit
		}
	}
	return masks
}

// Translate decodes a raw event state into the keysym table index for the
// event's keycode and the semantic modifier set.
//
// The index composes as: +1 when exactly one of Shift and CapsLock is
// active on a non-keypad key, +4 when AltGr is active on a non-keypad key,
// +7 when NumLock is active on a keypad key. The Shift and AltGr flags
// follow the index branches: neither reports on a keypad key, and Shift
// stays false when CapsLock cancels it.
func (m ModMasks) Translate(state uint16, keypad bool) (int, Modifiers) {
	index := 0
	shift := state&m.Shift != 0
	lock := state&m.Lock != 0
	altgr := state&m.AltGr != 0

	var mods Modifiers
	if shift != lock && !keypad {
		index++
		mods.Shift = shift
	}
	if altgr && !keypad {
		index += 4
		mods.AltGr = true
	}
	if state&m.NumLock != 0 && keypad {
		index += 7
	}

	mods.Alt = state&m.Alt != 0
	mods.Control = state&m.Control != 0
	mods.Super = state&m.Super != 0
	return index, mods
}

// RoleMask builds the state mask that activates the given roles, for key
// grabs and synthesized chords. Unbound roles contribute nothing.
func (m ModMasks) RoleMask(roles []phrase.Modifier) uint16 {
	var mask uint16
	for _, role := range roles {
		switch role {
		case phrase.ModShift:
			mask |= m.Shift
		case phrase.ModControl:
			mask |= m.Control
		case phrase.ModAlt:
			mask |= m.Alt
		case phrase.ModAltGr:
			mask |= m.AltGr
		case phrase.ModSuper:
			mask |= m.Super
		}
	}
	return mask
}
