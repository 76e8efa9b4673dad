package x11

import (
	"github.com/jezek/xgb/xproto"

	"github.com/wezm/Xpander/internal/keysym"
)

// executeHandleKey translates an intercepted event and hands it to the
// engine handler.
func (i *Interface) executeHandleKey(press bool, kc xproto.Keycode, state uint16) error {
	if !i.opts.WindowTitleLazy {
		i.refreshActiveTitle()
	}

	base, err := i.cache.KeycodeToKeysym(kc, 0)
	if err != nil {
		return err
	}
	if base == 0 {
		return nil
	}

	index, mods := i.masks.Translate(state, i.cache.IsKeypad(kc))

	ks := base
	// Function, editing and modifier keys keep their base keysym no
	// matter the modifier state.
	if index > 0 && !keysym.FixedIndex(base) {
		if shifted, err := i.cache.KeycodeToKeysym(kc, index); err == nil && shifted != 0 {
			ks = shifted
		}
	}

	if i.handler != nil {
		i.handler(KeyEvent{Keysym: ks, Press: press, Mods: mods})
	}
	return nil
}

// resolveKeysym finds the keycode and modifier state that produce the
// keysym under the configured layouts. The state combines the shift level
// mask from the xkb symbol tables with the layout group selector bits.
// Both hits and misses are memoized until a layout switch.
func (i *Interface) resolveKeysym(ks uint32) (keycodeState, error) {
	return i.cache.State(ks, func(ks uint32) (keycodeState, error) {
		kc, err := i.cache.LookupKeycode(ks)
		if err != nil {
			return keycodeState{}, err
		}
		if kc == 0 {
			return keycodeState{}, nil
		}
		for idx, layout := range i.stack.Layouts {
			sets, err := i.symbols.Sets(layout)
			if err != nil {
				i.log.Debug("no symbol table for layout", "layout", layout.String(), "error", err)
				continue
			}
			group := groupSelector(idx)
			if _, ok := sets.Base[ks]; ok {
				return keycodeState{keycode: kc, state: group}, nil
			}
			if _, ok := sets.Shift[ks]; ok {
				return keycodeState{keycode: kc, state: i.masks.Shift | group}, nil
			}
			if _, ok := sets.AltGr[ks]; ok {
				return keycodeState{keycode: kc, state: i.masks.AltGr | group}, nil
			}
			if _, ok := sets.AltGrShift[ks]; ok {
				return keycodeState{keycode: kc, state: i.masks.Shift | i.masks.AltGr | group}, nil
			}
		}
		return keycodeState{keycode: kc, state: 0}, nil
	})
}

// groupSelector encodes the layout group index into the state field of a
// synthesized event.
func groupSelector(index int) uint16 {
	return uint16(0x2000 * index)
}
