package x11

import (
	"fmt"

	"github.com/jezek/xgb/xproto"

	"github.com/wezm/Xpander/internal/keysym"
	"github.com/wezm/Xpander/internal/phrase"
)

// sendKeyEvent synthesizes one key event into the focused window via
// SendEvent. Synthesized events carry the send-event flag; the hook's
// stream is not re-fed because injected traffic must not match hotstrings.
func (i *Interface) sendKeyEvent(press bool, kc xproto.Keycode, state uint16) {
	win := i.focusedWindow()
	ev := xproto.KeyPressEvent{
		Detail:     kc,
		Time:       xproto.TimeCurrentTime,
		Root:       i.root,
		Event:      win,
		Child:      xproto.WindowNone,
		RootX:      1,
		RootY:      1,
		EventX:     1,
		EventY:     1,
		State:      state,
		SameScreen: true,
	}
	if press {
		xproto.SendEvent(i.conn, false, win, 0, string(ev.Bytes()))
	} else {
		rel := xproto.KeyReleaseEvent(ev)
		xproto.SendEvent(i.conn, false, win, 0, string(rel.Bytes()))
	}
}

// sendKeysym taps the keycode producing the keysym, press then release.
func (i *Interface) sendKeysym(ks uint32) error {
	entry, err := i.resolveKeysym(ks)
	if err != nil {
		return err
	}
	if entry.keycode == 0 {
		return fmt.Errorf("keysym %#x not on any configured layout", ks)
	}
	i.sendKeyEvent(true, entry.keycode, entry.state)
	i.sendKeyEvent(false, entry.keycode, entry.state)
	return nil
}

// executeSendString types text character by character under a scoped
// keyboard grab so the user's own typing cannot interleave. Characters no
// configured layout can produce are skipped with a log line.
func (i *Interface) executeSendString(text string) error {
	grabbed := i.grabKeyboardNow() == nil
	if grabbed {
		defer i.ungrabKeyboardNow()
	}
	for _, r := range text {
		ks := keysym.FromString(string(r))
		if ks == 0 {
			i.log.Debug("no keysym for character", "char", string(r))
			continue
		}
		if err := i.sendKeysym(ks); err != nil {
			i.log.Debug("character skipped", "char", string(r), "error", err)
		}
	}
	return nil
}

// executeSendBackspace taps BackSpace n times under a scoped grab.
func (i *Interface) executeSendBackspace(n int) error {
	return i.tapRepeated(keysym.BackSpace, n)
}

// executeCaretMove taps Left or Right n times under a scoped grab.
func (i *Interface) executeCaretMove(n int, left bool) error {
	ks := keysym.Right
	if left {
		ks = keysym.Left
	}
	return i.tapRepeated(ks, n)
}

func (i *Interface) tapRepeated(ks uint32, n int) error {
	if n <= 0 {
		return nil
	}
	kc, err := i.cache.LookupKeycode(ks)
	if err != nil {
		return err
	}
	if kc == 0 {
		return fmt.Errorf("keysym %#x has no keycode", ks)
	}
	grabbed := i.grabKeyboardNow() == nil
	if grabbed {
		defer i.ungrabKeyboardNow()
	}
	for ; n > 0; n-- {
		i.sendKeyEvent(true, kc, 0)
		i.sendKeyEvent(false, kc, 0)
	}
	return nil
}

// grabKeyboardNow takes the active keyboard grab on the focused window.
func (i *Interface) grabKeyboardNow() error {
	reply, err := xproto.GrabKeyboard(i.conn, true, i.focusedWindow(),
		xproto.TimeCurrentTime, xproto.GrabModeAsync, xproto.GrabModeAsync).Reply()
	if err != nil {
		return fmt.Errorf("grab keyboard: %w", err)
	}
	if reply.Status != xproto.GrabStatusSuccess {
		return fmt.Errorf("grab keyboard: status %d", reply.Status)
	}
	return nil
}

func (i *Interface) ungrabKeyboardNow() {
	xproto.UngrabKeyboard(i.conn, xproto.TimeCurrentTime)
}

// executeGrabHotkey installs or removes a passive root-window grab for the
// hotkey. Grabbed combinations are delivered regardless of focus, which is
// what makes the bare Tab trigger and reserved hotkeys reliable.
func (i *Interface) executeGrabHotkey(hk phrase.Hotkey, grab bool) error {
	ks := keysym.FromString(hk.Key)
	if ks == 0 {
		return fmt.Errorf("hotkey key %q has no keysym", hk.Key)
	}
	kc, err := i.cache.LookupKeycode(ks)
	if err != nil {
		return err
	}
	if kc == 0 {
		return fmt.Errorf("hotkey key %q not on the keyboard", hk.Key)
	}
	mask := i.masks.RoleMask(hk.Modifiers)
	if grab {
		err = xproto.GrabKeyChecked(i.conn, false, i.root, mask, kc,
			xproto.GrabModeAsync, xproto.GrabModeAsync).Check()
		if err != nil {
			return fmt.Errorf("grab %s: %w", hk.Key, err)
		}
		return nil
	}
	if err := xproto.UngrabKeyChecked(i.conn, kc, i.root, mask).Check(); err != nil {
		return fmt.Errorf("ungrab %s: %w", hk.Key, err)
	}
	return nil
}
