package x11

import (
	"fmt"

	"github.com/jezek/xgb/xproto"

	"github.com/wezm/Xpander/internal/keymap"
	"github.com/wezm/Xpander/internal/phrase"
)

type cmdKind int

const (
	cmdStop cmdKind = iota
	cmdHandleKey
	cmdFocusChanged
	cmdSendKey
	cmdSendString
	cmdSendStringClipboard
	cmdSendBackspace
	cmdCaretLeft
	cmdCaretRight
	cmdGrabKeyboard
	cmdUngrabKeyboard
	cmdGrabHotkey
	cmdUngrabHotkey
	cmdSwitchLayout
	cmdClearSymbolCache
)

func (k cmdKind) String() string {
	switch k {
	case cmdStop:
		return "stop"
	case cmdHandleKey:
		return "handle-key"
	case cmdFocusChanged:
		return "focus-changed"
	case cmdSendKey:
		return "send-key"
	case cmdSendString:
		return "send-string"
	case cmdSendStringClipboard:
		return "send-string-clipboard"
	case cmdSendBackspace:
		return "send-backspace"
	case cmdCaretLeft:
		return "caret-left"
	case cmdCaretRight:
		return "caret-right"
	case cmdGrabKeyboard:
		return "grab-keyboard"
	case cmdUngrabKeyboard:
		return "ungrab-keyboard"
	case cmdGrabHotkey:
		return "grab-hotkey"
	case cmdUngrabHotkey:
		return "ungrab-hotkey"
	case cmdSwitchLayout:
		return "switch-layout"
	case cmdClearSymbolCache:
		return "clear-symbol-cache"
	}
	return fmt.Sprintf("cmdKind(%d)", int(k))
}

// command is a closed variant type: kind selects which payload fields are
// meaningful. The dispatcher switches on kind exhaustively, so a bad
// command is impossible to enqueue from inside the package and there is no
// reflective call surface to fail at runtime.
type command struct {
	kind    cmdKind
	press   bool
	keycode xproto.Keycode
	state   uint16
	count   int
	text    string
	paste   phrase.PasteMethod
	hotkey  phrase.Hotkey
	layout  keymap.Layout
}

// enqueue hands a command to the dispatcher. After Stop it becomes a no-op
// instead of blocking a producer forever.
func (i *Interface) enqueue(cmd command) {
	select {
	case i.commands <- cmd:
	case <-i.done:
	}
}

// dispatch is the single goroutine consuming commands. One failing command
// is logged and dropped; the loop never dies with it.
func (i *Interface) dispatch() {
	defer i.wg.Done()
	for cmd := range i.commands {
		if cmd.kind == cmdStop {
			return
		}
		if err := i.execute(cmd); err != nil {
			i.log.Error("command failed", "command", cmd.kind.String(), "error", err)
		}
	}
}

func (i *Interface) execute(cmd command) error {
	switch cmd.kind {
	case cmdHandleKey:
		return i.executeHandleKey(cmd.press, cmd.keycode, cmd.state)
	case cmdFocusChanged:
		i.updateActiveWindow()
		return nil
	case cmdSendKey:
		i.sendKeyEvent(cmd.press, cmd.keycode, cmd.state)
		return nil
	case cmdSendString:
		return i.executeSendString(cmd.text)
	case cmdSendStringClipboard:
		return i.executeSendStringClipboard(cmd.text, cmd.paste)
	case cmdSendBackspace:
		return i.executeSendBackspace(cmd.count)
	case cmdCaretLeft:
		return i.executeCaretMove(cmd.count, true)
	case cmdCaretRight:
		return i.executeCaretMove(cmd.count, false)
	case cmdGrabKeyboard:
		return i.grabKeyboardNow()
	case cmdUngrabKeyboard:
		i.ungrabKeyboardNow()
		return nil
	case cmdGrabHotkey:
		return i.executeGrabHotkey(cmd.hotkey, true)
	case cmdUngrabHotkey:
		return i.executeGrabHotkey(cmd.hotkey, false)
	case cmdSwitchLayout:
		return i.executeSwitchLayout(cmd.layout)
	case cmdClearSymbolCache:
		i.symbols.Invalidate()
		i.cache.Invalidate()
		return nil
	}
	return fmt.Errorf("unknown command %s", cmd.kind)
}
