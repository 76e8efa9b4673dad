package x11

import (
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/wezm/Xpander/internal/keysym"
	"github.com/wezm/Xpander/internal/phrase"
)

// ClipboardText reads the CLIPBOARD selection. Uses xclip with an xsel
// fallback; an empty or unreadable clipboard yields "".
func (i *Interface) ClipboardText() string {
	out, err := exec.Command("xclip", "-selection", "clipboard", "-o").Output()
	if err == nil {
		return string(out)
	}
	out, err = exec.Command("xsel", "--clipboard", "--output").Output()
	if err == nil {
		return string(out)
	}
	i.log.Debug("clipboard read failed", "error", err)
	return ""
}

// SelectionText reads the PRIMARY selection, "" when unavailable.
func (i *Interface) SelectionText() string {
	out, err := exec.Command("xclip", "-selection", "primary", "-o").Output()
	if err == nil {
		return string(out)
	}
	out, err = exec.Command("xsel", "--primary", "--output").Output()
	if err == nil {
		return string(out)
	}
	i.log.Debug("selection read failed", "error", err)
	return ""
}

// setClipboardText writes the CLIPBOARD selection.
func setClipboardText(text string) error {
	cmd := exec.Command("xclip", "-selection", "clipboard", "-i")
	cmd.Stdin = strings.NewReader(text)
	if err := cmd.Run(); err == nil {
		return nil
	}
	cmd = exec.Command("xsel", "--clipboard", "--input")
	cmd.Stdin = strings.NewReader(text)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("set clipboard: %w", err)
	}
	return nil
}

// executeSendStringClipboard pastes text through the clipboard: save the
// current contents, stage the payload, inject the paste chord, restore.
// The settle pauses give the focused application time to observe each
// clipboard state before the next step.
func (i *Interface) executeSendStringClipboard(text string, method phrase.PasteMethod) error {
	settle := i.opts.ClipboardSettle
	saved := i.ClipboardText()

	if err := setClipboardText(text); err != nil {
		return err
	}
	time.Sleep(settle)

	if err := i.pasteChord(method); err != nil {
		// Restore even when the chord failed, the payload must not
		// linger on the clipboard.
		time.Sleep(settle)
		if restoreErr := setClipboardText(saved); restoreErr != nil {
			i.log.Warn("clipboard restore failed", "error", restoreErr)
		}
		return err
	}
	time.Sleep(settle)

	if err := setClipboardText(saved); err != nil {
		i.log.Warn("clipboard restore failed", "error", err)
	}
	return nil
}

// pasteChord injects the configured paste combination under a scoped
// keyboard grab.
func (i *Interface) pasteChord(method phrase.PasteMethod) error {
	var (
		ks    uint32
		state uint16
	)
	switch method {
	case phrase.PasteCtrlShiftV:
		ks = uint32('v')
		state = i.masks.Control | i.masks.Shift
	case phrase.PasteShiftInsert:
		ks = keysym.Insert
		state = i.masks.Shift
	default:
		ks = uint32('v')
		state = i.masks.Control
	}

	kc, err := i.cache.LookupKeycode(ks)
	if err != nil {
		return err
	}
	if kc == 0 {
		return fmt.Errorf("paste key for %v not on the keyboard", method)
	}

	grabbed := i.grabKeyboardNow() == nil
	if grabbed {
		defer i.ungrabKeyboardNow()
	}
	i.sendKeyEvent(true, kc, state)
	i.sendKeyEvent(false, kc, state)
	return nil
}
