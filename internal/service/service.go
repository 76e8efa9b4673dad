// Package service implements the expansion engine: it consumes translated
// key events, maintains the input history, matches hotstrings and hotkeys
// against the phrase snapshot and drives replacements through the keyboard
// interface. The engine runs on the event dispatcher goroutine; only the
// pause flag is touched from outside.
package service

import (
	"log/slog"
	"sync/atomic"
	"time"
	"unicode"

	"github.com/wezm/Xpander/internal/keysym"
	"github.com/wezm/Xpander/internal/logging"
	"github.com/wezm/Xpander/internal/phrase"
	"github.com/wezm/Xpander/internal/x11"
)

// Keyboard is the slice of the X interface the engine drives. Everything
// here enqueues onto the dispatcher, except the read-only queries.
type Keyboard interface {
	SendString(text string)
	SendStringClipboard(text string, method phrase.PasteMethod)
	SendBackspace(n int)
	CaretLeft(n int)
	CaretRight(n int)
	GrabHotkey(hk phrase.Hotkey)
	UngrabHotkey(hk phrase.Hotkey)
	ActiveWindowClass() string
	ActiveWindowTitle() string
	ClipboardText() string
	SelectionText() string
}

// Notifier broadcasts engine state changes to the manager UI.
type Notifier interface {
	ServiceToggled(paused bool)
	ShowManager()
}

// Options carries the engine tunables.
type Options struct {
	// BackspaceUndo reverts the whole last expansion on Backspace.
	BackspaceUndo bool

	// StartPaused brings the engine up with matching disabled.
	StartPaused bool

	// ScriptTimeout bounds script phrase execution.
	ScriptTimeout time.Duration

	// PauseHotkey and ShowManagerHotkey are the reserved combinations,
	// checked after phrase hotkeys and live even while paused.
	PauseHotkey       *phrase.Hotkey
	ShowManagerHotkey *phrase.Hotkey

	Logger *slog.Logger
}

// Service is the expansion engine.
type Service struct {
	kb      Keyboard
	phrases phrase.Snapshot
	notify  Notifier
	opts    Options
	log     *slog.Logger

	paused atomic.Bool

	history      history
	caret        *caretPlan
	lastExpanded []rune
}

// New assembles the engine. Call RegisterHotkeys and install HandleKey as
// the keyboard handler to go live.
func New(kb Keyboard, phrases phrase.Snapshot, notify Notifier, opts Options) *Service {
	log := opts.Logger
	if log == nil {
		log = logging.Default().WithComponent("service")
	}
	if opts.ScriptTimeout <= 0 {
		opts.ScriptTimeout = time.Second
	}
	s := &Service{
		kb:      kb,
		phrases: phrases,
		notify:  notify,
		opts:    opts,
		log:     log,
	}
	s.paused.Store(opts.StartPaused)
	return s
}

// Paused reports whether matching is disabled.
func (s *Service) Paused() bool {
	return s.paused.Load()
}

// TogglePause flips the pause flag and notifies the manager. While paused
// the history keeps tracking and reserved hotkeys stay live; only phrase
// matching stops.
func (s *Service) TogglePause() bool {
	paused := !s.paused.Load()
	s.paused.Store(paused)
	s.log.Info("service toggled", "paused", paused)
	s.notify.ServiceToggled(paused)
	return paused
}

// RegisterHotkeys installs passive grabs for every phrase hotkey, the
// reserved combinations and the bare Tab that drives caret advancement.
func (s *Service) RegisterHotkeys() {
	for _, p := range s.phrases.Phrases() {
		if p.Hotkey != nil {
			s.kb.GrabHotkey(*p.Hotkey)
		}
	}
	if s.opts.PauseHotkey != nil {
		s.kb.GrabHotkey(*s.opts.PauseHotkey)
	}
	if s.opts.ShowManagerHotkey != nil {
		s.kb.GrabHotkey(*s.opts.ShowManagerHotkey)
	}
	s.kb.GrabHotkey(phrase.Hotkey{Key: "Tab"})
}

// UnregisterHotkeys releases everything RegisterHotkeys grabbed.
func (s *Service) UnregisterHotkeys() {
	for _, p := range s.phrases.Phrases() {
		if p.Hotkey != nil {
			s.kb.UngrabHotkey(*p.Hotkey)
		}
	}
	if s.opts.PauseHotkey != nil {
		s.kb.UngrabHotkey(*s.opts.PauseHotkey)
	}
	if s.opts.ShowManagerHotkey != nil {
		s.kb.UngrabHotkey(*s.opts.ShowManagerHotkey)
	}
	s.kb.UngrabHotkey(phrase.Hotkey{Key: "Tab"})
}

// HandleKey consumes one translated key event. Releases are ignored; the
// engine acts on presses only.
func (s *Service) HandleKey(ev x11.KeyEvent) {
	if !ev.Press {
		return
	}

	if ev.Mods.Command() {
		if clearsHistory(ev.Keysym) {
			s.history.Clear()
			s.disarm()
		}
		s.handleHotkey(ev)
		return
	}

	if r, ok := keysym.Rune(ev.Keysym); ok {
		s.handleChar(r)
		return
	}

	switch ev.Keysym {
	case keysym.BackSpace:
		s.handleBackspace()
	case keysym.Left:
		s.history.Rotate(1)
		s.disarm()
	case keysym.Right:
		s.history.Rotate(-1)
		s.disarm()
	case keysym.Up, keysym.Down, keysym.Home, keysym.End, keysym.PageUp, keysym.PageDown:
		s.history.Clear()
		s.disarm()
	}
}

// handleChar records a typed character and, for non-word characters, runs
// the hotstring matcher. Tab is special: with no match it advances the
// caret plan when one is armed, otherwise it falls through as a literal
// tab since the grab swallowed the original.
func (s *Service) handleChar(r rune) {
	s.history.Push(r)
	s.lastExpanded = nil

	if isWordRune(r) {
		return
	}

	p := s.matchHotstring(r)
	switch {
	case p == nil && r == '\t':
		if s.caret != nil {
			if off, ok := s.caret.Next(); ok {
				s.kb.CaretRight(off)
				return
			}
			s.caret = nil
		}
		s.kb.SendString("\t")
	case p != nil && r == '\t':
		s.trigger(p, "", true)
	case p != nil:
		s.trigger(p, string(r), true)
	}
}

// handleBackspace undoes the whole last expansion when enabled: any
// remaining caret stops are consumed first so the caret sits at the end of
// the expansion, then one backspace per remaining character is injected.
// The user's own backspace already removed the last one.
func (s *Service) handleBackspace() {
	if s.opts.BackspaceUndo && len(s.lastExpanded) > 0 {
		if s.caret != nil {
			for {
				off, ok := s.caret.Next()
				if !ok {
					break
				}
				s.kb.CaretRight(off)
			}
			s.caret = nil
		}
		s.kb.SendBackspace(len(s.lastExpanded) - 1)
		s.lastExpanded = nil
	}
	s.history.Pop()
}

func (s *Service) handleHotkey(ev x11.KeyEvent) {
	key := keysym.ToString(ev.Keysym)
	if key == "" {
		return
	}
	p, action := s.matchHotkey(key, ev.Mods)
	switch {
	case action == actionTogglePause:
		s.TogglePause()
	case action == actionShowManager:
		s.notify.ShowManager()
	case p != nil:
		s.trigger(p, "", false)
	}
}

// trigger expands and delivers a matched phrase. remove is false for
// hotkey matches, which have no typed hotstring to erase; it also keeps
// the undo buffer unarmed since there is nothing the user typed to
// restore.
func (s *Service) trigger(p *phrase.Phrase, includeChar string, remove bool) {
	var text string
	if p.Script {
		text = trimOutput(s.runScript(s.expand(p.Body)))
	} else {
		text = s.expand(p.Body)
	}
	text += includeChar

	if remove {
		s.kb.SendBackspace(runeLen(p.Hotstring) + runeLen(includeChar))
		s.lastExpanded = []rune(text)
	}

	switch p.Send.Via {
	case phrase.SendClipboard:
		s.kb.SendStringClipboard(text, p.Send.Paste)
	default:
		s.kb.SendString(text)
	}

	if !p.Script && s.caret != nil {
		// Injected events may get lost if the caret moves immediately
		// after the replacement text.
		time.Sleep(50 * time.Millisecond)
		if off, ok := s.caret.Next(); ok {
			s.kb.CaretLeft(off)
		}
	}
}

// disarm drops the caret plan and the undo buffer. Any navigation that
// moves the caret away invalidates both.
func (s *Service) disarm() {
	s.caret = nil
	s.lastExpanded = nil
}

func clearsHistory(ks uint32) bool {
	switch ks {
	case keysym.Left, keysym.Right, keysym.Up, keysym.Down,
		keysym.Home, keysym.End, keysym.PageUp, keysym.PageDown:
		return true
	}
	return false
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func runeLen(s string) int {
	return len([]rune(s))
}
