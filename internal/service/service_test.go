package service

import (
	"testing"
	"time"

	"github.com/wezm/Xpander/internal/keysym"
	"github.com/wezm/Xpander/internal/phrase"
	"github.com/wezm/Xpander/internal/x11"
)

// fakeKeyboard records every injection the engine asks for.
type fakeKeyboard struct {
	sent       []string
	pasted     []string
	backspaces []int
	caretLeft  []int
	caretRight []int
	grabs      []phrase.Hotkey
	ungrabs    []phrase.Hotkey

	class     string
	title     string
	clipboard string
	selection string
}

func (f *fakeKeyboard) SendString(text string) { f.sent = append(f.sent, text) }
func (f *fakeKeyboard) SendStringClipboard(text string, _ phrase.PasteMethod) {
	f.pasted = append(f.pasted, text)
}
func (f *fakeKeyboard) SendBackspace(n int)           { f.backspaces = append(f.backspaces, n) }
func (f *fakeKeyboard) CaretLeft(n int)               { f.caretLeft = append(f.caretLeft, n) }
func (f *fakeKeyboard) CaretRight(n int)              { f.caretRight = append(f.caretRight, n) }
func (f *fakeKeyboard) GrabHotkey(hk phrase.Hotkey)   { f.grabs = append(f.grabs, hk) }
func (f *fakeKeyboard) UngrabHotkey(hk phrase.Hotkey) { f.ungrabs = append(f.ungrabs, hk) }
func (f *fakeKeyboard) ActiveWindowClass() string     { return f.class }
func (f *fakeKeyboard) ActiveWindowTitle() string     { return f.title }
func (f *fakeKeyboard) ClipboardText() string         { return f.clipboard }
func (f *fakeKeyboard) SelectionText() string         { return f.selection }

type fakeNotifier struct {
	toggles []bool
	shows   int
}

func (f *fakeNotifier) ServiceToggled(paused bool) { f.toggles = append(f.toggles, paused) }
func (f *fakeNotifier) ShowManager()               { f.shows++ }

func newTestService(t *testing.T, phrases ...*phrase.Phrase) (*Service, *fakeKeyboard, *fakeNotifier) {
	t.Helper()
	store := phrase.NewStore()
	for _, p := range phrases {
		store.Add(p)
	}
	kb := &fakeKeyboard{}
	nf := &fakeNotifier{}
	svc := New(kb, store, nf, Options{
		BackspaceUndo: true,
		ScriptTimeout: 2 * time.Second,
		PauseHotkey:   &phrase.Hotkey{Key: "p", Modifiers: []phrase.Modifier{phrase.ModShift, phrase.ModSuper}},
		ShowManagerHotkey: &phrase.Hotkey{
			Key: "m", Modifiers: []phrase.Modifier{phrase.ModShift, phrase.ModSuper},
		},
	})
	return svc, kb, nf
}

func press(svc *Service, ks uint32) {
	svc.HandleKey(x11.KeyEvent{Keysym: ks, Press: true})
}

func typeText(svc *Service, text string) {
	for _, r := range text {
		switch r {
		case '\t':
			press(svc, keysym.Tab)
		case '\n':
			press(svc, keysym.Return)
		default:
			press(svc, uint32(r))
		}
	}
}

func textPhrase(id, hotstring, body string) *phrase.Phrase {
	return &phrase.Phrase{ID: id, Name: id, Hotstring: hotstring, Body: body}
}

func TestHotstringExpansion(t *testing.T) {
	svc, kb, _ := newTestService(t, textPhrase("addr", "addr", "Some Street 1"))

	typeText(svc, "my addr ")

	if len(kb.backspaces) != 1 || kb.backspaces[0] != 5 {
		t.Fatalf("backspaces = %v, want [5] for hotstring plus trigger", kb.backspaces)
	}
	if len(kb.sent) != 1 || kb.sent[0] != "Some Street 1 " {
		t.Fatalf("sent = %q, want replacement with trigger char appended", kb.sent)
	}
}

func TestHotstringNotFiredMidWord(t *testing.T) {
	svc, kb, _ := newTestService(t, textPhrase("addr", "addr", "Some Street 1"))

	// No trigger character typed yet.
	typeText(svc, "addr")
	if len(kb.sent) != 0 {
		t.Fatalf("expansion fired without trigger: %v", kb.sent)
	}

	// The hotstring is interrupted, the trigger must not match.
	typeText(svc, "x ")
	if len(kb.sent) != 0 {
		t.Fatalf("expansion fired on broken hotstring: %v", kb.sent)
	}
}

func TestLongestHotstringWins(t *testing.T) {
	svc, kb, _ := newTestService(t,
		textPhrase("short", "ail2", "short"),
		textPhrase("long", "mail2", "long"),
	)

	typeText(svc, "mail2 ")
	if len(kb.sent) != 1 || kb.sent[0] != "long " {
		t.Fatalf("sent = %v, want the longer hotstring's body", kb.sent)
	}
}

func TestTriggerPolicies(t *testing.T) {
	spaceEnter := textPhrase("se", "sig", "Regards")
	spaceEnter.Trigger = phrase.TriggerSpaceEnter
	tab := textPhrase("tab", "tbl", "Table")
	tab.Trigger = phrase.TriggerTab

	svc, kb, _ := newTestService(t, spaceEnter, tab)

	// Period is not space or enter.
	typeText(svc, "sig.")
	if len(kb.sent) != 0 {
		t.Fatalf("space-enter phrase fired on period: %v", kb.sent)
	}

	typeText(svc, "sig\n")
	if len(kb.sent) != 1 || kb.sent[0] != "Regards\n" {
		t.Fatalf("sent = %v, want expansion on enter", kb.sent)
	}

	// Tab trigger: the tab is swallowed, not appended.
	kb.sent = nil
	kb.backspaces = nil
	typeText(svc, "tbl\t")
	if len(kb.sent) != 1 || kb.sent[0] != "Table" {
		t.Fatalf("sent = %v, want expansion without trigger char", kb.sent)
	}
	if len(kb.backspaces) != 1 || kb.backspaces[0] != 3 {
		t.Fatalf("backspaces = %v, want [3] for hotstring only", kb.backspaces)
	}
}

func TestBackspaceUndo(t *testing.T) {
	svc, kb, _ := newTestService(t, textPhrase("addr", "addr", "Some Street 1"))

	typeText(svc, "addr ")
	kb.backspaces = nil

	press(svc, keysym.BackSpace)
	// "Some Street 1 " is 14 characters; the user's backspace removed one.
	if len(kb.backspaces) != 1 || kb.backspaces[0] != 13 {
		t.Fatalf("backspaces = %v, want [13]", kb.backspaces)
	}

	// A second backspace is an ordinary one.
	press(svc, keysym.BackSpace)
	if len(kb.backspaces) != 1 {
		t.Fatalf("second backspace injected an undo: %v", kb.backspaces)
	}
}

func TestTypingDisarmsUndo(t *testing.T) {
	svc, kb, _ := newTestService(t, textPhrase("addr", "addr", "Some Street 1"))

	typeText(svc, "addr ")
	typeText(svc, "x")
	kb.backspaces = nil

	press(svc, keysym.BackSpace)
	if len(kb.backspaces) != 0 {
		t.Fatalf("undo fired after further typing: %v", kb.backspaces)
	}
}

func TestCaretPlan(t *testing.T) {
	svc, kb, _ := newTestService(t, textPhrase("t", ";t", "a$|b$|c"))

	typeText(svc, ";t ")
	if len(kb.sent) != 1 || kb.sent[0] != "abc " {
		t.Fatalf("sent = %v, want markers stripped", kb.sent)
	}
	if len(kb.caretLeft) != 1 || kb.caretLeft[0] != 2 {
		t.Fatalf("caretLeft = %v, want [2] back to the first marker", kb.caretLeft)
	}

	// Tab advances to the next marker instead of typing a tab.
	press(svc, keysym.Tab)
	if len(kb.caretRight) != 1 || kb.caretRight[0] != 1 {
		t.Fatalf("caretRight = %v, want [1]", kb.caretRight)
	}
	if len(kb.sent) != 1 {
		t.Fatalf("tab was typed while the plan was armed: %v", kb.sent)
	}

	// Plan exhausted, tab falls through as a literal.
	press(svc, keysym.Tab)
	if len(kb.sent) != 2 || kb.sent[1] != "\t" {
		t.Fatalf("sent = %v, want a literal tab after the plan", kb.sent)
	}
}

func TestWindowClassFilter(t *testing.T) {
	p := textPhrase("addr", "addr", "Some Street 1")
	p.WindowClasses = []string{"navigator.Firefox"}
	svc, kb, _ := newTestService(t, p)

	kb.class = "gnome-terminal.Gnome-terminal"
	typeText(svc, "addr ")
	if len(kb.sent) != 0 {
		t.Fatalf("phrase fired in an excluded window: %v", kb.sent)
	}

	kb.class = "navigator.Firefox"
	typeText(svc, "addr ")
	if len(kb.sent) != 1 {
		t.Fatalf("phrase did not fire in its window: %v", kb.sent)
	}
}

func TestWindowTitleFilter(t *testing.T) {
	p := textPhrase("addr", "addr", "Some Street 1")
	p.Title = &phrase.TitleFilter{Substring: "inbox"}
	svc, kb, _ := newTestService(t, p)

	kb.title = "INBOX - mail"
	typeText(svc, "addr ")
	if len(kb.sent) != 1 {
		t.Fatalf("case-insensitive title filter did not match: %v", kb.sent)
	}

	p.Title = &phrase.TitleFilter{Substring: "inbox", CaseSensitive: true}
	kb.sent = nil
	typeText(svc, "addr ")
	if len(kb.sent) != 0 {
		t.Fatalf("case-sensitive title filter matched wrong case: %v", kb.sent)
	}
}

func TestHotkeyExactModifiers(t *testing.T) {
	p := textPhrase("sig", "", "Regards")
	p.Hotkey = &phrase.Hotkey{Key: "m", Modifiers: []phrase.Modifier{phrase.ModControl}}
	svc, kb, _ := newTestService(t, p)

	svc.HandleKey(x11.KeyEvent{Keysym: 'm', Press: true, Mods: x11.Modifiers{Control: true, Alt: true}})
	if len(kb.sent) != 0 {
		t.Fatalf("hotkey fired with extra modifiers held: %v", kb.sent)
	}

	svc.HandleKey(x11.KeyEvent{Keysym: 'm', Press: true, Mods: x11.Modifiers{Control: true}})
	if len(kb.sent) != 1 || kb.sent[0] != "Regards" {
		t.Fatalf("sent = %v, want hotkey expansion", kb.sent)
	}
	// Hotkey expansions delete nothing and arm no undo.
	if len(kb.backspaces) != 0 {
		t.Fatalf("hotkey expansion removed text: %v", kb.backspaces)
	}
	press(svc, keysym.BackSpace)
	if len(kb.backspaces) != 0 {
		t.Fatal("hotkey expansion armed the undo buffer")
	}
}

func TestPauseHotkey(t *testing.T) {
	svc, kb, nf := newTestService(t, textPhrase("addr", "addr", "Some Street 1"))

	pause := x11.KeyEvent{Keysym: 'P', Press: true, Mods: x11.Modifiers{Shift: true, Super: true}}
	svc.HandleKey(pause)
	if !svc.Paused() {
		t.Fatal("pause hotkey did not pause")
	}
	if len(nf.toggles) != 1 || !nf.toggles[0] {
		t.Fatalf("toggles = %v, want [true]", nf.toggles)
	}

	typeText(svc, "addr ")
	if len(kb.sent) != 0 {
		t.Fatalf("phrase expanded while paused: %v", kb.sent)
	}

	// The reserved hotkey stays live while paused.
	svc.HandleKey(pause)
	if svc.Paused() {
		t.Fatal("pause hotkey did not resume")
	}
}

func TestShowManagerHotkey(t *testing.T) {
	svc, _, nf := newTestService(t)
	svc.HandleKey(x11.KeyEvent{Keysym: 'M', Press: true, Mods: x11.Modifiers{Shift: true, Super: true}})
	if nf.shows != 1 {
		t.Fatalf("shows = %d, want 1", nf.shows)
	}
}

func TestReleasesIgnored(t *testing.T) {
	svc, kb, _ := newTestService(t, textPhrase("addr", "addr", "Some Street 1"))
	for _, r := range "addr " {
		svc.HandleKey(x11.KeyEvent{Keysym: uint32(r), Press: true})
		svc.HandleKey(x11.KeyEvent{Keysym: uint32(r), Press: false})
	}
	if len(kb.sent) != 1 {
		t.Fatalf("sent = %v, releases corrupted matching", kb.sent)
	}
}

func TestNavigationClearsHistory(t *testing.T) {
	svc, kb, _ := newTestService(t, textPhrase("addr", "addr", "Some Street 1"))

	typeText(svc, "ad")
	press(svc, keysym.Home)
	typeText(svc, "dr ")
	if len(kb.sent) != 0 {
		t.Fatalf("phrase fired across a navigation key: %v", kb.sent)
	}
}

func TestArrowRotationKeepsMatching(t *testing.T) {
	svc, kb, _ := newTestService(t, textPhrase("addr", "addr", "Some Street 1"))

	// Type the hotstring with a typo, arrow back is a history rotation,
	// not a clear; a later complete hotstring still matches.
	typeText(svc, "adXr")
	press(svc, keysym.Left)
	press(svc, keysym.Right)
	typeText(svc, " addr ")
	if len(kb.sent) != 1 {
		t.Fatalf("sent = %v, want one expansion", kb.sent)
	}
}

func TestScriptPhrase(t *testing.T) {
	p := textPhrase("ip", "ip;", "echo 10.0.0.1")
	p.Script = true
	svc, kb, _ := newTestService(t, p)

	typeText(svc, "ip; ")
	if len(kb.sent) != 1 || kb.sent[0] != "10.0.0.1 " {
		t.Fatalf("sent = %v, want trimmed script output plus trigger", kb.sent)
	}
}

func TestScriptFailureConsumesHotstring(t *testing.T) {
	p := textPhrase("bad", "bad;", "/nonexistent/binary")
	p.Script = true
	svc, kb, _ := newTestService(t, p)

	typeText(svc, "bad; ")
	if len(kb.backspaces) != 1 || kb.backspaces[0] != 5 {
		t.Fatalf("backspaces = %v, want hotstring consumed despite failure", kb.backspaces)
	}
	if len(kb.sent) != 1 || kb.sent[0] != " " {
		t.Fatalf("sent = %v, want empty replacement plus trigger", kb.sent)
	}
}

func TestClipboardToken(t *testing.T) {
	svc, kb, _ := newTestService(t, textPhrase("q", "q;", "quote: $C"))
	kb.clipboard = "stored text"

	typeText(svc, "q; ")
	if len(kb.sent) != 1 || kb.sent[0] != "quote: stored text " {
		t.Fatalf("sent = %v", kb.sent)
	}
}

func TestClipboardSendMethod(t *testing.T) {
	p := textPhrase("big", "big;", "large body")
	p.Send = phrase.SendMethod{Via: phrase.SendClipboard, Paste: phrase.PasteCtrlShiftV}
	svc, kb, _ := newTestService(t, p)

	typeText(svc, "big; ")
	if len(kb.pasted) != 1 || kb.pasted[0] != "large body " {
		t.Fatalf("pasted = %v, want clipboard delivery", kb.pasted)
	}
	if len(kb.sent) != 0 {
		t.Fatalf("sent = %v, want nothing typed directly", kb.sent)
	}
}

func TestRegisterHotkeys(t *testing.T) {
	p := textPhrase("sig", "", "Regards")
	p.Hotkey = &phrase.Hotkey{Key: "m", Modifiers: []phrase.Modifier{phrase.ModControl}}
	svc, kb, _ := newTestService(t, p)

	svc.RegisterHotkeys()
	// Phrase hotkey, two reserved hotkeys and the bare Tab grab.
	if len(kb.grabs) != 4 {
		t.Fatalf("grabs = %v, want 4", kb.grabs)
	}
	last := kb.grabs[len(kb.grabs)-1]
	if last.Key != "Tab" || len(last.Modifiers) != 0 {
		t.Fatalf("last grab = %+v, want bare Tab", last)
	}

	svc.UnregisterHotkeys()
	if len(kb.ungrabs) != 4 {
		t.Fatalf("ungrabs = %v, want 4", kb.ungrabs)
	}
}
