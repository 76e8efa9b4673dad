package service

import (
	"strings"

	"github.com/wezm/Xpander/internal/phrase"
	"github.com/wezm/Xpander/internal/x11"
)

type reservedAction int

const (
	actionNone reservedAction = iota
	actionTogglePause
	actionShowManager
)

// matchHotstring finds the phrase whose hotstring the user just finished
// typing. The trigger character itself is excluded from the comparison.
// When several hotstrings end the history, the longest one wins so "mail2"
// beats "ail2".
func (s *Service) matchHotstring(trigger rune) *phrase.Phrase {
	if s.paused.Load() {
		return nil
	}
	typed := s.history.Typed()

	var best *phrase.Phrase
	for _, p := range s.phrases.Phrases() {
		if p.Hotstring == "" {
			continue
		}
		if !p.Trigger.Matches(trigger) {
			continue
		}
		if !s.windowFilterMatches(p) {
			continue
		}
		if !strings.HasSuffix(typed, p.Hotstring) {
			continue
		}
		if best == nil || runeLen(p.Hotstring) > runeLen(best.Hotstring) {
			best = p
		}
	}
	return best
}

// matchHotkey resolves a command chord to a phrase or a reserved action.
// Phrase hotkeys are suspended while paused; the reserved combinations are
// checked after them and stay live so the pause hotkey can unpause.
func (s *Service) matchHotkey(key string, mods x11.Modifiers) (*phrase.Phrase, reservedAction) {
	held := mods.Roles()

	if !s.paused.Load() {
		for _, p := range s.phrases.Phrases() {
			if p.Hotkey == nil {
				continue
			}
			if !hotkeyMatches(*p.Hotkey, key, held) {
				continue
			}
			if !s.windowFilterMatches(p) {
				continue
			}
			return p, actionNone
		}
	}

	if s.opts.PauseHotkey != nil && hotkeyMatches(*s.opts.PauseHotkey, key, held) {
		return nil, actionTogglePause
	}
	if s.opts.ShowManagerHotkey != nil && hotkeyMatches(*s.opts.ShowManagerHotkey, key, held) {
		return nil, actionShowManager
	}
	return nil, actionNone
}

// hotkeyMatches requires the exact modifier set: a hotkey bound to
// Control+m must not fire on Control+Alt+m, else the two could never
// coexist as distinct bindings.
func hotkeyMatches(hk phrase.Hotkey, key string, held map[phrase.Modifier]bool) bool {
	if !strings.EqualFold(hk.Key, key) {
		return false
	}
	required := hk.ModifierSet()
	if len(required) != len(held) {
		return false
	}
	for m := range required {
		if !held[m] {
			return false
		}
	}
	return true
}

// windowFilterMatches applies a phrase's window restrictions against the
// focus snapshot. An empty class list and nil title filter match anything.
func (s *Service) windowFilterMatches(p *phrase.Phrase) bool {
	if len(p.WindowClasses) > 0 {
		class := s.kb.ActiveWindowClass()
		found := false
		for _, want := range p.WindowClasses {
			if class == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if p.Title != nil {
		title := s.kb.ActiveWindowTitle()
		if p.Title.CaseSensitive {
			if !strings.Contains(title, p.Title.Substring) {
				return false
			}
		} else {
			if !strings.Contains(strings.ToLower(title), strings.ToLower(p.Title.Substring)) {
				return false
			}
		}
	}
	return true
}
