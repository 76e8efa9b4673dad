// Package phrase defines the phrase records the expansion engine matches
// against, and a read-only snapshot interface over them. How phrases are
// persisted is the manager's business; the engine only ever reads the
// current snapshot.
package phrase

import (
	"sync"
	"unicode"
)

// Trigger selects which typed character completes a hotstring match.
type Trigger int

const (
	// TriggerNonWord fires on any non-alphanumeric character.
	TriggerNonWord Trigger = iota
	// TriggerSpaceEnter fires on space or newline only.
	TriggerSpaceEnter
	// TriggerTab fires on tab only.
	TriggerTab
)

// Matches reports whether the typed character completes a hotstring under
// this policy.
func (t Trigger) Matches(r rune) bool {
	switch t {
	case TriggerSpaceEnter:
		return r == ' ' || r == '\n'
	case TriggerTab:
		return r == '\t'
	default:
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}
}

// SendVia selects how a replacement reaches the focused window.
type SendVia int

const (
	// SendKeyboard synthesizes a key event per character.
	SendKeyboard SendVia = iota
	// SendClipboard stages the text in the clipboard and pastes it.
	SendClipboard
)

// PasteMethod selects the chord used for clipboard pasting.
type PasteMethod int

const (
	PasteCtrlV PasteMethod = iota
	PasteCtrlShiftV
	PasteShiftInsert
)

// SendMethod is a phrase's configured delivery.
type SendMethod struct {
	Via   SendVia
	Paste PasteMethod
}

// Modifier is a semantic modifier role in a hotkey.
type Modifier string

const (
	ModShift   Modifier = "Shift"
	ModControl Modifier = "Control"
	ModAlt     Modifier = "Alt"
	ModAltGr   Modifier = "AltGr"
	ModSuper   Modifier = "Super"
)

// Hotkey is a key plus the exact set of modifier roles that must be held.
type Hotkey struct {
	Key       string
	Modifiers []Modifier
}

// ModifierSet returns the required roles as a set.
func (h Hotkey) ModifierSet() map[Modifier]bool {
	set := make(map[Modifier]bool, len(h.Modifiers))
	for _, m := range h.Modifiers {
		set[m] = true
	}
	return set
}

// TitleFilter restricts a phrase to windows whose title contains a
// substring.
type TitleFilter struct {
	Substring     string
	CaseSensitive bool
}

// Phrase is one expansion record. The engine treats phrases as immutable;
// edits go through the store.
type Phrase struct {
	ID   string
	Name string

	// Body is the replacement text, or the command line when Script is
	// set. Date tokens, $C/$S insertions and $| caret markers are
	// expanded at trigger time.
	Body   string
	Script bool
	Send   SendMethod

	Hotstring string
	Trigger   Trigger
	Hotkey    *Hotkey

	// WindowClasses limits matching to the listed window classes; empty
	// means any window. Title further requires a title substring.
	WindowClasses []string
	Title         *TitleFilter
}

// Snapshot is the read-only view the engine matches against. Iteration
// order is the registration order and is stable between mutations.
type Snapshot interface {
	Phrases() []*Phrase
	ByID(id string) (*Phrase, bool)
}

// Store is an ordered, concurrency-safe phrase collection. The manager
// mutates it from its own thread while the engine reads snapshots on the
// dispatcher.
type Store struct {
	mu      sync.RWMutex
	ordered []*Phrase
	byID    map[string]*Phrase
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{byID: make(map[string]*Phrase)}
}

// Phrases returns the phrases in registration order. The slice is a copy;
// the phrases themselves are shared and must not be mutated.
func (s *Store) Phrases() []*Phrase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Phrase, len(s.ordered))
	copy(out, s.ordered)
	return out
}

// ByID looks up a phrase by id.
func (s *Store) ByID(id string) (*Phrase, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byID[id]
	return p, ok
}

// Add appends a phrase. A phrase with a duplicate id replaces the original
// in place, keeping its position.
func (s *Store) Add(p *Phrase) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[p.ID]; ok {
		for i, have := range s.ordered {
			if have.ID == p.ID {
				s.ordered[i] = p
				break
			}
		}
	} else {
		s.ordered = append(s.ordered, p)
	}
	s.byID[p.ID] = p
}

// Remove deletes a phrase by id and returns it, if present.
func (s *Store) Remove(id string) (*Phrase, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	delete(s.byID, id)
	for i, have := range s.ordered {
		if have.ID == id {
			s.ordered = append(s.ordered[:i], s.ordered[i+1:]...)
			break
		}
	}
	return p, true
}

// Len returns the number of phrases.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ordered)
}
