package phrase

import "testing"

func TestTriggerMatches(t *testing.T) {
	tests := []struct {
		trigger Trigger
		r       rune
		want    bool
	}{
		{TriggerNonWord, ' ', true},
		{TriggerNonWord, '.', true},
		{TriggerNonWord, '\t', true},
		{TriggerNonWord, '\n', true},
		{TriggerNonWord, 'a', false},
		{TriggerNonWord, '7', false},
		{TriggerNonWord, 'é', false},
		{TriggerSpaceEnter, ' ', true},
		{TriggerSpaceEnter, '\n', true},
		{TriggerSpaceEnter, '\t', false},
		{TriggerSpaceEnter, '.', false},
		{TriggerTab, '\t', true},
		{TriggerTab, ' ', false},
	}
	for _, tt := range tests {
		if got := tt.trigger.Matches(tt.r); got != tt.want {
			t.Errorf("Trigger(%d).Matches(%q) = %v, want %v",
				tt.trigger, tt.r, got, tt.want)
		}
	}
}

func TestHotkeyModifierSet(t *testing.T) {
	h := Hotkey{Key: "p", Modifiers: []Modifier{ModShift, ModSuper}}
	set := h.ModifierSet()
	if len(set) != 2 || !set[ModShift] || !set[ModSuper] {
		t.Errorf("ModifierSet = %v", set)
	}
}

func TestStoreOrderAndLookup(t *testing.T) {
	s := NewStore()
	s.Add(&Phrase{ID: "1", Hotstring: "btw"})
	s.Add(&Phrase{ID: "2", Hotstring: "omw"})
	s.Add(&Phrase{ID: "3", Hotstring: "sig"})

	got := s.Phrases()
	if len(got) != 3 || got[0].ID != "1" || got[2].ID != "3" {
		t.Fatalf("unexpected order: %v", got)
	}

	p, ok := s.ByID("2")
	if !ok || p.Hotstring != "omw" {
		t.Error("ByID lookup failed")
	}

	// Replacing keeps position.
	s.Add(&Phrase{ID: "2", Hotstring: "omw2"})
	got = s.Phrases()
	if s.Len() != 3 || got[1].Hotstring != "omw2" {
		t.Error("replace should keep position")
	}

	removed, ok := s.Remove("1")
	if !ok || removed.Hotstring != "btw" {
		t.Error("Remove failed")
	}
	if s.Len() != 2 || s.Phrases()[0].ID != "2" {
		t.Error("order broken after Remove")
	}
	if _, ok := s.ByID("1"); ok {
		t.Error("removed phrase still resolvable")
	}
}
