package keysym

import "testing"

func TestRune(t *testing.T) {
	tests := []struct {
		name string
		ks   uint32
		want rune
		ok   bool
	}{
		{"ascii letter", 0x61, 'a', true},
		{"latin1", 0xe9, 'é', true},
		{"unicode offset", 0x01000153, 'œ', true},
		{"return", Return, '\n', true},
		{"tab", Tab, '\t', true},
		{"keypad digit", KP0 + 7, '7', true},
		{"keypad enter", KPEnter, '\n', true},
		{"backspace", BackSpace, 0, false},
		{"left arrow", Left, 0, false},
		{"shift", ShiftL, 0, false},
	}
	for _, tt := range tests {
		r, ok := Rune(tt.ks)
		if ok != tt.ok || r != tt.want {
			t.Errorf("%s: Rune(%#x) = %q, %v; want %q, %v",
				tt.name, tt.ks, r, ok, tt.want, tt.ok)
		}
	}
}

func TestFromName(t *testing.T) {
	tests := []struct {
		in   string
		want uint32
	}{
		{"a", 0x61},
		{"A", 0x41},
		{"eacute", 0xe9},
		{"dollar", 0x24},
		{"BackSpace", BackSpace},
		{"ISO_Level3_Shift", ISOLevel3Shift},
		{"U04E9", 0x010004e9},
		{"0x100263a", 0x100263a},
		{"KP_7", KP0 + 7},
	}
	for _, tt := range tests {
		got, ok := FromName(tt.in)
		if !ok || got != tt.want {
			t.Errorf("FromName(%q) = %#x, %v; want %#x", tt.in, got, ok, tt.want)
		}
	}

	if _, ok := FromName("no_such_keysym"); ok {
		t.Error("FromName should fail on unknown names")
	}
}

func TestFromStringRoundTrip(t *testing.T) {
	for _, s := range []string{"a", "Z", "é", "\t", "\n", "\b", "$"} {
		if FromString(s) == 0 {
			t.Errorf("FromString(%q) = 0", s)
		}
	}
	if got := FromString("Left"); got != Left {
		t.Errorf("FromString(Left) = %#x, want %#x", got, Left)
	}
}

func TestIsKeypad(t *testing.T) {
	if !IsKeypad(KP0) || !IsKeypad(KPEnter) || !IsKeypad(KPEqual) {
		t.Error("keypad keysyms not detected")
	}
	if IsKeypad(Return) || IsKeypad(0x61) {
		t.Error("non-keypad keysyms detected as keypad")
	}
}

func TestFixedIndex(t *testing.T) {
	for _, ks := range []uint32{BackSpace, Tab, Return, Left, End, F1} {
		if !FixedIndex(ks) {
			t.Errorf("FixedIndex(%#x) = false, want true", ks)
		}
	}
	for _, ks := range []uint32{uint32('a'), KP0, KPEnter, 0x010004e9} {
		if FixedIndex(ks) {
			t.Errorf("FixedIndex(%#x) = true, want false", ks)
		}
	}
}
