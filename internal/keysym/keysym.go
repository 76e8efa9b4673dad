// Package keysym provides X11 keysym constants and translation between
// keysyms, printable characters and keysym names.
//
// The tables cover the Latin-1 range, the function/editing key block and the
// keypad block, plus the 0x01000000-offset rule for Unicode keysyms. Names
// follow /usr/include/X11/keysymdef.h with the XK_ prefix stripped.
package keysym

// Special keysyms referenced throughout the engine.
const (
	VoidSymbol uint32 = 0xffffff

	BackSpace uint32 = 0xff08
	Tab       uint32 = 0xff09
	Linefeed  uint32 = 0xff0a
	Clear     uint32 = 0xff0b
	Return    uint32 = 0xff0d
	Pause     uint32 = 0xff13
	Escape    uint32 = 0xff1b
	Delete    uint32 = 0xffff

	Home     uint32 = 0xff50
	Left     uint32 = 0xff51
	Up       uint32 = 0xff52
	Right    uint32 = 0xff53
	Down     uint32 = 0xff54
	PageUp   uint32 = 0xff55
	PageDown uint32 = 0xff56
	End      uint32 = 0xff57
	Begin    uint32 = 0xff58
	Insert   uint32 = 0xff63
	Menu     uint32 = 0xff67

	NumLock     uint32 = 0xff7f
	KPSpace     uint32 = 0xff80
	KPTab       uint32 = 0xff89
	KPEnter     uint32 = 0xff8d
	KPHome      uint32 = 0xff95
	KPLeft      uint32 = 0xff96
	KPUp        uint32 = 0xff97
	KPRight     uint32 = 0xff98
	KPDown      uint32 = 0xff99
	KPPageUp    uint32 = 0xff9a
	KPPageDown  uint32 = 0xff9b
	KPEnd       uint32 = 0xff9c
	KPBegin     uint32 = 0xff9d
	KPInsert    uint32 = 0xff9e
	KPDelete    uint32 = 0xff9f
	KPMultiply  uint32 = 0xffaa
	KPAdd       uint32 = 0xffab
	KPSeparator uint32 = 0xffac
	KPSubtract  uint32 = 0xffad
	KPDecimal   uint32 = 0xffae
	KPDivide    uint32 = 0xffaf
	KP0         uint32 = 0xffb0
	KP9         uint32 = 0xffb9
	KPEqual     uint32 = 0xffbd

	F1  uint32 = 0xffbe
	F12 uint32 = 0xffc9

	ShiftL         uint32 = 0xffe1
	ShiftR         uint32 = 0xffe2
	ControlL       uint32 = 0xffe3
	ControlR       uint32 = 0xffe4
	CapsLock       uint32 = 0xffe5
	ShiftLock      uint32 = 0xffe6
	MetaL          uint32 = 0xffe7
	MetaR          uint32 = 0xffe8
	AltL           uint32 = 0xffe9
	AltR           uint32 = 0xffea
	SuperL         uint32 = 0xffeb
	SuperR         uint32 = 0xffec
	HyperL         uint32 = 0xffed
	HyperR         uint32 = 0xffee
	ISOLevel3Shift uint32 = 0xfe03
	ISOLeftTab     uint32 = 0xfe20
	ModeSwitch     uint32 = 0xff7e

	space uint32 = 0x0020
)

// unicodeOffset marks keysyms that directly encode a Unicode code point.
const unicodeOffset uint32 = 0x01000000

// IsKeypad reports whether ks lies in the keypad keysym block.
func IsKeypad(ks uint32) bool {
	return ks >= KPSpace && ks <= KPEqual
}

// FixedIndex reports whether the keysym at column 0 should be kept regardless
// of the modifier-derived column index. This covers the function and editing
// block (BackSpace, Tab, arrows, F-keys and friends) but not keypad keys,
// whose column selects between navigation and digit meanings.
func FixedIndex(ks uint32) bool {
	if IsKeypad(ks) {
		return false
	}
	return (ks >= 0xff00 && ks <= 0xffff) || ks == ISOLeftTab || ks == ISOLevel3Shift
}

// Rune returns the printable character for a keysym, if it has one.
// Return and Linefeed map to '\n' and Tab to '\t' so the input history can
// treat them as typed characters.
func Rune(ks uint32) (rune, bool) {
	switch {
	case ks >= 0x20 && ks <= 0x7e:
		return rune(ks), true
	case ks >= 0xa0 && ks <= 0xff:
		return rune(ks), true
	case ks&unicodeOffset != 0 && ks > unicodeOffset:
		return rune(ks &^ unicodeOffset), true
	case ks == Return || ks == Linefeed || ks == KPEnter:
		return '\n', true
	case ks == Tab || ks == KPTab:
		return '\t', true
	case ks >= KP0 && ks <= KP9:
		return rune('0' + ks - KP0), true
	case ks == KPMultiply:
		return '*', true
	case ks == KPAdd:
		return '+', true
	case ks == KPSubtract:
		return '-', true
	case ks == KPDecimal:
		return '.', true
	case ks == KPDivide:
		return '/', true
	case ks == KPEqual:
		return '=', true
	case ks == KPSpace:
		return ' ', true
	}
	return 0, false
}

// ToString returns the printable character for a keysym, or its name when it
// has no printable form, or "" when the keysym is unknown.
func ToString(ks uint32) string {
	if r, ok := Rune(ks); ok {
		return string(r)
	}
	return Name(ks)
}

// FromString resolves a single printable character or a keysym name to a
// keysym. Returns 0 when the string resolves to nothing.
func FromString(s string) uint32 {
	switch s {
	case "\b":
		return BackSpace
	case "\t":
		return Tab
	case "\n":
		return Return
	}
	runes := []rune(s)
	if len(runes) == 1 {
		if ks, ok := fromRune(runes[0]); ok {
			return ks
		}
	}
	if ks, ok := FromName(s); ok {
		return ks
	}
	return 0
}

func fromRune(r rune) (uint32, bool) {
	switch {
	case r >= 0x20 && r <= 0x7e:
		return uint32(r), true
	case r >= 0xa0 && r <= 0xff:
		return uint32(r), true
	case r > 0xff:
		return unicodeOffset | uint32(r), true
	}
	return 0, false
}
