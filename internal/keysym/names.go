package keysym

import (
	"strconv"
	"strings"
)

// names maps keysymdef.h names (XK_ prefix stripped) to keysym values for
// everything the xkb symbols parser and hotkey capture need to resolve.
var names = map[string]uint32{
	"space": 0x0020, "exclam": 0x0021, "quotedbl": 0x0022,
	"numbersign": 0x0023, "dollar": 0x0024, "percent": 0x0025,
	"ampersand": 0x0026, "apostrophe": 0x0027, "quoteright": 0x0027,
	"parenleft": 0x0028, "parenright": 0x0029, "asterisk": 0x002a,
	"plus": 0x002b, "comma": 0x002c, "minus": 0x002d, "period": 0x002e,
	"slash": 0x002f, "colon": 0x003a, "semicolon": 0x003b, "less": 0x003c,
	"equal": 0x003d, "greater": 0x003e, "question": 0x003f, "at": 0x0040,
	"bracketleft": 0x005b, "backslash": 0x005c, "bracketright": 0x005d,
	"asciicircum": 0x005e, "underscore": 0x005f, "grave": 0x0060,
	"quoteleft": 0x0060, "braceleft": 0x007b, "bar": 0x007c,
	"braceright": 0x007d, "asciitilde": 0x007e,

	"nobreakspace": 0x00a0, "exclamdown": 0x00a1, "cent": 0x00a2,
	"sterling": 0x00a3, "currency": 0x00a4, "yen": 0x00a5,
	"brokenbar": 0x00a6, "section": 0x00a7, "diaeresis": 0x00a8,
	"copyright": 0x00a9, "ordfeminine": 0x00aa, "guillemotleft": 0x00ab,
	"notsign": 0x00ac, "hyphen": 0x00ad, "registered": 0x00ae,
	"macron": 0x00af, "degree": 0x00b0, "plusminus": 0x00b1,
	"twosuperior": 0x00b2, "threesuperior": 0x00b3, "acute": 0x00b4,
	"mu": 0x00b5, "paragraph": 0x00b6, "periodcentered": 0x00b7,
	"cedilla": 0x00b8, "onesuperior": 0x00b9, "masculine": 0x00ba,
	"guillemotright": 0x00bb, "onequarter": 0x00bc, "onehalf": 0x00bd,
	"threequarters": 0x00be, "questiondown": 0x00bf,

	"Agrave": 0x00c0, "Aacute": 0x00c1, "Acircumflex": 0x00c2,
	"Atilde": 0x00c3, "Adiaeresis": 0x00c4, "Aring": 0x00c5, "AE": 0x00c6,
	"Ccedilla": 0x00c7, "Egrave": 0x00c8, "Eacute": 0x00c9,
	"Ecircumflex": 0x00ca, "Ediaeresis": 0x00cb, "Igrave": 0x00cc,
	"Iacute": 0x00cd, "Icircumflex": 0x00ce, "Idiaeresis": 0x00cf,
	"ETH": 0x00d0, "Ntilde": 0x00d1, "Ograve": 0x00d2, "Oacute": 0x00d3,
	"Ocircumflex": 0x00d4, "Otilde": 0x00d5, "Odiaeresis": 0x00d6,
	"multiply": 0x00d7, "Oslash": 0x00d8, "Ooblique": 0x00d8,
	"Ugrave": 0x00d9, "Uacute": 0x00da, "Ucircumflex": 0x00db,
	"Udiaeresis": 0x00dc, "Yacute": 0x00dd, "THORN": 0x00de,
	"ssharp": 0x00df, "agrave": 0x00e0, "aacute": 0x00e1,
	"acircumflex": 0x00e2, "atilde": 0x00e3, "adiaeresis": 0x00e4,
	"aring": 0x00e5, "ae": 0x00e6, "ccedilla": 0x00e7, "egrave": 0x00e8,
	"eacute": 0x00e9, "ecircumflex": 0x00ea, "ediaeresis": 0x00eb,
	"igrave": 0x00ec, "iacute": 0x00ed, "icircumflex": 0x00ee,
	"idiaeresis": 0x00ef, "eth": 0x00f0, "ntilde": 0x00f1,
	"ograve": 0x00f2, "oacute": 0x00f3, "ocircumflex": 0x00f4,
	"otilde": 0x00f5, "odiaeresis": 0x00f6, "division": 0x00f7,
	"oslash": 0x00f8, "ooblique": 0x00f8, "ugrave": 0x00f9,
	"uacute": 0x00fa, "ucircumflex": 0x00fb, "udiaeresis": 0x00fc,
	"yacute": 0x00fd, "thorn": 0x00fe, "ydiaeresis": 0x00ff,

	"EuroSign": 0x20ac,

	"BackSpace": BackSpace, "Tab": Tab, "Linefeed": Linefeed,
	"Clear": Clear, "Return": Return, "Pause": Pause, "Escape": Escape,
	"Delete": Delete, "Home": Home, "Left": Left, "Up": Up, "Right": Right,
	"Down": Down, "Prior": PageUp, "Page_Up": PageUp, "Next": PageDown,
	"Page_Down": PageDown, "End": End, "Begin": Begin, "Insert": Insert,
	"Menu": Menu, "Num_Lock": NumLock, "Mode_switch": ModeSwitch,

	"KP_Space": KPSpace, "KP_Tab": KPTab, "KP_Enter": KPEnter,
	"KP_Home": KPHome, "KP_Left": KPLeft, "KP_Up": KPUp,
	"KP_Right": KPRight, "KP_Down": KPDown, "KP_Prior": KPPageUp,
	"KP_Page_Up": KPPageUp, "KP_Next": KPPageDown, "KP_Page_Down": KPPageDown,
	"KP_End": KPEnd, "KP_Begin": KPBegin, "KP_Insert": KPInsert,
	"KP_Delete": KPDelete, "KP_Multiply": KPMultiply, "KP_Add": KPAdd,
	"KP_Separator": KPSeparator, "KP_Subtract": KPSubtract,
	"KP_Decimal": KPDecimal, "KP_Divide": KPDivide, "KP_Equal": KPEqual,
	"KP_0": KP0, "KP_1": KP0 + 1, "KP_2": KP0 + 2, "KP_3": KP0 + 3,
	"KP_4": KP0 + 4, "KP_5": KP0 + 5, "KP_6": KP0 + 6, "KP_7": KP0 + 7,
	"KP_8": KP0 + 8, "KP_9": KP9,

	"F1": F1, "F2": F1 + 1, "F3": F1 + 2, "F4": F1 + 3, "F5": F1 + 4,
	"F6": F1 + 5, "F7": F1 + 6, "F8": F1 + 7, "F9": F1 + 8, "F10": F1 + 9,
	"F11": F1 + 10, "F12": F12,

	"Shift_L": ShiftL, "Shift_R": ShiftR, "Control_L": ControlL,
	"Control_R": ControlR, "Caps_Lock": CapsLock, "Shift_Lock": ShiftLock,
	"Meta_L": MetaL, "Meta_R": MetaR, "Alt_L": AltL, "Alt_R": AltR,
	"Super_L": SuperL, "Super_R": SuperR, "Hyper_L": HyperL,
	"Hyper_R": HyperR, "ISO_Level3_Shift": ISOLevel3Shift,
	"ISO_Left_Tab": ISOLeftTab,

	"dead_grave": 0xfe50, "dead_acute": 0xfe51, "dead_circumflex": 0xfe52,
	"dead_tilde": 0xfe53, "dead_macron": 0xfe54, "dead_breve": 0xfe55,
	"dead_abovedot": 0xfe56, "dead_diaeresis": 0xfe57,
	"dead_abovering": 0xfe58, "dead_doubleacute": 0xfe59,
	"dead_caron": 0xfe5a, "dead_cedilla": 0xfe5b, "dead_ogonek": 0xfe5c,
	"dead_iota": 0xfe5d, "dead_belowdot": 0xfe60,

	"NoSymbol": 0, "VoidSymbol": VoidSymbol,

	// Digits and ASCII letters alias themselves in keysymdef.
	"0": 0x30, "1": 0x31, "2": 0x32, "3": 0x33, "4": 0x34,
	"5": 0x35, "6": 0x36, "7": 0x37, "8": 0x38, "9": 0x39,
}

// keysymNames is the reverse of names, preferring the canonical spelling.
var keysymNames map[uint32]string

func init() {
	// Single-letter names resolve through fromRune; registering them here
	// keeps FromName total over what symbols files actually contain.
	for c := 'A'; c <= 'Z'; c++ {
		names[string(c)] = uint32(c)
	}
	for c := 'a'; c <= 'z'; c++ {
		names[string(c)] = uint32(c)
	}

	keysymNames = make(map[uint32]string, len(names))
	for name, ks := range names {
		if prev, ok := keysymNames[ks]; !ok || name < prev {
			keysymNames[ks] = name
		}
	}
	// Canonical spellings where aliases exist.
	keysymNames[0x0027] = "apostrophe"
	keysymNames[0x0060] = "grave"
	keysymNames[0x00d8] = "Oslash"
	keysymNames[0x00f8] = "oslash"
	keysymNames[PageUp] = "Page_Up"
	keysymNames[PageDown] = "Page_Down"
	keysymNames[KPPageUp] = "KP_Page_Up"
	keysymNames[KPPageDown] = "KP_Page_Down"
}

// FromName resolves a keysym name. Besides table names it accepts the
// UXXXX Unicode form and 0x-prefixed hex values that appear in xkb
// symbols files.
func FromName(name string) (uint32, bool) {
	if ks, ok := names[name]; ok {
		return ks, true
	}
	if len(name) > 1 && name[0] == 'U' {
		if cp, err := strconv.ParseUint(name[1:], 16, 32); err == nil {
			return unicodeOffset | uint32(cp), true
		}
	}
	if strings.HasPrefix(name, "0x") || strings.HasPrefix(name, "0X") {
		if v, err := strconv.ParseUint(name[2:], 16, 32); err == nil {
			return uint32(v), true
		}
	}
	return 0, false
}

// Name returns the keysymdef name for a keysym, or "" when unknown.
func Name(ks uint32) string {
	if name, ok := keysymNames[ks]; ok {
		return name
	}
	return ""
}
