package x11

import (
	"testing"

	"github.com/jezek/xgb/xproto"

	"github.com/wezm/Xpander/internal/keysym"
)

// fakeMapping builds a snapshot fetcher over a small two-column table and
// counts fetches so tests can assert on cache behavior.
func fakeMapping(t *testing.T, table map[xproto.Keycode][2]uint32) (func() (*mappingSnapshot, error), *int) {
	t.Helper()
	fetches := 0
	fetch := func() (*mappingSnapshot, error) {
		fetches++
		var min, max xproto.Keycode = 8, 20
		syms := make([]xproto.Keysym, int(max-min+1)*2)
		for kc, pair := range table {
			offset := int(kc-min) * 2
			syms[offset] = xproto.Keysym(pair[0])
			syms[offset+1] = xproto.Keysym(pair[1])
		}
		return &mappingSnapshot{
			minKeycode: min,
			maxKeycode: max,
			perKeycode: 2,
			keysyms:    syms,
		}, nil
	}
	return fetch, &fetches
}

func TestKeycodeToKeysym(t *testing.T) {
	fetch, fetches := fakeMapping(t, map[xproto.Keycode][2]uint32{
		10: {'a', 'A'},
	})
	c := newKeymapCache(fetch)

	ks, err := c.KeycodeToKeysym(10, 0)
	if err != nil || ks != 'a' {
		t.Fatalf("KeycodeToKeysym(10, 0) = %#x, %v", ks, err)
	}
	ks, err = c.KeycodeToKeysym(10, 1)
	if err != nil || ks != 'A' {
		t.Fatalf("KeycodeToKeysym(10, 1) = %#x, %v", ks, err)
	}
	if ks, _ := c.KeycodeToKeysym(10, 5); ks != 0 {
		t.Errorf("out of range column = %#x, want 0", ks)
	}
	if ks, _ := c.KeycodeToKeysym(200, 0); ks != 0 {
		t.Errorf("out of range keycode = %#x, want 0", ks)
	}
	if *fetches != 1 {
		t.Errorf("fetches = %d, want 1", *fetches)
	}
}

func TestLookupKeycodePrefersBaseColumn(t *testing.T) {
	// 'x' is the shifted keysym on keycode 9 and the base keysym on
	// keycode 15. The base binding must win.
	fetch, _ := fakeMapping(t, map[xproto.Keycode][2]uint32{
		9:  {'y', 'x'},
		15: {'x', 'X'},
	})
	c := newKeymapCache(fetch)

	kc, err := c.LookupKeycode('x')
	if err != nil || kc != 15 {
		t.Fatalf("LookupKeycode('x') = %d, %v, want 15", kc, err)
	}
	if kc, _ := c.LookupKeycode(0xffff); kc != 0 {
		t.Errorf("unbound keysym = %d, want 0", kc)
	}
}

func TestInvalidateForcesRefetch(t *testing.T) {
	fetch, fetches := fakeMapping(t, map[xproto.Keycode][2]uint32{
		10: {'a', 'A'},
	})
	c := newKeymapCache(fetch)

	if _, err := c.LookupKeycode('a'); err != nil {
		t.Fatal(err)
	}
	if _, err := c.LookupKeycode('A'); err != nil {
		t.Fatal(err)
	}
	if *fetches != 1 {
		t.Fatalf("fetches before invalidate = %d, want 1", *fetches)
	}

	c.Invalidate()
	if _, err := c.LookupKeycode('a'); err != nil {
		t.Fatal(err)
	}
	if *fetches != 2 {
		t.Errorf("fetches after invalidate = %d, want 2", *fetches)
	}
}

func TestIsKeypad(t *testing.T) {
	fetch, _ := fakeMapping(t, map[xproto.Keycode][2]uint32{
		10: {'a', 'A'},
		12: {keysym.KPEnd, keysym.KP0 + 1},
	})
	c := newKeymapCache(fetch)

	if !c.IsKeypad(12) {
		t.Error("keycode 12 carries KP keysyms, IsKeypad = false")
	}
	if c.IsKeypad(10) {
		t.Error("keycode 10 is not keypad, IsKeypad = true")
	}
}

func TestStateMemoization(t *testing.T) {
	fetch, _ := fakeMapping(t, map[xproto.Keycode][2]uint32{
		10: {'a', 'A'},
	})
	c := newKeymapCache(fetch)

	resolves := 0
	resolve := func(ks uint32) (keycodeState, error) {
		resolves++
		return keycodeState{keycode: 10, state: 1}, nil
	}

	for n := 0; n < 3; n++ {
		entry, err := c.State('a', resolve)
		if err != nil {
			t.Fatal(err)
		}
		if entry.keycode != 10 || entry.state != 1 {
			t.Fatalf("State = %+v", entry)
		}
	}
	if resolves != 1 {
		t.Errorf("resolves = %d, want 1", resolves)
	}

	c.Invalidate()
	if _, err := c.State('a', resolve); err != nil {
		t.Fatal(err)
	}
	if resolves != 2 {
		t.Errorf("resolves after invalidate = %d, want 2", resolves)
	}
}
