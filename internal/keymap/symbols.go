package keymap

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/wezm/Xpander/internal/keysym"
)

var (
	includeRe = regexp.MustCompile(`include\s*"(\w*)(?:\((\w*)\))*"`)
	keyRe     = regexp.MustCompile(`.*[\[<].*[\]>].*\[\s*(\w*)` +
		`(?:,\s*(\w*)(?:,\s*(\w*))?(?:,\s*(\w*))?)?`)
)

// KeysymSets holds the reachable keysyms of one layout at each of the four
// shift levels. Immutable once built.
type KeysymSets struct {
	Base       map[uint32]struct{}
	Shift      map[uint32]struct{}
	AltGr      map[uint32]struct{}
	AltGrShift map[uint32]struct{}
}

func newKeysymSets() *KeysymSets {
	return &KeysymSets{
		Base:       make(map[uint32]struct{}),
		Shift:      make(map[uint32]struct{}),
		AltGr:      make(map[uint32]struct{}),
		AltGrShift: make(map[uint32]struct{}),
	}
}

func (k *KeysymSets) merge(other *KeysymSets) {
	for ks := range other.Base {
		k.Base[ks] = struct{}{}
	}
	for ks := range other.Shift {
		k.Shift[ks] = struct{}{}
	}
	for ks := range other.AltGr {
		k.AltGr[ks] = struct{}{}
	}
	for ks := range other.AltGrShift {
		k.AltGrShift[ks] = struct{}{}
	}
}

// Level returns the set for a shift level: 0 base, 1 shift, 2 altgr,
// 3 altgr+shift.
func (k *KeysymSets) Level(n int) map[uint32]struct{} {
	switch n {
	case 1:
		return k.Shift
	case 2:
		return k.AltGr
	case 3:
		return k.AltGrShift
	default:
		return k.Base
	}
}

// SymbolTable builds and caches per-layout keysym sets from an xkb symbols
// directory. Sets is a pure function of the on-disk definitions, so results
// are memoized until Invalidate is called after a layout-table reload.
type SymbolTable struct {
	dir   string
	cache map[Layout]*KeysymSets
}

// NewSymbolTable returns a table reading from dir, which defaults to
// DefaultSymbolsDir when empty.
func NewSymbolTable(dir string) *SymbolTable {
	if dir == "" {
		dir = DefaultSymbolsDir
	}
	return &SymbolTable{dir: dir, cache: make(map[Layout]*KeysymSets)}
}

// Dir returns the symbols directory being read.
func (t *SymbolTable) Dir() string { return t.dir }

// Invalidate discards all cached sets. The next Sets call reparses the
// definitions.
func (t *SymbolTable) Invalidate() {
	t.cache = make(map[Layout]*KeysymSets)
}

// Sets returns the four keysym sets for a layout, parsing and merging any
// included layouts. Unresolvable keysym names are skipped; a missing include
// is skipped too. Only an unreadable top-level file is an error.
func (t *SymbolTable) Sets(l Layout) (*KeysymSets, error) {
	if cached, ok := t.cache[l]; ok {
		return cached, nil
	}
	sets, err := t.parse(l, make(map[Layout]bool))
	if err != nil {
		return nil, err
	}
	t.cache[l] = sets
	return sets, nil
}

func (t *SymbolTable) parse(l Layout, seen map[Layout]bool) (*KeysymSets, error) {
	if seen[l] {
		return newKeysymSets(), nil
	}
	seen[l] = true

	// An empty variant selects the file's default block, which is marked
	// by a "default ..." flags line ahead of its xkb_symbols clause.
	variant := l.Variant
	if variant == "" {
		variant = "default"
	}

	f, err := os.Open(filepath.Join(t.dir, l.Group))
	if err != nil {
		return nil, fmt.Errorf("open symbols for %q: %w", l.Group, err)
	}
	defer f.Close()

	sets := newKeysymSets()
	var includes []Layout
	parsing := false

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !parsing {
			if strings.HasPrefix(line, fmt.Sprintf("xkb_symbols %q", variant)) ||
				strings.HasPrefix(line, variant) {
				parsing = true
			}
		}
		if !parsing {
			continue
		}
		if strings.HasPrefix(line, "};") {
			break
		}
		if inc := includeRe.FindStringSubmatch(line); inc != nil {
			includes = append(includes, Layout{Group: inc[1], Variant: inc[2]})
		}
		if key := keyRe.FindStringSubmatch(line); key != nil {
			addKeysym(sets.Base, key[1])
			addKeysym(sets.Shift, key[2])
			addKeysym(sets.AltGr, key[3])
			addKeysym(sets.AltGrShift, key[4])
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read symbols for %q: %w", l.Group, err)
	}

	for _, inc := range includes {
		merged, err := t.parse(inc, seen)
		if err != nil {
			// Best effort: an include that cannot be read only
			// narrows reverse lookup, it does not fail the layout.
			continue
		}
		sets.merge(merged)
	}
	return sets, nil
}

func addKeysym(set map[uint32]struct{}, name string) {
	if name == "" || name == "NoSymbol" {
		return
	}
	if ks, ok := keysym.FromName(name); ok && ks != 0 {
		set[ks] = struct{}{}
	}
}
