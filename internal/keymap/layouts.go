// Package keymap models the configured keyboard layout stack and builds
// per-layout keysym sets from the server's xkb symbol definitions.
package keymap

import (
	"fmt"
	"os/exec"
	"regexp"
	"strings"
)

// DefaultSymbolsDir is where X installs keyboard symbol definitions.
const DefaultSymbolsDir = "/usr/share/X11/xkb/symbols"

var layoutRe = regexp.MustCompile(`(\w+)(?:\((\w+)\))?`)

// Layout identifies a configured keyboard layout: a group (e.g. "us") and an
// optional variant (e.g. "intl").
type Layout struct {
	Group   string
	Variant string
}

// ParseLayout parses the "group" or "group(variant)" form printed by
// xkb-switch.
func ParseLayout(s string) (Layout, error) {
	m := layoutRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil || m[1] == "" {
		return Layout{}, fmt.Errorf("unparsable layout %q", s)
	}
	return Layout{Group: m[1], Variant: m[2]}, nil
}

// String renders the xkb-switch form of the layout.
func (l Layout) String() string {
	if l.Variant == "" {
		return l.Group
	}
	return l.Group + "(" + l.Variant + ")"
}

// Stack is the ordered list of configured layouts. One element is current;
// the invariant that current is a member is maintained by the caller.
type Stack struct {
	Layouts []Layout

	// transient caches the reordered setxkbmap arguments per current
	// layout, since the remaining order is stable for the process lifetime.
	transient map[Layout][2]string
}

// QueryStack reads the configured layout order via setxkbmap -query.
func QueryStack() (*Stack, error) {
	out, err := exec.Command("setxkbmap", "-query").Output()
	if err != nil {
		return nil, fmt.Errorf("setxkbmap -query: %w", err)
	}
	return parseStack(string(out))
}

func parseStack(out string) (*Stack, error) {
	var groups, variants []string
	for _, line := range strings.Split(out, "\n") {
		switch {
		case strings.HasPrefix(line, "layout:"):
			groups = splitFields(line[len("layout:"):])
		case strings.HasPrefix(line, "variant:"):
			variants = splitFields(line[len("variant:"):])
		}
	}
	if len(groups) == 0 {
		return nil, fmt.Errorf("no layouts in setxkbmap output")
	}
	s := &Stack{transient: make(map[Layout][2]string)}
	for i, g := range groups {
		var v string
		if i < len(variants) {
			v = variants[i]
		}
		s.Layouts = append(s.Layouts, Layout{Group: g, Variant: v})
	}
	return s, nil
}

func splitFields(s string) []string {
	parts := strings.Split(strings.TrimSpace(s), ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// Contains reports whether l is a configured layout.
func (s *Stack) Contains(l Layout) bool {
	for _, have := range s.Layouts {
		if have == l {
			return true
		}
	}
	return false
}

// Index returns the position of l in the configured order, or -1.
func (s *Stack) Index(l Layout) int {
	for i, have := range s.Layouts {
		if have == l {
			return i
		}
	}
	return -1
}

// Order returns the configured order as setxkbmap -layout and -variant
// arguments.
func (s *Stack) Order() (layouts, variants string) {
	return join(s.Layouts)
}

// TransientFor returns the setxkbmap arguments with current moved to the
// front. The result is cached by current-layout identity.
func (s *Stack) TransientFor(current Layout) (layouts, variants string) {
	if s.transient == nil {
		s.transient = make(map[Layout][2]string)
	}
	if cached, ok := s.transient[current]; ok {
		return cached[0], cached[1]
	}
	reordered := make([]Layout, 0, len(s.Layouts))
	reordered = append(reordered, current)
	for _, l := range s.Layouts {
		if l != current {
			reordered = append(reordered, l)
		}
	}
	layouts, variants = join(reordered)
	s.transient[current] = [2]string{layouts, variants}
	return layouts, variants
}

func join(ls []Layout) (layouts, variants string) {
	groups := make([]string, len(ls))
	vars := make([]string, len(ls))
	for i, l := range ls {
		groups[i] = l.Group
		vars[i] = l.Variant
	}
	return strings.Join(groups, ","), strings.Join(vars, ",")
}
