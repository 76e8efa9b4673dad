package x11

import (
	"strings"

	"github.com/jezek/xgb/xproto"
)

const maxParentWalk = 16

// updateActiveWindow snapshots the focused window and its class and title.
// Runs on the dispatcher for focus-change events and during setup.
func (i *Interface) updateActiveWindow() {
	win := i.queryFocus()
	class := i.windowClass(win, 0)
	title := i.windowTitle(win, 0)

	i.winMu.Lock()
	i.activeWindow = win
	i.activeClass = class
	i.activeTitle = title
	i.winMu.Unlock()
}

// refreshActiveTitle re-reads only the title of the cached focus window,
// for the eager title mode where every key event wants a fresh value.
func (i *Interface) refreshActiveTitle() {
	i.winMu.RLock()
	win := i.activeWindow
	i.winMu.RUnlock()

	title := i.windowTitle(win, 0)
	i.winMu.Lock()
	i.activeTitle = title
	i.winMu.Unlock()
}

func (i *Interface) focusedWindow() xproto.Window {
	i.winMu.RLock()
	win := i.activeWindow
	i.winMu.RUnlock()
	if win != xproto.WindowNone {
		return win
	}
	return i.queryFocus()
}

func (i *Interface) queryFocus() xproto.Window {
	reply, err := xproto.GetInputFocus(i.conn).Reply()
	if err != nil {
		i.log.Debug("input focus query failed", "error", err)
		return xproto.WindowNone
	}
	return reply.Focus
}

// windowClass resolves WM_CLASS as "Instance.Class", walking up the parent
// chain when the focused window itself carries no class property. Windows
// come and go mid-query, so every failure degrades to the empty string
// rather than an error.
func (i *Interface) windowClass(win xproto.Window, depth int) string {
	if win == xproto.WindowNone || depth > maxParentWalk {
		return ""
	}
	value := i.propertyString(win, xproto.AtomWmClass)
	if value == "" {
		return i.windowClass(i.parentOf(win), depth+1)
	}
	parts := strings.Split(strings.TrimRight(value, "\x00"), "\x00")
	if len(parts) >= 2 {
		return parts[0] + "." + parts[1]
	}
	return parts[0]
}

// windowTitle prefers _NET_WM_VISIBLE_NAME over _NET_WM_NAME and walks the
// parent chain when neither is set. Soft-fails to "".
func (i *Interface) windowTitle(win xproto.Window, depth int) string {
	if win == xproto.WindowNone || depth > maxParentWalk {
		return ""
	}
	if title := i.propertyString(win, i.atomNetWMVisibleName); title != "" {
		return title
	}
	if title := i.propertyString(win, i.atomNetWMName); title != "" {
		return title
	}
	return i.windowTitle(i.parentOf(win), depth+1)
}

func (i *Interface) propertyString(win xproto.Window, atom xproto.Atom) string {
	reply, err := xproto.GetProperty(i.conn, false, win, atom,
		xproto.GetPropertyTypeAny, 0, 1024).Reply()
	if err != nil || reply == nil || len(reply.Value) == 0 {
		return ""
	}
	return string(reply.Value)
}

func (i *Interface) parentOf(win xproto.Window) xproto.Window {
	tree, err := xproto.QueryTree(i.conn, win).Reply()
	if err != nil || tree == nil || tree.Parent == tree.Root {
		return xproto.WindowNone
	}
	return tree.Parent
}
