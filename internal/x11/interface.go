package x11

import (
	"fmt"
	"log/slog"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/record"
	"github.com/jezek/xgb/xproto"

	"github.com/wezm/Xpander/internal/keymap"
	"github.com/wezm/Xpander/internal/logging"
	"github.com/wezm/Xpander/internal/phrase"
)

// Options configures the keyboard interface.
type Options struct {
	// Display names the X display; empty means $DISPLAY.
	Display string

	// SymbolsDir is the xkb symbols directory for keysym level resolution.
	SymbolsDir string

	// WindowTitleLazy skips the title query on every key event and relies
	// on the focus-change snapshot instead.
	WindowTitleLazy bool

	// ClipboardSettle is the pause around clipboard staging and pasting.
	ClipboardSettle time.Duration

	Logger *slog.Logger
}

// Interface is the connection to the X server pair: one connection for
// queries and synthesis, one dedicated to the RECORD event stream. All
// mutation runs on the dispatcher goroutine; public methods enqueue.
type Interface struct {
	opts Options
	log  *slog.Logger

	conn    *xgb.Conn
	recConn *xgb.Conn
	recCtx  record.Context

	root  xproto.Window
	setup *xproto.SetupInfo

	atomNetWMName        xproto.Atom
	atomNetWMVisibleName xproto.Atom

	masks   ModMasks
	cache   *keymapCache
	symbols *keymap.SymbolTable

	stack *keymap.Stack

	layoutMu sync.RWMutex
	current  keymap.Layout

	handler Handler

	winMu        sync.RWMutex
	activeWindow xproto.Window
	activeClass  string
	activeTitle  string

	commands   chan command
	done       chan struct{}
	switched   chan struct{}
	watcherRun atomic.Bool

	helperMu sync.Mutex
	helper   *exec.Cmd

	symWatcher *keymap.Watcher

	wg       sync.WaitGroup
	stopOnce sync.Once
}

// New connects to the X server, verifies the RECORD extension and the
// external layout helpers, and takes the initial keyboard and window
// snapshots. The returned interface is idle until Start.
func New(opts Options) (*Interface, error) {
	log := opts.Logger
	if log == nil {
		log = logging.Default().WithComponent("x11")
	}
	if opts.SymbolsDir == "" {
		opts.SymbolsDir = keymap.DefaultSymbolsDir
	}

	for _, helper := range []string{"setxkbmap", "xkb-switch"} {
		if _, err := exec.LookPath(helper); err != nil {
			return nil, fmt.Errorf("required helper %q not found: %w", helper, err)
		}
	}

	stack, err := keymap.QueryStack()
	if err != nil {
		return nil, err
	}

	i := &Interface{
		opts:     opts,
		log:      log,
		stack:    stack,
		symbols:  keymap.NewSymbolTable(opts.SymbolsDir),
		commands: make(chan command, 1024),
		done:     make(chan struct{}),
		switched: make(chan struct{}, 1),
	}
	i.cache = newKeymapCache(i.fetchMapping)

	i.current, err = queryCurrentLayout()
	if err != nil {
		return nil, err
	}
	if !stack.Contains(i.current) {
		log.Warn("active layout not in configured stack", "layout", i.current.String())
		i.current = stack.Layouts[0]
	}

	i.conn, err = xgb.NewConnDisplay(opts.Display)
	if err != nil {
		return nil, fmt.Errorf("connect to X display: %w", err)
	}
	if err := i.setupConn(); err != nil {
		i.conn.Close()
		return nil, err
	}

	i.recConn, err = xgb.NewConnDisplay(opts.Display)
	if err != nil {
		i.conn.Close()
		return nil, fmt.Errorf("connect record display: %w", err)
	}
	if err := i.setupRecord(); err != nil {
		i.recConn.Close()
		i.conn.Close()
		return nil, err
	}

	if err := i.refreshModifierMasks(); err != nil {
		i.recConn.Close()
		i.conn.Close()
		return nil, err
	}
	i.updateActiveWindow()

	return i, nil
}

// queryCurrentLayout asks xkb-switch for the active layout.
func queryCurrentLayout() (keymap.Layout, error) {
	out, err := exec.Command("xkb-switch").Output()
	if err != nil {
		return keymap.Layout{}, fmt.Errorf("xkb-switch: %w", err)
	}
	return keymap.ParseLayout(string(out))
}

// setupConn binds per-connection state on the query connection. Called
// again after the connection is replaced during a layout switch.
func (i *Interface) setupConn() error {
	i.setup = xproto.Setup(i.conn)
	screen := i.setup.DefaultScreen(i.conn)
	if screen == nil {
		return fmt.Errorf("no default screen")
	}
	i.root = screen.Root

	// RECORD requests for context teardown go through this connection so
	// they are not queued behind the streaming reply on the record one.
	if err := record.Init(i.conn); err != nil {
		return fmt.Errorf("RECORD extension unavailable: %w", err)
	}

	var err error
	i.atomNetWMName, err = i.internAtom("_NET_WM_NAME")
	if err != nil {
		return err
	}
	i.atomNetWMVisibleName, err = i.internAtom("_NET_WM_VISIBLE_NAME")
	return err
}

func (i *Interface) internAtom(name string) (xproto.Atom, error) {
	reply, err := xproto.InternAtom(i.conn, false, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, fmt.Errorf("intern %s: %w", name, err)
	}
	return reply.Atom, nil
}

// setupRecord verifies the extension on the record connection and creates
// the capture context for key and focus events from every client.
func (i *Interface) setupRecord() error {
	if err := record.Init(i.recConn); err != nil {
		return fmt.Errorf("RECORD extension unavailable: %w", err)
	}
	if _, err := record.QueryVersion(i.recConn, 1, 13).Reply(); err != nil {
		return fmt.Errorf("RECORD version: %w", err)
	}
	ctx, err := record.NewContextId(i.recConn)
	if err != nil {
		return fmt.Errorf("allocate record context: %w", err)
	}
	i.recCtx = ctx

	ranges := recordRanges()
	specs := []record.ClientSpec{record.ClientSpec(record.CsAllClients)}
	err = record.CreateContextChecked(i.recConn, ctx, record.ElementHeader(0),
		uint32(len(specs)), uint32(len(ranges)), specs, ranges).Check()
	if err != nil {
		return fmt.Errorf("create record context: %w", err)
	}
	return nil
}

// recordRanges builds the capture set: key device events, plus FocusIn as
// a delivered event since the server never records it on the device path.
func recordRanges() []record.Range {
	return []record.Range{{
		DeviceEvents: record.Range8{
			First: xproto.KeyPress,
			Last:  xproto.KeyRelease,
		},
		DeliveredEvents: record.Range8{
			First: xproto.FocusIn,
			Last:  xproto.FocusIn,
		},
	}}
}

// fetchMapping reads the full keyboard mapping from the server. Installed
// as the cache's fetch hook so invalidated entries repopulate lazily.
func (i *Interface) fetchMapping() (*mappingSnapshot, error) {
	min := i.setup.MinKeycode
	max := i.setup.MaxKeycode
	reply, err := xproto.GetKeyboardMapping(i.conn, min, byte(max-min+1)).Reply()
	if err != nil {
		return nil, err
	}
	return &mappingSnapshot{
		minKeycode: min,
		maxKeycode: max,
		perKeycode: int(reply.KeysymsPerKeycode),
		keysyms:    reply.Keysyms,
	}, nil
}

// refreshModifierMasks re-reads the modifier mapping and classifies the
// floating modifier roles.
func (i *Interface) refreshModifierMasks() error {
	reply, err := xproto.GetModifierMapping(i.conn).Reply()
	if err != nil {
		return fmt.Errorf("modifier mapping: %w", err)
	}
	i.masks = classifyModifiers(reply.KeycodesPerModifier, reply.Keycodes, func(kc xproto.Keycode) uint32 {
		ks, err := i.cache.KeycodeToKeysym(kc, 0)
		if err != nil {
			return 0
		}
		return ks
	})
	return nil
}

// SetHandler installs the key event consumer. Must be called before Start.
func (i *Interface) SetHandler(h Handler) {
	i.handler = h
}

// Start launches the dispatcher, the event hook and the layout watcher,
// and begins watching the xkb symbols directory for cache invalidation.
func (i *Interface) Start() error {
	i.wg.Add(1)
	go i.dispatch()

	i.wg.Add(1)
	go i.eventHook()

	i.watcherRun.Store(true)
	i.wg.Add(1)
	go i.layoutWatcher()

	w, err := keymap.Watch(i.symbols.Dir(), func() {
		i.enqueue(command{kind: cmdClearSymbolCache})
	})
	if err != nil {
		i.log.Warn("symbols directory not watchable", "dir", i.symbols.Dir(), "error", err)
	} else {
		i.symWatcher = w
	}

	i.log.Info("keyboard interface started",
		"layouts", len(i.stack.Layouts),
		"current", i.CurrentLayout().String())
	return nil
}

// Stop tears everything down. Every step runs even when an earlier one
// fails, so a half-broken server connection still releases the record
// context, the helper process and the goroutines.
func (i *Interface) Stop() {
	i.stopOnce.Do(func() {
		i.watcherRun.Store(false)
		i.helperMu.Lock()
		if i.helper != nil && i.helper.Process != nil {
			_ = i.helper.Process.Kill()
		}
		i.helperMu.Unlock()

		if err := record.DisableContextChecked(i.conn, i.recCtx).Check(); err != nil {
			i.log.Warn("disable record context", "error", err)
		}
		if err := record.FreeContextChecked(i.conn, i.recCtx).Check(); err != nil {
			i.log.Warn("free record context", "error", err)
		}

		i.enqueue(command{kind: cmdStop})
		close(i.done)

		if i.symWatcher != nil {
			_ = i.symWatcher.Close()
		}

		// The dispatcher must drain its queue to the stop sentinel before
		// the connections go away, or queued ungrabs race the close.
		i.wg.Wait()
		i.recConn.Close()
		i.conn.Close()
		i.log.Info("keyboard interface stopped")
	})
}

// CurrentLayout returns the active layout.
func (i *Interface) CurrentLayout() keymap.Layout {
	i.layoutMu.RLock()
	defer i.layoutMu.RUnlock()
	return i.current
}

// Layouts returns the configured layout stack in order.
func (i *Interface) Layouts() []keymap.Layout {
	return i.stack.Layouts
}

// ActiveWindowClass returns the WM_CLASS of the focused window as
// "Instance.Class", empty when unresolvable.
func (i *Interface) ActiveWindowClass() string {
	i.winMu.RLock()
	defer i.winMu.RUnlock()
	return i.activeClass
}

// ActiveWindowTitle returns the focused window's title, empty when
// unresolvable.
func (i *Interface) ActiveWindowTitle() string {
	i.winMu.RLock()
	defer i.winMu.RUnlock()
	return i.activeTitle
}

// SendKeyPress injects a synthetic key press into the focused window.
func (i *Interface) SendKeyPress(kc xproto.Keycode, state uint16) {
	i.enqueue(command{kind: cmdSendKey, press: true, keycode: kc, state: state})
}

// SendKeyRelease injects a synthetic key release into the focused window.
func (i *Interface) SendKeyRelease(kc xproto.Keycode, state uint16) {
	i.enqueue(command{kind: cmdSendKey, press: false, keycode: kc, state: state})
}

// SendString types text into the focused window key by key under a scoped
// keyboard grab. Characters the current layouts cannot produce are skipped.
func (i *Interface) SendString(text string) {
	i.enqueue(command{kind: cmdSendString, text: text})
}

// SendStringClipboard stages text on the clipboard, pastes it with the
// given chord and restores the previous clipboard contents.
func (i *Interface) SendStringClipboard(text string, method phrase.PasteMethod) {
	i.enqueue(command{kind: cmdSendStringClipboard, text: text, paste: method})
}

// SendBackspace injects n backspaces.
func (i *Interface) SendBackspace(n int) {
	i.enqueue(command{kind: cmdSendBackspace, count: n})
}

// CaretLeft moves the caret n positions left.
func (i *Interface) CaretLeft(n int) {
	i.enqueue(command{kind: cmdCaretLeft, count: n})
}

// CaretRight moves the caret n positions right.
func (i *Interface) CaretRight(n int) {
	i.enqueue(command{kind: cmdCaretRight, count: n})
}

// GrabKeyboard takes the global keyboard grab.
func (i *Interface) GrabKeyboard() {
	i.enqueue(command{kind: cmdGrabKeyboard})
}

// UngrabKeyboard releases the global keyboard grab.
func (i *Interface) UngrabKeyboard() {
	i.enqueue(command{kind: cmdUngrabKeyboard})
}

// GrabHotkey registers a passive grab for the hotkey on the root window so
// its events reach the hook even when another client has focus.
func (i *Interface) GrabHotkey(hk phrase.Hotkey) {
	i.enqueue(command{kind: cmdGrabHotkey, hotkey: hk})
}

// UngrabHotkey releases the passive grab for the hotkey.
func (i *Interface) UngrabHotkey(hk phrase.Hotkey) {
	i.enqueue(command{kind: cmdUngrabHotkey, hotkey: hk})
}
