package x11

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"syscall"

	"github.com/jezek/xgb"
	"golang.org/x/sys/unix"

	"github.com/wezm/Xpander/internal/keymap"
)

// layoutWatcher runs xkb-switch in watch mode and enqueues a switch for
// every reported change. Exactly one switch is in flight at a time: the
// helper is respawned only after the dispatcher signals completion, so a
// burst of changes collapses to the latest state.
func (i *Interface) layoutWatcher() {
	defer i.wg.Done()

	for i.watcherRun.Load() {
		cmd := exec.Command("xkb-switch", "-w", "-p")
		cmd.SysProcAttr = &syscall.SysProcAttr{Pdeathsig: unix.SIGTERM}
		stdout, err := cmd.StdoutPipe()
		if err == nil {
			err = cmd.Start()
		}
		if err != nil {
			if !i.watcherRun.Load() {
				return
			}
			// Without the helper, layout changes would silently corrupt
			// every translation from here on. Refuse to limp along.
			i.log.Error("cannot run xkb-switch, layout tracking is impossible", "error", err)
			os.Exit(1)
		}
		i.helperMu.Lock()
		i.helper = cmd
		i.helperMu.Unlock()

		line, readErr := bufio.NewReader(stdout).ReadString('\n')
		_ = cmd.Wait()
		if !i.watcherRun.Load() {
			return
		}
		if readErr != nil && line == "" {
			i.log.Warn("xkb-switch watch ended without output", "error", readErr)
			continue
		}

		layout, err := keymap.ParseLayout(strings.TrimSpace(line))
		if err != nil {
			i.log.Warn("unparsable layout change", "line", line, "error", err)
			continue
		}
		if !i.stack.Contains(layout) {
			i.log.Warn("layout change outside configured stack", "layout", layout.String())
			continue
		}
		if layout == i.CurrentLayout() {
			continue
		}

		i.enqueue(command{kind: cmdSwitchLayout, layout: layout})
		select {
		case <-i.switched:
		case <-i.done:
			return
		}
	}
}

// executeSwitchLayout performs the full switch sequence on the dispatcher:
// apply a transient layout order with the target first, rebuild the query
// connection, drop every keycode cache, restore the configured order and
// activate the target. Completion is always signalled so the watcher
// re-arms even when a step fails.
func (i *Interface) executeSwitchLayout(target keymap.Layout) error {
	defer func() {
		select {
		case i.switched <- struct{}{}:
		default:
		}
	}()

	layouts, variants := i.stack.TransientFor(target)
	if err := applyLayoutOrder(layouts, variants); err != nil {
		return err
	}

	if err := i.reloadConn(); err != nil {
		return err
	}
	i.cache.Invalidate()
	if err := i.refreshModifierMasks(); err != nil {
		i.log.Warn("modifier mapping refresh failed", "error", err)
	}

	layouts, variants = i.stack.Order()
	if err := applyLayoutOrder(layouts, variants); err != nil {
		return err
	}
	if out, err := exec.Command("xkb-switch", "-s", target.String()).CombinedOutput(); err != nil {
		return fmt.Errorf("xkb-switch -s %s: %w: %s", target.String(), err, strings.TrimSpace(string(out)))
	}

	i.layoutMu.Lock()
	i.current = target
	i.layoutMu.Unlock()
	i.log.Info("layout switched", "layout", target.String())
	return nil
}

func applyLayoutOrder(layouts, variants string) error {
	out, err := exec.Command("setxkbmap", "-layout", layouts, "-variant", variants).CombinedOutput()
	if err != nil {
		return fmt.Errorf("setxkbmap -layout %s -variant %s: %w: %s",
			layouts, variants, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// reloadConn replaces the query connection. setxkbmap rewrites the server
// keymap underneath existing connections; a fresh connection guarantees
// the next mapping fetch sees the new state.
func (i *Interface) reloadConn() error {
	i.conn.Close()
	conn, err := xgb.NewConnDisplay(i.opts.Display)
	if err != nil {
		return fmt.Errorf("reconnect to X display: %w", err)
	}
	i.conn = conn
	if err := i.setupConn(); err != nil {
		return err
	}
	i.updateActiveWindow()
	return nil
}
