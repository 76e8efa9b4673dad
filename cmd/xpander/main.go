// xpander is the text expansion daemon. It hooks the X keyboard through
// the RECORD extension, matches typed hotstrings and global hotkeys
// against the loaded phrases and injects the replacements.
//
// The phrase manager UI runs as a separate process and talks to the
// daemon over the session bus; the daemon itself has no user interface.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/wezm/Xpander/internal/config"
	"github.com/wezm/Xpander/internal/logging"
	"github.com/wezm/Xpander/internal/notify"
	"github.com/wezm/Xpander/internal/phrase"
	"github.com/wezm/Xpander/internal/service"
	"github.com/wezm/Xpander/internal/x11"
)

func main() {
	configPath := flag.String("config", config.DefaultConfigPath(), "path to the configuration file")
	logLevel := flag.String("log-level", "", "override the configured log level (debug, info, warn, error)")
	startPaused := flag.Bool("paused", false, "start with expansion disabled")
	flag.Parse()

	if err := run(*configPath, *logLevel, *startPaused); err != nil {
		fmt.Fprintf(os.Stderr, "xpander: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, logLevel string, startPaused bool) error {
	loader := config.NewLoader(configPath)
	cfg, err := loader.Load()
	if err != nil {
		return err
	}
	defer loader.Close()

	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	logger, err := setupLogging(&cfg.Logging)
	if err != nil {
		return err
	}
	defer logger.Close()
	logging.SetDefault(logger)
	log := logger.WithComponent("main")

	var notifier service.Notifier
	bus, err := notify.NewDBus(logger.WithComponent("notify"))
	if err != nil {
		log.Warn("session bus unavailable, manager signals disabled", "error", err)
		notifier = notify.Nop{}
	} else {
		defer bus.Close()
		notifier = bus
	}

	kb, err := x11.New(x11.Options{
		Display:         cfg.X11.Display,
		SymbolsDir:      cfg.X11.SymbolsDir,
		WindowTitleLazy: cfg.X11.WindowTitleLazy,
		ClipboardSettle: cfg.X11.ClipboardSettle(),
		Logger:          logger.WithComponent("x11"),
	})
	if err != nil {
		return fmt.Errorf("keyboard interface: %w", err)
	}

	phrases := phrase.NewStore()
	svc := service.New(kb, phrases, notifier, service.Options{
		BackspaceUndo: cfg.Service.BackspaceUndo,
		StartPaused:   startPaused || cfg.Service.StartPaused,
		ScriptTimeout: cfg.Service.ScriptTimeout(),
		PauseHotkey:   configuredHotkey(cfg.Service.PauseHotkey, log, "pause"),
		ShowManagerHotkey: configuredHotkey(
			cfg.Service.ShowManagerHotkey, log, "show-manager"),
		Logger: logger.WithComponent("service"),
	})
	kb.SetHandler(svc.HandleKey)

	if err := kb.Start(); err != nil {
		return fmt.Errorf("start keyboard interface: %w", err)
	}
	defer kb.Stop()

	svc.RegisterHotkeys()
	// The Tab grab only takes effect once the server has processed a key
	// round trip; an injected tab at startup forces that, hopefully while
	// focus is not in a text box.
	kb.SendString("\t")

	loader.OnChange(func(*config.Config) {
		// Structural settings need a restart; the reload keeps the file
		// parse honest and picks up logging tweaks on the next one.
		log.Info("configuration reloaded, most settings apply after restart",
			"path", configPath)
	})
	if err := loader.Watch(); err != nil {
		log.Warn("config file not watchable", "error", err)
	}

	log.Info("xpander running",
		"config", configPath,
		"paused", svc.Paused(),
		"layouts", len(kb.Layouts()))

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	got := <-sig
	log.Info("shutting down", "signal", got.String())

	svc.UnregisterHotkeys()
	return nil
}

func setupLogging(cfg *config.LoggingConfig) (*logging.Logger, error) {
	level, err := logging.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	format, err := logging.ParseFormat(cfg.Format)
	if err != nil {
		return nil, err
	}
	lc := logging.DefaultConfig()
	lc.Level = level
	lc.Format = format
	lc.AddSource = cfg.AddSource
	if cfg.Output != "" {
		lc.Output = cfg.Output
	}
	if cfg.FilePath != "" {
		lc.FilePath = cfg.FilePath
	}
	return logging.New(lc)
}

func configuredHotkey(hc *config.HotkeyConfig, log *slog.Logger, name string) *phrase.Hotkey {
	if hc == nil {
		return nil
	}
	hk, err := hc.Hotkey()
	if err != nil {
		log.Warn("reserved hotkey disabled", "hotkey", name, "error", err)
		return nil
	}
	return &hk
}
