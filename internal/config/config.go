// Package config handles configuration loading, validation, and management
// for xpander.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/wezm/Xpander/internal/phrase"
)

// Version is the current configuration schema version.
const Version = 1

// Config holds the complete daemon configuration.
type Config struct {
	// Version is the configuration schema version.
	Version int `toml:"version" json:"version" yaml:"version"`

	// Service configures the expansion engine.
	Service ServiceConfig `toml:"service" json:"service" yaml:"service"`

	// X11 configures the keyboard interface.
	X11 X11Config `toml:"x11" json:"x11" yaml:"x11"`

	// Logging configuration.
	Logging LoggingConfig `toml:"logging" json:"logging" yaml:"logging"`
}

// ServiceConfig holds expansion engine settings.
type ServiceConfig struct {
	// BackspaceUndo makes a single backspace directly after an expansion
	// remove the whole inserted text.
	BackspaceUndo bool `toml:"backspace_undo" json:"backspace_undo" yaml:"backspace_undo"`

	// StartPaused starts the engine with matching disabled.
	StartPaused bool `toml:"start_paused" json:"start_paused" yaml:"start_paused"`

	// ScriptTimeoutMs bounds script-phrase execution in milliseconds.
	ScriptTimeoutMs int `toml:"script_timeout_ms" json:"script_timeout_ms" yaml:"script_timeout_ms"`

	// PauseHotkey toggles the engine; it stays live while paused.
	PauseHotkey *HotkeyConfig `toml:"pause_hotkey" json:"pause_hotkey" yaml:"pause_hotkey"`

	// ShowManagerHotkey asks the UI layer to surface the phrase manager.
	ShowManagerHotkey *HotkeyConfig `toml:"show_manager_hotkey" json:"show_manager_hotkey" yaml:"show_manager_hotkey"`
}

// X11Config holds keyboard interface settings.
type X11Config struct {
	// WindowTitleLazy refreshes the active window title only on focus
	// change instead of on every key event.
	WindowTitleLazy bool `toml:"window_title_lazy" json:"window_title_lazy" yaml:"window_title_lazy"`

	// SymbolsDir is the xkb symbols directory used for reverse keysym
	// lookup. Empty selects the stock X11 location.
	SymbolsDir string `toml:"symbols_dir" json:"symbols_dir" yaml:"symbols_dir"`

	// ClipboardSettleMs is the pause between staging, pasting and
	// restoring clipboard contents.
	ClipboardSettleMs int `toml:"clipboard_settle_ms" json:"clipboard_settle_ms" yaml:"clipboard_settle_ms"`

	// Display overrides the DISPLAY environment variable when set.
	Display string `toml:"display" json:"display" yaml:"display"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level     string `toml:"level" json:"level" yaml:"level"`
	Format    string `toml:"format" json:"format" yaml:"format"`
	Output    string `toml:"output" json:"output" yaml:"output"`
	FilePath  string `toml:"file_path" json:"file_path" yaml:"file_path"`
	AddSource bool   `toml:"add_source" json:"add_source" yaml:"add_source"`
}

// HotkeyConfig is the serialized form of a global hotkey.
type HotkeyConfig struct {
	Key       string   `toml:"key" json:"key" yaml:"key"`
	Modifiers []string `toml:"modifiers" json:"modifiers" yaml:"modifiers"`
}

var validModifiers = map[string]phrase.Modifier{
	"Shift":   phrase.ModShift,
	"Control": phrase.ModControl,
	"Alt":     phrase.ModAlt,
	"AltGr":   phrase.ModAltGr,
	"Super":   phrase.ModSuper,
}

// Hotkey converts the serialized form to a phrase.Hotkey.
func (h *HotkeyConfig) Hotkey() (phrase.Hotkey, error) {
	if h == nil || h.Key == "" {
		return phrase.Hotkey{}, fmt.Errorf("hotkey has no key")
	}
	hk := phrase.Hotkey{Key: h.Key}
	for _, m := range h.Modifiers {
		role, ok := validModifiers[m]
		if !ok {
			return phrase.Hotkey{}, fmt.Errorf("unknown modifier %q", m)
		}
		hk.Modifiers = append(hk.Modifiers, role)
	}
	return hk, nil
}

// ScriptTimeout returns the script timeout as a duration.
func (c *ServiceConfig) ScriptTimeout() time.Duration {
	return time.Duration(c.ScriptTimeoutMs) * time.Millisecond
}

// ClipboardSettle returns the clipboard settle pause as a duration.
func (c *X11Config) ClipboardSettle() time.Duration {
	return time.Duration(c.ClipboardSettleMs) * time.Millisecond
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Version <= 0 {
		return fmt.Errorf("version must be positive, got %d", c.Version)
	}
	if c.Service.ScriptTimeoutMs <= 0 {
		return fmt.Errorf("script_timeout_ms must be positive, got %d",
			c.Service.ScriptTimeoutMs)
	}
	if c.X11.ClipboardSettleMs < 0 {
		return fmt.Errorf("clipboard_settle_ms must not be negative, got %d",
			c.X11.ClipboardSettleMs)
	}
	if hk := c.Service.PauseHotkey; hk != nil {
		if _, err := hk.Hotkey(); err != nil {
			return fmt.Errorf("pause_hotkey: %w", err)
		}
	}
	if hk := c.Service.ShowManagerHotkey; hk != nil {
		if _, err := hk.Hotkey(); err != nil {
			return fmt.Errorf("show_manager_hotkey: %w", err)
		}
	}
	switch c.Logging.Output {
	case "", "stdout", "stderr", "file", "both":
	default:
		return fmt.Errorf("unknown logging output %q", c.Logging.Output)
	}
	return nil
}

// ApplyEnvOverrides applies XPANDER_* environment variables on top of the
// loaded configuration.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("XPANDER_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("XPANDER_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("XPANDER_DISPLAY"); v != "" {
		c.X11.Display = v
	}
	if v := os.Getenv("XPANDER_SYMBOLS_DIR"); v != "" {
		c.X11.SymbolsDir = v
	}
}

// DefaultConfigPath returns the XDG config path for the daemon.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		homeDir, _ := os.UserHomeDir()
		configHome = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configHome, "xpander", "xpander.toml")
}
