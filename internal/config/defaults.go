package config

// Default returns the built-in configuration: historic Xpander behavior
// with Shift+Super+P toggling the engine and Shift+Super+M raising the
// manager.
func Default() *Config {
	return &Config{
		Version: Version,
		Service: ServiceConfig{
			BackspaceUndo:   true,
			ScriptTimeoutMs: 1000,
			PauseHotkey: &HotkeyConfig{
				Key:       "p",
				Modifiers: []string{"Shift", "Super"},
			},
			ShowManagerHotkey: &HotkeyConfig{
				Key:       "m",
				Modifiers: []string{"Shift", "Super"},
			},
		},
		X11: X11Config{
			WindowTitleLazy:   true,
			ClipboardSettleMs: 200,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}
