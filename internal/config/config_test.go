package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wezm/Xpander/internal/phrase"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestDefaultValidates(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.True(t, cfg.Service.BackspaceUndo)
	assert.Equal(t, 1000, cfg.Service.ScriptTimeoutMs)
}

func TestLoadTOML(t *testing.T) {
	path := writeConfig(t, "xpander.toml", `
version = 1

[service]
backspace_undo = false
script_timeout_ms = 2500
pause_hotkey = { key = "p", modifiers = ["Shift", "Super"] }

[x11]
window_title_lazy = false
clipboard_settle_ms = 150

[logging]
level = "debug"
output = "stderr"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.Service.BackspaceUndo)
	assert.Equal(t, 2500, cfg.Service.ScriptTimeoutMs)
	assert.False(t, cfg.X11.WindowTitleLazy)
	assert.Equal(t, 150, cfg.X11.ClipboardSettleMs)
	assert.Equal(t, "debug", cfg.Logging.Level)

	hk, err := cfg.Service.PauseHotkey.Hotkey()
	require.NoError(t, err)
	assert.Equal(t, "p", hk.Key)
	assert.ElementsMatch(t,
		[]phrase.Modifier{phrase.ModShift, phrase.ModSuper}, hk.Modifiers)
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, "xpander.yaml", `
version: 1
service:
  backspace_undo: false
  script_timeout_ms: 500
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.Service.BackspaceUndo)
	assert.Equal(t, 500, cfg.Service.ScriptTimeoutMs)
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := writeConfig(t, "xpander.toml", `
version = 1

[service]
script_timeout_ms = -5
`)
	_, err := Load(path)
	assert.Error(t, err)

	path = writeConfig(t, "bad.toml", `
version = 1

[service]
script_timeout_ms = 1000
pause_hotkey = { key = "p", modifiers = ["Hyper"] }
`)
	_, err = Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("XPANDER_LOG_LEVEL", "debug")
	t.Setenv("XPANDER_SYMBOLS_DIR", "/tmp/symbols")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "/tmp/symbols", cfg.X11.SymbolsDir)
}

func TestHotkeyConversion(t *testing.T) {
	_, err := (&HotkeyConfig{}).Hotkey()
	assert.Error(t, err)

	hk, err := (&HotkeyConfig{Key: "\t"}).Hotkey()
	require.NoError(t, err)
	assert.Empty(t, hk.Modifiers)
}
