package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vk-engine/config"
)

func parse(t *testing.T, args ...string) (config.Config, error) {
	t.Helper()
	cmd := newRootCommand()
	require.NoError(t, cmd.ParseFlags(args))

	var f flags
	f.configPath, _ = cmd.Flags().GetString("config")
	f.width, _ = cmd.Flags().GetInt("width")
	f.height, _ = cmd.Flags().GetInt("height")
	f.validation, _ = cmd.Flags().GetBool("validation")
	f.vsync, _ = cmd.Flags().GetBool("vsync")
	f.logLevel, _ = cmd.Flags().GetString("log-level")
	return loadConfig(cmd, f)
}

func TestFlagsOverrideDefaults(t *testing.T) {
	cfg, err := parse(t, "--width", "400", "--height", "300", "--log-level", "debug", "--vsync")
	require.NoError(t, err)
	assert.Equal(t, 400, cfg.Window.Width)
	assert.Equal(t, 300, cfg.Window.Height)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Vulkan.VSync)
}

func TestUnsetFlagsKeepConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.toml")
	require.NoError(t, os.WriteFile(path, []byte("[window]\nwidth = 1024\nheight = 768\n"), 0o644))

	cfg, err := parse(t, "--config", path, "--height", "600")
	require.NoError(t, err)
	assert.Equal(t, 1024, cfg.Window.Width)
	assert.Equal(t, 600, cfg.Window.Height)
}

func TestInvalidFlagIsRejected(t *testing.T) {
	_, err := parse(t, "--width", "0")
	assert.ErrorIs(t, err, config.ErrInvalid)

	_, err = parse(t, "--log-level", "chatty")
	assert.ErrorIs(t, err, config.ErrInvalid)
}
