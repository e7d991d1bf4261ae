package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tahoe/rnvtop/internal/config"
	"github.com/tahoe/rnvtop/internal/errors"
	"github.com/tahoe/rnvtop/internal/render"
)

// isolate keeps the developer's own config files and environment out of the
// test.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("RNVTOP_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	return dir
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "rnvtop.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func flags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("rnvtop", pflag.ContinueOnError)
	config.RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoad(t *testing.T) {
	dir := isolate(t)
	path := writeConfig(t, dir, `
loop = true
interval = 5
mode = "table"
colorize = true
device = 1
log_level = "debug"
`)
	t.Setenv("RNVTOP_CONFIG", path)

	cfg, err := config.Load(flags(t))
	require.NoError(t, err)

	assert.True(t, cfg.Loop, "Expected Loop true")
	assert.Equal(t, 5, cfg.Interval, "Expected Interval 5")
	assert.Equal(t, "table", cfg.Mode, "Expected Mode table")
	assert.True(t, cfg.Colorize, "Expected Colorize true")
	assert.Equal(t, 1, cfg.Device, "Expected Device 1")
	assert.Equal(t, "debug", cfg.LogLevel, "Expected LogLevel debug")
	assert.Equal(t, 5*time.Second, cfg.IntervalDuration())
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := config.Load(flags(t))
	require.NoError(t, err, "Failed to load config")

	assert.False(t, cfg.Loop)
	assert.Equal(t, config.DefaultInterval, cfg.Interval)
	assert.Equal(t, render.ModeMultiline, cfg.RenderMode())
	assert.False(t, cfg.Colorize)
	assert.False(t, cfg.NoColor)
	assert.Equal(t, 0, cfg.Device)
	assert.Equal(t, config.DefaultLogLevel, cfg.LogLevel)
}

func TestLoadWithoutFlags(t *testing.T) {
	isolate(t)

	cfg, err := config.Load(nil)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultInterval, cfg.Interval)
}

func TestLoadSearchDirs(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeConfig(t, dir, `interval = 9`)

	cfg, err := config.Load(flags(t), config.WithSearchDirs(dir))
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Interval)
}

func TestLoadConfigFileInvalidFormat(t *testing.T) {
	dir := isolate(t)
	path := writeConfig(t, dir, `
This is not a valid TOML file
`)

	_, err := config.Load(flags(t), config.WithConfigFile(path))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrReadConfig))
	assert.Contains(t, err.Error(), "Failed to read config file")
}

func TestLoadMissingExplicitFile(t *testing.T) {
	dir := isolate(t)

	_, err := config.Load(flags(t, "--config", filepath.Join(dir, "missing.toml")))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrReadConfig))
}

func TestFlagsOverrideFile(t *testing.T) {
	dir := isolate(t)
	path := writeConfig(t, dir, `
interval = 5
mode = "table"
log_level = "error"
`)

	cfg, err := config.Load(flags(t, "--config", path, "-f", "3", "--log-level", "info", "-l"))
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Interval)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "table", cfg.Mode, "file value kept when no flag given")
	assert.True(t, cfg.Loop)
}

func TestEnvOverridesFile(t *testing.T) {
	dir := isolate(t)
	path := writeConfig(t, dir, `interval = 5`)
	t.Setenv("RNVTOP_CONFIG", path)
	t.Setenv("RNVTOP_INTERVAL", "7")

	cfg, err := config.Load(flags(t))
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Interval)
}

func TestModeShortcutFlags(t *testing.T) {
	isolate(t)

	tests := map[string]render.Mode{
		"-o":        render.ModeOneline,
		"--table":   render.ModeTable,
		"-j":        render.ModeJSON,
		"--oneline": render.ModeOneline,
	}

	for arg, want := range tests {
		cfg, err := config.Load(flags(t, arg))
		require.NoError(t, err, arg)
		assert.Equal(t, want, cfg.RenderMode(), arg)
	}
}

func TestValidation(t *testing.T) {
	isolate(t)

	tests := []struct {
		args []string
		code errors.ErrorCode
	}{
		{[]string{"--interval", "0"}, errors.ErrInvalidInterval},
		{[]string{"--interval", "-2"}, errors.ErrInvalidInterval},
		{[]string{"--mode", "xml"}, errors.ErrInvalidMode},
		{[]string{"--log-level", "invalid"}, errors.ErrInvalidLogLevel},
		{[]string{"--device", "-1"}, errors.ErrInvalidDevice},
	}

	for _, tt := range tests {
		_, err := config.Load(flags(t, tt.args...))
		require.Error(t, err, tt.args)
		assert.True(t, errors.HasCode(err, tt.code), "%v: %v", tt.args, err)
	}
}

func TestInvalidLogLevelInFile(t *testing.T) {
	dir := isolate(t)
	path := writeConfig(t, dir, `
log_level = "invalid"
`)

	_, err := config.Load(flags(t), config.WithConfigFile(path))
	require.Error(t, err)
	assert.Equal(t, errors.ErrInvalidLogLevel, errors.CodeOf(err))
}

func TestColorizeOutput(t *testing.T) {
	tests := []struct {
		name   string
		cfg    config.Config
		tty    bool
		expect bool
	}{
		{"multiline default", config.Config{Mode: "multiline"}, true, false},
		{"multiline requested", config.Config{Mode: "multiline", Colorize: true}, false, true},
		{"json on terminal", config.Config{Mode: "json"}, true, true},
		{"json piped", config.Config{Mode: "json"}, false, false},
		{"json forced", config.Config{Mode: "json", Colorize: true}, false, true},
		{"no-color wins", config.Config{Mode: "json", Colorize: true, NoColor: true}, true, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expect, tt.cfg.ColorizeOutput(tt.tty), tt.name)
	}
}
