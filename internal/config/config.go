package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/tahoe/rnvtop/internal/errors"
	"github.com/tahoe/rnvtop/internal/logger"
	"github.com/tahoe/rnvtop/internal/render"
)

const (
	DefaultInterval = 1
	DefaultMode     = string(render.ModeMultiline)
	DefaultLogLevel = "warning"
	DefaultDevice   = 0

	defaultEnvPrefix = "RNVTOP"
	configName       = "rnvtop"
	configEnv        = "RNVTOP_CONFIG"
)

type Config struct {
	Loop     bool   `mapstructure:"loop"`
	Interval int    `mapstructure:"interval"`
	Mode     string `mapstructure:"mode"`
	Colorize bool   `mapstructure:"colorize"`
	NoColor  bool   `mapstructure:"no_color"`
	Device   int    `mapstructure:"device"`
	LogLevel string `mapstructure:"log_level"`
}

// flag name -> viper key
var boundFlags = map[string]string{
	"loop":      "loop",
	"interval":  "interval",
	"mode":      "mode",
	"colorize":  "colorize",
	"no-color":  "no_color",
	"device":    "device",
	"log-level": "log_level",
}

// modeShortcuts are boolean flags that select a render mode directly.
var modeShortcuts = map[string]render.Mode{
	"oneline": render.ModeOneline,
	"table":   render.ModeTable,
	"json":    render.ModeJSON,
}

// RegisterFlags adds the command line flags understood by Load to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.BoolP("loop", "l", false, "Refresh until 'q' is pressed")
	fs.IntP("interval", "f", DefaultInterval, "Seconds between refreshes in loop mode")
	fs.BoolP("oneline", "o", false, "Print utilization, temperature and fan speed on one line")
	fs.BoolP("table", "t", false, "Print a table")
	fs.BoolP("json", "j", false, "Print JSON")
	fs.String("mode", DefaultMode, "Output mode: multiline, oneline, table or json")
	fs.BoolP("colorize", "c", false, "Colorize output")
	fs.Bool("no-color", false, "Never colorize output, including JSON on a terminal")
	fs.Int("device", DefaultDevice, "Index of the GPU to report on")
	fs.String("log-level", DefaultLogLevel, "Log level: debug, info, warning or error")
	fs.String("config", "", "Path to a TOML config file")
}

// Load merges defaults, the config file, environment variables and flags, in
// increasing order of precedence, and validates the result. fs may be nil.
func Load(fs *pflag.FlagSet, opts ...Option) (*Config, error) {
	errFactory := errors.New()

	o := &options{
		envPrefix:  defaultEnvPrefix,
		configPath: os.Getenv(configEnv),
		searchDirs: defaultSearchDirs(),
	}
	if fs != nil {
		if f := fs.Lookup("config"); f != nil && f.Changed {
			o.configPath = f.Value.String()
		}
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
		}
	}

	v := viper.New()
	v.SetDefault("loop", false)
	v.SetDefault("interval", DefaultInterval)
	v.SetDefault("mode", DefaultMode)
	v.SetDefault("colorize", false)
	v.SetDefault("no_color", false)
	v.SetDefault("device", DefaultDevice)
	v.SetDefault("log_level", DefaultLogLevel)

	if err := readConfigFile(v, o); err != nil {
		return nil, err
	}

	v.SetEnvPrefix(o.envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for name, key := range boundFlags {
			f := fs.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, errFactory.Wrap(errors.ErrBindFlags, err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	if fs != nil {
		for name, mode := range modeShortcuts {
			if on, err := fs.GetBool(name); err == nil && on {
				cfg.Mode = string(mode)
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func readConfigFile(v *viper.Viper, o *options) error {
	errFactory := errors.New()

	v.SetConfigType("toml")
	if o.configPath != "" {
		v.SetConfigFile(o.configPath)
		if err := v.ReadInConfig(); err != nil {
			return errFactory.Wrap(errors.ErrReadConfig, err)
		}
		return nil
	}

	v.SetConfigName(configName)
	for _, dir := range o.searchDirs {
		v.AddConfigPath(dir)
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return errFactory.Wrap(errors.ErrReadConfig, err)
		}
	}

	return nil
}

func defaultSearchDirs() []string {
	var dirs []string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		dirs = append(dirs, filepath.Join(xdg, configName))
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".config", configName))
	}

	return append(dirs, filepath.Join("/etc", configName))
}

// Validate checks every field and returns the first violation.
func (c *Config) Validate() error {
	errFactory := errors.New()

	if c.Interval <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, c.Interval)
	}

	mode, err := render.ParseMode(c.Mode)
	if err != nil {
		return err
	}
	c.Mode = string(mode)

	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return err
	}

	if c.Device < 0 {
		return errFactory.WithData(errors.ErrInvalidDevice, c.Device)
	}

	return nil
}

// IntervalDuration returns the loop interval.
func (c *Config) IntervalDuration() time.Duration {
	return time.Duration(c.Interval) * time.Second
}

// RenderMode returns the validated output mode.
func (c *Config) RenderMode() render.Mode {
	return render.Mode(c.Mode)
}

// ColorizeOutput decides whether output is colorized. JSON follows the
// terminal unless colors are forced on or off; other modes only color on
// request.
func (c *Config) ColorizeOutput(stdoutIsTerminal bool) bool {
	if c.NoColor {
		return false
	}
	if c.RenderMode() == render.ModeJSON {
		return c.Colorize || stdoutIsTerminal
	}

	return c.Colorize
}
