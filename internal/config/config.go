// Package config loads memo settings from config.yaml, MEMO_* environment
// variables, an optional .env file and command line flags.
//
// Precedence, highest first: flag, environment, config file, default.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/amirbrooks/memo/internal/logging"
	"github.com/amirbrooks/memo/internal/store"
)

const (
	fileName  = "config"
	fileType  = "yaml"
	envPrefix = "MEMO"

	DefaultPath = "~/.memo"
)

var ErrInvalid = errors.New("invalid config")

// Keys lists every key accepted by Set, in display order.
var Keys = []string{
	"path",
	"temp_path",
	"confirm_delete_all",
	"auto_done_before",
	"auto_done_days",
	"log.level",
}

// flagKeys maps config keys to the flag names that override them.
var flagKeys = map[string]string{
	"path":      "file",
	"log.level": "log-level",
}

// Config is the resolved configuration.
type Config struct {
	Path           string `mapstructure:"path" yaml:"path"`
	TempPath       string `mapstructure:"temp_path" yaml:"temp_path,omitempty"`
	ConfirmDelete  bool   `mapstructure:"confirm_delete_all" yaml:"confirm_delete_all"`
	AutoDoneBefore string `mapstructure:"auto_done_before" yaml:"auto_done_before,omitempty"`
	AutoDoneDays   int    `mapstructure:"auto_done_days" yaml:"auto_done_days,omitempty"`
	Log            struct {
		Level string `mapstructure:"level" yaml:"level"`
	} `mapstructure:"log" yaml:"log"`

	file   string
	cutoff *store.Date
}

// Options controls where Load looks. Zero value means the user's config
// directory and then the working directory.
type Options struct {
	Dirs     []string
	Flags    *pflag.FlagSet
	EnvFiles []string
	Logger   *slog.Logger
}

// Load resolves the configuration. A missing config file is not an error.
func Load(opts Options) (*Config, error) {
	logger := logging.Default(opts.Logger).With("component", "config")

	if err := godotenv.Load(opts.EnvFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	v := viper.New()
	v.SetConfigName(fileName)
	v.SetConfigType(fileType)
	dirs := opts.Dirs
	if len(dirs) == 0 {
		dirs = []string{Dir(), "."}
	}
	for _, d := range dirs {
		v.AddConfigPath(d)
	}
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		logger.Debug("no config.yaml found, using defaults")
	} else {
		logger.Debug("loaded configuration", "file", v.ConfigFileUsed())
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.Flags != nil {
		for key, name := range flagKeys {
			if f := opts.Flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	cfg.file = v.ConfigFileUsed()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("path", DefaultPath)
	v.SetDefault("temp_path", "")
	v.SetDefault("confirm_delete_all", true)
	v.SetDefault("auto_done_before", "")
	v.SetDefault("auto_done_days", 0)
	v.SetDefault("log.level", "error")
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.Path) == "" {
		return fmt.Errorf("%w: path is empty", ErrInvalid)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %v", ErrInvalid, err)
	}
	if c.AutoDoneDays < 0 {
		return fmt.Errorf("%w: auto_done_days must not be negative", ErrInvalid)
	}
	c.cutoff = nil
	if s := strings.TrimSpace(c.AutoDoneBefore); s != "" {
		d, err := store.ParseDate(s)
		if err != nil {
			return fmt.Errorf("%w: auto_done_before: %v", ErrInvalid, err)
		}
		c.cutoff = &d
	}
	return nil
}

// StorePath returns the configured store file path, "~" unexpanded.
func (c *Config) StorePath() string { return c.Path }

// ConfirmDeleteAll reports whether deleting every note needs confirmation.
func (c *Config) ConfirmDeleteAll() bool { return c.ConfirmDelete }

// LogLevel returns the parsed log level.
func (c *Config) LogLevel() slog.Level {
	level, _ := logging.ParseLevel(c.Log.Level)
	return level
}

// AutoDoneCutoff returns the date before which undone notes are marked done
// automatically. auto_done_before wins over auto_done_days.
func (c *Config) AutoDoneCutoff() (store.Date, bool) {
	if c.cutoff != nil {
		return *c.cutoff, true
	}
	if c.AutoDoneDays > 0 {
		return store.Today().AddDays(-c.AutoDoneDays), true
	}
	return store.Date{}, false
}

// File returns the config file that was read, or "" when none was found.
func (c *Config) File() string { return c.file }

// Dir returns the user config directory for memo.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "memo")
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(".", ".config", "memo")
	}
	return filepath.Join(home, ".config", "memo")
}

// DefaultFile is where Set writes when no config file was loaded.
func DefaultFile() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y", "on":
		return true, true
	case "0", "false", "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}

func isNone(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "null":
		return true
	}
	return false
}

func parseDays(s string) (int, error) {
	if isNone(s) {
		return 0, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: auto_done_days: %q", ErrInvalid, s)
	}
	return n, nil
}
