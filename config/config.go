// Package config resolves acctvault's runtime configuration.
//
// Values come from four layers, highest priority first: command-line flags,
// environment variables, the settings file and built-in defaults. A field is
// taken from the first layer that sets it.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const appDirName = "acctvault"

// Config is the merged configuration.
type Config struct {
	// StoragePath is the directory holding accounts.csv.
	// Env: VAULT_STORAGE_PATH
	StoragePath string `env:"VAULT_STORAGE_PATH"`

	// SettingsFile is the JSON file persisting the user's storage choice.
	// Env: VAULT_SETTINGS_FILE
	SettingsFile string `env:"VAULT_SETTINGS_FILE"`

	// LogFile receives JSON log lines.
	// Env: VAULT_LOG_FILE
	LogFile string `env:"VAULT_LOG_FILE"`

	// LogLevel is a zerolog level name ("debug", "info", ...).
	// Env: VAULT_LOG_LEVEL
	LogLevel string `env:"VAULT_LOG_LEVEL"`

	// ClipboardClear is how long a copied secret stays on the clipboard.
	// Env: VAULT_CLIPBOARD_CLEAR
	ClipboardClear time.Duration `env:"VAULT_CLIPBOARD_CLEAR"`
}

// Load merges flags, environment, settings file and defaults, then
// validates the result. flags may be nil.
func Load(flags *Config) (*Config, error) {
	return newConfigBuilder().
		withFlags(flags).
		withEnv().
		withSettings().
		withDefaults().
		build()
}

// Level returns the parsed log level.
func (c *Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}

// Defaults returns the built-in configuration.
func Defaults() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home dir: %w", err)
	}
	cfgDir, err := os.UserConfigDir()
	if err != nil {
		cfgDir = filepath.Join(home, ".config")
	}
	appDir := filepath.Join(cfgDir, appDirName)

	return &Config{
		StoragePath:    filepath.Join(home, ".link1987", "password"),
		SettingsFile:   filepath.Join(appDir, "settings.json"),
		LogFile:        filepath.Join(appDir, "vault.log"),
		LogLevel:       zerolog.InfoLevel.String(),
		ClipboardClear: 30 * time.Second,
	}, nil
}

func (c *Config) validate() error {
	if c.StoragePath == "" {
		return ErrEmptyStoragePath
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.LogLevel)
	}
	if c.ClipboardClear <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidClipboardClear, c.ClipboardClear)
	}
	return nil
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
