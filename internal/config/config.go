package config

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	appName        = "crate"
	defaultWorkers = 4
	maxWorkers     = 32
)

type Config struct {
	CatalogPath string `koanf:"catalog_path"` // library.xml location
	MusicDir    string `koanf:"music_dir"`    // default directory for import

	Import  ImportConfig  `koanf:"import"`
	Log     LogConfig     `koanf:"log"`
	History HistoryConfig `koanf:"history"`
	Notify  NotifyConfig  `koanf:"notify"`
}

// ImportConfig tunes the import pipeline.
type ImportConfig struct {
	Workers int `koanf:"workers"` // concurrent tag reads (1-32, default: 4)
}

// LogConfig controls the log file.
type LogConfig struct {
	Level string `koanf:"level"` // hclog level name (default: "info")
	File  string `koanf:"file"`  // default: $XDG_STATE_HOME/crate/crate.log
}

// HistoryConfig controls the sqlite play journal.
type HistoryConfig struct {
	Enabled *bool  `koanf:"enabled"` // default: true
	Path    string `koanf:"path"`    // default: $XDG_DATA_HOME/crate/history.db
}

// NotifyConfig controls desktop notifications.
type NotifyConfig struct {
	Import bool `koanf:"import"` // notify when an import or rescan finishes (default: false)
}

func Load() (*Config, error) {
	return LoadFrom(getConfigPaths()...)
}

// LoadFrom reads the given toml files in order, later files overriding
// earlier ones. Missing files are ignored.
func LoadFrom(paths ...string) (*Config, error) {
	k := koanf.New(".")

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	cfg.CatalogPath = expandPath(cfg.CatalogPath)
	cfg.MusicDir = expandPath(cfg.MusicDir)
	cfg.Log.File = expandPath(cfg.Log.File)
	cfg.History.Path = expandPath(cfg.History.Path)

	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/crate/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", appName, "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// ResolveCatalogPath returns the configured catalog path or the XDG default.
func (c *Config) ResolveCatalogPath() (string, error) {
	if c.CatalogPath != "" {
		return c.CatalogPath, nil
	}
	return xdg.DataFile(filepath.Join(appName, "library.xml"))
}

// ResolveLogFile returns the configured log file or the XDG default.
func (c *Config) ResolveLogFile() (string, error) {
	if c.Log.File != "" {
		return c.Log.File, nil
	}
	return xdg.StateFile(filepath.Join(appName, appName+".log"))
}

// LogLevel returns the log level name, defaulting to "info".
func (c *Config) LogLevel() string {
	if c.Log.Level == "" {
		return "info"
	}
	return c.Log.Level
}

// Workers returns the import worker count with defaults applied.
func (c *Config) Workers() int {
	if c.Import.Workers <= 0 || c.Import.Workers > maxWorkers {
		return defaultWorkers
	}
	return c.Import.Workers
}

// HistoryEnabled reports whether plays are journaled.
func (c *Config) HistoryEnabled() bool {
	return c.History.Enabled == nil || *c.History.Enabled
}
