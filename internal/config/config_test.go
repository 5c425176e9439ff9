//nolint:goconst // test cases intentionally repeat strings for readability
package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("Could not get home dir: %v", err)
	}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "tilde expands to home",
			input:    "~/music",
			expected: filepath.Join(home, "music"),
		},
		{
			name:     "tilde with nested path",
			input:    "~/music/library/albums",
			expected: filepath.Join(home, "music", "library", "albums"),
		},
		{
			name:     "absolute path unchanged",
			input:    "/usr/local/music",
			expected: "/usr/local/music",
		},
		{
			name:     "relative path unchanged",
			input:    "music/albums",
			expected: "music/albums",
		},
		{
			name:     "empty string unchanged",
			input:    "",
			expected: "",
		},
		{
			name:     "tilde only",
			input:    "~",
			expected: home,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := expandPath(tt.input)
			if result != tt.expected {
				t.Errorf("expandPath(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestGetConfigPaths(t *testing.T) {
	paths := getConfigPaths()

	if len(paths) == 0 {
		t.Fatal("getConfigPaths() returned empty slice")
	}

	// Last path should be local config.toml
	lastPath := paths[len(paths)-1]
	if lastPath != "config.toml" {
		t.Errorf("last config path = %q, want %q", lastPath, "config.toml")
	}

	if len(paths) > 1 && !strings.Contains(paths[0], filepath.Join(".config", "crate")) {
		t.Errorf("user config path = %q, want it under .config/crate", paths[0])
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}

	if cfg.Workers() != 4 {
		t.Errorf("Workers() = %d, want 4", cfg.Workers())
	}
	if cfg.LogLevel() != "info" {
		t.Errorf("LogLevel() = %q, want info", cfg.LogLevel())
	}
	if !cfg.HistoryEnabled() {
		t.Error("HistoryEnabled() = false, want true by default")
	}
	if cfg.Notify.Import {
		t.Error("Notify.Import = true, want false by default")
	}

	path, err := cfg.ResolveCatalogPath()
	if err != nil {
		t.Fatalf("ResolveCatalogPath failed: %v", err)
	}
	if filepath.Base(path) != "library.xml" || filepath.Base(filepath.Dir(path)) != "crate" {
		t.Errorf("default catalog path = %q, want .../crate/library.xml", path)
	}
}

func TestLoadFrom_Values(t *testing.T) {
	path := writeConfig(t, `
catalog_path = "/data/library.xml"
music_dir = "/music"

[import]
workers = 8

[log]
level = "debug"
file = "/tmp/crate.log"

[history]
enabled = false
path = "/data/history.db"

[notify]
import = true
`)

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}

	if cfg.CatalogPath != "/data/library.xml" {
		t.Errorf("CatalogPath = %q", cfg.CatalogPath)
	}
	if cfg.MusicDir != "/music" {
		t.Errorf("MusicDir = %q", cfg.MusicDir)
	}
	if cfg.Workers() != 8 {
		t.Errorf("Workers() = %d, want 8", cfg.Workers())
	}
	if cfg.LogLevel() != "debug" {
		t.Errorf("LogLevel() = %q, want debug", cfg.LogLevel())
	}
	if got, _ := cfg.ResolveLogFile(); got != "/tmp/crate.log" {
		t.Errorf("ResolveLogFile() = %q", got)
	}
	if cfg.HistoryEnabled() {
		t.Error("HistoryEnabled() = true, want false")
	}
	if cfg.History.Path != "/data/history.db" {
		t.Errorf("History.Path = %q", cfg.History.Path)
	}
	if !cfg.Notify.Import {
		t.Error("Notify.Import = false, want true")
	}
}

func TestLoadFrom_LaterFileWins(t *testing.T) {
	base := writeConfig(t, `
music_dir = "/base"
[import]
workers = 2
`)
	override := writeConfig(t, `music_dir = "/override"`)

	cfg, err := LoadFrom(base, override)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}

	if cfg.MusicDir != "/override" {
		t.Errorf("MusicDir = %q, want /override", cfg.MusicDir)
	}
	if cfg.Workers() != 2 {
		t.Errorf("Workers() = %d, want 2 from the base file", cfg.Workers())
	}
}

func TestLoadFrom_InvalidToml(t *testing.T) {
	path := writeConfig(t, `music_dir = [`)

	if _, err := LoadFrom(path); err == nil {
		t.Error("LoadFrom should fail on invalid toml")
	}
}

func TestWorkers(t *testing.T) {
	tests := []struct {
		name    string
		workers int
		want    int
	}{
		{"zero uses default", 0, 4},
		{"negative uses default", -1, 4},
		{"lower bound", 1, 1},
		{"upper bound", 32, 32},
		{"above max uses default", 33, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{Import: ImportConfig{Workers: tt.workers}}
			if got := cfg.Workers(); got != tt.want {
				t.Errorf("Workers() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestLoadFrom_ExpandsPaths(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("Could not get home dir: %v", err)
	}
	path := writeConfig(t, `
catalog_path = "~/crate/library.xml"
[history]
path = "~/crate/history.db"
`)

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}

	if want := filepath.Join(home, "crate", "library.xml"); cfg.CatalogPath != want {
		t.Errorf("CatalogPath = %q, want %q", cfg.CatalogPath, want)
	}
	if want := filepath.Join(home, "crate", "history.db"); cfg.History.Path != want {
		t.Errorf("History.Path = %q, want %q", cfg.History.Path, want)
	}
}
