package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	dagerrors "github.com/matzehuels/taskdag/pkg/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	if err := Default().Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	path := writeConfig(t, `
[store]
backend = "sqlite"
path = "/var/lib/taskdag/tasks.db"

[cache]
backend = "redis"
redis_addr = "localhost:6379"
ttl = "24h"
prefix = "team-a:"

[watch]
debounce = "50ms"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Store.Backend != StoreSQLite || cfg.Store.Path != "/var/lib/taskdag/tasks.db" {
		t.Errorf("Store = %+v", cfg.Store)
	}
	if cfg.Cache.Backend != CacheRedis || cfg.Cache.RedisAddr != "localhost:6379" || cfg.Cache.Prefix != "team-a:" {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Cache.TTL.Duration != 24*time.Hour {
		t.Errorf("Cache.TTL = %v, want 24h", cfg.Cache.TTL)
	}
	if cfg.Watch.Debounce.Duration != 50*time.Millisecond {
		t.Errorf("Watch.Debounce = %v, want 50ms", cfg.Watch.Debounce)
	}
	// Untouched sections keep their defaults.
	if cfg.Server.Addr != "localhost:8080" {
		t.Errorf("Server.Addr = %q, want default", cfg.Server.Addr)
	}
	if cfg.Layout.LineWidth != 16 {
		t.Errorf("Layout.LineWidth = %d, want 16", cfg.Layout.LineWidth)
	}
}

func TestLoadErrors(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	tests := []struct {
		name string
		body string
		code dagerrors.Code
		want string
	}{
		{"syntax", "[store\n", dagerrors.ErrCodeInvalidConfig, "parse config"},
		{"unknown key", "[store]\nbackend = \"file\"\ncolour = \"red\"\n", dagerrors.ErrCodeInvalidConfig, "store.colour"},
		{"bad duration", "[cache]\nttl = \"soon\"\n", dagerrors.ErrCodeInvalidConfig, "parse config"},
		{"unknown backend", "[store]\nbackend = \"postgres\"\n", dagerrors.ErrCodeInvalidConfig, "store.backend"},
		{"mongo without uri", "[store]\nbackend = \"mongo\"\n", dagerrors.ErrCodeInvalidConfig, "store.uri"},
		{"redis without addr", "[cache]\nbackend = \"redis\"\n", dagerrors.ErrCodeInvalidConfig, "redis_addr"},
		{"bad filter", "[layout]\nfilter = \"someday\"\n", dagerrors.ErrCodeInvalidConfig, "layout.filter"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if !dagerrors.Is(err, tt.code) {
				t.Fatalf("Load() error = %v, want %s", err, tt.code)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Load() error = %q, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Run("explicit", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "none.toml"))
		if !dagerrors.Is(err, dagerrors.ErrCodeFileNotFound) {
			t.Errorf("Load() error = %v, want FILE_NOT_FOUND", err)
		}
	})
	t.Run("default path", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())
		cfg, err := Load("")
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.Store.Backend != StoreFile {
			t.Errorf("Store.Backend = %q, want default", cfg.Store.Backend)
		}
	})
}

func TestPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg/config")
	t.Setenv("XDG_CACHE_HOME", "/xdg/cache")
	if got, want := Path(), filepath.Join("/xdg/config", "taskdag", "config.toml"); got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}
	if got, want := CacheDir(), filepath.Join("/xdg/cache", "taskdag"); got != want {
		t.Errorf("CacheDir() = %q, want %q", got, want)
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	tests := []struct{ in, want string }{
		{"~/tasks.json", filepath.Join(home, "tasks.json")},
		{"~", home},
		{"/abs/tasks.json", "/abs/tasks.json"},
		{"~other/tasks.json", "~other/tasks.json"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := expandHome(tt.in); got != tt.want {
			t.Errorf("expandHome(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSaveRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Store.Backend = StoreSQLite
	cfg.Store.Path = "/tmp/tasks.db"
	cfg.Cache.Dir = "/tmp/cache"
	cfg.Watch.Debounce = Duration{time.Second}

	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != cfg {
		t.Errorf("Load(Save(cfg)) = %+v, want %+v", got, cfg)
	}
}
