// Package config loads the taskdag configuration file.
//
// The file is TOML and lives in the XDG config directory:
//
//	~/.config/taskdag/config.toml
//
// A missing file is not an error; [Default] values are used. Values read from
// the file are layered over the defaults, so a file only needs to name what
// it changes:
//
//	[store]
//	backend = "sqlite"
//	path = "~/tasks.db"
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//	ttl = "24h"
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	dagerrors "github.com/matzehuels/taskdag/pkg/errors"
	"github.com/matzehuels/taskdag/pkg/task"
	"github.com/matzehuels/taskdag/pkg/watcher"
)

const appName = "taskdag"

// Store backends.
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
	StoreMongo  = "mongo"
)

// Cache backends.
const (
	CacheNone  = "none"
	CacheFile  = "file"
	CacheRedis = "redis"
)

// Duration is a time.Duration written as a string ("200ms", "24h").
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// StoreConfig selects where the task list is kept.
type StoreConfig struct {
	Backend    string `toml:"backend"`
	Path       string `toml:"path"` // task file or sqlite database
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// CacheConfig selects the rendered-artifact cache.
type CacheConfig struct {
	Backend       string   `toml:"backend"`
	Dir           string   `toml:"dir"`
	RedisAddr     string   `toml:"redis_addr"`
	RedisPassword string   `toml:"redis_password"`
	RedisDB       int      `toml:"redis_db"`
	TTL           Duration `toml:"ttl"`
	Prefix        string   `toml:"prefix"` // key prefix for shared redis instances
}

// ServerConfig configures `taskdag serve`.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// WatchConfig configures task file watching.
type WatchConfig struct {
	Debounce Duration `toml:"debounce"`
}

// LayoutConfig holds layout defaults that flags can override.
type LayoutConfig struct {
	Filter    string `toml:"filter"`
	LineWidth int    `toml:"line_width"`
}

// Config is the top-level configuration.
type Config struct {
	Store  StoreConfig  `toml:"store"`
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
	Watch  WatchConfig  `toml:"watch"`
	Layout LayoutConfig `toml:"layout"`
}

// Default returns the built-in configuration: a tasks.json file in the
// working directory, a file cache under the user cache directory and a
// server on localhost:8080.
func Default() Config {
	return Config{
		Store: StoreConfig{
			Backend:    StoreFile,
			Path:       "tasks.json",
			Database:   appName,
			Collection: "tasks",
		},
		Cache: CacheConfig{
			Backend: CacheFile,
			Dir:     CacheDir(),
			TTL:     Duration{7 * 24 * time.Hour},
		},
		Server: ServerConfig{Addr: "localhost:8080"},
		Watch:  WatchConfig{Debounce: Duration{watcher.DefaultDebounceDuration}},
		Layout: LayoutConfig{Filter: string(task.FilterAll), LineWidth: 16},
	}
}

// Validate reports the first invalid setting as an INVALID_CONFIG error.
func (c Config) Validate() error {
	switch c.Store.Backend {
	case StoreFile, StoreSQLite:
		if c.Store.Path == "" {
			return invalid("store.path is required for the %s backend", c.Store.Backend)
		}
	case StoreMongo:
		if c.Store.URI == "" {
			return invalid("store.uri is required for the mongo backend")
		}
	default:
		return invalid("unknown store.backend %q (want file, sqlite or mongo)", c.Store.Backend)
	}

	switch c.Cache.Backend {
	case CacheNone:
	case CacheFile:
		if c.Cache.Dir == "" {
			return invalid("cache.dir is required for the file backend")
		}
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			return invalid("cache.redis_addr is required for the redis backend")
		}
	default:
		return invalid("unknown cache.backend %q (want none, file or redis)", c.Cache.Backend)
	}
	if c.Cache.TTL.Duration < 0 {
		return invalid("cache.ttl must not be negative")
	}

	if c.Server.Addr == "" {
		return invalid("server.addr is required")
	}
	if c.Watch.Debounce.Duration < 0 {
		return invalid("watch.debounce must not be negative")
	}
	if _, err := task.ParseFilter(c.Layout.Filter); err != nil {
		return dagerrors.Wrap(dagerrors.ErrCodeInvalidConfig, err, "layout.filter")
	}
	if c.Layout.LineWidth < 0 {
		return invalid("layout.line_width must not be negative")
	}
	return nil
}

func invalid(format string, args ...any) error {
	return dagerrors.New(dagerrors.ErrCodeInvalidConfig, format, args...)
}

// Dir returns the XDG config directory for taskdag.
func Dir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName)
}

// CacheDir returns the XDG cache directory for rendered artifacts.
func CacheDir() string {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".cache", appName)
}

// Path returns the default config file path.
func Path() string {
	dir := Dir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.toml")
}

// Load reads the config file at path, or the default path when path is
// empty. A missing default file yields [Default]; a missing explicit file is
// a FILE_NOT_FOUND error. The result is validated.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = Path()
	}
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	md, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, fs.ErrNotExist) {
		if explicit {
			return cfg, dagerrors.Wrap(dagerrors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return cfg, nil
	}
	if err != nil {
		return cfg, dagerrors.Wrap(dagerrors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		slices.Sort(keys)
		return cfg, invalid("unknown config keys in %s: %s", path, strings.Join(keys, ", "))
	}

	cfg.Store.Path = expandHome(cfg.Store.Path)
	cfg.Cache.Dir = expandHome(cfg.Cache.Dir)
	return cfg, cfg.Validate()
}

// Save writes cfg to path, creating the directory if needed.
func Save(cfg Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return dagerrors.Wrap(dagerrors.ErrCodeStorage, err, "create config directory")
	}
	f, err := os.Create(path)
	if err != nil {
		return dagerrors.Wrap(dagerrors.ErrCodeStorage, err, "create config")
	}
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		f.Close()
		return dagerrors.Wrap(dagerrors.ErrCodeStorage, err, "encode config")
	}
	return f.Close()
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
