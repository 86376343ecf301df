// Package config loads stamboom settings.
//
// Settings come from three layers, later ones winning:
//
//  1. built-in defaults ([Default])
//  2. the TOML file at $XDG_CONFIG_HOME/stamboom/config.toml
//  3. STAMBOOM_* environment variables
//
// Command-line flags are applied on top by the CLI.
//
//	[storage]
//	backend = "postgres"
//	dsn = "postgres://localhost/stamboom"
//
//	[layout]
//	node_spacing = 60
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"

	"github.com/matzehuels/stamboom/pkg/pipeline"
)

// AppName names the config and cache directories.
const AppName = "stamboom"

// EnvPrefix prefixes every environment variable.
const EnvPrefix = "STAMBOOM_"

// Storage backends.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendMongo    = "mongo"
)

// Config is the full settings tree.
type Config struct {
	Storage Storage `toml:"storage" envPrefix:"STORAGE_"`
	Cache   Cache   `toml:"cache" envPrefix:"CACHE_"`
	Server  Server  `toml:"server" envPrefix:"SERVER_"`
	Mapbox  Mapbox  `toml:"mapbox" envPrefix:"MAPBOX_"`
	Layout  Layout  `toml:"layout" envPrefix:"LAYOUT_"`
}

// Storage selects the record backend.
type Storage struct {
	Backend string `toml:"backend" env:"BACKEND"`
	// DSN is a postgres:// URL or a mongodb:// URI.
	DSN string `toml:"dsn" env:"DSN"`
	// Database is the MongoDB database name.
	Database string `toml:"database" env:"DATABASE"`
}

// Cache configures layout, artifact and geocoding caches. A non-empty
// RedisURL takes precedence over Dir.
type Cache struct {
	Dir      string `toml:"dir" env:"DIR"`
	RedisURL string `toml:"redis_url" env:"REDIS_URL"`
	Disabled bool   `toml:"disabled" env:"DISABLED"`
}

type Server struct {
	Addr string `toml:"addr" env:"ADDR"`
}

// Mapbox configures birthplace geocoding.
type Mapbox struct {
	Token       string  `toml:"token" env:"TOKEN"`
	RateLimit   float64 `toml:"rate_limit" env:"RATE_LIMIT"`
	Concurrency int     `toml:"concurrency" env:"CONCURRENCY"`
}

// Layout holds the layout defaults. Zero means the engine default.
type Layout struct {
	NodeSpacing      float64 `toml:"node_spacing" env:"NODE_SPACING"`
	RankSpacing      float64 `toml:"rank_spacing" env:"RANK_SPACING"`
	ComponentSpacing float64 `toml:"component_spacing" env:"COMPONENT_SPACING"`
	LooseColumns     int     `toml:"loose_columns" env:"LOOSE_COLUMNS"`
	Quality          string  `toml:"quality" env:"QUALITY"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Storage: Storage{Backend: BackendMemory, Database: AppName},
		Server:  Server{Addr: ":8080"},
		Mapbox:  Mapbox{RateLimit: 10, Concurrency: 4},
		Layout:  Layout{Quality: pipeline.DefaultQuality},
	}
}

// Path returns the config file location.
func Path() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, AppName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName, "config.toml"), nil
}

// Load reads the config file at [Path] and the process environment.
func Load() (Config, error) {
	path, err := Path()
	if err != nil {
		return Config{}, fmt.Errorf("config: locate file: %w", err)
	}
	return LoadFrom(path, nil)
}

// LoadFrom reads path, which may be missing, then overlays environ. A nil
// environ means the process environment.
func LoadFrom(path string, environ map[string]string) (Config, error) {
	cfg := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}
	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("config: parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks backend names and required connection strings.
func (c Config) Validate() error {
	switch c.Storage.Backend {
	case BackendMemory:
	case BackendPostgres, BackendMongo:
		if c.Storage.DSN == "" {
			return fmt.Errorf("config: storage.dsn is required for the %s backend", c.Storage.Backend)
		}
		if !strings.Contains(c.Storage.DSN, "://") {
			return fmt.Errorf("config: storage.dsn must be a URL such as %s://host/db", c.Storage.Backend)
		}
	default:
		return fmt.Errorf("config: unknown storage backend %q (must be memory, postgres or mongo)", c.Storage.Backend)
	}
	if c.Mapbox.Concurrency < 0 {
		return fmt.Errorf("config: mapbox.concurrency must not be negative")
	}
	if c.Layout.Quality != "" {
		if err := pipeline.ValidateQuality(c.Layout.Quality); err != nil {
			return fmt.Errorf("config: layout.quality: %w", err)
		}
	}
	return nil
}

// ApplyLayout copies the layout settings into opts where opts has no
// value of its own.
func (c Config) ApplyLayout(opts *pipeline.Options) {
	l := c.Layout
	if opts.NodeSpacing == 0 {
		opts.NodeSpacing = l.NodeSpacing
	}
	if opts.RankSpacing == 0 {
		opts.RankSpacing = l.RankSpacing
	}
	if opts.ComponentSpacing == 0 {
		opts.ComponentSpacing = l.ComponentSpacing
	}
	if opts.LooseColumns == 0 {
		opts.LooseColumns = l.LooseColumns
	}
	if opts.Quality == "" {
		opts.Quality = l.Quality
	}
}

// CacheDir returns Cache.Dir, or $XDG_CACHE_HOME/stamboom when unset.
func (c Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", AppName), nil
}
