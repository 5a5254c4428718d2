package driver

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
)

// Config is the effective tool configuration.
type Config struct {
	LogLevel     string
	CacheDir     string
	MaxCallDepth int
}

// Environment variables consulted by ResolveConfig.
const (
	EnvLogLevel = "RIFT_LOG"
	EnvCacheDir = "RIFT_CACHE"
)

// DefaultMaxCallDepth bounds conduit nesting when nothing else does.
const DefaultMaxCallDepth = 1000

// ResolveConfig layers configuration: flags win over the manifest `config`
// section, which wins over the environment, which wins over defaults. A nil
// getenv reads the process environment.
func ResolveConfig(flags Config, manifest *Manifest, getenv func(string) string) (Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	cfg := flags
	if manifest != nil {
		layer := Config{
			LogLevel:     manifest.Config.LogLevel,
			MaxCallDepth: manifest.Config.MaxCallDepth,
		}
		if manifest.Config.CacheDir != "" {
			layer.CacheDir = manifest.resolve(manifest.Config.CacheDir)
		}
		if err := mergo.Merge(&cfg, layer); err != nil {
			return Config{}, fmt.Errorf("config: merge manifest: %w", err)
		}
	}
	env := Config{
		LogLevel: strings.TrimSpace(getenv(EnvLogLevel)),
		CacheDir: strings.TrimSpace(getenv(EnvCacheDir)),
	}
	if err := mergo.Merge(&cfg, env); err != nil {
		return Config{}, fmt.Errorf("config: merge environment: %w", err)
	}
	defaults, err := defaultConfig()
	if err != nil {
		return Config{}, err
	}
	if err := mergo.Merge(&cfg, defaults); err != nil {
		return Config{}, fmt.Errorf("config: merge defaults: %w", err)
	}
	if _, err := ParseLogLevel(cfg.LogLevel); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	abs, err := filepath.Abs(cfg.CacheDir)
	if err != nil {
		return Config{}, fmt.Errorf("config: resolve cache_dir %q: %w", cfg.CacheDir, err)
	}
	cfg.CacheDir = abs
	return cfg, nil
}

func defaultConfig() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, fmt.Errorf("config: resolve user home: %w", err)
	}
	return Config{
		LogLevel:     "warn",
		CacheDir:     filepath.Join(home, ".rift"),
		MaxCallDepth: DefaultMaxCallDepth,
	}, nil
}

// Level returns the slog level named by LogLevel.
func (c Config) Level() slog.Level {
	level, err := ParseLogLevel(c.LogLevel)
	if err != nil {
		return slog.LevelWarn
	}
	return level
}

// ParseLogLevel accepts debug, info, warn and error in any case.
func ParseLogLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return 0, fmt.Errorf("log_level %q must be one of debug, info, warn, error", name)
	}
	return level, nil
}
