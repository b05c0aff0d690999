package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds aperture's runtime settings.
type Config struct {
	APIBind          string
	PollIntervalMS   int
	UpdateDebounceMS int
	LogDir           string
	LogLevel         string
	MetricsAddr      string
}

const (
	defaultConfigPath       = "~/.config/aperture/config.toml"
	defaultLogDir           = "~/.local/state/aperture"
	defaultAPIBind          = "127.0.0.1:8080"
	defaultPollIntervalMS   = 5000
	defaultUpdateDebounceMS = 300
	defaultLogLevel         = "info"
	logFileName             = "aperture.log"
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		APIBind:          defaultAPIBind,
		PollIntervalMS:   defaultPollIntervalMS,
		UpdateDebounceMS: defaultUpdateDebounceMS,
		LogDir:           mustExpand(defaultLogDir),
		LogLevel:         defaultLogLevel,
	}
}

// Load locates and parses the config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		APIBind          string `toml:"api_bind"`
		PollIntervalMS   int    `toml:"poll_interval_ms"`
		UpdateDebounceMS int    `toml:"update_debounce_ms"`
		LogDir           string `toml:"log_dir"`
		LogLevel         string `toml:"log_level"`
		MetricsAddr      string `toml:"metrics_addr"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg := Default()
	if v := strings.TrimSpace(raw.APIBind); v != "" {
		cfg.APIBind = v
	}
	if raw.PollIntervalMS > 0 {
		cfg.PollIntervalMS = raw.PollIntervalMS
	}
	if raw.UpdateDebounceMS > 0 {
		cfg.UpdateDebounceMS = raw.UpdateDebounceMS
	}
	if v := strings.TrimSpace(raw.LogDir); v != "" {
		cfg.LogDir = mustExpand(v)
	}
	if v := strings.ToLower(strings.TrimSpace(raw.LogLevel)); v != "" {
		if _, ok := parseLevel(v); !ok {
			return Config{}, fmt.Errorf("parse config: unknown log_level %q", raw.LogLevel)
		}
		cfg.LogLevel = v
	}
	cfg.MetricsAddr = strings.TrimSpace(raw.MetricsAddr)

	return cfg, nil
}

// PollInterval returns the configured poll period.
func (c Config) PollInterval() time.Duration {
	if c.PollIntervalMS <= 0 {
		return defaultPollIntervalMS * time.Millisecond
	}
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}

// UpdateDebounce returns the quiet period before an edit is written.
func (c Config) UpdateDebounce() time.Duration {
	if c.UpdateDebounceMS <= 0 {
		return defaultUpdateDebounceMS * time.Millisecond
	}
	return time.Duration(c.UpdateDebounceMS) * time.Millisecond
}

// LogPath returns the path of aperture's own log file.
func (c Config) LogPath() string {
	if strings.TrimSpace(c.LogDir) == "" {
		return mustExpand(defaultLogDir + "/" + logFileName)
	}
	return filepath.Join(c.LogDir, logFileName)
}

// SlogLevel maps LogLevel onto slog. Unknown values mean info.
func (c Config) SlogLevel() slog.Level {
	lvl, _ := parseLevel(strings.ToLower(strings.TrimSpace(c.LogLevel)))
	return lvl
}

func parseLevel(s string) (slog.Level, bool) {
	switch s {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
