// Package prefs handles aperture user preferences persistence.
// Preferences are stored in ~/.config/aperture/prefs.toml.
package prefs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Prefs holds user preferences for aperture.
type Prefs struct {
	Theme string `toml:"theme"`
	// Grid overlay positions, in percent of the preview size.
	HorizontalLine int `toml:"horizontal_line"`
	VerticalLine   int `toml:"vertical_line"`
}

const (
	defaultPrefsPath = "~/.config/aperture/prefs.toml"
	defaultTheme     = "Nightfox"
	defaultGridLine  = 50
)

// Default returns the preferences used when no file exists.
func Default() Prefs {
	return Prefs{
		Theme:          defaultTheme,
		HorizontalLine: defaultGridLine,
		VerticalLine:   defaultGridLine,
	}
}

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

// ClampLine limits a grid line position to 0..100.
func ClampLine(v int) int {
	return max(0, min(100, v))
}

// Normalize fills empty fields and clamps grid lines.
func (p Prefs) Normalize() Prefs {
	if strings.TrimSpace(p.Theme) == "" {
		p.Theme = defaultTheme
	}
	p.HorizontalLine = ClampLine(p.HorizontalLine)
	p.VerticalLine = ClampLine(p.VerticalLine)
	return p
}

// Load reads preferences from the given path, falling back to defaults if missing.
func Load(path string) (Prefs, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Default(), nil
	}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Default(), nil // Graceful degradation
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Default(), nil // Graceful degradation
	}

	// Pointers tell a missing line apart from an explicit 0.
	var raw struct {
		Theme          string `toml:"theme"`
		HorizontalLine *int   `toml:"horizontal_line"`
		VerticalLine   *int   `toml:"vertical_line"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Default(), nil // Graceful degradation
	}

	p := Default()
	p.Theme = raw.Theme
	if raw.HorizontalLine != nil {
		p.HorizontalLine = *raw.HorizontalLine
	}
	if raw.VerticalLine != nil {
		p.VerticalLine = *raw.VerticalLine
	}
	return p.Normalize(), nil
}

// Save writes preferences to the given path, creating directories as needed.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	dir := filepath.Dir(resolved)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	bytes, err := toml.Marshal(p.Normalize())
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}

	if err := os.WriteFile(resolved, bytes, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}

	return nil
}

// Resolve returns the absolute path Load and Save would use for path.
func Resolve(path string) (string, error) {
	return resolvePath(path)
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultPrefsPath)
	}
	return expandPath(path)
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
