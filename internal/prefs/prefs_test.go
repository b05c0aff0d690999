package prefs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	p, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if p != Default() {
		t.Fatalf("Load = %#v, want %#v", p, Default())
	}
}

func TestLoad_ReadsExistingFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	prefsDir := filepath.Join(home, ".config", "aperture")
	if err := os.MkdirAll(prefsDir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	prefsFile := filepath.Join(prefsDir, "prefs.toml")
	if err := os.WriteFile(prefsFile, []byte("theme = \"Slate\"\nhorizontal_line = 33\nvertical_line = 0\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	p, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if p.Theme != "Slate" {
		t.Fatalf("Theme = %q, want %q", p.Theme, "Slate")
	}
	if p.HorizontalLine != 33 {
		t.Fatalf("HorizontalLine = %d, want 33", p.HorizontalLine)
	}
	if p.VerticalLine != 0 {
		t.Fatalf("VerticalLine = %d, want explicit 0", p.VerticalLine)
	}
}

func TestLoad_ClampsGridLines(t *testing.T) {
	prefsFile := filepath.Join(t.TempDir(), "prefs.toml")
	if err := os.WriteFile(prefsFile, []byte("horizontal_line = 140\nvertical_line = -3\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	p, err := Load(prefsFile)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if p.HorizontalLine != 100 || p.VerticalLine != 0 {
		t.Fatalf("grid lines = %d/%d, want 100/0", p.HorizontalLine, p.VerticalLine)
	}
	if p.Theme != defaultTheme {
		t.Fatalf("Theme = %q, want %q", p.Theme, defaultTheme)
	}
}

func TestSave_CreatesFileAndDirs(t *testing.T) {
	tmp := t.TempDir()
	prefsFile := filepath.Join(tmp, "subdir", "prefs.toml")

	p := Prefs{Theme: "Slate", HorizontalLine: 25, VerticalLine: 75}
	if err := Save(prefsFile, p); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	loaded, err := Load(prefsFile)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if loaded != p {
		t.Fatalf("Load = %#v, want %#v", loaded, p)
	}
}

func TestLoad_InvalidTOMLFallsBackToDefault(t *testing.T) {
	tmp := t.TempDir()
	prefsFile := filepath.Join(tmp, "prefs.toml")
	if err := os.WriteFile(prefsFile, []byte("not valid toml {{{\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	p, err := Load(prefsFile)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if p != Default() {
		t.Fatalf("Load = %#v, want defaults", p)
	}
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	prefsFile := filepath.Join(dir, "prefs.toml")
	if err := Save(prefsFile, Default()); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan Prefs, 8)
	done := make(chan error, 1)
	report := func(p Prefs) {
		select {
		case got <- p:
		default:
		}
	}
	go func() { done <- Watch(ctx, prefsFile, report) }()

	// The watcher is registered asynchronously; keep writing until it reports.
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case p := <-got:
			if p.Theme != "Kanagawa" {
				continue
			}
			cancel()
			if err := <-done; err != nil {
				t.Fatalf("Watch returned error: %v", err)
			}
			return
		case <-tick.C:
			_ = Save(prefsFile, Prefs{Theme: "Kanagawa", HorizontalLine: 10, VerticalLine: 10})
		case <-deadline:
			t.Fatalf("Watch never reported the new theme")
		}
	}
}

func TestWatch_CreatesMissingDirectory(t *testing.T) {
	prefsFile := filepath.Join(t.TempDir(), "fresh", "aperture", "prefs.toml")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan Prefs, 8)
	done := make(chan error, 1)
	report := func(p Prefs) {
		select {
		case got <- p:
		default:
		}
	}
	go func() { done <- Watch(ctx, prefsFile, report) }()

	// The first save on a fresh install must still be picked up.
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case p := <-got:
			if p.Theme != "Kanagawa" {
				continue
			}
			cancel()
			if err := <-done; err != nil {
				t.Fatalf("Watch returned error: %v", err)
			}
			return
		case err := <-done:
			t.Fatalf("Watch returned early: %v", err)
		case <-tick.C:
			_ = Save(prefsFile, Prefs{Theme: "Kanagawa", HorizontalLine: 10, VerticalLine: 10})
		case <-deadline:
			t.Fatalf("Watch never reported the new theme")
		}
	}
}
