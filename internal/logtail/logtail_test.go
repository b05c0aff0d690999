package logtail

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestRead(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "test.log")

	var content strings.Builder
	var expectedAll []string
	for i := 1; i <= 10; i++ {
		line := fmt.Sprintf("Line %d", i)
		content.WriteString(line + "\n")
		expectedAll = append(expectedAll, line)
	}

	if err := os.WriteFile(logPath, []byte(content.String()), 0644); err != nil {
		t.Fatalf("failed to create test log file: %v", err)
	}

	tests := []struct {
		name     string
		maxLines int
		expected []string
	}{
		{
			name:     "zero lines",
			maxLines: 0,
			expected: nil,
		},
		{
			name:     "read partial (5)",
			maxLines: 5,
			expected: expectedAll[5:],
		},
		{
			name:     "read exactly all (10)",
			maxLines: 10,
			expected: expectedAll,
		},
		{
			name:     "read more than exists (20)",
			maxLines: 20,
			expected: expectedAll,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(logPath, tt.maxLines)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Read() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRead_SpansChunks(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "big.log")
	long := strings.Repeat("x", 1000)
	var content strings.Builder
	for i := 0; i < 200; i++ {
		fmt.Fprintf(&content, "%03d %s\n", i, long)
	}
	if err := os.WriteFile(logPath, []byte(content.String()), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	got, err := Read(logPath, 50)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(got) != 50 {
		t.Fatalf("len(Read()) = %d, want 50", len(got))
	}
	if !strings.HasPrefix(got[0], "150 ") || !strings.HasPrefix(got[49], "199 ") {
		t.Fatalf("Read() spans %q..%q, want 150..199", got[0][:3], got[49][:3])
	}
}

func TestRead_MissingFile(t *testing.T) {
	got, err := Read(filepath.Join(t.TempDir(), "nope.log"), 10)
	if err != nil || got != nil {
		t.Fatalf("Read(missing) = %v, %v; want nil, nil", got, err)
	}
}

func TestFollower_ReturnsAppendedLines(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "app.log")
	if err := os.WriteFile(logPath, []byte("a\nb\nc\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	f := NewFollower(logPath)
	got, err := f.Poll(2)
	if err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	if !reflect.DeepEqual(got, []string{"b", "c"}) {
		t.Fatalf("first Poll() = %v, want [b c]", got)
	}

	appendFile(t, logPath, "d\ne")
	got, err = f.Poll(2)
	if err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	if !reflect.DeepEqual(got, []string{"d"}) {
		t.Fatalf("Poll() = %v, want [d] with e held back", got)
	}

	appendFile(t, logPath, "f\n")
	got, _ = f.Poll(2)
	if !reflect.DeepEqual(got, []string{"ef"}) {
		t.Fatalf("Poll() = %v, want [ef]", got)
	}

	got, _ = f.Poll(2)
	if got != nil {
		t.Fatalf("idle Poll() = %v, want nil", got)
	}
}

func TestFollower_RestartsAfterTruncate(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "app.log")
	if err := os.WriteFile(logPath, []byte("one\ntwo\nthree\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	f := NewFollower(logPath)
	if _, err := f.Poll(10); err != nil {
		t.Fatalf("Poll() error = %v", err)
	}

	if err := os.WriteFile(logPath, []byte("new\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := f.Poll(10)
	if err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	if !reflect.DeepEqual(got, []string{"new"}) {
		t.Fatalf("Poll() after truncate = %v, want [new]", got)
	}
}

func TestLevel(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{`time=2026-10-17T10:00:00Z level=WARN msg="read failed" resource=camera`, "WARN"},
		{`time=2026-10-17T10:00:00Z level=info msg=ok`, "INFO"},
		{`plain text`, ""},
	}
	for _, tt := range tests {
		if got := Level(tt.line); got != tt.want {
			t.Errorf("Level(%q) = %q, want %q", tt.line, got, tt.want)
		}
	}
}

func appendFile(t *testing.T, path, text string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	defer f.Close()
	if _, err := f.WriteString(text); err != nil {
		t.Fatalf("WriteString: %v", err)
	}
}
