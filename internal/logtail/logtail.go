package logtail

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

const chunkSize = 32 * 1024

// Read returns at most maxLines from the end of the file at path. A missing
// file yields no lines and no error.
func Read(path string, maxLines int) ([]string, error) {
	if maxLines <= 0 {
		return nil, nil
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat log: %w", err)
	}
	lines, _, err := tailFrom(file, info.Size(), maxLines)
	return lines, err
}

// tailFrom reads backwards from end in chunks until it has seen maxLines
// complete lines or reached the start of the file.
func tailFrom(r io.ReaderAt, end int64, maxLines int) ([]string, int64, error) {
	var buf []byte
	pos := end
	for pos > 0 && bytes.Count(buf, []byte{'\n'}) <= maxLines {
		n := int64(chunkSize)
		if pos < n {
			n = pos
		}
		pos -= n
		chunk := make([]byte, n)
		if _, err := r.ReadAt(chunk, pos); err != nil && !errors.Is(err, io.EOF) {
			return nil, end, fmt.Errorf("read log: %w", err)
		}
		buf = append(chunk, buf...)
	}

	lines := splitLines(buf)
	if pos > 0 && len(lines) > 0 {
		// The first line is cut off at the chunk boundary.
		lines = lines[1:]
	}
	if len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}
	return lines, end, nil
}

func splitLines(b []byte) []string {
	text := strings.TrimRight(string(b), "\n")
	if text == "" {
		return nil
	}
	parts := strings.Split(text, "\n")
	for i, p := range parts {
		parts[i] = strings.TrimRight(p, "\r")
	}
	return parts
}

// Follower returns the lines appended to a file since the previous call.
// It is not safe for concurrent use.
type Follower struct {
	path    string
	offset  int64
	partial string
	started bool
}

// NewFollower follows the file at path. The first Poll returns up to backlog
// lines from the end of the file.
func NewFollower(path string) *Follower {
	return &Follower{path: path}
}

// Path returns the followed file.
func (f *Follower) Path() string { return f.path }

// Poll returns complete lines written since the last Poll. A file that shrank
// is assumed to have been truncated or rotated and is read from the start.
func (f *Follower) Poll(backlog int) ([]string, error) {
	file, err := os.Open(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat log: %w", err)
	}
	size := info.Size()

	if !f.started {
		f.started = true
		lines, end, err := tailFrom(file, size, backlog)
		if err != nil {
			return nil, err
		}
		f.offset = end
		return lines, nil
	}

	if size < f.offset {
		f.offset = 0
		f.partial = ""
	}
	if size == f.offset {
		return nil, nil
	}

	fresh := make([]byte, size-f.offset)
	if _, err := file.ReadAt(fresh, f.offset); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read log: %w", err)
	}
	f.offset = size

	text := f.partial + string(fresh)
	cut := strings.LastIndexByte(text, '\n')
	if cut < 0 {
		f.partial = text
		return nil, nil
	}
	f.partial = text[cut+1:]
	return splitLines([]byte(text[:cut+1])), nil
}

// Level extracts the slog level from a text-handler line, upper-cased. It
// returns "" when the line carries no level attribute.
func Level(line string) string {
	idx := strings.Index(line, "level=")
	if idx < 0 {
		return ""
	}
	rest := line[idx+len("level="):]
	if end := strings.IndexByte(rest, ' '); end >= 0 {
		rest = rest[:end]
	}
	return strings.ToUpper(rest)
}
