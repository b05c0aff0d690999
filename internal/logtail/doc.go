// Package logtail reads the end of aperture's log file for the TUI log pane.
//
// Read returns the last N lines of a file by reading backwards in fixed-size
// chunks, so the cost depends on N rather than on the file size. Follower
// builds on it: the first Poll returns a backlog, later calls return only the
// complete lines appended since. A trailing line without a newline is held
// back until it is finished. A file that shrinks is treated as rotated and
// read again from the start.
//
// Level picks the level attribute out of a log/slog text-handler line so the
// UI can color it.
//
// A missing file is not an error: the log pane stays empty until the first
// line is written.
package logtail
