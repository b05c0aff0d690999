// Package ui provides the terminal control panel for a networked camera.
//
// # Architecture Overview
//
// The UI is a Bubble Tea program styled with Lip Gloss. It owns no device
// state of its own: every value on screen is read from a fetchsync.Engine
// snapshot at render time, and every change the user makes is submitted to
// the engine as a single-field merge patch. The engine applies the edit
// optimistically, so the new value is visible on the next frame while the
// debounced write is still pending.
//
// # Package Structure
//
//   - app.go: Model, Options, message plumbing and the Run entry point
//   - settings.go: editable camera and photo fields bound to their engines
//   - grid.go: grid overlay editor backed by the preferences file
//   - gallery.go: photo list with multi-select and delete
//   - logs.go: live tail of aperture's own log file
//   - header.go: sync status chips and the key hint bar
//   - help.go: keyboard shortcut overlay
//   - theme.go, style_helpers.go: palettes and rendering helpers
//
// # Event Flow
//
//  1. Engines call Notifier.Notify from their OnChange hook
//  2. waitForChange turns the notification into a changedMsg, which redraws
//  3. Preference reloads arrive on Options.PrefsUpdates and are applied live
//  4. A periodic tick polls the log follower, one poll at a time
//  5. Context cancellation or the quit key ends the program
//
// # Views
//
//   - Settings: camera and photo settings; a "*" marks a value not yet
//     confirmed by the device
//   - Gallery: photos stored on the device, newest first
//   - Logs: aperture's log file with level colouring and follow mode
//
// # Key Bindings
//
//   - 1/s, 2/f, 3/L: Switch view; Tab cycles, ESC returns to settings
//   - j/k: Move; h/l: Change the selected setting
//   - r: Refresh now; o: Edit the grid overlay
//   - Space: Select a photo (gallery) or toggle follow (logs)
//   - a/c/d: Select all, clear, delete selected photos
//   - T: Cycle theme; ?: Help; e or Ctrl+C: Exit
package ui
