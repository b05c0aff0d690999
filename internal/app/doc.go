// Package app provides the orchestration layer for aperture.
//
// # Overview
//
// This package wires together configuration, logging, metrics, the device
// client, one sync engine per remote resource, and the UI. It is the
// composition root: every dependency is built in Setup and torn down in
// Runtime.Close.
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       │
//	       ├─────> Setup()             config, log file, client, engines
//	       ├─────> Runtime.Start()     first read + poll timers
//	       ├─────> serveMetrics()      /metrics, when metrics_addr is set
//	       ├─────> prefs.Watch()       live theme and grid reload
//	       └─────> ui.Run()            TUI (blocks)
//
//	Engine loop (per resource):
//	┌─────────────────────────────────────────┐
//	│ poll tick ─> Fetch ─> FetchSuccess      │
//	│ edit ─> cancel ─> debounce ─> Update    │
//	│      └─> OnChange ─> Notifier ─> redraw │
//	└─────────────────────────────────────────┘
//
// # Error Handling
//
// Fatal errors (returned from Run):
//   - Configuration file unreadable or invalid
//   - Invalid device address
//   - Log file cannot be opened
//   - Metrics listener fails
//
// Recoverable errors (shown in the header, polling continues):
//   - Device unreachable or returning errors
//   - Rejected writes
//   - Preference watcher failures
//
// # Usage Example
//
//	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer cancel()
//
//	if err := app.Run(ctx, app.Options{}); err != nil {
//		log.Fatalf("aperture failed: %v", err)
//	}
//
// Non-interactive callers use Setup directly and wait on a single engine
// with Await.
package app
