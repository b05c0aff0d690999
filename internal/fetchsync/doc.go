// Package fetchsync keeps a local copy of a remote resource in sync with the
// device.
//
// # Overview
//
// An Engine owns one resource (camera settings, photo settings, the gallery).
// It polls the resource, applies local edits optimistically, and writes the
// edits back once the operator stops changing things. All state lives in a
// state.Store and changes only through state.Reduce.
//
//	                 tick / Start / RefreshNow
//	        ┌──────────────────────────────────────┐
//	        ▼                                      │
//	   ┌─────────┐  reply    ┌──────┐   tick   ┌─────────┐
//	   │ Loading │──────────>│ Idle │─────────>│ Loading │
//	   └─────────┘           └──────┘          └─────────┘
//	        │ SubmitEdit        ▲ write reply
//	        ▼                   │
//	   ┌──────────┐ debounce ┌──────────────┐
//	   │ Updating │─────────>│ write issued │
//	   └──────────┘          └──────────────┘
//
// # Ordering
//
// Each read and each write carries its own Token. SubmitEdit cancels both
// outstanding tokens, stops the poll timer, and restarts the debounce timer,
// so at most one request is in flight and the newest edit always wins. A
// reply whose token is no longer current is dropped without touching state,
// even when the transport ignores cancellation.
//
// Polling resumes only after a read or write completes and never while an
// edit is pending.
//
// # Concurrency
//
// Timer callbacks and request completions run on their own goroutines. Every
// transition runs under the engine mutex; requests and Observer/OnChange
// callbacks run outside it.
//
// # Scheduling
//
// Debouncer (single-shot, reset on every Trigger) and Repeater (periodic,
// Start/Stop) are built on the Clock interface. Tests drive them with
// testutil.VirtualClock.
//
// # Errors
//
// Cancellation is never reported. Failed reads and writes keep the previous
// data, set Snapshot.LastError, and are passed to the Observer.
package fetchsync
