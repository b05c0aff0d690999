package app

import (
	"context"

	"github.com/five82/aperture/internal/fetchsync"
	"github.com/five82/aperture/internal/state"
)

// Await blocks until done reports true for the engine's snapshot or ctx ends.
// wake must be signalled after every engine change, as Notifier does.
func Await[T any](ctx context.Context, eng *fetchsync.Engine[T], wake <-chan struct{}, done func(state.Snapshot[T]) bool) (state.Snapshot[T], error) {
	for {
		snap := eng.Snapshot()
		if done(snap) {
			return snap, nil
		}
		select {
		case <-ctx.Done():
			return snap, ctx.Err()
		case <-wake:
		}
	}
}

// Synced reports whether the first request after Start has completed.
func Synced[T any](s state.Snapshot[T]) bool {
	return !s.IsLoading && !s.LastUpdated.IsZero()
}

// Settled reports whether every local edit has been written back.
func Settled[T any](s state.Snapshot[T]) bool {
	return !s.IsUpdating && !s.HasPendingInput()
}
