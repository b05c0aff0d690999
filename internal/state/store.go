package state

import (
	"fmt"
	"sync"
	"time"
)

// Snapshot is the visible state of one synchronised resource.
type Snapshot[T any] struct {
	Data                T
	IsLoading           bool
	IsUpdating          bool
	Input               Patch // pending edits not yet written; nil when none
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int
}

// HasPendingInput reports whether local edits are waiting for a write.
func (s Snapshot[T]) HasPendingInput() bool {
	return !s.Input.IsEmpty()
}

// IsOffline returns true when the device has failed several requests in a row.
func (s Snapshot[T]) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Store coordinates concurrent access to a snapshot. All mutation goes
// through Dispatch so every change is a Reduce transition.
type Store[T any] struct {
	mu       sync.RWMutex
	snapshot Snapshot[T]
}

// NewStore returns a store seeded with initial data and IsLoading set, the
// state of a resource whose first read has not completed.
func NewStore[T any](initial T) *Store[T] {
	return &Store[T]{snapshot: Snapshot[T]{Data: initial, IsLoading: true}}
}

// Dispatch reduces a into the stored snapshot and returns the result. When
// the reducer fails the error is recorded on the snapshot and returned.
func (s *Store[T]) Dispatch(a Action[T]) (Snapshot[T], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := Reduce(s.snapshot, a)
	s.snapshot = next
	return cloneSnapshot(next), err
}

// Snapshot returns a copy of the current snapshot.
func (s *Store[T]) Snapshot() Snapshot[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSnapshot(s.snapshot)
}

func cloneSnapshot[T any](src Snapshot[T]) Snapshot[T] {
	snap := src
	snap.Input = src.Input.Clone()
	if src.LastError != nil {
		snap.LastError = fmt.Errorf("%w", src.LastError)
	}
	return snap
}
