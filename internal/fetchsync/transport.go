package fetchsync

import (
	"context"
	"errors"
	"time"
)

// ErrReadOnly is returned by transports that cannot write.
var ErrReadOnly = errors.New("resource is read-only")

// Transport reads and writes one remote resource.
type Transport[T any] interface {
	// Fetch reads the current resource.
	Fetch(ctx context.Context) (T, error)
	// Update writes value and returns the server's canonical copy.
	Update(ctx context.Context, value T) (T, error)
}

// FetchFunc adapts a read function into a read-only Transport.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Fetch calls f.
func (f FetchFunc[T]) Fetch(ctx context.Context) (T, error) { return f(ctx) }

// Update always fails with ErrReadOnly.
func (f FetchFunc[T]) Update(context.Context, T) (T, error) {
	var zero T
	return zero, ErrReadOnly
}

// Op distinguishes reads from writes in observer callbacks.
type Op string

const (
	OpRead  Op = "read"
	OpWrite Op = "write"
)

// Observer receives engine lifecycle events. Calls happen outside the engine
// lock and must not block.
type Observer interface {
	Started(resource string, op Op)
	Finished(resource string, op Op, elapsed time.Duration, err error)
	Discarded(resource string, op Op)
	Edited(resource string)
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) Started(string, Op) {}
func (NopObserver) Finished(string, Op, time.Duration, error) {}
func (NopObserver) Discarded(string, Op) {}
func (NopObserver) Edited(string) {}
