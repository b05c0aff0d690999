package fetchsync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/five82/aperture/internal/state"
)

const (
	DefaultPollInterval   = 5 * time.Second
	DefaultUpdateDebounce = 300 * time.Millisecond
)

// ErrClosed is returned by SubmitEdit after Close.
var ErrClosed = errors.New("engine is closed")

// Options configure an Engine. Zero values select defaults.
type Options struct {
	Name           string // label used in logs and metrics
	PollInterval   time.Duration
	UpdateDebounce time.Duration
	Clock          Clock
	Observer       Observer
	Logger         *slog.Logger
	// OnChange is called after every visible state change, outside the
	// engine lock. Call Snapshot to read the new state.
	OnChange func()
}

// Engine keeps a local copy of one remote resource in sync. It polls the
// resource, applies edits optimistically, and writes them back after a quiet
// period. At most one read and one write are outstanding, and an edit cancels
// both, so a newer edit always wins over an older request.
type Engine[T any] struct {
	name      string
	transport Transport[T]
	store     *state.Store[T]
	clock     Clock
	observer  Observer
	logger    *slog.Logger
	onChange  func()
	readOnly  bool
	poll      *Repeater
	debounce  *Debouncer

	mu      sync.Mutex
	read    *Token
	write   *Token
	started bool
	closed  bool
}

// New builds an idle engine seeded with initial. Call Start to begin syncing.
func New[T any](transport Transport[T], initial T, opts Options) *Engine[T] {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.UpdateDebounce <= 0 {
		opts.UpdateDebounce = DefaultUpdateDebounce
	}
	if opts.Clock == nil {
		opts.Clock = WallClock()
	}
	if opts.Observer == nil {
		opts.Observer = NopObserver{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Name == "" {
		opts.Name = "resource"
	}

	e := &Engine[T]{
		name:      opts.Name,
		transport: transport,
		store:     state.NewStore(initial),
		clock:     opts.Clock,
		observer:  opts.Observer,
		logger:    opts.Logger.With("resource", opts.Name),
		onChange:  opts.OnChange,
	}
	_, e.readOnly = transport.(FetchFunc[T])
	e.poll = NewRepeater(opts.Clock, opts.PollInterval, e.tick)
	e.debounce = NewDebouncer(opts.Clock, opts.UpdateDebounce, e.flush)
	return e
}

// Name returns the resource label.
func (e *Engine[T]) Name() string { return e.name }

// Snapshot returns a copy of the current state.
func (e *Engine[T]) Snapshot() state.Snapshot[T] {
	return e.store.Snapshot()
}

// Start issues the initial read and starts the poll timer. If an edit is
// already pending, both wait until its write completes. Later calls are
// no-ops.
func (e *Engine[T]) Start() {
	e.mu.Lock()
	if e.started || e.closed {
		e.mu.Unlock()
		return
	}
	e.started = true
	if e.store.Snapshot().IsUpdating {
		e.mu.Unlock()
		return
	}
	tok := e.beginReadLocked()
	e.poll.Start()
	e.mu.Unlock()

	e.launchRead(tok)
}

// RefreshNow reads the resource immediately and reports whether a read was
// issued. A read already in flight is cancelled and replaced. While an edit is
// pending, or after Close, the call is ignored and returns false.
func (e *Engine[T]) RefreshNow() bool {
	e.mu.Lock()
	if e.closed || e.store.Snapshot().IsUpdating {
		e.mu.Unlock()
		return false
	}
	if e.read != nil {
		e.read.Cancel()
		e.read = nil
	}
	tok := e.beginReadLocked()
	e.mu.Unlock()

	e.launchRead(tok)
	return true
}

// SubmitEdit records a local edit. It cancels any outstanding read or write,
// suspends polling, applies the edit to the visible data and (re)starts the
// debounce timer for the write. An edit that cannot be applied to the current
// data, or made on a read-only resource, is rejected without touching any
// state.
func (e *Engine[T]) SubmitEdit(p state.Patch) error {
	if e.readOnly {
		return fmt.Errorf("%s: %w", e.name, ErrReadOnly)
	}
	if err := p.Validate(); err != nil {
		return err
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	if _, err := state.Apply(e.store.Snapshot().Data, p); err != nil {
		e.mu.Unlock()
		return fmt.Errorf("apply edit: %w", err)
	}
	e.poll.Stop()
	e.cancelLocked()
	if _, err := e.store.Dispatch(state.UserInput[T](p)); err != nil {
		e.mu.Unlock()
		return err
	}
	e.debounce.Trigger()
	e.mu.Unlock()

	e.logger.Debug("edit queued", "patch", p.String())
	e.observer.Edited(e.name)
	e.changed()
	return nil
}

// Close cancels outstanding requests and stops both timers. Responses that
// arrive afterwards are discarded; unsent edits are dropped.
func (e *Engine[T]) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.cancelLocked()
	e.poll.Stop()
	e.debounce.Stop()
	e.mu.Unlock()

	e.logger.Debug("engine closed")
}

func (e *Engine[T]) tick() {
	e.mu.Lock()
	if e.closed || e.read != nil || e.store.Snapshot().IsUpdating {
		e.mu.Unlock()
		return
	}
	tok := e.beginReadLocked()
	e.mu.Unlock()

	e.launchRead(tok)
}

func (e *Engine[T]) beginReadLocked() *Token {
	tok := newToken(context.Background())
	e.read = tok
	_, _ = e.store.Dispatch(state.Fetch[T]())
	return tok
}

func (e *Engine[T]) launchRead(tok *Token) {
	e.logger.Debug("read started", "attempt", tok.ID())
	e.observer.Started(e.name, OpRead)
	e.changed()
	go e.runRead(tok)
}

func (e *Engine[T]) runRead(tok *Token) {
	began := e.clock.Now()
	data, err := e.transport.Fetch(tok.Context())
	elapsed := e.clock.Now().Sub(began)

	e.mu.Lock()
	if e.read != tok || tok.Cancelled() {
		e.mu.Unlock()
		e.logger.Debug("stale read discarded", "attempt", tok.ID())
		e.observer.Discarded(e.name, OpRead)
		return
	}
	e.read = nil
	tok.Cancel()

	var snap state.Snapshot[T]
	if err != nil {
		snap, _ = e.store.Dispatch(state.FetchFailure[T](err, e.clock.Now()))
	} else {
		snap, _ = e.store.Dispatch(state.FetchSuccess(data, e.clock.Now()))
	}
	e.restartPollLocked(snap)
	e.mu.Unlock()

	if err != nil {
		e.logger.Warn("read failed", "attempt", tok.ID(), "error", err, "failures", snap.ConsecutiveFailures)
	} else {
		e.logger.Debug("read completed", "attempt", tok.ID(), "elapsed", elapsed)
	}
	e.observer.Finished(e.name, OpRead, elapsed, err)
	e.changed()
}

// flush runs when the debounce timer fires.
func (e *Engine[T]) flush() {
	e.mu.Lock()
	// A Trigger that raced this callback owns the next flush.
	if e.closed || e.debounce.Pending() {
		e.mu.Unlock()
		return
	}
	if e.write != nil {
		e.write.Cancel()
		e.write = nil
	}

	snap, err := e.store.Dispatch(state.Update[T]())
	if err != nil {
		snap, _ = e.store.Dispatch(state.UpdateFailure[T](err, e.clock.Now()))
		e.restartPollLocked(snap)
		e.mu.Unlock()

		e.logger.Error("write not issued", "error", err)
		e.observer.Started(e.name, OpWrite)
		e.observer.Finished(e.name, OpWrite, 0, err)
		e.changed()
		return
	}
	tok := newToken(context.Background())
	e.write = tok
	body := snap.Data
	e.mu.Unlock()

	e.logger.Debug("write started", "attempt", tok.ID())
	e.observer.Started(e.name, OpWrite)
	e.changed()
	go e.runWrite(tok, body)
}

func (e *Engine[T]) runWrite(tok *Token, body T) {
	began := e.clock.Now()
	data, err := e.transport.Update(tok.Context(), body)
	elapsed := e.clock.Now().Sub(began)

	e.mu.Lock()
	if e.write != tok || tok.Cancelled() {
		e.mu.Unlock()
		e.logger.Debug("stale write discarded", "attempt", tok.ID())
		e.observer.Discarded(e.name, OpWrite)
		return
	}
	e.write = nil
	tok.Cancel()

	var snap state.Snapshot[T]
	if err != nil {
		snap, _ = e.store.Dispatch(state.UpdateFailure[T](err, e.clock.Now()))
	} else {
		snap, _ = e.store.Dispatch(state.UpdateSuccess(data, e.clock.Now()))
	}
	e.restartPollLocked(snap)
	e.mu.Unlock()

	if err != nil {
		e.logger.Warn("write failed", "attempt", tok.ID(), "error", err, "failures", snap.ConsecutiveFailures)
	} else {
		e.logger.Info("write completed", "attempt", tok.ID(), "elapsed", elapsed)
	}
	e.observer.Finished(e.name, OpWrite, elapsed, err)
	e.changed()
}

// restartPollLocked restarts the poll period after a completed cycle. Polling
// stays off while an update is pending.
func (e *Engine[T]) restartPollLocked(snap state.Snapshot[T]) {
	if e.started && !e.closed && !snap.IsUpdating {
		e.poll.Start()
	}
}

func (e *Engine[T]) cancelLocked() {
	if e.read != nil {
		e.read.Cancel()
		e.read = nil
	}
	if e.write != nil {
		e.write.Cancel()
		e.write = nil
	}
}

func (e *Engine[T]) changed() {
	if e.onChange != nil {
		e.onChange()
	}
}
