package fetchsync

import (
	"sync"
	"time"
)

// Clock schedules callbacks. Production code uses the wall clock; tests swap in
// a virtual clock so timers fire deterministically.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a pending callback created by Clock.AfterFunc.
type Timer interface {
	// Stop prevents the callback from firing. It reports whether the call
	// stopped the timer, false if it already fired or was stopped.
	Stop() bool
}

type wallClock struct{}

// WallClock returns a Clock backed by the time package.
func WallClock() Clock { return wallClock{} }

func (wallClock) Now() time.Time { return time.Now() }

func (wallClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Debouncer runs fn once the delay has elapsed since the most recent Trigger.
// Every Trigger restarts the quiet period.
type Debouncer struct {
	clock Clock
	delay time.Duration
	fn    func()

	mu    sync.Mutex
	timer Timer
	gen   uint64
}

// NewDebouncer builds a Debouncer. A nil clock means the wall clock.
func NewDebouncer(clock Clock, delay time.Duration, fn func()) *Debouncer {
	if clock == nil {
		clock = WallClock()
	}
	return &Debouncer{clock: clock, delay: delay, fn: fn}
}

// Trigger (re)starts the quiet period.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()
	gen := d.gen
	d.timer = d.clock.AfterFunc(d.delay, func() {
		d.mu.Lock()
		if gen != d.gen {
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.gen++
		d.mu.Unlock()
		d.fn()
	})
}

// Stop cancels a pending run.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
}

// Pending reports whether a run is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

func (d *Debouncer) stopLocked() {
	// Bumping gen invalidates a callback that already left the clock but has
	// not taken the lock yet.
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Repeater runs fn every interval until stopped.
type Repeater struct {
	clock    Clock
	interval time.Duration
	fn       func()

	mu      sync.Mutex
	timer   Timer
	gen     uint64
	running bool
}

// NewRepeater builds a stopped Repeater. A nil clock means the wall clock.
func NewRepeater(clock Clock, interval time.Duration, fn func()) *Repeater {
	if clock == nil {
		clock = WallClock()
	}
	return &Repeater{clock: clock, interval: interval, fn: fn}
}

// Start schedules the first tick one interval from now. Starting a running
// Repeater restarts its period.
func (r *Repeater) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stopLocked()
	r.running = true
	r.scheduleLocked()
}

// Stop cancels future ticks.
func (r *Repeater) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopLocked()
}

// Running reports whether ticks are scheduled.
func (r *Repeater) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

func (r *Repeater) scheduleLocked() {
	gen := r.gen
	r.timer = r.clock.AfterFunc(r.interval, func() {
		r.mu.Lock()
		if gen != r.gen || !r.running {
			r.mu.Unlock()
			return
		}
		r.scheduleLocked()
		r.mu.Unlock()
		r.fn()
	})
}

func (r *Repeater) stopLocked() {
	r.gen++
	r.running = false
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}
