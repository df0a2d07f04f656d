package project

import (
	"sync"
	"time"
)

// DefaultPersistDebounce is the write-coalescing window. Edits arrive in
// bursts while the user types; one write per burst is enough.
const DefaultPersistDebounce = 800 * time.Millisecond

// Debouncer coalesces calls: fn runs once, delay after the last Trigger.
// A Trigger during the wait restarts the window, so fn always observes the
// newest state when it finally fires.
type Debouncer struct {
	delay time.Duration
	fn    func()

	mu    sync.Mutex
	timer *time.Timer
}

// NewDebouncer builds a debouncer with the given window (the default when
// zero).
func NewDebouncer(delay time.Duration, fn func()) *Debouncer {
	if delay <= 0 {
		delay = DefaultPersistDebounce
	}
	return &Debouncer{delay: delay, fn: fn}
}

// Trigger arms or re-arms the timer.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fn)
}

// Flush cancels any pending timer and runs fn immediately.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.mu.Unlock()
	d.fn()
}

// Stop cancels any pending run without firing.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
