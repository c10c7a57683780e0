package search

import (
	"sync"
	"time"
)

// DefaultQuietPeriod is how long the input must be stable before a term is
// delivered.
const DefaultQuietPeriod = 250 * time.Millisecond

// Debouncer coalesces rapid term changes. Every Set cancels the pending
// delivery and reschedules it, so only the last value of a typing burst
// arrives on the settled channel once the quiet period elapses.
type Debouncer struct {
	mu     sync.Mutex
	delay  time.Duration
	timer  *time.Timer
	ch     chan string
	closed bool
}

// NewDebouncer builds a debouncer with the given quiet period, defaulting
// when zero or negative.
func NewDebouncer(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultQuietPeriod
	}
	return &Debouncer{delay: delay, ch: make(chan string, 1)}
}

// Set schedules term for delivery after the quiet period, cancelling any
// previously pending term.
func (d *Debouncer) Set(term string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() { d.deliver(term) })
}

// Settled returns the channel settled terms arrive on. The channel closes
// when the debouncer is closed.
func (d *Debouncer) Settled() <-chan string {
	return d.ch
}

// Close stops any pending delivery and closes the settled channel. Close is
// idempotent.
func (d *Debouncer) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	d.closed = true
	if d.timer != nil {
		d.timer.Stop()
	}
	close(d.ch)
}

func (d *Debouncer) deliver(term string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	// Replace an undelivered value rather than queueing behind it; only the
	// latest settled term matters.
	select {
	case <-d.ch:
	default:
	}
	select {
	case d.ch <- term:
	default:
	}
}
