package search

import (
	"sync"
	"time"
)

// DefaultDelay is the quiet period after the last keystroke before a query applies.
const DefaultDelay = 150 * time.Millisecond

// Debouncer collapses a burst of query edits into the last one. Each Push restarts the
// quiet period; only a query that survives it is delivered on C.
type Debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	timer   *time.Timer
	gen     uint64
	pending string
	armed   bool
	closed  bool
	out     chan string
}

// NewDebouncer returns a debouncer with the given quiet period. A non-positive delay
// uses DefaultDelay.
func NewDebouncer(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer{delay: delay, out: make(chan string, 1)}
}

// C delivers settled queries. Only the newest settled query is buffered.
func (d *Debouncer) C() <-chan string {
	return d.out
}

// Delay returns the current quiet period.
func (d *Debouncer) Delay() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.delay
}

// SetDelay changes the quiet period for later pushes.
func (d *Debouncer) SetDelay(delay time.Duration) {
	if delay <= 0 {
		delay = DefaultDelay
	}
	d.mu.Lock()
	d.delay = delay
	d.mu.Unlock()
}

// Push schedules query, cancelling any query still waiting.
func (d *Debouncer) Push(query string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.stopLocked()
	d.gen++
	gen := d.gen
	d.pending = query
	d.armed = true
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen) })
}

// Flush delivers the waiting query now, if any.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.armed || d.closed {
		return
	}
	d.stopLocked()
	d.gen++
	d.deliverLocked()
}

// Cancel drops the waiting query without delivering it, along with a settled query
// nobody has received yet.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
	d.gen++
	d.armed = false
	if !d.closed {
		select {
		case <-d.out:
		default:
		}
	}
}

// Pending reports whether a query is waiting for its quiet period to end.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.armed
}

// Close cancels the waiting query and closes C.
func (d *Debouncer) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.stopLocked()
	d.gen++
	d.armed = false
	d.closed = true
	close(d.out)
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if gen != d.gen || d.closed || !d.armed {
		return
	}
	d.deliverLocked()
}

func (d *Debouncer) deliverLocked() {
	d.armed = false
	d.timer = nil
	select {
	case <-d.out:
	default:
	}
	d.out <- d.pending
}

func (d *Debouncer) stopLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
