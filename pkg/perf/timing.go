// Package perf times panel renders. Set VTABS_PERF=1 to log every measurement at debug
// level; otherwise timers only return the elapsed time.
package perf

import (
	"os"
	"sync"
	"time"

	"pkt.systems/pslog"
)

var (
	enabled = os.Getenv("VTABS_PERF") == "1"

	mu      sync.Mutex
	sink    pslog.Logger
	hasSink bool
)

// SetLogger routes measurements to logger.
func SetLogger(logger pslog.Logger) {
	mu.Lock()
	sink = logger
	hasSink = true
	mu.Unlock()
}

// Enable turns measurement logging on or off.
func Enable(on bool) {
	mu.Lock()
	enabled = on
	mu.Unlock()
}

// Timer tracks elapsed time for a named operation
type Timer struct {
	name  string
	start time.Time
}

// Start begins timing an operation
func Start(name string) *Timer {
	return &Timer{
		name:  name,
		start: time.Now(),
	}
}

// Stop ends timing and logs the result
func (t *Timer) Stop(kv ...any) time.Duration {
	elapsed := time.Since(t.start)
	if logger, ok := active(); ok {
		logger.Debug("perf", append([]any{"op", t.name, "elapsed", elapsed.String()}, kv...)...)
	}
	return elapsed
}

// Track is a convenience function that times a function call
func Track(name string, fn func()) time.Duration {
	t := Start(name)
	fn()
	return t.Stop()
}

// IsEnabled returns whether performance logging is enabled
func IsEnabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return enabled
}

func active() (pslog.Logger, bool) {
	mu.Lock()
	defer mu.Unlock()
	if !enabled || !hasSink {
		return sink, false
	}
	return sink, true
}
