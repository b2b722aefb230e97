package assist

import (
	"sync"
	"time"
)

// Debouncer implements supersede-on-latest coordination with a
// monotonically increasing sequence per key. Callers Issue a sequence,
// wait out the window, and apply a result only while their sequence is
// still Current. Anything older is discarded, not queued.
type Debouncer struct {
	window time.Duration

	mu   sync.Mutex
	seqs map[string]uint64
}

// NewDebouncer creates a debouncer with the given quiet window.
func NewDebouncer(window time.Duration) *Debouncer {
	return &Debouncer{
		window: window,
		seqs:   make(map[string]uint64),
	}
}

// Issue registers a new request for key and returns its sequence number.
// Issuing immediately supersedes every earlier sequence for the key.
func (d *Debouncer) Issue(key string) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.seqs[key]++
	return d.seqs[key]
}

// Current reports whether seq is still the latest issued for key.
func (d *Debouncer) Current(key string, seq uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.seqs[key] == seq
}

// Wait returns a channel that fires after the debounce window.
func (d *Debouncer) Wait() <-chan time.Time {
	return time.After(d.window)
}

// Window returns the configured quiet window.
func (d *Debouncer) Window() time.Duration {
	return d.window
}
