// Package health tracks whether the text-generation backend answered its
// most recent probe.
package health

import (
	"errors"
	"sync"
	"time"
)

// ErrNotProbed is reported until the first probe result is recorded.
var ErrNotProbed = errors.New("generator has not been probed yet")

// Readiness holds the outcome of the latest probe. The zero value is not
// ready. It is safe for concurrent use.
type Readiness struct {
	mu        sync.RWMutex
	probed    bool
	err       error
	checkedAt time.Time
}

// Record stores a probe outcome; a nil err marks the backend ready.
func (r *Readiness) Record(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.probed = true
	r.err = err
	r.checkedAt = time.Now()
}

// Ready returns nil when the last probe succeeded, otherwise the reason.
func (r *Readiness) Ready() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.probed {
		return ErrNotProbed
	}
	return r.err
}

// CheckedAt returns when the last probe finished, or the zero time.
func (r *Readiness) CheckedAt() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.checkedAt
}
