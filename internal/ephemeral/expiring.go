// Package ephemeral holds transient UI-facing signals that are not part of
// the durable table snapshot: values that expire on their own and a bounded
// message log.
package ephemeral

import (
	"sync"
	"time"
)

// Flash is a single value that clears itself after a fixed window. Setting a
// new value supersedes the old one and restarts the window. Used for the
// last-action indicator, the showdown result and transient server errors.
type Flash[T any] struct {
	mu     sync.Mutex
	ttl    time.Duration
	val    *T
	gen    uint64
	timer  *time.Timer
	closed bool
}

func NewFlash[T any](ttl time.Duration) *Flash[T] {
	return &Flash[T]{ttl: ttl}
}

func (f *Flash[T]) Set(v T) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.gen++
	gen := f.gen
	f.val = &v
	if f.timer != nil {
		f.timer.Stop()
	}
	f.timer = time.AfterFunc(f.ttl, func() {
		f.mu.Lock()
		// a newer Set or Clear owns the value now
		if f.gen == gen && !f.closed {
			f.val = nil
		}
		f.mu.Unlock()
	})
}

func (f *Flash[T]) Get() (T, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.val == nil {
		var zero T
		return zero, false
	}
	return *f.val, true
}

func (f *Flash[T]) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gen++
	f.val = nil
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
}

// Close cancels any pending expiry so no callback fires into a torn-down
// owner.
func (f *Flash[T]) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	f.val = nil
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
}
