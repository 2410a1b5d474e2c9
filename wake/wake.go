// Package wake keeps the host awake while the metronome is playing.
// Best-effort only: acquisition failure never prevents playback.
package wake

import "sync"

// Lock is an idle-inhibition handle.
type Lock interface {
	Acquire() error
	Release() error
}

// Noop is the default lock on hosts with no idle-inhibition surface.
type Noop struct{}

func (Noop) Acquire() error { return nil }
func (Noop) Release() error { return nil }

// Counted wraps a Lock with reference counting so several owners can
// request the same underlying lock; the wrapped Acquire runs on the
// first holder and Release on the last.
type Counted struct {
	mu    sync.Mutex
	inner Lock
	held  int
}

func NewCounted(inner Lock) *Counted {
	return &Counted{inner: inner}
}

func (c *Counted) Acquire() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.held++
	if c.held == 1 {
		return c.inner.Acquire()
	}
	return nil
}

func (c *Counted) Release() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.held == 0 {
		return nil
	}
	c.held--
	if c.held == 0 {
		return c.inner.Release()
	}
	return nil
}
