/*
Copyright © 2026 Acronis International GmbH.

Released under MIT license.
*/

package capacity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/atomic"
)

// ErrPermitAlreadyReleased is returned when a permit is released more than once.
var ErrPermitAlreadyReleased = errors.New("permit already released")

// ErrPoolOverRelease is returned when a pool receives a release while none of its permits is held.
var ErrPoolOverRelease = errors.New("pool released more permits than acquired")

// Result describes how a bounded-wait acquisition ended.
type Result int

// Acquisition results.
const (
	Acquired Result = iota
	TimedOut
	Cancelled
)

// String returns a human-readable representation of the result.
func (r Result) String() string {
	switch r {
	case Acquired:
		return "acquired"
	case TimedOut:
		return "timed out"
	case Cancelled:
		return "cancelled"
	}
	return fmt.Sprintf("Result(%d)", int(r))
}

// Pool is a counting semaphore with a fixed number of permits.
// Permits are taken with TryAcquire and given back through the returned Permit.
type Pool struct {
	slots chan struct{}
}

// New creates a new Pool with the given total number of permits.
func New(total int) (*Pool, error) {
	if total <= 0 {
		return nil, fmt.Errorf("total should be positive, got %d", total)
	}
	return &Pool{slots: make(chan struct{}, total)}, nil
}

// TryAcquire tries to take one permit waiting at most timeout for it.
// A non-positive timeout means that the pool is checked only once without waiting.
// If ctx is done before a permit is obtained, Cancelled is returned.
// The returned Permit is non-nil only when the result is Acquired.
func (p *Pool) TryAcquire(ctx context.Context, timeout time.Duration) (*Permit, Result) {
	select {
	case <-ctx.Done():
		return nil, Cancelled
	default:
	}

	select {
	case p.slots <- struct{}{}:
		return &Permit{pool: p}, Acquired
	default:
	}

	if timeout <= 0 {
		return nil, TimedOut
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case p.slots <- struct{}{}:
		return &Permit{pool: p}, Acquired
	case <-timer.C:
		return nil, TimedOut
	case <-ctx.Done():
		return nil, Cancelled
	}
}

// Total returns the total number of permits of the pool.
func (p *Pool) Total() int {
	return cap(p.slots)
}

// InUse returns the number of currently held permits.
// The value is a snapshot and may be stale by the time it is used.
func (p *Pool) InUse() int {
	return len(p.slots)
}

// Available returns the number of currently free permits.
// The value is a snapshot and may be stale by the time it is used.
func (p *Pool) Available() int {
	return cap(p.slots) - len(p.slots)
}

func (p *Pool) release() error {
	select {
	case <-p.slots:
		return nil
	default:
		return ErrPoolOverRelease
	}
}

// Permit represents one permit taken from a Pool.
// It may be released only once.
type Permit struct {
	pool     *Pool
	released atomic.Bool
}

// Release gives the permit back to its pool.
func (pt *Permit) Release() error {
	if !pt.released.CompareAndSwap(false, true) {
		return ErrPermitAlreadyReleased
	}
	if err := pt.pool.release(); err != nil {
		return fmt.Errorf("release permit: %w", err)
	}
	return nil
}

// Released reports whether the permit has already been given back.
func (pt *Permit) Released() bool {
	return pt.released.Load()
}
