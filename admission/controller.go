/*
Copyright © 2026 Acronis International GmbH.

Released under MIT license.
*/

package admission

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"
	"go.uber.org/atomic"

	"github.com/acronis/go-admission/capacity"
)

// ErrEmptyActorID is reported when an admission is attempted without an actor id.
var ErrEmptyActorID = errors.New("actor id is empty")

// ErrWorkPanicked is reported when the unit of work panics.
var ErrWorkPanicked = errors.New("unit of work panicked")

// WorkFunc performs the unit of work of an admitted request.
// The context is not cancelled when the caller of AttemptAdmission cancels its own context.
type WorkFunc func(ctx context.Context, actorID string) error

// SimulatedWork returns a WorkFunc that waits for the given duration or until ctx is done.
func SimulatedWork(d time.Duration) WorkFunc {
	return func(ctx context.Context, _ string) error {
		if d <= 0 {
			return nil
		}
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-timer.C:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Opts represents options for the Controller.
type Opts struct {
	// Observer receives admission events. Nil disables them.
	Observer Observer

	// Work is performed by every admitted request.
	// If nil, SimulatedWork with the configured duration is used.
	Work WorkFunc
}

// Stats is an instantaneous snapshot of the controller state.
type Stats struct {
	// InFlightRequests is the number of attempts holding a permit of the global request pool,
	// both working and still waiting at the lower tiers.
	InFlightRequests int

	// Working is the number of attempts currently performing their unit of work.
	Working int

	// ActiveActors is the number of actors having a live per-actor pool.
	ActiveActors int

	AvailableRequestPermits int
	AvailableActorPermits   int
}

// Controller decides whether a unit of work of an actor may proceed.
// It enforces three nested limits: a global in-flight request limit, a limit of distinct
// simultaneously active actors, and a per-actor concurrency limit.
type Controller struct {
	acquireTimeout time.Duration
	requests       *capacity.Pool
	actors         *capacity.Pool
	table          *actorTable
	observer       Observer
	work           WorkFunc
	working        atomic.Int32
}

// New creates a new Controller with the given configuration.
func New(cfg *Config) (*Controller, error) {
	return NewWithOpts(cfg, Opts{})
}

// NewWithOpts creates a new Controller with the given configuration and options.
func NewWithOpts(cfg *Config, opts Opts) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	requests, err := capacity.New(cfg.GlobalRequestCapacity)
	if err != nil {
		return nil, fmt.Errorf("create global request pool: %w", err)
	}
	actors, err := capacity.New(cfg.GlobalActorCapacity)
	if err != nil {
		return nil, fmt.Errorf("create global actor pool: %w", err)
	}

	observer := opts.Observer
	if observer == nil {
		observer = disabledObserver{}
	}
	work := opts.Work
	if work == nil {
		work = SimulatedWork(time.Duration(cfg.SimulatedWork))
	}

	return &Controller{
		acquireTimeout: time.Duration(cfg.AcquireTimeout),
		requests:       requests,
		actors:         actors,
		table:          newActorTable(cfg.PerActorCapacity),
		observer:       observer,
		work:           work,
	}, nil
}

// AttemptAdmission tries to admit a unit of work of the actor and performs it.
// It returns true only if the work was admitted and completed.
// False is returned when any tier has no capacity within the acquire timeout,
// when ctx is done while waiting, or when an internal error occurs.
// Reasons are reported only through the Observer.
func (c *Controller) AttemptAdmission(ctx context.Context, actorID string) bool {
	attempt := Attempt{ID: xid.New().String(), ActorID: actorID, StartedAt: time.Now()}
	if actorID == "" {
		c.observer.InternalError(attempt, ErrEmptyActorID)
		return false
	}

	c.observer.AdmissionStarted(attempt)

	denial, err := c.admit(ctx, attempt)
	switch {
	case err != nil:
		c.observer.InternalError(attempt, err)
		return false
	case denial != nil:
		c.observer.AdmissionDenied(attempt, *denial)
		return false
	}

	c.observer.AdmissionCompleted(attempt, time.Since(attempt.StartedAt))
	return true
}

// Stats returns a snapshot of the controller state.
func (c *Controller) Stats() Stats {
	return Stats{
		InFlightRequests:        c.requests.InUse(),
		Working:                 int(c.working.Load()),
		ActiveActors:            c.table.len(),
		AvailableRequestPermits: c.requests.Available(),
		AvailableActorPermits:   c.actors.Available(),
	}
}

// IsActorActive reports whether the actor currently has a live per-actor pool.
func (c *Controller) IsActorActive(actorID string) bool {
	return c.table.has(actorID)
}

// admit acquires all tiers, performs the work and releases everything in reverse order on every path.
func (c *Controller) admit(ctx context.Context, attempt Attempt) (denial *Denial, err error) {
	var releases releaseStack
	defer func() {
		if releaseErr := releases.releaseAll(); releaseErr != nil {
			err = errors.Join(err, releaseErr)
		}
	}()

	requestPermit, res := c.requests.TryAcquire(ctx, c.acquireTimeout)
	if res != capacity.Acquired {
		return newDenial(DenialReasonNoRequestCapacity, res), nil
	}
	releases.push(requestPermit.Release)

	entry, res, err := c.leaseActor(ctx, attempt.ActorID)
	if err != nil {
		return nil, err
	}
	if res != capacity.Acquired {
		return newDenial(DenialReasonNoActorCapacity, res), nil
	}
	releases.push(func() error { return c.table.unref(entry) })

	actorRequestPermit, res := entry.slots.TryAcquire(ctx, c.acquireTimeout)
	if res != capacity.Acquired {
		return newDenial(DenialReasonNoPerActorCapacity, res), nil
	}
	releases.push(actorRequestPermit.Release)

	return nil, c.doWork(ctx, attempt)
}

// leaseActor references the live entry of the actor or, if there is none,
// takes a global actor permit and creates the entry.
func (c *Controller) leaseActor(ctx context.Context, actorID string) (*actorEntry, capacity.Result, error) {
	if entry, ok := c.table.ref(actorID); ok {
		return entry, capacity.Acquired, nil
	}

	actorPermit, res := c.actors.TryAcquire(ctx, c.acquireTimeout)
	if res != capacity.Acquired {
		return nil, res, nil
	}

	entry, spare, err := c.table.refOrCreate(actorID, actorPermit)
	if err != nil {
		return nil, res, errors.Join(err, actorPermit.Release())
	}
	if spare != nil {
		if releaseErr := spare.Release(); releaseErr != nil {
			return nil, res, errors.Join(releaseErr, c.table.unref(entry))
		}
	}
	return entry, capacity.Acquired, nil
}

func (c *Controller) doWork(ctx context.Context, attempt Attempt) (err error) {
	c.working.Inc()
	defer c.working.Dec()

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %v", ErrWorkPanicked, p)
		}
	}()

	if err = c.work(context.WithoutCancel(ctx), attempt.ActorID); err != nil {
		return fmt.Errorf("perform unit of work: %w", err)
	}
	return nil
}

func newDenial(reason DenialReason, res capacity.Result) *Denial {
	return &Denial{Reason: reason, Cancelled: res == capacity.Cancelled}
}

// releaseStack keeps the releases of everything acquired by an attempt.
type releaseStack []func() error

func (rs *releaseStack) push(release func() error) {
	*rs = append(*rs, release)
}

// releaseAll calls all releases in reverse order of registration.
// Every release is called even if previous ones fail.
func (rs *releaseStack) releaseAll() error {
	var errs []error
	for i := len(*rs) - 1; i >= 0; i-- {
		if err := (*rs)[i](); err != nil {
			errs = append(errs, err)
		}
	}
	*rs = nil
	return errors.Join(errs...)
}
