/*
Copyright © 2026 Acronis International GmbH.

Released under MIT license.
*/

package service

import (
	"context"
	"errors"
	"time"
)

// ErrWorkerUnitStopTimeoutExceeded is an error that occurs when WorkerUnit's gracefully stop timeout is exceeded.
var ErrWorkerUnitStopTimeoutExceeded = errors.New("worker unit stop timeout exceeded")

// WorkerUnit allows presenting Worker as Unit.
type WorkerUnit struct {
	worker            Worker
	ctx               context.Context
	cancel            context.CancelFunc
	stopDone          chan struct{}
	opts              WorkerUnitOpts
	metricsRegisterer MetricsRegisterer
}

// WorkerUnitOpts contains optional parameters for constructing WorkerUnit.
type WorkerUnitOpts struct {
	MetricsRegisterer   MetricsRegisterer
	GracefulStopTimeout time.Duration

	// Finite marks the worker as doing a bounded amount of work (see FiniteUnit).
	Finite bool
}

var _ FiniteUnit = (*WorkerUnit)(nil)

// NewWorkerUnit creates a new instance of WorkerUnit.
func NewWorkerUnit(worker Worker) *WorkerUnit {
	return NewWorkerUnitWithOpts(worker, WorkerUnitOpts{})
}

// NewWorkerUnitWithOpts creates a new instance of WorkerUnit
// with an ability to specify different optional parameters.
func NewWorkerUnitWithOpts(worker Worker, opts WorkerUnitOpts) *WorkerUnit {
	ctx, cancel := context.WithCancel(context.Background())
	return &WorkerUnit{
		worker:            worker,
		ctx:               ctx,
		cancel:            cancel,
		stopDone:          make(chan struct{}, 1),
		opts:              opts,
		metricsRegisterer: opts.MetricsRegisterer,
	}
}

// Start runs the underlying Worker and blocks until it returns.
func (u *WorkerUnit) Start(fatalError chan<- error) {
	if err := u.worker.Run(u.ctx); err != nil {
		fatalError <- err
	}
	u.stopDone <- struct{}{}
}

// Stop cancels the context of the underlying Worker.
// If gracefully is true, it also waits for the Worker to return.
func (u *WorkerUnit) Stop(gracefully bool) error {
	u.cancel()
	if !gracefully {
		return nil
	}
	if u.opts.GracefulStopTimeout == 0 {
		<-u.stopDone
		return nil
	}
	timer := time.NewTimer(u.opts.GracefulStopTimeout)
	defer timer.Stop()
	select {
	case <-u.stopDone:
		return nil
	case <-timer.C:
		return ErrWorkerUnitStopTimeoutExceeded
	}
}

// Finite implements FiniteUnit.
func (u *WorkerUnit) Finite() bool {
	return u.opts.Finite
}

// MustRegisterMetrics registers underlying Worker's metrics.
func (u *WorkerUnit) MustRegisterMetrics() {
	if u.metricsRegisterer != nil {
		u.metricsRegisterer.MustRegisterMetrics()
	}
}

// UnregisterMetrics unregisters underlying Worker's metrics.
func (u *WorkerUnit) UnregisterMetrics() {
	if u.metricsRegisterer != nil {
		u.metricsRegisterer.UnregisterMetrics()
	}
}
