/*
Copyright © 2026 Acronis International GmbH.

Released under MIT license.
*/

// Package simulation fires concurrent admission attempts for randomly chosen actors
// and reports how many of them were admitted.
package simulation

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/acronis/go-admission/log"
	"github.com/acronis/go-admission/retry"
	"github.com/acronis/go-admission/service"
)

var errDenied = errors.New("admission denied")

// Admitter decides whether an attempt on behalf of the actor is admitted.
// admission.Controller implements it.
type Admitter interface {
	AttemptAdmission(ctx context.Context, actorID string) bool
}

// AdmitterFunc is an adapter to allow the use of ordinary functions as Admitter.
type AdmitterFunc func(ctx context.Context, actorID string) bool

// AttemptAdmission implements Admitter.
func (f AdmitterFunc) AttemptAdmission(ctx context.Context, actorID string) bool {
	return f(ctx, actorID)
}

// Report summarizes the outcome of one or more rounds.
type Report struct {
	Admitted int
	Denied   int
	// Retries counts repeated attempts after denials.
	Retries int
}

// Add returns the sum of two reports.
func (r Report) Add(other Report) Report {
	return Report{
		Admitted: r.Admitted + other.Admitted,
		Denied:   r.Denied + other.Denied,
		Retries:  r.Retries + other.Retries,
	}
}

// Opts represents options for the Simulator.
type Opts struct {
	// Rand is used for choosing actors and delays. A time-seeded one is used if nil.
	Rand *rand.Rand
}

// Simulator runs rounds of concurrent admission attempts.
type Simulator struct {
	cfg      Config
	admitter Admitter
	logger   log.FieldLogger
	limiter  *rate.Limiter
	policy   retry.Policy

	rndMu sync.Mutex
	rnd   *rand.Rand

	totalMu sync.Mutex
	total   Report
}

var _ service.Worker = (*Simulator)(nil)

// New creates a new Simulator.
func New(cfg *Config, admitter Admitter, logger log.FieldLogger) (*Simulator, error) {
	return NewWithOpts(cfg, admitter, logger, Opts{})
}

// NewWithOpts creates a new Simulator with the provided options.
func NewWithOpts(cfg *Config, admitter Admitter, logger log.FieldLogger, opts Opts) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid simulation config: %w", err)
	}
	if admitter == nil {
		return nil, fmt.Errorf("admitter is required")
	}
	if logger == nil {
		logger = log.NewDisabledLogger()
	}
	rnd := opts.Rand
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano())) //nolint:gosec // not used for security
	}

	var limiter *rate.Limiter
	if cfg.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), 1)
	}

	var policy retry.Policy = retry.NoRetryPolicy
	if cfg.MaxRetries > 0 {
		policy = retry.NewConstantBackoffPolicy(time.Duration(cfg.RetryInterval), cfg.MaxRetries)
	}

	return &Simulator{
		cfg:      *cfg,
		admitter: admitter,
		logger:   logger,
		limiter:  limiter,
		policy:   policy,
		rnd:      rnd,
	}, nil
}

// Run runs a single round and adds its outcome to the total. It implements service.Worker.
// Context cancellation is not reported as an error.
func (s *Simulator) Run(ctx context.Context) error {
	report, err := s.RunRound(ctx)
	s.totalMu.Lock()
	s.total = s.total.Add(report)
	s.totalMu.Unlock()
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil
		}
		return err
	}
	s.logger.Info("simulation round finished",
		log.Int("admitted", report.Admitted), log.Int("denied", report.Denied), log.Int("retries", report.Retries))
	return nil
}

// Total returns the summed outcome of all rounds run by Run.
func (s *Simulator) Total() Report {
	s.totalMu.Lock()
	defer s.totalMu.Unlock()
	return s.total
}

// PeriodicWorker returns a worker running Config.Rounds rounds Config.Interval apart.
func (s *Simulator) PeriodicWorker() *service.PeriodicWorker {
	return service.NewPeriodicWorkerWithOpts(s, time.Duration(s.cfg.Interval), s.logger,
		service.PeriodicWorkerOpts{MaxRuns: s.cfg.Rounds})
}

type plannedAttempt struct {
	actorID string
	delay   time.Duration
}

// RunRound fires Config.Requests attempts concurrently and waits for all of them.
// The returned report covers the attempts that were made before ctx was done.
func (s *Simulator) RunRound(ctx context.Context) (Report, error) {
	plan := s.plan()

	var mu sync.Mutex
	var report Report

	g, gctx := errgroup.WithContext(ctx)
	for _, pa := range plan {
		pa := pa
		s.logger.Infof("%s is trying send a request...", pa.actorID)
		g.Go(func() error {
			admitted, retries, err := s.attempt(gctx, pa)
			if err != nil {
				return err
			}
			s.logger.Infof("Have %s had access?: %t", pa.actorID, admitted)

			mu.Lock()
			defer mu.Unlock()
			if admitted {
				report.Admitted++
			} else {
				report.Denied++
			}
			report.Retries += retries
			return nil
		})
	}
	err := g.Wait()
	return report, err
}

func (s *Simulator) plan() []plannedAttempt {
	s.rndMu.Lock()
	defer s.rndMu.Unlock()

	plan := make([]plannedAttempt, s.cfg.Requests)
	minDelay, maxDelay := time.Duration(s.cfg.MinDelay), time.Duration(s.cfg.MaxDelay)
	for i := range plan {
		plan[i].actorID = s.cfg.Actors[s.rnd.Intn(len(s.cfg.Actors))]
		plan[i].delay = minDelay
		if maxDelay > minDelay {
			plan[i].delay += time.Duration(s.rnd.Int63n(int64(maxDelay - minDelay)))
		}
	}
	return plan
}

func (s *Simulator) attempt(ctx context.Context, pa plannedAttempt) (admitted bool, retries int, err error) {
	if err = sleep(ctx, pa.delay); err != nil {
		return false, 0, err
	}
	if s.limiter != nil {
		if err = s.limiter.Wait(ctx); err != nil {
			return false, 0, err
		}
	}

	err = retry.DoWithRetry(ctx, s.policy, nil, retry.CountRetries(&retries, nil), func(ctx context.Context) error {
		if s.admitter.AttemptAdmission(ctx, pa.actorID) {
			return nil
		}
		return errDenied
	})
	if err == nil {
		return true, retries, nil
	}
	if errors.Is(err, errDenied) {
		return false, retries, nil
	}
	return false, retries, err
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
